package verifier

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/benz9527/xllrb/xlog"
)

const (
	defaultKeys          = 1024
	defaultRounds        = 2000
	defaultValidateEvery = 64
	defaultMeterName     = "xllrb/verifier"
	maxKeys              = 1 << 22
)

var ErrInvalidOption = errors.New("invalid verifier option")

type config struct {
	logger        xlog.XLogger
	meterName     string
	seed          uint64
	keys          int
	rounds        int
	workers       int
	validateEvery int
}

type VerifierOption func(*config) error

func defaultConfig() *config {
	return &config{
		meterName:     defaultMeterName,
		keys:          defaultKeys,
		rounds:        defaultRounds,
		workers:       runtime.GOMAXPROCS(0),
		validateEvery: defaultValidateEvery,
	}
}

// WithKeys sets the size of the shared base map. The key space of
// the histories is twice as large, so about half of the random keys
// hit an existing entry.
func WithKeys(keys int) VerifierOption {
	return func(cfg *config) error {
		if keys <= 0 || keys > maxKeys {
			return fmt.Errorf("%w: keys %d out of (0,%d]", ErrInvalidOption, keys, maxKeys)
		}
		cfg.keys = keys
		return nil
	}
}

// WithRounds sets the number of random operations of each history.
func WithRounds(rounds int) VerifierOption {
	return func(cfg *config) error {
		if rounds < 0 {
			return fmt.Errorf("%w: negative rounds %d", ErrInvalidOption, rounds)
		}
		cfg.rounds = rounds
		return nil
	}
}

// WithWorkers sets both the number of histories and the ants pool size.
func WithWorkers(workers int) VerifierOption {
	return func(cfg *config) error {
		if workers <= 0 {
			return fmt.Errorf("%w: workers %d must be positive", ErrInvalidOption, workers)
		}
		cfg.workers = workers
		return nil
	}
}

// WithSeed makes a run reproducible. Zero picks a random seed, the
// report carries the one used.
func WithSeed(seed uint64) VerifierOption {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithValidateEvery runs the full invariant check and the oracle
// comparison every n operations. The size is checked after each one.
func WithValidateEvery(n int) VerifierOption {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: validate interval %d must be positive", ErrInvalidOption, n)
		}
		cfg.validateEvery = n
		return nil
	}
}

func WithLogger(logger xlog.XLogger) VerifierOption {
	return func(cfg *config) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		cfg.logger = logger
		return nil
	}
}

func WithMeterName(name string) VerifierOption {
	return func(cfg *config) error {
		if len(name) == 0 {
			return fmt.Errorf("%w: empty meter name", ErrInvalidOption)
		}
		cfg.meterName = name
		return nil
	}
}
