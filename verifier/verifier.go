package verifier

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xllrb/lib/infra"
	"github.com/benz9527/xllrb/lib/tree"
	"github.com/benz9527/xllrb/xlog"
)

const panicFrameDepth = 8

// historyCtxKey carries the history ID to the context aware logs.
const historyCtxKey = "llrb.history"

type Report struct {
	Seed        uint64
	BaseSize    int64
	Histories   int
	Failed      int
	Ops         int64
	Validations int64
	Violations  int64
	Elapsed     time.Duration
}

// Verifier stress-checks the persistent map. Many histories share one
// base version and diverge from it concurrently, each one checked by
// its own oracle. The base version must come out untouched.
type Verifier struct {
	cfg    *config
	stats  *verifierStats
	logger xlog.XLogger
}

func NewVerifier(opts ...VerifierOption) (*Verifier, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.seed == 0 {
		cfg.seed = rand.Uint64()
	}
	if cfg.logger == nil {
		cfg.logger = xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelInfo))
	}
	cfg.logger.ExtractContextField(historyCtxKey, "history")
	return &Verifier{
		cfg:    cfg,
		stats:  newVerifierStats(cfg.meterName),
		logger: cfg.logger,
	}, nil
}

func (v *Verifier) Seed() uint64 {
	return v.cfg.seed
}

// buildBase inserts the base keys in random order, checking the map
// like a history does.
func (v *Verifier) buildBase(ctx context.Context) (tree.LLRBMap[int, int], oracle, error) {
	rnd := rand.New(rand.NewPCG(v.cfg.seed, 0))
	m := tree.NewLLRBMap[int, int]()
	expected := make(oracle, v.cfg.keys)
	keys := rnd.Perm(2 * v.cfg.keys)[:v.cfg.keys]
	for i, k := range keys {
		if err := ctx.Err(); err != nil {
			return m, expected, fmt.Errorf("base build stopped at %d: %w", i, err)
		}
		val := rnd.Int()
		m = m.Insert(k, val)
		expected[k] = val
		v.stats.IncreaseOpCount(ctx, opInsert)
		if (i+1)%v.cfg.validateEvery == 0 {
			if err := v.check(ctx, m, expected); err != nil {
				v.stats.IncreaseViolationCount(ctx, opInsert)
				return m, expected, fmt.Errorf("base build step %d: %w", i, err)
			}
		}
	}
	if err := v.check(ctx, m, expected); err != nil {
		return m, expected, fmt.Errorf("base build: %w", err)
	}
	return m, expected, nil
}

func (v *Verifier) check(ctx context.Context, m tree.LLRBMap[int, int], expected oracle) error {
	start := time.Now()
	err := checkAgainst(m, expected)
	v.stats.RecordValidation(ctx, time.Since(start).Microseconds(), int64(len(expected)))
	return err
}

// Run builds the base map, runs the histories on an ants pool and
// checks the base map again. All failures are combined into the
// returned error. A Verifier runs one verification at a time.
func (v *Verifier) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	v.stats.reset()
	report := Report{
		Seed:      v.cfg.seed,
		Histories: v.cfg.workers,
	}
	finish := func(err error) (Report, error) {
		report.Ops = v.stats.ops.Load()
		report.Validations = v.stats.validations.Load()
		report.Violations = v.stats.violations.Load()
		report.Elapsed = time.Since(start)
		return report, err
	}

	v.logger.Info("llrb verification started",
		zap.Uint64("seed", v.cfg.seed),
		zap.Int("keys", v.cfg.keys),
		zap.Int("rounds", v.cfg.rounds),
		zap.Int("workers", v.cfg.workers),
	)
	base, expected, err := v.buildBase(ctx)
	report.BaseSize = base.Size()
	if err != nil {
		v.logger.Error(err, "llrb base build failed", zap.Uint64("seed", v.cfg.seed))
		report.Failed = report.Histories
		return finish(err)
	}
	snapshot := base.ToList()

	pool, err := ants.NewPool(v.cfg.workers, ants.WithLogger(xlog.NewAntsXLogger(v.logger)))
	if err != nil {
		return finish(err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		lock   sync.Mutex
		errs   error
		failed int
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		lock.Lock()
		defer lock.Unlock()
		errs = multierr.Append(errs, err)
		failed++
	}
	for id := 1; id <= v.cfg.workers; id++ {
		if ctx.Err() != nil {
			collect(fmt.Errorf("history %d not started: %w", id, ctx.Err()))
			continue
		}
		wg.Add(1)
		h := newHistory(id, v.cfg.seed, base, expected.clone(), 2*v.cfg.keys, v.cfg.validateEvery, v.stats)
		hctx := context.WithValue(ctx, historyCtxKey, id)
		if err := pool.Submit(func() {
			defer wg.Done()
			err := v.runHistory(hctx, h)
			if err != nil {
				v.logger.ErrorContext(hctx, err, "llrb history failed")
			} else {
				v.logger.DebugContext(hctx, "llrb history passed", zap.Int64("size", h.m.Size()))
			}
			collect(err)
		}); err != nil {
			wg.Done()
			collect(fmt.Errorf("history %d not submitted: %w", id, err))
		}
	}
	wg.Wait()
	report.Failed = failed

	if !slices.Equal(snapshot, base.ToList()) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d entries before, %d after", ErrBaseMutated, len(snapshot), base.Size()))
	} else if err := tree.Validate(base); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: %w", ErrBaseMutated, err))
	}

	report, errs = finish(errs)
	if errs != nil {
		v.logger.ErrorStack(errs, "llrb verification failed",
			zap.Uint64("seed", report.Seed),
			zap.Int("failed", report.Failed),
		)
	} else {
		v.logger.Info("llrb verification passed",
			zap.Uint64("seed", report.Seed),
			zap.Int64("ops", report.Ops),
			zap.Int64("validations", report.Validations),
			zap.Duration("elapsed", report.Elapsed),
		)
	}
	return report, errs
}

// runHistory turns a panic of the map code into a failure of this
// history only.
func (v *Verifier) runHistory(ctx context.Context, h *history) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.ErrorContext(ctx, fmt.Errorf("%v", r), "llrb history panic",
				zap.Any("frames", infra.Callers(panicFrameDepth)),
			)
			err = fmt.Errorf("history %d panic: %v: %w", h.id, r, ErrInvariantViolation)
		}
	}()
	return h.run(ctx, v.cfg.rounds)
}
