package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benz9527/xllrb/lib/tree"
	"github.com/benz9527/xllrb/xlog"
)

func testLogger() xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelError),
		xlog.WithXLoggerEncoder(xlog.JSON),
	)
}

func TestNewVerifier_Options(t *testing.T) {
	testcases := []struct {
		name string
		opt  VerifierOption
		err  error
	}{
		{"keys", WithKeys(16), nil},
		{"zero keys", WithKeys(0), ErrInvalidOption},
		{"too many keys", WithKeys(maxKeys + 1), ErrInvalidOption},
		{"rounds", WithRounds(0), nil},
		{"negative rounds", WithRounds(-1), ErrInvalidOption},
		{"workers", WithWorkers(3), nil},
		{"zero workers", WithWorkers(0), ErrInvalidOption},
		{"validate every", WithValidateEvery(8), nil},
		{"zero validate every", WithValidateEvery(0), ErrInvalidOption},
		{"nil logger", WithLogger(nil), ErrInvalidOption},
		{"meter name", WithMeterName("xllrb/test"), nil},
		{"empty meter name", WithMeterName(""), ErrInvalidOption},
		{"nil option", nil, nil},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewVerifier(WithLogger(testLogger()), tc.opt)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Nil(t, v)
				return
			}
			require.NoError(t, err)
			require.NotZero(t, v.Seed())
		})
	}

	v, err := NewVerifier(WithLogger(testLogger()), WithSeed(42))
	require.NoError(t, err)
	require.Equal(t, uint64(42), v.Seed())
}

func TestVerifier_Run(t *testing.T) {
	v, err := NewVerifier(
		WithLogger(testLogger()),
		WithKeys(256),
		WithRounds(300),
		WithWorkers(4),
		WithValidateEvery(16),
		WithSeed(20241015),
	)
	require.NoError(t, err)

	report, err := v.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(20241015), report.Seed)
	require.Equal(t, int64(256), report.BaseSize)
	require.Equal(t, 4, report.Histories)
	require.Zero(t, report.Failed)
	require.Zero(t, report.Violations)
	require.Equal(t, int64(256+4*300), report.Ops)
	require.Greater(t, report.Validations, int64(4*300/16))
	require.True(t, report.Elapsed > 0)

	// Same seed, same work.
	again, err := v.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, report.Ops, again.Ops)
	require.Equal(t, report.Validations, again.Validations)
}

func TestVerifier_RunCancelled(t *testing.T) {
	v, err := NewVerifier(WithLogger(testLogger()), WithKeys(64), WithWorkers(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := v.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, report.Failed)
}

func TestHistory_Ops(t *testing.T) {
	base := tree.FromList(lo.Map(lo.Range(64), func(k int, _ int) tree.Pair[int, int] {
		return tree.NewPair(k*2, k)
	}))
	expected := oracle{}
	for k, v := range base.All() {
		expected[k] = v
	}

	for kind := opInsert; kind < _opMax; kind++ {
		t.Run(kind.String(), func(t *testing.T) {
			h := newHistory(int(kind), 7, base, expected.clone(), 256, 1, nil)
			for i := 0; i < 50; i++ {
				require.NoError(t, h.apply(kind))
				require.NoError(t, checkAgainst(h.m, h.expected))
			}
		})
	}
	// Every history had its own version.
	require.NoError(t, checkAgainst(base, expected))
	require.Error(t, newHistory(0, 7, base, expected.clone(), 256, 1, nil).apply(_opMax))
	require.Equal(t, "unknown", _opMax.String())
}

func TestHistory_Run(t *testing.T) {
	h := newHistory(1, 99, tree.NewLLRBMap[int, int](), oracle{}, 128, 10, nil)
	require.NoError(t, h.run(context.Background(), 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, h.run(ctx, 10), context.Canceled)
}

func TestCheckAgainst(t *testing.T) {
	m := tree.FromList([]tree.Pair[int, int]{{1, 10}, {2, 20}})
	require.NoError(t, checkAgainst(m, oracle{1: 10, 2: 20}))
	require.ErrorIs(t, checkAgainst(m, oracle{1: 10}), ErrOracleMismatch)
	require.ErrorIs(t, checkAgainst(m, oracle{1: 10, 2: 21}), ErrOracleMismatch)
	require.ErrorIs(t, checkAgainst(m, oracle{1: 10, 3: 20}), ErrOracleMismatch)
}

func TestRunHistory_Panic(t *testing.T) {
	v, err := NewVerifier(WithLogger(testLogger()), WithRounds(10))
	require.NoError(t, err)

	// Zero validation interval, the first round divides by zero.
	h := newHistory(3, 1, tree.NewLLRBMap[int, int](), oracle{}, 16, 0, nil)
	err = v.runHistory(context.Background(), h)
	require.ErrorIs(t, err, ErrInvariantViolation)

	combined := multierr.Combine(err, errors.New("other"))
	require.Len(t, multierr.Errors(combined), 2)
}
