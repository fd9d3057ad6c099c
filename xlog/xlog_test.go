package xlog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data []byte
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testMemOutWriter) Sync() error {
	return nil
}

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return string(w.data)
}

func (w *testMemOutWriter) Lines(t *testing.T) []map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	res := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		res = append(res, m)
	}
	return res
}

func testMemLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	t.Helper()
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	registerOutWriter(testMemAsOut, w)
	opts = append([]XLoggerOption{
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerTimeEncoder(zapcore.ISO8601TimeEncoder),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	}, opts...)
	return NewXLogger(opts...), w
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
}

func TestGetLogLevelOrDefault(t *testing.T) {
	testcases := []struct {
		in       string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"   ", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"fatal", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.expected, getLogLevelOrDefault(tc.in))
		})
	}
}

func TestNewXLogger_BadOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
}

func TestXLogger_LevelChange(t *testing.T) {
	logger, w := testMemLogger(t)
	logger.Debug("first")
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	require.Equal(t, "warn", logger.Level())
	logger.Info("dropped")
	logger.Warn("second")
	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Logf(zapcore.InfoLevel, "third %d", 3)
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 3)
	require.Equal(t, "first", lines[0]["msg"])
	require.Equal(t, "DEBUG", lines[0]["lvl"])
	require.Equal(t, "second", lines[1]["msg"])
	require.Equal(t, "third 3", lines[2]["msg"])
	require.Contains(t, lines[0]["callAt"], "xlog_test.go")
}

func TestXLogger_ContextFields(t *testing.T) {
	logger, w := testMemLogger(t,
		WithXLoggerContextFieldExtract("traceID", "trace"),
		WithXLoggerContextFieldExtract("secret", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)
	logger.ExtractContextField("history")
	logger.ExtractContextField("")

	ctx := context.WithValue(context.Background(), "traceID", "t-1")
	ctx = context.WithValue(ctx, "secret", "s")
	logger.InfoContext(ctx, "ctx", zap.Int("round", 1))
	logger.ErrorContext(ctx, errors.New("boom"), "ctx err")
	logger.DebugContext(nil, "no ctx")
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 3)
	require.Equal(t, "t-1", lines[0]["trace"])
	require.Equal(t, "nil", lines[0]["history"])
	require.Equal(t, float64(1), lines[0]["round"])
	require.NotContains(t, lines[0], "secret")
	require.NotContains(t, lines[0], "_")
	require.Equal(t, "boom", lines[1]["error"])
	require.NotContains(t, lines[2], "trace")
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, w := testMemLogger(t)
	err := multierr.Combine(errors.New("history 1 diverged"), errors.New("history 7 diverged"))
	logger.ErrorStack(err, "verify failed", zap.String("seed", "42"))
	logger.ErrorStack(nil, "nothing")
	logger.Error(errors.New("single"), "single failed")
	require.NoError(t, logger.Sync())

	lines := w.Lines(t)
	require.Len(t, lines, 3)
	errs, ok := lines[0]["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 2)
	require.Equal(t, "history 1 diverged", errs[0].(map[string]any)["error"])
	require.Equal(t, "42", lines[0]["seed"])
	require.NotContains(t, lines[1], "errors")
	require.Equal(t, "single", lines[2]["error"])
}

type testBanner struct{}

func (b testBanner) JSON() string {
	return "{\"app\":\"xllrb\"}"
}

func (b testBanner) PlainText() string {
	return "xllrb"
}

func TestXLogger_Banner(t *testing.T) {
	printBanner = sync.Once{}
	logger, w := testMemLogger(t)
	logger.Banner(testBanner{})
	logger.Banner(testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xllrb\\\"}\"}\n", w.String())

	printBanner = sync.Once{}
	logger, w = testMemLogger(t, WithXLoggerEncoder(PlainText))
	logger.Banner(testBanner{})
	require.Equal(t, "xllrb\n", w.String())
}

func TestXLogMultiCore(t *testing.T) {
	tee := make(xLogMultiCore, 0, 2)
	require.Nil(t, tee.writeSyncer())
	require.Nil(t, tee.levelEncoder())
	require.Nil(t, tee.timeEncoder())
	require.Nil(t, tee.outEncoder())

	lvlEnabler := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w1, w2 := &testMemOutWriter{}, &testMemOutWriter{}
	registerOutWriter(testMemAsOut, w1)
	tee = append(tee, newConsoleCore(lvlEnabler, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder))
	registerOutWriter(testMemAsOut, w2)
	tee = append(tee, newConsoleCore(lvlEnabler, PlainText, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder))
	require.Nil(t, newConsoleCore(lvlEnabler, JSON, _writerMax, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder))

	require.False(t, tee.Enabled(zapcore.DebugLevel))
	require.True(t, tee.Enabled(zapcore.InfoLevel))
	require.Equal(t, zapcore.InfoLevel, tee.Level())

	l := zap.New(tee)
	l.Debug("dropped")
	l.With(zap.String("k", "v")).Info("tee")
	require.NoError(t, tee.Sync())
	require.Contains(t, w1.String(), `"msg":"tee"`)
	require.Contains(t, w1.String(), `"k":"v"`)
	require.Contains(t, w2.String(), "tee")
	require.NotContains(t, w2.String(), "dropped")

	wrapped, err := WrapCores(tee, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.NoError(t, wrapped.Write(zapcore.Entry{Level: zapcore.InfoLevel, LoggerName: "component", Message: "wrapped"}, nil))
	require.Contains(t, w1.String(), `"component":"component"`)

	_, err = WrapCore(nil, componentCoreEncoderCfg())
	require.ErrorIs(t, err, errNilCore)
}
