package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
)

func TestParseExporterType(t *testing.T) {
	testcases := []struct {
		name     string
		expected ExporterType
		err      error
	}{
		{"", NoopExporter, nil},
		{"none", NoopExporter, nil},
		{"console", ConsoleExporter, nil},
		{"prometheus", PrometheusExporter, nil},
		{"statsd", NoopExporter, ErrUnknownExporter},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			typ, err := ParseExporterType(tc.name)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, typ)
		})
	}
}

func TestInitMetricsExporter(t *testing.T) {
	shutdown, err := InitMetricsExporter(NoopExporter, time.Second)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitMetricsExporter(ExporterType(9), time.Second)
	require.ErrorIs(t, err, ErrUnknownExporter)

	shutdown, err = InitMetricsExporter(PrometheusExporter, time.Second)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := newConsoleMetricsExporter(time.Hour, time.Second, stdoutmetric.WithWriter(buf))
	require.NoError(t, err)

	counter, err := otel.Meter("xllrb/test").Int64Counter("test.ops", metric.WithDescription("test ops"))
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Shutdown flushes the periodic reader.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "test.ops")
}

func TestAppMeterName(t *testing.T) {
	require.Equal(t, "xllrb/app/default", AppMeterName(""))
	require.Equal(t, "xllrb/app/default", AppMeterName("  "))
	require.Equal(t, "xllrb/app/llrbverify", AppMeterName("llrbverify"))
}

func TestInitAppStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{})
	InitAppStats(ctx, "test", func(context.Context) error {
		close(called)
		return nil
	})
	// Only the first call counts.
	InitAppStats(ctx, "test", func(context.Context) error {
		panic("must not run")
	})
	cancel()
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback not called")
	}
}
