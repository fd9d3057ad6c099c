package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type ExporterType uint8

const (
	NoopExporter ExporterType = iota
	ConsoleExporter
	PrometheusExporter
)

var ErrUnknownExporter = errors.New("unknown metrics exporter")

// ParseExporterType accepts "none", "console" and "prometheus".
func ParseExporterType(name string) (ExporterType, error) {
	switch name {
	case "", "none":
		return NoopExporter, nil
	case "console":
		return ConsoleExporter, nil
	case "prometheus":
		return PrometheusExporter, nil
	default:
	}
	return NoopExporter, ErrUnknownExporter
}

// InitMetricsExporter installs the global meter provider. The
// returned callback flushes and shuts it down.
func InitMetricsExporter(typ ExporterType, interval time.Duration) (func(ctx context.Context) error, error) {
	switch typ {
	case NoopExporter:
		return func(context.Context) error { return nil }, nil
	case ConsoleExporter:
		return newConsoleMetricsExporter(interval, interval, stdoutmetric.WithPrettyPrint())
	case PrometheusExporter:
		return newPrometheusMetricsExporter()
	default:
	}
	return nil, ErrUnknownExporter
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the long-running verifier, the stats are scraped
// through the prometheus default registry.
func newPrometheusMetricsExporter() (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
