package verifier

import (
	"context"
	"sync/atomic"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type verifierStats struct {
	ops               atomic.Int64
	validations       atomic.Int64
	violations        atomic.Int64
	opCount           metric.Int64Counter
	violationCount    metric.Int64Counter
	validateDurations metric.Int64Histogram
	treeSizes         metric.Int64Histogram
}

func (stats *verifierStats) IncreaseOpCount(ctx context.Context, kind opKind) {
	if stats == nil {
		return
	}
	stats.ops.Add(1)
	stats.opCount.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
		attribute.String("llrb.op", kind.String()),
	)))
}

func (stats *verifierStats) IncreaseViolationCount(ctx context.Context, kind opKind) {
	if stats == nil {
		return
	}
	stats.violations.Add(1)
	stats.violationCount.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
		attribute.String("llrb.op", kind.String()),
	)))
}

func (stats *verifierStats) RecordValidation(ctx context.Context, durationUs, size int64) {
	if stats == nil {
		return
	}
	stats.validations.Add(1)
	stats.validateDurations.Record(ctx, durationUs)
	stats.treeSizes.Record(ctx, size)
}

func (stats *verifierStats) reset() {
	if stats == nil {
		return
	}
	stats.ops.Store(0)
	stats.validations.Store(0)
	stats.violations.Store(0)
}

func newVerifierStats(meterName string) *verifierStats {
	meter := otel.Meter(meterName)
	return &verifierStats{
		opCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.op.count",
			metric.WithDescription("The number of map operations applied by the verifier."),
		)),
		violationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"llrb.violation.count",
			metric.WithDescription("The number of broken invariants or oracle mismatches."),
		)),
		validateDurations: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"llrb.validate.duration",
			metric.WithDescription("The duration of one full invariant check. In microseconds."),
			metric.WithUnit("us"),
		)),
		treeSizes: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"llrb.tree.size",
			metric.WithDescription("The number of entries of the validated maps."),
		)),
	}
}
