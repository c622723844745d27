package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricTargets       = "specimin.slice.targets"
	metricMembersUsed   = "specimin.slice.members.used"
	metricMembersPruned = "specimin.slice.members.removed"
	metricFailures      = "specimin.slice.resolution.failures"
	metricUnits         = "specimin.slice.units"
	metricPhaseDuration = "specimin.slice.phase.duration.seconds"

	attrStatus = "status"
	attrPhase  = "phase"
)

// durationBucketBoundaries covers a phase over a handful of files up to a
// large source root.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// SliceMetrics holds OTel instruments for slicing runs.
type SliceMetrics struct {
	targets       metric.Int64Counter
	membersUsed   metric.Int64Counter
	membersPruned metric.Int64Counter
	failures      metric.Int64Counter
	units         metric.Int64Counter
	phaseDuration metric.Float64Histogram
}

// SliceStats holds the statistics of a single run, decoupled from the
// slicer's types.
type SliceStats struct {
	Targets       int64
	Used          int64
	Removed       int64
	Failures      int64
	Written       int64
	Skipped       int64
	WriteFailures int64

	PhaseDurations map[string]time.Duration
}

// NewSliceMetrics creates slicing metric instruments from the given meter.
func NewSliceMetrics(mt metric.Meter) (*SliceMetrics, error) {
	targets, err := mt.Int64Counter(metricTargets,
		metric.WithDescription("Target methods located"),
		metric.WithUnit("{method}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTargets, err)
	}

	used, err := mt.Int64Counter(metricMembersUsed,
		metric.WithDescription("Members referenced from target bodies"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMembersUsed, err)
	}

	removed, err := mt.Int64Counter(metricMembersPruned,
		metric.WithDescription("Members removed by pruning"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMembersPruned, err)
	}

	failures, err := mt.Int64Counter(metricFailures,
		metric.WithDescription("References or declarations that could not be resolved"),
		metric.WithUnit("{reference}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFailures, err)
	}

	units, err := mt.Int64Counter(metricUnits,
		metric.WithDescription("Compilation units by emit status"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricUnits, err)
	}

	phase, err := mt.Float64Histogram(metricPhaseDuration,
		metric.WithDescription("Per-phase slicing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPhaseDuration, err)
	}

	return &SliceMetrics{
		targets:       targets,
		membersUsed:   used,
		membersPruned: removed,
		failures:      failures,
		units:         units,
		phaseDuration: phase,
	}, nil
}

// RecordRun records the statistics of a completed run.
// Safe to call on a nil receiver (no-op).
func (sm *SliceMetrics) RecordRun(ctx context.Context, stats SliceStats) {
	if sm == nil {
		return
	}

	sm.targets.Add(ctx, stats.Targets)
	sm.membersUsed.Add(ctx, stats.Used)
	sm.membersPruned.Add(ctx, stats.Removed)
	sm.failures.Add(ctx, stats.Failures)

	sm.units.Add(ctx, stats.Written, metric.WithAttributes(attribute.String(attrStatus, "written")))
	sm.units.Add(ctx, stats.Skipped, metric.WithAttributes(attribute.String(attrStatus, "skipped")))
	sm.units.Add(ctx, stats.WriteFailures, metric.WithAttributes(attribute.String(attrStatus, "failed")))

	for phase, d := range stats.PhaseDurations {
		sm.phaseDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrPhase, phase)))
	}
}
