// Package slicer reduces a set of Java units to the declarations that a
// set of target methods needs.
//
// A run has two phases. Collection walks the units once, locates each
// target by its specifier, and records the signature of every member a
// target calls, constructs, or reads. Pruning then removes every
// non-type member whose signature was not recorded, and the emitter
// writes the units that still declare something.
package slicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/observability"
	"github.com/kelloggm/specimin/pkg/resolve"
)

const tracerName = "specimin/slicer"

// Options configures a run.
type Options struct {
	// Targets are the target method specifiers.
	Targets   []string
	OutputDir string
	// Strict makes resolution failures fatal before anything is pruned.
	Strict bool
	// DryRun renders the sliced units without writing them.
	DryRun bool

	// Writer defaults to OSWriter.
	Writer FileWriter
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics may be nil.
	Metrics *observability.SliceMetrics
}

// Result is everything a run produced.
type Result struct {
	Collect *CollectResult
	Prune   []PruneStats
	Emit    *EmitResult
	// Failures are the collection and pruning failures, in that order.
	Failures []ResolutionFailure
	// Durations holds the wall time of each phase that ran, keyed by
	// "collect", "prune" and "emit".
	Durations map[string]time.Duration
}

// Removed returns the total number of members pruned.
func (r *Result) Removed() int {
	total := 0
	for _, s := range r.Prune {
		total += s.Removed
	}

	return total
}

// Run slices units, which must already be parsed. When targets are
// unmatched the error is an *UnmatchedTargetsError and nothing is pruned.
// The partial result is returned alongside any error.
func Run(ctx context.Context, units []*javaast.Unit, resolver resolve.Resolver, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr := otel.Tracer(tracerName)
	result := &Result{Durations: make(map[string]time.Duration)}

	defer func() { opts.Metrics.RecordRun(ctx, stats(result)) }()

	collect, err := traced(ctx, tr, result.Durations, "slicer.collect", func(ctx context.Context) (*CollectResult, error) {
		return NewCollector(resolver, opts.Targets, logger).Collect(ctx, units)
	})

	result.Collect = collect
	if collect != nil {
		result.Failures = append(result.Failures, collect.Failures...)
	}

	if err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "collected targets",
		"root", collect.Root.Len(), "used", collect.Used.Len(), "failures", len(collect.Failures))

	if opts.Strict && len(collect.Failures) > 0 {
		return result, fmt.Errorf("%w: %d found", ErrUnresolvedReferences, len(collect.Failures))
	}

	_, err = traced(ctx, tr, result.Durations, "slicer.prune", func(ctx context.Context) (struct{}, error) {
		stats, failures, pruneErr := NewPruner(resolver, logger).Prune(ctx, units, collect.Root, collect.Used)
		result.Prune = stats
		result.Failures = append(result.Failures, failures...)

		return struct{}{}, pruneErr
	})
	if err != nil {
		return result, err
	}

	emitter := &Emitter{OutputDir: opts.OutputDir, DryRun: opts.DryRun, Writer: opts.Writer, Logger: logger}

	result.Emit, err = traced(ctx, tr, result.Durations, "slicer.emit", func(ctx context.Context) (*EmitResult, error) {
		return emitter.Emit(ctx, units)
	})
	if err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "slice complete",
		"removed", result.Removed(), "written", len(result.Emit.Written),
		"skipped", len(result.Emit.Skipped), "write_failures", len(result.Emit.Failures))

	return result, nil
}

func traced[T any](
	ctx context.Context, tr trace.Tracer, durations map[string]time.Duration,
	name string, fn func(context.Context) (T, error),
) (T, error) {
	ctx, span := tr.Start(ctx, name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	durations[strings.TrimPrefix(name, "slicer.")] = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var unmatched *UnmatchedTargetsError
		if errors.As(err, &unmatched) {
			span.SetAttributes(attribute.Int("slicer.unmatched", len(unmatched.Targets)))
		}
	}

	return out, err
}

func stats(r *Result) observability.SliceStats {
	var s observability.SliceStats

	if r.Collect != nil {
		s.Targets = int64(r.Collect.Root.Len())
		s.Used = int64(r.Collect.Used.Len())
	}

	s.Removed = int64(r.Removed())
	s.Failures = int64(len(r.Failures))

	if r.Emit != nil {
		s.Written = int64(len(r.Emit.Written))
		s.Skipped = int64(len(r.Emit.Skipped))
		s.WriteFailures = int64(len(r.Emit.Failures))
	}

	s.PhaseDurations = r.Durations

	return s
}
