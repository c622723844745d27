package slicer

import (
	"context"
	"log/slog"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/resolve"
)

// PruneStats counts the members a unit kept and lost. Member types are
// not counted.
type PruneStats struct {
	Unit    string
	Kept    int
	Removed int
}

// Pruner removes the members of type declarations that are neither
// targets nor referenced from a target.
type Pruner struct {
	resolver resolve.Resolver
	logger   *slog.Logger
}

// NewPruner creates a pruner that identifies members through resolver.
func NewPruner(resolver resolve.Resolver, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{resolver: resolver, logger: logger}
}

// Prune mutates units in place. A member whose signature cannot be
// determined is kept and reported as a failure.
func (p *Pruner) Prune(ctx context.Context, units []*javaast.Unit, root, used SignatureView) ([]PruneStats, []ResolutionFailure, error) {
	retained := union{root, used}
	stats := make([]PruneStats, 0, len(units))

	var failures []ResolutionFailure

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		run := &pruneRun{unit: unit, resolver: p.resolver, retained: retained}
		for _, decl := range unit.Types() {
			run.pruneType(decl)
		}

		for _, f := range run.failures {
			p.logger.WarnContext(ctx, "member kept because its signature is unknown",
				"unit", f.Unit, "line", f.Line, "expr", f.Expr, "error", f.Err)
		}

		p.logger.DebugContext(ctx, "pruned unit", "unit", unit.Path, "kept", run.stats.Kept, "removed", run.stats.Removed)

		run.stats.Unit = unit.Path
		stats = append(stats, run.stats)
		failures = append(failures, run.failures...)
	}

	return stats, failures, nil
}

type pruneRun struct {
	unit     *javaast.Unit
	resolver resolve.Resolver
	retained union
	stats    PruneStats
	failures []ResolutionFailure
}

func (r *pruneRun) pruneType(decl *javaast.TypeDecl) {
	for _, m := range decl.Members {
		if nested, ok := m.(*javaast.TypeDecl); ok {
			r.pruneType(nested)
		}
	}

	removed := decl.RemoveMembers(func(m javaast.Member) bool {
		return !r.keep(m)
	})

	r.stats.Removed += len(removed)

	for _, m := range decl.Members {
		if _, ok := m.(*javaast.TypeDecl); !ok {
			r.stats.Kept++
		}
	}
}

func (r *pruneRun) keep(m javaast.Member) bool {
	switch member := m.(type) {
	case *javaast.TypeDecl, *javaast.RawMember:
		return true
	case *javaast.FieldDecl:
		for _, v := range member.Vars {
			if r.retainedDecl(v) {
				return true
			}
		}

		return false
	case *javaast.MethodDecl:
		return r.retainedDecl(member)
	case *javaast.ConstructorDecl:
		return r.retainedDecl(member)
	case *javaast.InitializerDecl:
		return r.retainedDecl(member)
	}

	return true
}

func (r *pruneRun) retainedDecl(d javaast.Decl) bool {
	sig, err := r.resolver.Declaration(d)
	if err != nil {
		r.failures = append(r.failures, newFailure(r.unit, d, err))

		return true
	}

	return r.retained.Contains(sig)
}
