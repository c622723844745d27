package slicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/qualname"
	"github.com/kelloggm/specimin/pkg/resolve"
)

const unmatchedPrefix = "could not locate the following target methods in the target files: "

// ErrUnresolvedReferences is returned in strict mode when any reference
// inside a target could not be resolved.
var ErrUnresolvedReferences = errors.New("unresolved references inside targets")

// UnmatchedTargetsError lists every target specifier that matched no
// declaration, in the order they were given.
type UnmatchedTargetsError struct {
	Targets []string
}

func (e *UnmatchedTargetsError) Error() string {
	return unmatchedPrefix + strings.Join(e.Targets, ", ")
}

// ResolutionFailure is a reference the resolver could not bind.
type ResolutionFailure struct {
	Unit   string
	Line   int
	Column int
	Expr   string
	Err    error
}

func (f ResolutionFailure) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %v", f.Unit, f.Line, f.Column, f.Expr, f.Err)
}

func newFailure(unit *javaast.Unit, n javaast.Node, err error) ResolutionFailure {
	line, col := unit.Position(n.Origin().Span.Start)

	expr := ""

	var resErr *resolve.ResolutionError
	if errors.As(err, &resErr) {
		expr = resErr.Ref
	}

	if expr == "" && !n.Origin().Synthesized {
		expr = unit.Text(n.Origin().Span)
	}

	return ResolutionFailure{Unit: unit.Path, Line: line, Column: col, Expr: expr, Err: err}
}

// CollectResult is the outcome of locating targets and collecting the
// members they reference.
type CollectResult struct {
	// Root holds the signatures of the located targets.
	Root *SignatureSet
	// Used holds the signatures referenced from inside a target.
	Used *SignatureSet
	// Unmatched lists the specifiers that matched nothing, verbatim.
	Unmatched []string
	Failures  []ResolutionFailure
}

// Collector locates target declarations and collects what they reference.
// A Collector holds no state between calls to Collect.
type Collector struct {
	resolver resolve.Resolver
	targets  []string
	logger   *slog.Logger
}

// NewCollector creates a collector for the given target specifiers.
func NewCollector(resolver resolve.Resolver, targets []string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{resolver: resolver, targets: targets, logger: logger}
}

// NormalizeSpecifier removes all whitespace from a target specifier.
func NormalizeSpecifier(spec string) string {
	return strings.Join(strings.Fields(spec), "")
}

// Collect visits units in order. When some specifiers match nothing the
// result is still returned together with an *UnmatchedTargetsError.
func (c *Collector) Collect(ctx context.Context, units []*javaast.Unit) (*CollectResult, error) {
	wanted := make(map[string][]int, len(c.targets))
	for i, spec := range c.targets {
		key := NormalizeSpecifier(spec)
		wanted[key] = append(wanted[key], i)
	}

	state := &collection{
		ctx:      ctx,
		resolver: c.resolver,
		logger:   c.logger,
		wanted:   wanted,
		found:    make([]bool, len(c.targets)),
		result:   &CollectResult{Root: NewSignatureSet(), Used: NewSignatureSet()},
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v := &collectVisitor{collection: state, unit: unit}
		javaast.Walk(v, unit)

		if v.err != nil {
			return nil, fmt.Errorf("collect %s: %w", unit.Path, v.err)
		}

		if v.tracker.Depth() != 0 {
			return nil, fmt.Errorf("collect %s: %w", unit.Path, qualname.ErrUnbalanced)
		}
	}

	result := state.result

	for i, spec := range c.targets {
		if !state.found[i] {
			result.Unmatched = append(result.Unmatched, spec)
		}
	}

	if len(result.Unmatched) > 0 {
		return result, &UnmatchedTargetsError{Targets: result.Unmatched}
	}

	return result, nil
}

// collection is the state shared by the visitors of one Collect call.
type collection struct {
	ctx      context.Context //nolint:containedctx // scoped to a single Collect call.
	resolver resolve.Resolver
	logger   *slog.Logger
	wanted   map[string][]int
	found    []bool
	result   *CollectResult
}

type collectVisitor struct {
	*collection

	unit    *javaast.Unit
	tracker qualname.Tracker
	inside  bool
	saved   []bool
	err     error
}

func (v *collectVisitor) Enter(n javaast.Node) bool {
	if v.err != nil {
		return false
	}

	switch node := n.(type) {
	case *javaast.TypeDecl:
		v.err = v.enterType(node)

		return v.err == nil
	case *javaast.MethodDecl:
		v.enterCallable(node, node.Name, node.Params)
	case *javaast.ConstructorDecl:
		v.enterCallable(node, node.Name, node.Params)
	case *javaast.CallExpr:
		if v.inside {
			sig, err := v.resolver.Call(node)
			v.use(node, sig, err)
		}
	case *javaast.NewExpr:
		if v.inside {
			sig, err := v.resolver.New(node)
			v.use(node, sig, err)
		}
	case *javaast.CtorCallExpr:
		if v.inside {
			sig, err := v.resolver.ConstructorCall(node)
			v.use(node, sig, err)
		}
	case *javaast.NameExpr:
		if v.inside && !isCaseLabel(node) {
			sig, err := v.resolver.Field(node)
			v.use(node, sig, err)
		}
	case *javaast.FieldAccessExpr:
		if v.inside {
			sig, err := v.resolver.Field(node)
			v.use(node, sig, err)
		}
	}

	return true
}

func (v *collectVisitor) Exit(n javaast.Node) {
	switch n.(type) {
	case *javaast.TypeDecl:
		if err := v.tracker.Exit(); err != nil && v.err == nil {
			v.err = err
		}
	case *javaast.MethodDecl, *javaast.ConstructorDecl:
		v.inside = v.saved[len(v.saved)-1]
		v.saved = v.saved[:len(v.saved)-1]
	}
}

func (v *collectVisitor) enterType(decl *javaast.TypeDecl) error {
	switch {
	case v.tracker.Depth() == 0:
		return v.tracker.EnterTopLevel(v.unit.PackageName(), decl.Name)
	case decl.Kind == javaast.KindAnonymous:
		return v.tracker.EnterAnonymous()
	default:
		return v.tracker.EnterNested(decl.Name)
	}
}

func (v *collectVisitor) enterCallable(decl javaast.Decl, name string, params []*javaast.Var) {
	v.saved = append(v.saved, v.inside)

	indexes, ok := v.wanted[declSpecifier(v.tracker.Current(), name, params)]
	if !ok {
		return
	}

	for _, i := range indexes {
		v.found[i] = true
	}

	sig, err := v.resolver.Declaration(decl)
	if err != nil {
		v.fail(decl, err)
	} else {
		v.result.Root.Add(sig)
	}

	v.inside = true
}

// declSpecifier renders a declaration the way target specifiers name it.
func declSpecifier(owner, name string, params []*javaast.Var) string {
	texts := make([]string, len(params))
	for i, p := range params {
		texts[i] = NormalizeSpecifier(p.SpecifierText())
	}

	return owner + "#" + name + "(" + strings.Join(texts, ",") + ")"
}

func (v *collectVisitor) use(n javaast.Node, sig resolve.Signature, err error) {
	switch {
	case err == nil:
		v.result.Used.Add(sig)
	case resolve.IsFailure(err):
		v.fail(n, err)
	default:
		v.logger.DebugContext(v.ctx, "reference not retained", "unit", v.unit.Path, "reason", err)
	}
}

func (v *collectVisitor) fail(n javaast.Node, err error) {
	f := newFailure(v.unit, n, err)
	v.result.Failures = append(v.result.Failures, f)

	v.logger.WarnContext(v.ctx, "unresolved reference",
		"unit", f.Unit, "line", f.Line, "column", f.Column, "expr", f.Expr, "error", err)
}

// isCaseLabel reports whether a name is an enum constant in a switch
// label, where it is written unqualified and is not a field reference.
func isCaseLabel(n *javaast.NameExpr) bool {
	label, ok := n.Parent().(*javaast.OtherExpr)

	return ok && label.Kind == "switch_label"
}
