// Package resolve binds Java references to canonical member signatures.
//
// A Signature has the form QualifiedTypeName#name(P1,P2,...) for methods
// and constructors, QualifiedTypeName#name for fields, and
// QualifiedTypeName#<clinit> or #<init> for initializer blocks. Parameter
// types are qualified where the index can tell, type arguments are erased
// and a trailing varargs parameter is written T....
package resolve

import (
	"errors"
	"fmt"

	"github.com/kelloggm/specimin/pkg/javaast"
)

// Signature is a canonical member identity.
type Signature string

func (s Signature) String() string { return string(s) }

// Sentinel errors. Every resolution failure wraps exactly one of these.
var (
	// ErrUnresolved means no declaration could be found.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrAmbiguous means several declarations fit equally well.
	ErrAmbiguous = errors.New("ambiguous reference")
	// ErrExternal means the reference binds outside the indexed sources.
	ErrExternal = errors.New("external reference")
	// ErrImplicit means the reference binds to a member the language
	// provides without a declaration, such as a record accessor.
	ErrImplicit = errors.New("implicit member")
	// ErrNotField is returned by Field for names that denote locals,
	// parameters, types, or packages.
	ErrNotField = errors.New("not a field reference")
)

// Resolver answers what declaration a reference binds to.
type Resolver interface {
	// Declaration returns the signature of a declaration. Field
	// signatures are per declarator, so pass the *javaast.Var.
	Declaration(d javaast.Decl) (Signature, error)
	Call(c *javaast.CallExpr) (Signature, error)
	New(n *javaast.NewExpr) (Signature, error)
	ConstructorCall(c *javaast.CtorCallExpr) (Signature, error)
	// Field resolves a simple name or field access that reads or writes
	// a field.
	Field(e javaast.Expr) (Signature, error)
}

// ResolutionError describes a failed lookup.
type ResolutionError struct {
	// Kind is one of the package sentinels.
	Kind error
	// Ref is the source text of the reference.
	Ref string
	// Reason is a short human explanation.
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Ref, e.Kind)
	}

	return fmt.Sprintf("%s: %v: %s", e.Ref, e.Kind, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Kind }

// IsFailure reports whether err is a genuine resolution failure, as
// opposed to a reference that binds outside the sources or to an
// implicit member.
func IsFailure(err error) bool {
	if err == nil {
		return false
	}

	return !errors.Is(err, ErrExternal) && !errors.Is(err, ErrImplicit) && !errors.Is(err, ErrNotField)
}

func refText(n javaast.Node) string {
	unit := javaast.EnclosingUnit(n)
	if unit == nil || n.Origin().Synthesized {
		return fmt.Sprintf("%T", n)
	}

	span := n.Origin().Span
	if span.End > len(unit.Source) {
		return fmt.Sprintf("%T", n)
	}

	text := unit.Text(span)

	const maxRef = 80
	if len(text) > maxRef {
		text = text[:maxRef] + "..."
	}

	return text
}

func failure(kind error, n javaast.Node, format string, args ...any) error {
	return &ResolutionError{Kind: kind, Ref: refText(n), Reason: fmt.Sprintf(format, args...)}
}
