package resolve

import (
	"strings"

	"github.com/kelloggm/specimin/pkg/javaast"
)

// callable is a method or constructor candidate. decl is nil for an
// implicit record canonical constructor.
type callable struct {
	decl   javaast.Decl
	owner  *TypeInfo
	name   string
	params []*javaast.Var
	types  []jtype
}

func (c callable) variadic() bool {
	return len(c.params) > 0 && c.params[len(c.params)-1].Varargs
}

func (c callable) signature() Signature {
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = paramText(c.types[i], p)
	}

	return Signature(c.owner.Name + "#" + c.name + "(" + strings.Join(parts, ",") + ")")
}

func paramText(t jtype, v *javaast.Var) string {
	if v.Varargs {
		return t.elem().erasure(v.Type.Elem()) + "..."
	}

	return t.erasure(v.Type)
}

func (x *Index) resolveParams(info *TypeInfo) {
	resolve := func(params []*javaast.Var) {
		for _, v := range params {
			if _, done := info.paramTypes[v]; !done {
				info.paramTypes[v] = x.resolveTypeRef(v.Type, v).value()
			}
		}
	}

	for _, m := range info.methods {
		resolve(m.Params)
	}

	for _, c := range info.ctors {
		resolve(c.Params)
	}

	resolve(info.Decl.RecordComponents)
}

func (x *Index) cachedParam(v *javaast.Var) (jtype, bool) {
	var owner javaast.Node

	switch parent := v.Parent().(type) {
	case *javaast.MethodDecl, *javaast.ConstructorDecl:
		owner = parent.Parent()
	case *javaast.TypeDecl:
		owner = parent
	default:
		return unknownType, false
	}

	decl, ok := owner.(*javaast.TypeDecl)
	if !ok {
		return unknownType, false
	}

	info, ok := x.byDecl[decl]
	if !ok {
		return unknownType, false
	}

	t, ok := info.paramTypes[v]

	return t, ok
}

func (x *Index) newCallable(owner *TypeInfo, decl javaast.Decl, name string, params []*javaast.Var) callable {
	types := make([]jtype, len(params))
	for i, p := range params {
		t, ok := owner.paramTypes[p]
		if !ok {
			t = x.resolveTypeRef(p.Type, p).value()
		}

		types[i] = t
	}

	return callable{decl: decl, owner: owner, name: name, params: params, types: types}
}

func (x *Index) methodCallable(owner *TypeInfo, m *javaast.MethodDecl) callable {
	return x.newCallable(owner, m, m.Name, m.Params)
}

func (x *Index) ctorCallable(owner *TypeInfo, c *javaast.ConstructorDecl) callable {
	return x.newCallable(owner, c, owner.Decl.Name, c.Params)
}

// methodCandidates collects the methods named name visible on info. An
// override hides the declaration it overrides, so each erased signature
// maps to its most derived declaration.
func (x *Index) methodCandidates(info *TypeInfo, name string) ([]callable, bool) {
	types, opaque := x.hierarchy(info)
	seen := make(map[string]bool)

	var out []callable

	for _, t := range types {
		for _, m := range t.methods {
			if m.Name != name {
				continue
			}

			c := x.methodCallable(t, m)

			key := string(c.signature())
			key = key[strings.IndexByte(key, '#'):]

			if seen[key] {
				continue
			}

			seen[key] = true
			out = append(out, c)
		}
	}

	return out, opaque
}

type phase int

const (
	phaseStrict phase = iota
	phaseLoose
	phaseVarargs
)

// choose selects the candidate for a call site the way Java does:
// arity first, then applicability by subtyping, by boxing, and by
// variable arity, then the most specific of the applicable ones.
func (x *Index) choose(cands []callable, args []javaast.Expr, at javaast.Node) (callable, error) {
	byArity := withArity(cands, len(args))

	switch len(byArity) {
	case 0:
		return callable{}, failure(ErrUnresolved, at, "no candidate accepts %d arguments", len(args))
	case 1:
		return byArity[0], nil
	}

	argTypes := make([]jtype, len(args))
	for i, arg := range args {
		argTypes[i], _ = x.typeOf(arg)
	}

	for p := phaseStrict; p <= phaseVarargs; p++ {
		var applicable []callable

		for _, c := range byArity {
			if x.applicable(c, argTypes, p) {
				applicable = append(applicable, c)
			}
		}

		if len(applicable) > 0 {
			return x.mostSpecific(applicable, len(args), p, at)
		}
	}

	return callable{}, failure(ErrUnresolved, at, "no applicable overload among %d candidates", len(byArity))
}

func withArity(cands []callable, n int) []callable {
	var out []callable

	for _, c := range cands {
		if len(c.params) == n || (c.variadic() && n >= len(c.params)-1) {
			out = append(out, c)
		}
	}

	return out
}

func (x *Index) applicable(c callable, args []jtype, p phase) bool {
	if p == phaseVarargs {
		if !c.variadic() || len(args) < len(c.params)-1 {
			return false
		}
	} else if len(args) != len(c.params) {
		return false
	}

	for i, arg := range args {
		if !x.assignable(arg, paramAt(c, i, p), p != phaseStrict) {
			return false
		}
	}

	return true
}

func paramAt(c callable, i int, p phase) jtype {
	last := len(c.params) - 1
	if p == phaseVarargs && c.variadic() && i >= last {
		return c.types[last].elem()
	}

	return c.types[i]
}

func (x *Index) mostSpecific(cands []callable, arity int, p phase, at javaast.Node) (callable, error) {
	if len(cands) == 1 {
		return cands[0], nil
	}

	var best []callable

	for i, c := range cands {
		maximal := true

		for j, other := range cands {
			if i != j && !x.moreSpecific(c, other, arity, p) {
				maximal = false

				break
			}
		}

		if maximal {
			best = append(best, c)
		}
	}

	if len(best) == 1 {
		return best[0], nil
	}

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = string(c.signature())
	}

	return callable{}, failure(ErrAmbiguous, at, "candidates %s", strings.Join(names, ", "))
}

func (x *Index) moreSpecific(c, other callable, arity int, p phase) bool {
	n := arity
	if p != phaseVarargs {
		n = len(c.params)
	}

	for i := range n {
		if !x.assignable(paramAt(c, i, p), paramAt(other, i, p), false) {
			return false
		}
	}

	return true
}

// assignable reports whether a value of type arg can be passed for a
// parameter of type param. Unknown types are assumed to fit.
//
//nolint:gocyclo,cyclop // mirrors the conversion rules case by case.
func (x *Index) assignable(arg, param jtype, boxing bool) bool {
	switch {
	case !arg.known() || !param.known():
		return true
	case param.kind == kindTypeVar:
		if param.dims == 0 {
			return arg.isReference() || (boxing && arg.isPrimitive())
		}

		return arg.dims > param.dims || (arg.dims == param.dims && arg.kind != kindPrimitive)
	case arg.kind == kindFunctional:
		return param.kind == kindRef && param.dims == 0 && !isBoxOrString(param.name)
	case arg.kind == kindNull:
		return param.isReference()
	case arg.kind == kindTypeVar:
		return param.isReference()
	}

	switch {
	case arg.isPrimitive() && param.isPrimitive():
		return widens(arg.name, param.name)
	case arg.isPrimitive():
		if !boxing || param.dims > 0 {
			return false
		}

		return x.isSubtype(external(boxes[arg.name]), param)
	case param.isPrimitive():
		if !boxing || arg.dims > 0 {
			return false
		}

		prim, ok := unbox(arg.name)

		return ok && widens(prim, param.name)
	}

	if param.dims == 0 && param.name == objectName {
		return true
	}

	if arg.dims != param.dims {
		return arg.dims > param.dims && param.name == objectName
	}

	if arg.kind == kindPrimitive || param.kind == kindPrimitive {
		return arg.kind == param.kind && arg.name == param.name
	}

	return x.isSubtype(arg, param)
}

func isBoxOrString(name string) bool {
	if name == "java.lang.String" {
		return true
	}

	_, ok := unbox(name)

	return ok
}

// isSubtype compares reference types by name. A hierarchy that leaves the
// indexed sources is assumed compatible with any other outside type.
func (x *Index) isSubtype(sub, super jtype) bool {
	if sub.name == super.name || super.name == objectName {
		return true
	}

	if sub.info == nil {
		if closure, ok := jdkSupertypes[sub.name]; ok {
			return contains(closure, super.name)
		}

		return super.info == nil
	}

	seen := map[*TypeInfo]bool{}
	queue := []*TypeInfo{sub.info}
	lenient := false

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if seen[t] {
			continue
		}

		seen[t] = true

		for _, s := range x.supertypes(t) {
			switch {
			case s.name == super.name:
				return true
			case s.info != nil:
				queue = append(queue, s.info)
			default:
				if closure, ok := jdkSupertypes[s.name]; ok {
					if contains(closure, super.name) {
						return true
					}

					continue
				}

				lenient = true
			}
		}
	}

	return lenient && super.info == nil
}
