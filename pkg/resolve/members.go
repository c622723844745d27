package resolve

import (
	"github.com/kelloggm/specimin/pkg/javaast"
)

func (x *Index) owner(n javaast.Node) (*TypeInfo, error) {
	decl := javaast.EnclosingType(n)
	if decl == nil {
		return nil, failure(ErrUnresolved, n, "declaration outside any type")
	}

	info, ok := x.byDecl[decl]
	if !ok {
		return nil, failure(ErrUnresolved, n, "declaration is not indexed")
	}

	return info, nil
}

// Declaration returns the signature of a member or type declaration.
func (x *Index) Declaration(d javaast.Decl) (Signature, error) {
	switch decl := d.(type) {
	case *javaast.TypeDecl:
		info, ok := x.byDecl[decl]
		if !ok {
			return "", failure(ErrUnresolved, decl, "type is not indexed")
		}

		return Signature(info.Name), nil
	case *javaast.MethodDecl:
		owner, err := x.owner(decl)
		if err != nil {
			return "", err
		}

		return x.methodCallable(owner, decl).signature(), nil
	case *javaast.ConstructorDecl:
		owner, err := x.owner(decl)
		if err != nil {
			return "", err
		}

		return x.ctorCallable(owner, decl).signature(), nil
	case *javaast.InitializerDecl:
		owner, err := x.owner(decl)
		if err != nil {
			return "", err
		}

		if decl.Static {
			return Signature(owner.Name + "#<clinit>"), nil
		}

		return Signature(owner.Name + "#<init>"), nil
	case *javaast.FieldDecl:
		if len(decl.Vars) != 1 {
			return "", failure(ErrAmbiguous, decl, "declares %d fields", len(decl.Vars))
		}

		return x.Declaration(decl.Vars[0])
	case *javaast.Var:
		return x.fieldSignature(decl)
	}

	return "", failure(ErrUnresolved, d, "unsupported declaration %T", d)
}

func (x *Index) fieldSignature(v *javaast.Var) (Signature, error) {
	if _, ok := v.Parent().(*javaast.FieldDecl); !ok {
		if _, component := v.Parent().(*javaast.TypeDecl); component {
			return "", failure(ErrImplicit, v, "record component %s", v.Name)
		}

		if ctor, isCtor := v.Parent().(*javaast.ConstructorDecl); isCtor && ctor.Compact {
			return "", failure(ErrImplicit, v, "record component %s", v.Name)
		}

		return "", failure(ErrUnresolved, v, "%s is not a field", v.Name)
	}

	owner, err := x.owner(v)
	if err != nil {
		return "", err
	}

	return Signature(owner.Name + "#" + v.Name), nil
}

// Call resolves a method invocation to the declaration it binds to.
func (x *Index) Call(c *javaast.CallExpr) (Signature, error) {
	target, err := x.resolveCall(c)
	if err != nil {
		return "", err
	}

	return target.signature(), nil
}

func (x *Index) resolveCall(c *javaast.CallExpr) (callable, error) {
	if c.Super {
		recv, err := x.superReceiver(c, c.Target)
		if err != nil {
			return callable{}, err
		}

		if recv.info == nil {
			return callable{}, failure(ErrExternal, c, "super method of %s", recv.name)
		}

		return x.callOn(recv.info, c)
	}

	if c.Target == nil {
		return x.unqualifiedCall(c)
	}

	recv, err := x.qualifierType(c.Target)
	if err != nil {
		return callable{}, err
	}

	switch {
	case recv.kind == kindPackage:
		return callable{}, failure(ErrUnresolved, c, "cannot find symbol %s", recv.name)
	case recv.dims > 0:
		return callable{}, failure(ErrImplicit, c, "array member %s", c.Name)
	case recv.kind == kindTypeVar:
		return callable{}, failure(ErrUnresolved, c, "receiver has type variable type %s", recv.name)
	case recv.kind == kindRef && recv.info == nil:
		return callable{}, failure(ErrExternal, c, "method of %s", recv.name)
	case recv.info == nil:
		return callable{}, failure(ErrUnresolved, c, "cannot determine the receiver type")
	}

	return x.callOn(recv.info, c)
}

func (x *Index) callOn(info *TypeInfo, c *javaast.CallExpr) (callable, error) {
	cands, opaque := x.methodCandidates(info, c.Name)
	if len(withArity(cands, len(c.Args))) == 0 {
		return callable{}, x.missingMethod(info, c, opaque)
	}

	return x.choose(cands, c.Args, c)
}

// missingMethod explains why info has no declaration for a call.
func (x *Index) missingMethod(info *TypeInfo, c *javaast.CallExpr, opaque bool) error {
	if reason, ok := x.implicitMethod(info, c); ok {
		return failure(ErrImplicit, c, "%s", reason)
	}

	if objectMethods[c.Name] {
		return failure(ErrExternal, c, "inherited from java.lang.Object")
	}

	if opaque {
		return failure(ErrExternal, c, "may be inherited from a type outside the sources")
	}

	return failure(ErrUnresolved, c, "no method %s with %d arguments in %s", c.Name, len(c.Args), info.Name)
}

func (x *Index) implicitMethod(info *TypeInfo, c *javaast.CallExpr) (string, bool) {
	types, _ := x.hierarchy(info)

	for _, t := range types {
		switch t.Decl.Kind {
		case javaast.KindEnum:
			if enumMethods[c.Name] {
				return "enum method " + c.Name, true
			}
		case javaast.KindRecord:
			if len(c.Args) == 0 && findVar(t.Decl.RecordComponents, c.Name) != nil {
				return "record accessor " + c.Name, true
			}
		case javaast.KindClass, javaast.KindInterface, javaast.KindAnnotation, javaast.KindAnonymous:
		}
	}

	return "", false
}

// unqualifiedCall searches enclosing types from the innermost outward;
// the first type with a method of that name is the one searched.
func (x *Index) unqualifiedCall(c *javaast.CallExpr) (callable, error) {
	opaque := false

	var implicit string

	for n := c.Parent(); n != nil; n = n.Parent() {
		decl, ok := n.(*javaast.TypeDecl)
		if !ok {
			continue
		}

		info, found := x.byDecl[decl]
		if !found {
			continue
		}

		cands, hidden := x.methodCandidates(info, c.Name)
		if len(cands) > 0 {
			if len(withArity(cands, len(c.Args))) == 0 && hidden {
				return callable{}, failure(ErrExternal, c, "may be inherited from a type outside the sources")
			}

			return x.choose(cands, c.Args, c)
		}

		opaque = opaque || hidden

		if reason, isImplicit := x.implicitMethod(info, c); isImplicit && implicit == "" {
			implicit = reason
		}
	}

	if unit := javaast.EnclosingUnit(c); unit != nil {
		target, found, err := x.staticImportCall(unit, c)
		if found || err != nil {
			return target, err
		}
	}

	switch {
	case implicit != "":
		return callable{}, failure(ErrImplicit, c, "%s", implicit)
	case objectMethods[c.Name]:
		return callable{}, failure(ErrExternal, c, "inherited from java.lang.Object")
	case opaque:
		return callable{}, failure(ErrExternal, c, "may be inherited from a type outside the sources")
	}

	return callable{}, failure(ErrUnresolved, c, "cannot find method %s", c.Name)
}

func (x *Index) staticImportCall(unit *javaast.Unit, c *javaast.CallExpr) (callable, bool, error) {
	for _, imp := range unit.Imports {
		if !imp.Static {
			continue
		}

		owner := imp.Name
		if !imp.OnDemand {
			if lastSegment(imp.Name) != c.Name {
				continue
			}

			owner = imp.Name[:max(0, len(imp.Name)-len(c.Name)-1)]
		}

		t := x.resolveQualified(owner)
		if t.info == nil {
			if !imp.OnDemand {
				return callable{}, true, failure(ErrExternal, c, "statically imported from %s", owner)
			}

			continue
		}

		cands, _ := x.methodCandidates(t.info, c.Name)
		if len(cands) == 0 {
			continue
		}

		target, err := x.choose(cands, c.Args, c)

		return target, true, err
	}

	for _, imp := range unit.Imports {
		if imp.Static && imp.OnDemand && x.resolveQualified(imp.Name).info == nil {
			return callable{}, true, failure(ErrExternal, c, "may be statically imported from %s", imp.Name)
		}
	}

	return callable{}, false, nil
}

func (x *Index) resultType(target callable) jtype {
	m, ok := target.decl.(*javaast.MethodDecl)
	if !ok {
		return unknownType
	}

	t := x.resolveTypeRef(m.Result, m)
	if t.kind == kindTypeVar {
		return unknownType
	}

	return t.value()
}

// New resolves an instance creation to the constructor it invokes.
// Anonymous classes created from an interface bind to the interface's
// implicit no-argument constructor.
func (x *Index) New(n *javaast.NewExpr) (Signature, error) {
	t, err := x.createdType(n)
	if err != nil {
		return "", err
	}

	if t.info == nil {
		return "", failure(ErrExternal, n, "constructor of %s", t.name)
	}

	if isInterface(t) {
		return implicitCtor(t.info), nil
	}

	target, err := x.construct(t.info, n.Args, n)
	if err != nil {
		return "", err
	}

	return target, nil
}

func implicitCtor(info *TypeInfo) Signature {
	return Signature(info.Name + "#" + info.Decl.Name + "()")
}

func (x *Index) createdType(n *javaast.NewExpr) (jtype, error) {
	var t jtype

	if n.Outer != nil {
		outer, err := x.typeOf(n.Outer)
		if err != nil {
			return unknownType, err
		}

		if outer.info == nil {
			return unknownType, failure(ErrExternal, n, "inner class of %s", outer.name)
		}

		t = x.memberTypePath(outer, []string{n.Type.Name})
	} else {
		t = x.resolveTypeRef(n.Type, n)
	}

	if !t.known() {
		return unknownType, failure(ErrUnresolved, n, "cannot find type %s", n.Type.Name)
	}

	return t, nil
}

func (x *Index) construct(info *TypeInfo, args []javaast.Expr, at javaast.Node) (Signature, error) {
	cands := make([]callable, 0, len(info.ctors)+1)
	canonical := false

	for _, c := range info.ctors {
		cands = append(cands, x.ctorCallable(info, c))
		canonical = canonical || len(c.Params) == len(info.Decl.RecordComponents)
	}

	if info.Decl.Kind == javaast.KindRecord && !canonical {
		cands = append(cands, x.newCallable(info, nil, info.Decl.Name, info.Decl.RecordComponents))
	}

	if len(cands) == 0 {
		if len(args) == 0 {
			return implicitCtor(info), nil
		}

		return "", failure(ErrUnresolved, at, "%s declares no constructors", info.Name)
	}

	target, err := x.choose(cands, args, at)
	if err != nil {
		return "", err
	}

	return target.signature(), nil
}

// ConstructorCall resolves this(...) and super(...) invocations.
func (x *Index) ConstructorCall(c *javaast.CtorCallExpr) (Signature, error) {
	info, err := x.owner(c)
	if err != nil {
		return "", err
	}

	if !c.Super {
		return x.construct(info, c.Args, c)
	}

	super := x.superclass(info)
	if super.info == nil {
		return "", failure(ErrExternal, c, "constructor of %s", super.name)
	}

	return x.construct(super.info, c.Args, c)
}

// Field resolves a simple name or field access that denotes a field. An
// enum constant binds like an implicit static field, Type#CONSTANT.
func (x *Index) Field(e javaast.Expr) (Signature, error) {
	var (
		acc  access
		name string
		err  error
	)

	switch expr := e.(type) {
	case *javaast.NameExpr:
		acc, err = x.classifyName(expr)
		name = expr.Name
	case *javaast.FieldAccessExpr:
		acc, err = x.classifyFieldAccess(expr)
		name = expr.Name
	default:
		return "", failure(ErrNotField, e, "not a name")
	}

	if err != nil {
		return "", err
	}

	switch acc.kind {
	case accField:
		return x.fieldSignature(acc.v)
	case accConstant:
		return Signature(acc.owner.Name + "#" + name), nil
	default:
		return "", failure(ErrNotField, e, "not a field")
	}
}
