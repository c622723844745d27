package resolve

import (
	"strings"
	"unicode"

	"github.com/kelloggm/specimin/pkg/javaast"
)

type accessKind int

const (
	accLocal accessKind = iota
	accField
	accConstant
	accType
	accPackage
	accLength
)

// access is what a simple name or field access denotes.
type access struct {
	kind  accessKind
	v     *javaast.Var
	owner *TypeInfo
	typ   jtype
}

// isQualifier reports whether e is the qualifier of a field access,
// method call, or method reference.
func isQualifier(e javaast.Expr) bool {
	switch parent := e.Parent().(type) {
	case *javaast.FieldAccessExpr:
		return parent.Target == e
	case *javaast.CallExpr:
		return parent.Target == e
	case *javaast.MethodRefExpr:
		return parent.Target == e
	}

	return false
}

func (x *Index) classifyName(e *javaast.NameExpr) (access, error) {
	b := x.lookupVariable(e.Name, e)

	switch b.kind {
	case bindLocal:
		return access{kind: accLocal, v: b.v}, nil
	case bindField:
		return access{kind: accField, v: b.v, owner: b.owner}, nil
	case bindConstant:
		return access{kind: accConstant, owner: b.owner, typ: declared(b.owner)}, nil
	case bindNone:
	}

	if t := x.lookupSimpleType(e.Name, e); t.known() {
		t.static = true

		return access{kind: accType, typ: t}, nil
	}

	qualifier := isQualifier(e)
	if qualifier && x.packagePrefix(e.Name) {
		return access{kind: accPackage, typ: jtype{kind: kindPackage, name: e.Name}}, nil
	}

	if b.opaque {
		return access{}, failure(ErrExternal, e, "may be inherited from a type outside the sources")
	}

	if qualifier {
		return access{kind: accPackage, typ: jtype{kind: kindPackage, name: e.Name}}, nil
	}

	return access{}, failure(ErrUnresolved, e, "cannot find symbol %s", e.Name)
}

var packageRoots = map[string]bool{
	"java": true, "javax": true, "jdk": true, "sun": true,
	"com": true, "org": true, "net": true, "io": true,
}

// packagePrefix reports whether name is the first segment of an indexed
// package or of a common top-level package.
func (x *Index) packagePrefix(name string) bool {
	if packageRoots[name] {
		return true
	}

	for pkg := range x.packages {
		if pkg == name || strings.HasPrefix(pkg, name+".") {
			return true
		}
	}

	return false
}

func (x *Index) classifyFieldAccess(e *javaast.FieldAccessExpr) (access, error) {
	recv, err := x.fieldReceiver(e)
	if err != nil {
		return access{}, err
	}

	if recv.kind == kindPackage {
		qualified := recv.name + "." + e.Name
		if info, ok := x.byQualified[qualified]; ok {
			t := declared(info)
			t.static = true

			return access{kind: accType, typ: t}, nil
		}

		if !isQualifier(e) {
			return access{}, failure(ErrUnresolved, e, "cannot find symbol %s", recv.name)
		}

		if x.packages[qualified] || !startsUpper(e.Name) {
			return access{kind: accPackage, typ: jtype{kind: kindPackage, name: qualified}}, nil
		}

		t := external(qualified)
		t.static = true

		return access{kind: accType, typ: t}, nil
	}

	if recv.dims > 0 && e.Name == "length" {
		return access{kind: accLength, typ: intType}, nil
	}

	switch {
	case recv.info != nil:
	case recv.kind == kindRef:
		return access{}, failure(ErrExternal, e, "member of %s", recv.name)
	default:
		return access{}, failure(ErrUnresolved, e, "cannot determine the type of the qualifier")
	}

	b := x.findField(recv.info, e.Name)

	switch b.kind {
	case bindField:
		return access{kind: accField, v: b.v, owner: b.owner}, nil
	case bindConstant:
		return access{kind: accConstant, owner: b.owner, typ: declared(b.owner)}, nil
	case bindLocal, bindNone:
	}

	if nested, ok := x.memberType(recv.info, e.Name); ok {
		t := declared(nested)
		t.static = true

		return access{kind: accType, typ: t}, nil
	}

	if b.opaque {
		return access{}, failure(ErrExternal, e, "may be inherited from a type outside the sources")
	}

	return access{}, failure(ErrUnresolved, e, "no field %s in %s", e.Name, recv.info.Name)
}

func (x *Index) fieldReceiver(e *javaast.FieldAccessExpr) (jtype, error) {
	if e.Super {
		return x.superReceiver(e, e.Target)
	}

	return x.qualifierType(e.Target)
}

// qualifierType types the left side of a dot, which may also name a
// type or a package.
func (x *Index) qualifierType(e javaast.Expr) (jtype, error) {
	var (
		acc access
		err error
	)

	switch q := e.(type) {
	case *javaast.NameExpr:
		acc, err = x.classifyName(q)
	case *javaast.FieldAccessExpr:
		acc, err = x.classifyFieldAccess(q)
	default:
		return x.typeOf(e)
	}

	if err != nil {
		return unknownType, err
	}

	return x.accessType(acc)
}

// superReceiver returns the superclass of the enclosing type, or of the
// type named by qualifier in Outer.super.m() and Iface.super.m().
func (x *Index) superReceiver(at javaast.Node, qualifier javaast.Expr) (jtype, error) {
	var info *TypeInfo

	if qualifier != nil {
		t, err := x.qualifierType(qualifier)
		if err != nil {
			return unknownType, err
		}

		if t.info == nil {
			return unknownType, failure(ErrExternal, at, "super of %s", t.name)
		}

		if isInterface(t) {
			return t.value(), nil
		}

		info = t.info
	} else {
		enclosing, ok := x.byDecl[javaast.EnclosingType(at)]
		if !ok {
			return unknownType, failure(ErrUnresolved, at, "no enclosing type")
		}

		info = enclosing
	}

	return x.superclass(info), nil
}

func (x *Index) accessType(acc access) (jtype, error) {
	switch acc.kind {
	case accLocal, accField:
		return x.varType(acc.v)
	case accConstant:
		return acc.typ.value(), nil
	case accType, accPackage, accLength:
	}

	return acc.typ, nil
}

func (x *Index) varType(v *javaast.Var) (jtype, error) {
	switch {
	case v.Type.IsZero():
		return unknownType, failure(ErrUnresolved, v, "type of %s is inferred", v.Name)
	case v.Type.IsVar():
		return x.inferVar(v)
	}

	if t, ok := x.cachedParam(v); ok {
		return t, nil
	}

	t := x.resolveTypeRef(v.Type, v)
	if !t.known() {
		return unknownType, failure(ErrUnresolved, v, "cannot find type %s", v.Type.Name)
	}

	return t.value(), nil
}

func (x *Index) inferVar(v *javaast.Var) (jtype, error) {
	if v.Init != nil {
		return x.typeOf(v.Init)
	}

	if loop, ok := v.Parent().(*javaast.CompoundStmt); ok && loop.Kind == "enhanced_for_statement" && len(loop.Exprs) > 0 {
		iterable, err := x.typeOf(loop.Exprs[0])
		if err != nil {
			return unknownType, err
		}

		if iterable.dims > 0 {
			return iterable.elem(), nil
		}
	}

	return unknownType, failure(ErrUnresolved, v, "cannot infer the type of %s", v.Name)
}

// typeOf computes the static type of an expression. Unknown results
// without an error mean the index can tell nothing but nothing is wrong,
// as with generic return types.
//
//nolint:gocyclo,cyclop,funlen // one case per expression form.
func (x *Index) typeOf(e javaast.Expr) (jtype, error) {
	switch expr := e.(type) {
	case *javaast.LiteralExpr:
		return literalType(expr.Kind), nil
	case *javaast.NameExpr:
		acc, err := x.classifyName(expr)
		if err != nil {
			return unknownType, err
		}

		return x.accessType(acc)
	case *javaast.FieldAccessExpr:
		acc, err := x.classifyFieldAccess(expr)
		if err != nil {
			return unknownType, err
		}

		return x.accessType(acc)
	case *javaast.ThisExpr:
		return x.thisType(expr)
	case *javaast.CallExpr:
		target, err := x.resolveCall(expr)
		if err != nil {
			return unknownType, err
		}

		return x.resultType(target), nil
	case *javaast.NewExpr:
		if expr.Body != nil {
			if info, ok := x.byDecl[expr.Body]; ok {
				return declared(info), nil
			}
		}

		t, err := x.createdType(expr)
		if err != nil {
			return unknownType, err
		}

		return t.value(), nil
	case *javaast.CastExpr:
		return x.resolveTypeRef(expr.Type, expr).value(), nil
	case *javaast.ParenExpr:
		return x.typeOf(expr.X)
	case *javaast.BinaryExpr:
		return x.binaryType(expr), nil
	case *javaast.UnaryExpr:
		if expr.Op == "!" {
			return booleanType, nil
		}

		operand, err := x.typeOf(expr.X)
		if err != nil || expr.Op == "++" || expr.Op == "--" {
			return operand, err
		}

		return promote(operand, operand), nil
	case *javaast.ConditionalExpr:
		then, _ := x.typeOf(expr.Then)
		other, _ := x.typeOf(expr.Else)

		switch {
		case then.isPrimitive() && other.isPrimitive():
			if then.name == other.name {
				return then, nil
			}

			return promote(then, other), nil
		case then.known() && then.kind != kindNull:
			return then, nil
		}

		return other, nil
	case *javaast.AssignExpr:
		return x.typeOf(expr.Left)
	case *javaast.InstanceOfExpr:
		return booleanType, nil
	case *javaast.ArrayAccessExpr:
		arr, err := x.typeOf(expr.X)
		if err != nil {
			return unknownType, err
		}

		return arr.elem(), nil
	case *javaast.ArrayCreationExpr:
		return x.resolveTypeRef(expr.Type, expr).value(), nil
	case *javaast.LambdaExpr, *javaast.MethodRefExpr:
		return functionalType, nil
	case *javaast.ClassLitExpr:
		return external("java.lang.Class"), nil
	case *javaast.ArrayInitExpr, *javaast.CtorCallExpr, *javaast.OtherExpr:
	}

	return unknownType, nil
}

func (x *Index) thisType(e *javaast.ThisExpr) (jtype, error) {
	want := lastSegment(e.Qualifier)

	for n := e.Parent(); n != nil; n = n.Parent() {
		decl, ok := n.(*javaast.TypeDecl)
		if !ok || (want != "" && decl.Name != want) {
			continue
		}

		if info, found := x.byDecl[decl]; found {
			return declared(info), nil
		}
	}

	return unknownType, failure(ErrUnresolved, e, "no enclosing type")
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true, "&&": true, "||": true,
}

func (x *Index) binaryType(e *javaast.BinaryExpr) jtype {
	if comparisonOps[e.Op] {
		return booleanType
	}

	left, _ := x.typeOf(e.X)
	right, _ := x.typeOf(e.Y)

	switch e.Op {
	case "+":
		if left.isString() || right.isString() {
			return stringType
		}
	case "&", "|", "^":
		if left.name == "boolean" && right.name == "boolean" {
			return booleanType
		}
	case "<<", ">>", ">>>":
		return promote(left, left)
	}

	return promote(left, right)
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}

	return false
}
