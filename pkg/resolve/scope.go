package resolve

import (
	"strings"

	"github.com/kelloggm/specimin/pkg/javaast"
)

// supertypes returns the direct supertypes of info. A class's superclass,
// written or implicit, always comes first.
func (x *Index) supertypes(info *TypeInfo) []jtype {
	if info.superState != supersPending {
		return info.supers
	}

	info.superState = supersResolving
	decl := info.Decl
	scope := decl.Parent()

	var supers []jtype

	for _, ref := range decl.Extends {
		supers = append(supers, x.superRef(ref, scope))
	}

	switch decl.Kind {
	case javaast.KindClass:
		if len(decl.Extends) == 0 {
			supers = append(supers, external(objectName))
		}
	case javaast.KindEnum:
		supers = append(supers, external("java.lang.Enum"))
	case javaast.KindRecord:
		supers = append(supers, external("java.lang.Record"))
	case javaast.KindInterface:
	case javaast.KindAnnotation:
		supers = append(supers, external("java.lang.annotation.Annotation"))
	case javaast.KindAnonymous:
		if constant, ok := scope.(*javaast.EnumConstant); ok {
			if enum, found := x.byDecl[javaast.EnclosingType(constant)]; found {
				supers = append(supers, declared(enum))
			}
		}
	}

	for _, ref := range decl.Implements {
		supers = append(supers, x.superRef(ref, scope))
	}

	if len(supers) == 0 || isInterface(supers[0]) {
		supers = append(supers, external(objectName))
	}

	info.supers = supers
	info.superState = supersDone

	return supers
}

func (x *Index) superRef(ref javaast.TypeRef, scope javaast.Node) jtype {
	t := x.resolveTypeRef(ref, scope)
	if !t.known() {
		// Keep the written name so external hierarchies stay visible.
		return jtype{kind: kindUnknown, name: ref.Name}
	}

	return t.value()
}

func isInterface(t jtype) bool {
	return t.info != nil && (t.info.Decl.Kind == javaast.KindInterface || t.info.Decl.Kind == javaast.KindAnnotation)
}

// superclass returns the superclass of info, or Object.
func (x *Index) superclass(info *TypeInfo) jtype {
	supers := x.supertypes(info)
	if len(supers) == 0 || isInterface(supers[0]) {
		return external(objectName)
	}

	return supers[0]
}

// opaqueSuper reports whether t is a supertype whose members the index
// cannot see and which may declare anything.
func opaqueSuper(t jtype) bool {
	if t.info != nil {
		return false
	}

	switch t.name {
	case objectName, "java.lang.Enum", "java.lang.Record", "java.lang.annotation.Annotation":
		return false
	}

	return true
}

// hierarchy returns info and its indexed supertypes in breadth-first
// order, and whether any supertype is opaque.
func (x *Index) hierarchy(info *TypeInfo) ([]*TypeInfo, bool) {
	seen := map[*TypeInfo]bool{info: true}
	order := []*TypeInfo{info}
	opaque := false

	for i := 0; i < len(order); i++ {
		for _, s := range x.supertypes(order[i]) {
			if s.info == nil {
				opaque = opaque || opaqueSuper(s)

				continue
			}

			if !seen[s.info] {
				seen[s.info] = true
				order = append(order, s.info)
			}
		}
	}

	return order, opaque
}

// memberType finds a member type by simple name, including inherited ones.
func (x *Index) memberType(info *TypeInfo, name string) (*TypeInfo, bool) {
	types, _ := x.hierarchy(info)

	for _, t := range types {
		if nested, ok := t.nested[name]; ok {
			return nested, true
		}
	}

	return nil, false
}

func (x *Index) resolveTypeRef(ref javaast.TypeRef, from javaast.Node) jtype {
	switch {
	case ref.IsZero() || ref.IsVar():
		return unknownType
	case ref.Wildcard && ref.Name == "":
		return external(objectName)
	case ref.Primitive || javaast.IsPrimitiveName(ref.Name):
		return primitive(ref.Name).withDims(ref.Dims)
	}

	t := x.resolveTypeName(ref.Name, from)
	if !t.known() {
		return t
	}

	return t.withDims(ref.Dims)
}

// resolveTypeName resolves a simple or dotted type name as seen from a node.
func (x *Index) resolveTypeName(name string, from javaast.Node) jtype {
	parts := strings.Split(name, ".")

	if head := x.lookupSimpleType(parts[0], from); head.known() {
		return x.memberTypePath(head, parts[1:])
	}

	if len(parts) == 1 {
		return unknownType
	}

	return x.resolveQualified(name)
}

// resolveQualified resolves a fully qualified name, possibly naming a
// nested type of an indexed type.
func (x *Index) resolveQualified(name string) jtype {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 1; i-- {
		if info, ok := x.byQualified[strings.Join(parts[:i], ".")]; ok {
			return x.memberTypePath(declared(info), parts[i:])
		}
	}

	return external(name)
}

func (x *Index) memberTypePath(t jtype, rest []string) jtype {
	for _, seg := range rest {
		if t.info == nil {
			t = external(t.name + "." + seg)

			continue
		}

		nested, ok := x.memberType(t.info, seg)
		if !ok {
			if _, opaque := x.hierarchy(t.info); opaque {
				t = external(t.name + "." + seg)

				continue
			}

			return unknownType
		}

		t = declared(nested)
	}

	t.static = true

	return t
}

// lookupSimpleType walks outward from a node: type parameters, local
// classes, member types (inherited ones included), then the unit's
// imports, package, and java.lang.
func (x *Index) lookupSimpleType(name string, from javaast.Node) jtype {
	for n := from; n != nil; n = n.Parent() {
		switch scope := n.(type) {
		case *javaast.TypeDecl:
			if contains(scope.TypeParams, name) {
				return jtype{kind: kindTypeVar, name: name}
			}

			info, ok := x.byDecl[scope]
			if !ok {
				continue
			}

			if scope.Name == name && scope.Kind != javaast.KindAnonymous {
				return declared(info)
			}

			if nested, found := x.memberType(info, name); found {
				return declared(nested)
			}
		case *javaast.MethodDecl:
			if contains(scope.TypeParams, name) {
				return jtype{kind: kindTypeVar, name: name}
			}
		case *javaast.ConstructorDecl:
			if contains(scope.TypeParams, name) {
				return jtype{kind: kindTypeVar, name: name}
			}
		case *javaast.BlockStmt:
			for _, s := range scope.Stmts {
				if local, ok := s.(*javaast.LocalTypeStmt); ok && local.Decl.Name == name {
					if info, found := x.byDecl[local.Decl]; found {
						return declared(info)
					}
				}
			}
		case *javaast.Unit:
			return x.unitType(scope, name)
		}
	}

	return unknownType
}

func (x *Index) unitType(unit *javaast.Unit, name string) jtype {
	for _, decl := range unit.Types() {
		if decl.Name == name {
			if info, ok := x.byDecl[decl]; ok {
				return declared(info)
			}
		}
	}

	for _, imp := range unit.Imports {
		if imp.Static || imp.OnDemand || lastSegment(imp.Name) != name {
			continue
		}

		return x.resolveQualified(imp.Name)
	}

	if info, ok := x.byPackage[unit.PackageName()][name]; ok {
		return declared(info)
	}

	unknownPackage := false

	for _, imp := range unit.Imports {
		if imp.Static || !imp.OnDemand {
			continue
		}

		if info, ok := x.byQualified[imp.Name+"."+name]; ok {
			return declared(info)
		}

		if !x.packages[imp.Name] {
			if _, isType := x.byQualified[imp.Name]; !isType {
				unknownPackage = true
			}
		}
	}

	if javaLang[name] {
		return external("java.lang." + name)
	}

	if unknownPackage {
		// May come from a package outside the sources.
		return external(name)
	}

	return unknownType
}

type bindingKind int

const (
	bindNone bindingKind = iota
	bindLocal
	bindField
	bindConstant
)

type binding struct {
	kind  bindingKind
	v     *javaast.Var
	owner *TypeInfo
	// opaque is set when nothing was found but an opaque supertype or
	// static import in scope may declare the name.
	opaque bool
}

// lookupVariable finds the local, parameter, field, or enum constant a
// simple name denotes, walking outward from the node.
//
//nolint:gocyclo,cyclop // one case per scope-introducing node.
func (x *Index) lookupVariable(name string, from javaast.Node) binding {
	opaque := false
	prev := from

	for n := from.Parent(); n != nil; prev, n = n, n.Parent() {
		var found *javaast.Var

		switch scope := n.(type) {
		case *javaast.BlockStmt:
			for _, s := range scope.Stmts {
				if javaast.Node(s) == prev {
					break
				}

				if v := declaredBy(s, name); v != nil {
					found = v
				}
			}
		case *javaast.CompoundStmt:
			found = findVar(scope.Vars, name)
			if found == nil {
				found = patternBinding(scope.Exprs, name)
			}
		case *javaast.LambdaExpr:
			found = findVar(scope.Params, name)
		case *javaast.MethodDecl:
			found = findVar(scope.Params, name)
		case *javaast.ConstructorDecl:
			found = findVar(scope.Params, name)
		case *javaast.BinaryExpr:
			if scope.Op == "&&" && prev == javaast.Node(scope.Y) {
				found = patternBinding([]javaast.Expr{scope.X}, name)
			}
		case *javaast.ConditionalExpr:
			if prev != javaast.Node(scope.Cond) {
				found = patternBinding([]javaast.Expr{scope.Cond}, name)
			}
		case *javaast.TypeDecl:
			info, ok := x.byDecl[scope]
			if !ok {
				continue
			}

			b := x.findField(info, name)
			if b.kind != bindNone {
				return b
			}

			opaque = opaque || b.opaque
		case *javaast.Unit:
			b := x.staticImportField(scope, name)
			b.opaque = b.opaque || opaque

			return b
		}

		if found != nil {
			return binding{kind: bindLocal, v: found}
		}
	}

	return binding{opaque: opaque}
}

// findField looks name up among the fields, record components, and enum
// constants of info and its supertypes.
func (x *Index) findField(info *TypeInfo, name string) binding {
	types, opaque := x.hierarchy(info)

	for _, t := range types {
		if v, ok := t.fields[name]; ok {
			return binding{kind: bindField, v: v, owner: t}
		}

		for _, c := range t.Decl.EnumConstants {
			if c.Name == name {
				return binding{kind: bindConstant, owner: t}
			}
		}
	}

	return binding{opaque: opaque}
}

func (x *Index) staticImportField(unit *javaast.Unit, name string) binding {
	opaque := false

	for _, imp := range unit.Imports {
		if !imp.Static {
			continue
		}

		owner := imp.Name
		if !imp.OnDemand {
			if lastSegment(imp.Name) != name {
				continue
			}

			owner = imp.Name[:max(0, len(imp.Name)-len(name)-1)]
		}

		t := x.resolveQualified(owner)
		if t.info == nil {
			opaque = true

			continue
		}

		b := x.findField(t.info, name)
		if b.kind != bindNone {
			return b
		}

		opaque = opaque || b.opaque
	}

	return binding{opaque: opaque}
}

func declaredBy(s javaast.Stmt, name string) *javaast.Var {
	switch stmt := s.(type) {
	case *javaast.LocalVarStmt:
		return findVar(stmt.Vars, name)
	case *javaast.CompoundStmt:
		if stmt.Kind == "if_statement" {
			return patternBinding(stmt.Exprs, name)
		}
	}

	return nil
}

func findVar(vars []*javaast.Var, name string) *javaast.Var {
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}

	return nil
}

// patternBinding finds an instanceof pattern variable introduced by exprs.
func patternBinding(exprs []javaast.Expr, name string) *javaast.Var {
	var found *javaast.Var

	for _, e := range exprs {
		javaast.Inspect(e, func(n javaast.Node) bool {
			switch node := n.(type) {
			case *javaast.LambdaExpr, *javaast.TypeDecl:
				return false
			case *javaast.InstanceOfExpr:
				if node.Binding != nil && node.Binding.Name == name {
					found = node.Binding
				}
			}

			return found == nil
		})
	}

	return found
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}

func lastSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}

	return name
}
