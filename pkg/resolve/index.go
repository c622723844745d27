package resolve

import (
	"fmt"
	"sort"

	"github.com/kelloggm/specimin/pkg/javaast"
	"github.com/kelloggm/specimin/pkg/qualname"
)

// TypeInfo is an indexed type declaration.
type TypeInfo struct {
	// Name is the qualified name, e.g. com.example.Outer.Inner or
	// com.example.Outer$1 for an anonymous class.
	Name  string
	Decl  *javaast.TypeDecl
	Unit  *javaast.Unit
	Outer *TypeInfo

	methods []*javaast.MethodDecl
	ctors   []*javaast.ConstructorDecl
	fields  map[string]*javaast.Var
	nested  map[string]*TypeInfo

	supers     []jtype
	superState int
	paramTypes map[*javaast.Var]jtype
}

const (
	supersPending = iota
	supersResolving
	supersDone
)

// Index is a Resolver backed by the declarations of a set of units.
// It is read-only after NewIndex returns.
type Index struct {
	byDecl      map[*javaast.TypeDecl]*TypeInfo
	byQualified map[string]*TypeInfo
	byPackage   map[string]map[string]*TypeInfo
	packages    map[string]bool
	all         []*TypeInfo
}

var _ Resolver = (*Index)(nil)

// NewIndex indexes every type declared in units, including member,
// local, and anonymous types.
func NewIndex(units []*javaast.Unit) (*Index, error) {
	x := &Index{
		byDecl:      make(map[*javaast.TypeDecl]*TypeInfo),
		byQualified: make(map[string]*TypeInfo),
		byPackage:   make(map[string]map[string]*TypeInfo),
		packages:    make(map[string]bool),
	}

	for _, unit := range units {
		x.packages[unit.PackageName()] = true

		idx := &indexer{index: x, unit: unit}
		javaast.Walk(idx, unit)

		if idx.err != nil {
			return nil, fmt.Errorf("index %s: %w", unit.Path, idx.err)
		}
	}

	// Supertypes and parameter types are resolved up front so lookups
	// never write to the index.
	for _, info := range x.all {
		x.supertypes(info)
	}

	for _, info := range x.all {
		x.resolveParams(info)
	}

	return x, nil
}

// Lookup returns the type with the given qualified name.
func (x *Index) Lookup(qualified string) (*TypeInfo, bool) {
	info, ok := x.byQualified[qualified]

	return info, ok
}

// TypeOf returns the indexed info for a declaration.
func (x *Index) TypeOf(decl *javaast.TypeDecl) (*TypeInfo, bool) {
	info, ok := x.byDecl[decl]

	return info, ok
}

// Types returns the qualified names of all named, non-local types.
func (x *Index) Types() []string {
	names := make([]string, 0, len(x.byQualified))
	for name := range x.byQualified {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type indexer struct {
	index   *Index
	unit    *javaast.Unit
	tracker qualname.Tracker
	stack   []*TypeInfo
	err     error
}

func (v *indexer) Enter(n javaast.Node) bool {
	if v.err != nil {
		return false
	}

	decl, ok := n.(*javaast.TypeDecl)
	if !ok {
		return true
	}

	var err error

	switch {
	case v.tracker.Depth() == 0:
		err = v.tracker.EnterTopLevel(v.unit.PackageName(), decl.Name)
	case decl.Kind == javaast.KindAnonymous:
		err = v.tracker.EnterAnonymous()
	default:
		err = v.tracker.EnterNested(decl.Name)
	}

	if err != nil {
		v.err = err

		return false
	}

	info := newTypeInfo(v.tracker.Current(), decl, v.unit)
	if len(v.stack) > 0 {
		info.Outer = v.stack[len(v.stack)-1]
	}

	v.register(info)
	v.stack = append(v.stack, info)

	return true
}

func (v *indexer) Exit(n javaast.Node) {
	if _, ok := n.(*javaast.TypeDecl); !ok {
		return
	}

	if err := v.tracker.Exit(); err != nil && v.err == nil {
		v.err = err
	}

	v.stack = v.stack[:len(v.stack)-1]
}

func (v *indexer) register(info *TypeInfo) {
	x := v.index
	decl := info.Decl
	x.byDecl[decl] = info
	x.all = append(x.all, info)

	if decl.Kind == javaast.KindAnonymous || decl.Local {
		return
	}

	x.byQualified[info.Name] = info

	if info.Outer != nil {
		info.Outer.nested[decl.Name] = info

		return
	}

	pkg := v.unit.PackageName()
	if x.byPackage[pkg] == nil {
		x.byPackage[pkg] = make(map[string]*TypeInfo)
	}

	x.byPackage[pkg][decl.Name] = info
}

func newTypeInfo(name string, decl *javaast.TypeDecl, unit *javaast.Unit) *TypeInfo {
	info := &TypeInfo{
		Name:       name,
		Decl:       decl,
		Unit:       unit,
		fields:     make(map[string]*javaast.Var),
		nested:     make(map[string]*TypeInfo),
		paramTypes: make(map[*javaast.Var]jtype),
	}

	for _, m := range decl.Members {
		switch member := m.(type) {
		case *javaast.MethodDecl:
			info.methods = append(info.methods, member)
		case *javaast.ConstructorDecl:
			info.ctors = append(info.ctors, member)
		case *javaast.FieldDecl:
			for _, v := range member.Vars {
				info.fields[v.Name] = v
			}
		case *javaast.TypeDecl, *javaast.InitializerDecl, *javaast.RawMember:
		}
	}

	for _, c := range decl.RecordComponents {
		if _, declaredField := info.fields[c.Name]; !declaredField {
			info.fields[c.Name] = c
		}
	}

	return info
}
