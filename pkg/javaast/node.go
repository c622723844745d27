// Package javaast models Java translation units as closed sum types.
//
// Every node records where it came from: either an original byte span of
// the unit's source, or a synthesized marker for nodes added after parsing.
// The node-kind set is fixed by the grammar, so each sum type is an
// interface with an unexported marker method and consumers switch over it
// exhaustively.
package javaast

// Span is a half-open byte range [Start, End) into Unit.Source.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether the offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Origin tags a node with its provenance.
type Origin struct {
	// Span is the node's original extent. Zero for synthesized nodes.
	Span Span
	// Synthesized is true for nodes that have no original text.
	Synthesized bool
}

// Node is implemented by every tree element.
type Node interface {
	Origin() Origin
	Parent() Node
	node()
}

type base struct {
	origin Origin
	parent Node
}

func (b *base) Origin() Origin { return b.origin }
func (b *base) Parent() Node   { return b.parent }
func (b *base) node()          {}

// Span is a shorthand for Origin().Span.
func (b *base) Span() Span { return b.origin.Span }

// Unit is one parsed source file.
type Unit struct {
	base

	// Path is the unit's path relative to the source root, slash separated.
	Path string
	// Source is the original file content. Never modified.
	Source []byte

	Package *PackageDecl
	Imports []*ImportDecl
	// Items are the top-level items in source order.
	Items []Item

	// ErrorCount is the number of syntax error nodes the grammar produced.
	ErrorCount int
}

// Types returns the unit's top-level type declarations in source order.
func (u *Unit) Types() []*TypeDecl {
	var types []*TypeDecl

	for _, item := range u.Items {
		if decl, ok := item.(*TypeDecl); ok {
			types = append(types, decl)
		}
	}

	return types
}

// PackageName returns the declared package or "" for the default package.
func (u *Unit) PackageName() string {
	if u.Package == nil {
		return ""
	}

	return u.Package.Name
}

// Text returns the original source covered by the span.
func (u *Unit) Text(span Span) string {
	return string(u.Source[span.Start:span.End])
}

// Item is a top-level element of a unit.
type Item interface {
	Node
	item()
}

// PackageDecl is `package a.b.c;`.
type PackageDecl struct {
	base
	Name string
}

// ImportDecl is a single import statement.
type ImportDecl struct {
	base
	// Name is the imported name without the trailing `.*`.
	Name     string
	Static   bool
	OnDemand bool
}

// OtherItem is any top-level construct the slicer does not interpret,
// such as a module declaration or a stray semicolon.
type OtherItem struct {
	base
	Kind string
}

// IsComment reports whether the item is a top-level comment.
func (o *OtherItem) IsComment() bool { return isComment(o.Kind) }

func (*PackageDecl) item() {}
func (*ImportDecl) item()  {}
func (*OtherItem) item()   {}
func (*TypeDecl) item()    {}

// TypeKind distinguishes type declaration flavours.
type TypeKind int

// Type declaration kinds.
const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
	KindAnonymous
)

var typeKindNames = [...]string{"class", "interface", "enum", "record", "annotation", "anonymous"}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}

	return "unknown"
}

// TypeDecl is a class, interface, enum, record, annotation type, or the
// body of an anonymous class creation.
type TypeDecl struct {
	base
	trivia

	Kind       TypeKind
	Name       string
	Modifiers  []string
	TypeParams []string
	// Extends holds the superclass of a class (at most one) or the
	// extended interfaces of an interface.
	Extends    []TypeRef
	Implements []TypeRef

	RecordComponents []*Var
	EnumConstants    []*EnumConstant

	// Members are the body declarations in source order. Mutated by pruning.
	Members []Member
	// Local is true for classes declared inside a block.
	Local bool

	layout bodyLayout
	dirty  bool
}

// bodyLayout records where the body's prefix ends and its tail begins so
// the rewriter can rebuild a body from the surviving members.
type bodyLayout struct {
	// prefixEnd is the offset where the first member's leading trivia starts.
	prefixEnd int
	// tailStart is the offset where the last original member's trailing
	// trivia ended.
	tailStart int
	// hasBody is false for declarations without a parsed body.
	hasBody bool
}

// EnumConstant is one constant of an enum header.
type EnumConstant struct {
	base
	Name string
	Args []Expr
	Body *TypeDecl
}

// IsStatic reports whether the modifiers contain `static`.
func (t *TypeDecl) IsStatic() bool { return hasModifier(t.Modifiers, "static") }

// Dirty reports whether the member list changed since parsing.
func (t *TypeDecl) Dirty() bool { return t.dirty }

// BodyPrefixEnd returns the offset where the first member's extent starts.
func (t *TypeDecl) BodyPrefixEnd() int { return t.layout.prefixEnd }

// BodyTailStart returns the offset where the tail after the last
// original member starts.
func (t *TypeDecl) BodyTailStart() int { return t.layout.tailStart }

// HasBody reports whether the declaration has a member body.
func (t *TypeDecl) HasBody() bool { return t.layout.hasBody }

// RemoveMembers deletes every member for which drop returns true and
// returns the removed members in source order.
func (t *TypeDecl) RemoveMembers(drop func(Member) bool) []Member {
	var removed []Member

	kept := t.Members[:0]

	for _, m := range t.Members {
		if drop(m) {
			removed = append(removed, m)

			continue
		}

		kept = append(kept, m)
	}

	clear(t.Members[len(kept):])
	t.Members = kept

	if len(removed) > 0 {
		t.dirty = true
	}

	return removed
}

// AppendMember adds a member after the existing ones and marks the body
// changed. Stub synthesis uses it to add declarations the slice refers to
// but the source tree lacks.
func (t *TypeDecl) AppendMember(m Member) {
	setParent(m, t)
	t.Members = append(t.Members, m)
	t.dirty = true
}

// trivia bounds the text that belongs to a member beyond its own span:
// leading comments and blank lines, and whatever trails it on its last
// line up to and including the line break.
type trivia struct {
	lead  int
	trail int
}

func (t trivia) extent(span Span) Span {
	return Span{Start: t.lead, End: max(t.trail, span.End)}
}

// Member is a type body declaration.
type Member interface {
	Node
	// Extent is the member's span widened to include its leading trivia
	// and the rest of its last line.
	Extent() Span
	member()
}

func (t *TypeDecl) Extent() Span { return t.trivia.extent(t.origin.Span) }

func (*TypeDecl) member()        {}
func (*MethodDecl) member()      {}
func (*ConstructorDecl) member() {}
func (*FieldDecl) member()       {}
func (*InitializerDecl) member() {}
func (*RawMember) member()       {}

// MethodDecl is a method, an interface method, or an annotation element.
type MethodDecl struct {
	base
	trivia

	Modifiers  []string
	TypeParams []string
	Result     TypeRef
	Name       string
	Params     []*Var
	Throws     []TypeRef
	// Body is nil for abstract and interface methods.
	Body *BlockStmt
}

func (m *MethodDecl) Extent() Span { return m.trivia.extent(m.origin.Span) }

// IsStatic reports whether the method is declared static.
func (m *MethodDecl) IsStatic() bool { return hasModifier(m.Modifiers, "static") }

// ConstructorDecl is a constructor or a compact record constructor.
type ConstructorDecl struct {
	base
	trivia

	Modifiers  []string
	TypeParams []string
	Name       string
	Params     []*Var
	Throws     []TypeRef
	Body       *BlockStmt
	Compact    bool
}

func (c *ConstructorDecl) Extent() Span { return c.trivia.extent(c.origin.Span) }

// FieldDecl declares one or more fields sharing a type.
type FieldDecl struct {
	base
	trivia

	Modifiers []string
	Type      TypeRef
	Vars      []*Var
}

func (f *FieldDecl) Extent() Span { return f.trivia.extent(f.origin.Span) }

// IsStatic reports whether the field is static. Interface constants are
// implicitly static; the resolver accounts for that.
func (f *FieldDecl) IsStatic() bool { return hasModifier(f.Modifiers, "static") }

// InitializerDecl is a static or instance initializer block.
type InitializerDecl struct {
	base
	trivia

	Static bool
	Body   *BlockStmt
}

func (i *InitializerDecl) Extent() Span { return i.trivia.extent(i.origin.Span) }

// RawMember is a member added after parsing. It has no original span and
// is rendered from Text.
type RawMember struct {
	base
	Text string
}

// NewRawMember builds a synthesized member rendered verbatim.
func NewRawMember(text string) *RawMember {
	return &RawMember{base: base{origin: Origin{Synthesized: true}}, Text: text}
}

func (r *RawMember) Extent() Span { return r.origin.Span }

// Var is a parameter, a local variable, a field declarator, a record
// component, or a pattern binding.
type Var struct {
	base

	Type    TypeRef
	Name    string
	Varargs bool
	// Init is the initializer, if any.
	Init Expr
}

// Decl is any declaration the resolver can identify.
type Decl interface {
	Node
	decl()
}

func (*TypeDecl) decl()        {}
func (*MethodDecl) decl()      {}
func (*ConstructorDecl) decl() {}
func (*FieldDecl) decl()       {}
func (*InitializerDecl) decl() {}
func (*Var) decl()             {}

func hasModifier(mods []string, want string) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}

	return false
}

func setParent(n Node, parent Node) {
	if n == nil {
		return
	}

	type parentSetter interface{ setParent(Node) }

	if ps, ok := n.(parentSetter); ok {
		ps.setParent(parent)
	}
}

func (b *base) setParent(p Node) { b.parent = p }
