package javaast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/java"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parsing.
var (
	errNoRootNode = errors.New("javaast: no root node")
	errPoolType   = errors.New("javaast: pool returned unexpected type")
)

var (
	languageOnce sync.Once //nolint:gochecknoglobals // grammar is loaded once per process
	language     *sitter.Language
)

func javaLanguage() *sitter.Language {
	languageOnce.Do(func() {
		language = sitter.NewLanguage(java.GetLanguage())
	})

	return language
}

// Parser turns Java source into Units. It is safe for concurrent use;
// each Parse call borrows its own tree-sitter parser from a pool.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser for the Java grammar.
func NewParser() *Parser {
	lang := javaLanguage()

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Parse parses content. path is recorded on the unit as given.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Unit, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, fmt.Errorf("%w: %s", errNoRootNode, path)
	}

	b := &builder{src: content}
	unit := b.unit(root)
	unit.Path = path
	unit.Source = content
	unit.ErrorCount = countErrors(root)

	linkParents(unit)

	return unit, nil
}

// linkParents fills in parent pointers for the whole tree.
func linkParents(root Node) {
	Inspect(root, func(n Node) bool {
		for _, child := range Children(n) {
			setParent(child, n)
		}

		return true
	})
}

func countErrors(n sitter.Node) int {
	count := 0

	if n.Type() == "ERROR" {
		count++
	}

	for idx := range n.ChildCount() {
		count += countErrors(n.Child(idx))
	}

	return count
}

// Position converts a byte offset into a 1-based line and column.
func (u *Unit) Position(offset int) (line, col int) {
	line, col = 1, 1

	for i := 0; i < offset && i < len(u.Source); i++ {
		if u.Source[i] == '\n' {
			line++
			col = 1

			continue
		}

		col++
	}

	return line, col
}

type builder struct {
	src []byte
}

func (b *builder) text(n sitter.Node) string {
	return string(b.src[n.StartByte():n.EndByte()])
}

func spanOf(n sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func originOf(n sitter.Node) base {
	return base{origin: Origin{Span: spanOf(n)}}
}

func namedChildren(n sitter.Node) []sitter.Node {
	out := make([]sitter.Node, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if isComment(child.Type()) {
			continue
		}

		out = append(out, child)
	}

	return out
}

func allChildren(n sitter.Node) []sitter.Node {
	out := make([]sitter.Node, 0, n.ChildCount())

	for idx := range n.ChildCount() {
		out = append(out, n.Child(idx))
	}

	return out
}

func field(n sitter.Node, name string) (sitter.Node, bool) {
	child := n.ChildByFieldName(name)
	if child.IsNull() {
		return child, false
	}

	return child, true
}

func firstNamedOfType(n sitter.Node, kinds ...string) (sitter.Node, bool) {
	for _, child := range namedChildren(n) {
		for _, k := range kinds {
			if child.Type() == k {
				return child, true
			}
		}
	}

	return sitter.Node{}, false
}

func hasToken(n sitter.Node, token string) bool {
	for _, child := range allChildren(n) {
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}

	return false
}

func isComment(kind string) bool {
	return kind == "line_comment" || kind == "block_comment" || kind == "comment"
}

func (b *builder) unit(root sitter.Node) *Unit {
	unit := &Unit{base: originOf(root)}

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "package_declaration":
			decl := &PackageDecl{base: originOf(child)}
			if name, ok := firstNamedOfType(child, "identifier", "scoped_identifier"); ok {
				decl.Name = stripSpace(b.text(name))
			}

			unit.Package = decl
			unit.Items = append(unit.Items, decl)
		case "import_declaration":
			decl := &ImportDecl{base: originOf(child), Static: hasToken(child, "static")}
			if name, ok := firstNamedOfType(child, "identifier", "scoped_identifier"); ok {
				decl.Name = stripSpace(b.text(name))
			}

			_, decl.OnDemand = firstNamedOfType(child, "asterisk")
			unit.Imports = append(unit.Imports, decl)
			unit.Items = append(unit.Items, decl)
		default:
			if kind, ok := typeDeclKinds[child.Type()]; ok {
				decl := b.typeDecl(child, kind)
				decl.lead = decl.origin.Span.Start
				unit.Items = append(unit.Items, decl)

				continue
			}

			unit.Items = append(unit.Items, &OtherItem{base: originOf(child), Kind: child.Type()})
		}
	}

	return unit
}

var typeDeclKinds = map[string]TypeKind{
	"class_declaration":           KindClass,
	"interface_declaration":       KindInterface,
	"enum_declaration":            KindEnum,
	"record_declaration":          KindRecord,
	"annotation_type_declaration": KindAnnotation,
}

func (b *builder) modifiers(n sitter.Node) []string {
	mods, ok := firstNamedOfType(n, "modifiers")
	if !ok {
		return nil
	}

	var out []string

	for _, child := range allChildren(mods) {
		if !child.IsNamed() {
			out = append(out, child.Type())
		}
	}

	return out
}

func (b *builder) typeParams(n sitter.Node) []string {
	params, ok := field(n, "type_parameters")
	if !ok {
		return nil
	}

	var out []string

	for _, param := range namedChildren(params) {
		if name, found := firstNamedOfType(param, "type_identifier", "identifier"); found {
			out = append(out, b.text(name))
		}
	}

	return out
}

func (b *builder) typeList(n sitter.Node) []TypeRef {
	var out []TypeRef

	for _, child := range namedChildren(n) {
		if child.Type() == "type_list" {
			out = append(out, b.typeList(child)...)

			continue
		}

		if isTypeKind(child.Type()) {
			out = append(out, b.typeRef(child))
		}
	}

	return out
}

func (b *builder) typeDecl(n sitter.Node, kind TypeKind) *TypeDecl {
	decl := &TypeDecl{
		base:       originOf(n),
		Kind:       kind,
		Modifiers:  b.modifiers(n),
		TypeParams: b.typeParams(n),
	}

	if name, ok := field(n, "name"); ok {
		decl.Name = b.text(name)
	}

	if super, ok := field(n, "superclass"); ok {
		decl.Extends = b.typeList(super)
	}

	if ext, ok := firstNamedOfType(n, "extends_interfaces"); ok {
		decl.Extends = append(decl.Extends, b.typeList(ext)...)
	}

	if ifaces, ok := field(n, "interfaces"); ok {
		decl.Implements = b.typeList(ifaces)
	}

	if kind == KindRecord {
		if params, ok := field(n, "parameters"); ok {
			decl.RecordComponents = b.params(params)
		}
	}

	if body, ok := field(n, "body"); ok {
		b.typeBody(decl, body)
	}

	return decl
}

func (b *builder) anonymousDecl(body sitter.Node, super TypeRef) *TypeDecl {
	decl := &TypeDecl{base: originOf(body), Kind: KindAnonymous}
	if !super.IsZero() {
		decl.Extends = []TypeRef{super}
	}

	decl.lead = decl.origin.Span.Start
	b.typeBody(decl, body)

	return decl
}

// typeBody fills members and the body layout. Leading trivia of a member
// runs from the end of the previous member's line, or from the body prefix.
func (b *builder) typeBody(decl *TypeDecl, body sitter.Node) {
	decl.layout.hasBody = true
	decl.layout.prefixEnd = int(body.StartByte())

	children := allChildren(body)
	if len(children) > 0 && children[0].Type() == "{" {
		decl.layout.prefixEnd = int(children[0].EndByte())
	}

	if body.Type() == "enum_body" {
		b.enumBody(decl, body)

		return
	}

	b.members(decl, body, decl.layout.prefixEnd)
}

func (b *builder) enumBody(decl *TypeDecl, body sitter.Node) {
	var decls sitter.Node

	hasDecls := false

	for _, child := range namedChildren(body) {
		switch child.Type() {
		case "enum_constant":
			decl.EnumConstants = append(decl.EnumConstants, b.enumConstant(child))
		case "enum_body_declarations":
			decls = child
			hasDecls = true
		}
	}

	if !hasDecls {
		// Members can only follow a `;`; an enum without one has none.
		decl.layout.prefixEnd = int(body.EndByte()) - 1
		decl.layout.tailStart = decl.layout.prefixEnd

		return
	}

	prefixEnd := int(decls.StartByte())

	for _, child := range allChildren(decls) {
		if child.Type() == ";" {
			prefixEnd = int(child.EndByte())

			break
		}
	}

	b.members(decl, decls, prefixEnd)
}

func (b *builder) enumConstant(n sitter.Node) *EnumConstant {
	constant := &EnumConstant{base: originOf(n)}

	if name, ok := field(n, "name"); ok {
		constant.Name = b.text(name)
	}

	if args, ok := field(n, "arguments"); ok {
		constant.Args = b.args(args)
	}

	if body, ok := field(n, "body"); ok {
		constant.Body = b.anonymousDecl(body, TypeRef{})
	}

	return constant
}

func (b *builder) members(decl *TypeDecl, container sitter.Node, prefixEnd int) {
	prev := b.lineEnd(prefixEnd)
	decl.layout.prefixEnd = prev

	for _, child := range namedChildren(container) {
		member := b.member(decl, child)
		if member == nil {
			continue
		}

		trail := b.lineEnd(int(child.EndByte()))
		setTrivia(member, trivia{lead: prev, trail: trail})
		decl.Members = append(decl.Members, member)
		prev = trail
	}

	decl.layout.tailStart = prev
}

// lineEnd returns the offset just past the line break ending the line
// that contains offset, when only blanks and comments follow offset on
// that line. Otherwise offset itself is returned. A block comment running
// onto a later line ends the scan before it.
func (b *builder) lineEnd(offset int) int {
	src := b.src
	pos := offset

	for pos < len(src) {
		switch {
		case src[pos] == ' ' || src[pos] == '\t':
			pos++
		case src[pos] == '\n':
			return pos + 1
		case src[pos] == '\r':
			if pos+1 < len(src) && src[pos+1] == '\n' {
				return pos + 2
			}

			return pos + 1
		case bytes.HasPrefix(src[pos:], []byte("//")):
			nl := bytes.IndexByte(src[pos:], '\n')
			if nl < 0 {
				return len(src)
			}

			return pos + nl + 1
		case bytes.HasPrefix(src[pos:], []byte("/*")):
			end := bytes.Index(src[pos+2:], []byte("*/"))
			if end < 0 || bytes.ContainsAny(src[pos:pos+2+end], "\r\n") {
				return offset
			}

			pos += 2 + end + 2
		default:
			return offset
		}
	}

	return pos
}

func setTrivia(m Member, t trivia) {
	switch node := m.(type) {
	case *TypeDecl:
		node.trivia = t
	case *MethodDecl:
		node.trivia = t
	case *ConstructorDecl:
		node.trivia = t
	case *FieldDecl:
		node.trivia = t
	case *InitializerDecl:
		node.trivia = t
	case *RawMember:
	}
}

func (b *builder) member(owner *TypeDecl, n sitter.Node) Member {
	if kind, ok := typeDeclKinds[n.Type()]; ok {
		return b.typeDecl(n, kind)
	}

	switch n.Type() {
	case "field_declaration", "constant_declaration":
		return b.fieldDecl(n)
	case "method_declaration", "annotation_type_element_declaration":
		return b.methodDecl(n)
	case "constructor_declaration":
		return b.constructorDecl(n)
	case "compact_constructor_declaration":
		ctor := &ConstructorDecl{
			base:      originOf(n),
			Modifiers: b.modifiers(n),
			Name:      owner.Name,
			Params:    owner.RecordComponents,
			Compact:   true,
		}

		if body, ok := field(n, "body"); ok {
			ctor.Body = b.block(body)
		}

		return ctor
	case "block":
		return &InitializerDecl{base: originOf(n), Body: b.block(n)}
	case "static_initializer":
		init := &InitializerDecl{base: originOf(n), Static: true}
		if body, ok := firstNamedOfType(n, "block"); ok {
			init.Body = b.block(body)
		}

		return init
	}

	return nil
}

func (b *builder) fieldDecl(n sitter.Node) *FieldDecl {
	decl := &FieldDecl{base: originOf(n), Modifiers: b.modifiers(n)}

	if typ, ok := field(n, "type"); ok {
		decl.Type = b.typeRef(typ)
	}

	decl.Vars = b.declarators(n, decl.Type)

	return decl
}

func (b *builder) declarators(n sitter.Node, typ TypeRef) []*Var {
	var vars []*Var

	for _, child := range namedChildren(n) {
		if child.Type() != "variable_declarator" {
			continue
		}

		v := &Var{base: originOf(child), Type: typ}

		if name, ok := field(child, "name"); ok {
			v.Name = b.text(name)
		}

		if dims, ok := field(child, "dimensions"); ok {
			v.Type = typ.WithDims(countDims(b.text(dims)))
		}

		if value, ok := field(child, "value"); ok {
			v.Init = b.expr(value)
		}

		vars = append(vars, v)
	}

	return vars
}

func (b *builder) methodDecl(n sitter.Node) *MethodDecl {
	method := &MethodDecl{
		base:       originOf(n),
		Modifiers:  b.modifiers(n),
		TypeParams: b.typeParams(n),
	}

	if name, ok := field(n, "name"); ok {
		method.Name = b.text(name)
	}

	if typ, ok := field(n, "type"); ok {
		method.Result = b.typeRef(typ)
	}

	if dims, ok := field(n, "dimensions"); ok {
		method.Result = method.Result.WithDims(countDims(b.text(dims)))
	}

	if params, ok := field(n, "parameters"); ok {
		method.Params = b.params(params)
	}

	if throws, ok := firstNamedOfType(n, "throws"); ok {
		method.Throws = b.typeList(throws)
	}

	if body, ok := field(n, "body"); ok && body.Type() == "block" {
		method.Body = b.block(body)
	}

	return method
}

func (b *builder) constructorDecl(n sitter.Node) *ConstructorDecl {
	ctor := &ConstructorDecl{
		base:       originOf(n),
		Modifiers:  b.modifiers(n),
		TypeParams: b.typeParams(n),
	}

	if name, ok := field(n, "name"); ok {
		ctor.Name = b.text(name)
	}

	if params, ok := field(n, "parameters"); ok {
		ctor.Params = b.params(params)
	}

	if throws, ok := firstNamedOfType(n, "throws"); ok {
		ctor.Throws = b.typeList(throws)
	}

	if body, ok := field(n, "body"); ok {
		ctor.Body = b.block(body)
	}

	return ctor
}

func (b *builder) params(n sitter.Node) []*Var {
	var vars []*Var

	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "formal_parameter":
			v := &Var{base: originOf(child)}

			if typ, ok := field(child, "type"); ok {
				v.Type = b.typeRef(typ)
			}

			if name, ok := field(child, "name"); ok {
				v.Name = b.text(name)
			}

			if dims, ok := field(child, "dimensions"); ok {
				v.Type = v.Type.WithDims(countDims(b.text(dims)))
			}

			vars = append(vars, v)
		case "spread_parameter":
			v := &Var{base: originOf(child), Varargs: true}

			for _, part := range namedChildren(child) {
				switch {
				case isTypeKind(part.Type()):
					v.Type = b.typeRef(part).WithDims(1)
				case part.Type() == "variable_declarator":
					if name, ok := field(part, "name"); ok {
						v.Name = b.text(name)
					}
				}
			}

			vars = append(vars, v)
		}
	}

	return vars
}

func countDims(text string) int {
	count := 0

	for _, r := range text {
		if r == '[' {
			count++
		}
	}

	return count
}

var typeKinds = map[string]bool{
	"type_identifier":        true,
	"scoped_type_identifier": true,
	"generic_type":           true,
	"array_type":             true,
	"integral_type":          true,
	"floating_point_type":    true,
	"boolean_type":           true,
	"void_type":              true,
	"annotated_type":         true,
	"wildcard":               true,
}

func isTypeKind(kind string) bool {
	return typeKinds[kind]
}

func (b *builder) typeRef(n sitter.Node) TypeRef {
	ref := TypeRef{Text: stripSpace(b.text(n)), Span: spanOf(n)}

	switch n.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		ref.Name = ref.Text
		ref.Primitive = true
	case "type_identifier", "identifier":
		ref.Name = ref.Text
	case "scoped_type_identifier", "scoped_identifier":
		ref.Name = eraseArgs(ref.Text)
	case "generic_type":
		for _, child := range namedChildren(n) {
			switch child.Type() {
			case "type_arguments":
				for _, arg := range namedChildren(child) {
					if isTypeKind(arg.Type()) {
						ref.Args = append(ref.Args, b.typeRef(arg))
					}
				}
			default:
				if isTypeKind(child.Type()) {
					ref.Name = b.typeRef(child).Name
				}
			}
		}
	case "array_type":
		if elem, ok := field(n, "element"); ok {
			inner := b.typeRef(elem)
			dims := 1

			if d, found := field(n, "dimensions"); found {
				dims = countDims(b.text(d))
			}

			inner = inner.WithDims(dims)
			inner.Text = ref.Text
			inner.Span = ref.Span

			return inner
		}
	case "annotated_type":
		children := namedChildren(n)
		for i := len(children) - 1; i >= 0; i-- {
			if isTypeKind(children[i].Type()) {
				inner := b.typeRef(children[i])
				inner.Span = ref.Span

				return inner
			}
		}
	case "wildcard":
		ref.Wildcard = true

		for _, child := range namedChildren(n) {
			if isTypeKind(child.Type()) {
				bound := b.typeRef(child)
				ref.Name = bound.Name
				ref.Args = bound.Args
				ref.Dims = bound.Dims
			}
		}
	default:
		ref.Name = eraseArgs(ref.Text)
	}

	return ref
}

// eraseArgs drops every <...> group from a whitespace-free type text.
func eraseArgs(text string) string {
	out := make([]byte, 0, len(text))
	depth := 0

	for i := range len(text) {
		switch c := text[i]; {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth == 0 && c != '[' && c != ']':
			out = append(out, c)
		}
	}

	return string(out)
}
