package javaast

import sitter "github.com/alexaandru/go-tree-sitter-bare"

var statementKinds = map[string]bool{
	"block":                           true,
	"constructor_body":                true,
	"expression_statement":            true,
	"labeled_statement":               true,
	"if_statement":                    true,
	"while_statement":                 true,
	"for_statement":                   true,
	"enhanced_for_statement":          true,
	"do_statement":                    true,
	"break_statement":                 true,
	"continue_statement":              true,
	"return_statement":                true,
	"yield_statement":                 true,
	"synchronized_statement":          true,
	"local_variable_declaration":      true,
	"throw_statement":                 true,
	"try_statement":                   true,
	"try_with_resources_statement":    true,
	"assert_statement":                true,
	"switch_block":                    true,
	"switch_block_statement_group":    true,
	"switch_rule":                     true,
	"catch_clause":                    true,
	"finally_clause":                  true,
	"explicit_constructor_invocation": true,
	"class_declaration":               true,
	"interface_declaration":           true,
	"enum_declaration":                true,
	"record_declaration":              true,
	"annotation_type_declaration":     true,
}

// skippedKinds never contain reachable expressions the slicer tracks.
var skippedKinds = map[string]bool{
	"modifiers":          true,
	"marker_annotation":  true,
	"annotation":         true,
	"type_arguments":     true,
	"type_parameters":    true,
	"dimensions":         true,
	"type_pattern":       true,
	"record_pattern":     true,
	"underscore_pattern": true,
	"catch_type":         true,
	"throws":             true,
}

func isStatementKind(kind string) bool {
	return statementKinds[kind]
}

func (b *builder) block(n sitter.Node) *BlockStmt {
	block := &BlockStmt{base: originOf(n)}

	for _, child := range namedChildren(n) {
		if stmt := b.stmt(child); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	return block
}

//nolint:gocyclo,cyclop // one case per statement form.
func (b *builder) stmt(n sitter.Node) Stmt {
	kind := n.Type()

	if declKind, ok := typeDeclKinds[kind]; ok {
		decl := b.typeDecl(n, declKind)
		decl.Local = true
		decl.lead = decl.origin.Span.Start

		return &LocalTypeStmt{base: originOf(n), Decl: decl}
	}

	if skippedKinds[kind] {
		return nil
	}

	switch kind {
	case "block", "constructor_body":
		return b.block(n)
	case "local_variable_declaration":
		stmt := &LocalVarStmt{base: originOf(n)}

		if typ, ok := field(n, "type"); ok {
			stmt.Vars = b.declarators(n, b.typeRef(typ))
		}

		return stmt
	case "explicit_constructor_invocation":
		return &CompoundStmt{base: originOf(n), Kind: kind, Exprs: []Expr{b.expr(n)}}
	case "for_statement":
		return b.forStmt(n)
	case "enhanced_for_statement":
		return b.enhancedFor(n)
	case "catch_clause":
		return b.catchClause(n)
	case "try_with_resources_statement":
		return b.tryWithResources(n)
	case "labeled_statement", "break_statement", "continue_statement":
		return b.labeled(n)
	case ";":
		return nil
	}

	if !isStatementKind(kind) {
		return &CompoundStmt{base: originOf(n), Kind: "expression", Exprs: []Expr{b.expr(n)}}
	}

	return b.compound(n)
}

// compound builds a generic statement by classifying its named children.
func (b *builder) compound(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}

	for _, child := range namedChildren(n) {
		kind := child.Type()

		switch {
		case skippedKinds[kind]:
		case isStatementKind(kind):
			if s := b.stmt(child); s != nil {
				stmt.Body = append(stmt.Body, s)
			}
		default:
			if e := b.expr(child); e != nil {
				stmt.Exprs = append(stmt.Exprs, e)
			}
		}
	}

	return stmt
}

// labeled drops label identifiers, which are not expressions.
func (b *builder) labeled(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}

	for _, child := range namedChildren(n) {
		if child.Type() == "identifier" {
			continue
		}

		if s := b.stmt(child); s != nil {
			stmt.Body = append(stmt.Body, s)
		}
	}

	return stmt
}

func (b *builder) forStmt(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}
	body, hasBody := field(n, "body")

	for _, child := range namedChildren(n) {
		switch {
		case hasBody && child.StartByte() == body.StartByte() && child.EndByte() == body.EndByte():
			if s := b.stmt(child); s != nil {
				stmt.Body = append(stmt.Body, s)
			}
		case child.Type() == "local_variable_declaration":
			if typ, ok := field(child, "type"); ok {
				stmt.Vars = append(stmt.Vars, b.declarators(child, b.typeRef(typ))...)
			}
		default:
			if e := b.expr(child); e != nil {
				stmt.Exprs = append(stmt.Exprs, e)
			}
		}
	}

	return stmt
}

func (b *builder) enhancedFor(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}
	v := &Var{base: originOf(n)}

	if typ, ok := field(n, "type"); ok {
		v.Type = b.typeRef(typ)
	}

	if name, ok := field(n, "name"); ok {
		v.Name = b.text(name)
	}

	if dims, ok := field(n, "dimensions"); ok {
		v.Type = v.Type.WithDims(countDims(b.text(dims)))
	}

	stmt.Vars = []*Var{v}

	if value, ok := field(n, "value"); ok {
		stmt.Exprs = []Expr{b.expr(value)}
	}

	if body, ok := field(n, "body"); ok {
		if s := b.stmt(body); s != nil {
			stmt.Body = []Stmt{s}
		}
	}

	return stmt
}

func (b *builder) catchClause(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}

	if param, ok := firstNamedOfType(n, "catch_formal_parameter"); ok {
		v := &Var{base: originOf(param)}

		if catchType, found := firstNamedOfType(param, "catch_type"); found {
			if types := b.typeList(catchType); len(types) > 0 {
				v.Type = types[0]
			}
		}

		if name, found := field(param, "name"); found {
			v.Name = b.text(name)
		}

		stmt.Vars = []*Var{v}
	}

	if body, ok := field(n, "body"); ok {
		stmt.Body = []Stmt{b.block(body)}
	}

	return stmt
}

func (b *builder) tryWithResources(n sitter.Node) *CompoundStmt {
	stmt := &CompoundStmt{base: originOf(n), Kind: n.Type()}

	for _, child := range namedChildren(n) {
		if child.Type() != "resource_specification" {
			if s := b.stmt(child); s != nil {
				stmt.Body = append(stmt.Body, s)
			}

			continue
		}

		for _, res := range namedChildren(child) {
			b.resource(stmt, res)
		}
	}

	return stmt
}

func (b *builder) resource(stmt *CompoundStmt, res sitter.Node) {
	typ, typed := field(res, "type")
	if !typed {
		for _, part := range namedChildren(res) {
			if e := b.expr(part); e != nil {
				stmt.Exprs = append(stmt.Exprs, e)
			}
		}

		return
	}

	v := &Var{base: originOf(res), Type: b.typeRef(typ)}

	if name, ok := field(res, "name"); ok {
		v.Name = b.text(name)
	}

	if value, ok := field(res, "value"); ok {
		v.Init = b.expr(value)
	}

	stmt.Vars = append(stmt.Vars, v)
}
