package javaast

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

var literalKinds = map[string]LiteralKind{
	"decimal_integer_literal":        LitInt,
	"hex_integer_literal":            LitInt,
	"octal_integer_literal":          LitInt,
	"binary_integer_literal":         LitInt,
	"decimal_floating_point_literal": LitDouble,
	"hex_floating_point_literal":     LitDouble,
	"true":                           LitBool,
	"false":                          LitBool,
	"character_literal":              LitChar,
	"string_literal":                 LitString,
	"text_block":                     LitString,
	"null_literal":                   LitNull,
}

func (b *builder) args(n sitter.Node) []Expr {
	var out []Expr

	for _, child := range namedChildren(n) {
		if e := b.expr(child); e != nil {
			out = append(out, e)
		}
	}

	return out
}

func (b *builder) optExpr(n sitter.Node, name string) Expr {
	child, ok := field(n, name)
	if !ok {
		return nil
	}

	return b.expr(child)
}

//nolint:gocyclo,cyclop,funlen // one case per expression form.
func (b *builder) expr(n sitter.Node) Expr {
	kind := n.Type()

	if lit, ok := literalKinds[kind]; ok {
		return b.literal(n, lit)
	}

	switch kind {
	case "identifier":
		return &NameExpr{base: originOf(n), Name: b.text(n)}
	case "this":
		return &ThisExpr{base: originOf(n)}
	case "method_invocation":
		return b.call(n)
	case "object_creation_expression":
		return b.newExpr(n)
	case "explicit_constructor_invocation":
		return b.ctorCall(n)
	case "field_access":
		return b.fieldAccess(n)
	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return &ParenExpr{base: originOf(n), X: b.expr(inner[0])}
		}
	case "cast_expression":
		cast := &CastExpr{base: originOf(n), X: b.optExpr(n, "value")}
		if typ, ok := field(n, "type"); ok {
			cast.Type = b.typeRef(typ)
		}

		return cast
	case "binary_expression":
		return &BinaryExpr{
			base: originOf(n),
			Op:   b.operator(n),
			X:    b.optExpr(n, "left"),
			Y:    b.optExpr(n, "right"),
		}
	case "unary_expression":
		return &UnaryExpr{base: originOf(n), Op: b.operator(n), X: b.optExpr(n, "operand")}
	case "update_expression":
		update := &UnaryExpr{base: originOf(n)}

		for _, child := range allChildren(n) {
			if child.IsNamed() {
				update.X = b.expr(child)
			} else {
				update.Op = child.Type()
			}
		}

		return update
	case "ternary_expression":
		return &ConditionalExpr{
			base: originOf(n),
			Cond: b.optExpr(n, "condition"),
			Then: b.optExpr(n, "consequence"),
			Else: b.optExpr(n, "alternative"),
		}
	case "assignment_expression":
		return &AssignExpr{
			base:  originOf(n),
			Op:    b.operator(n),
			Left:  b.optExpr(n, "left"),
			Right: b.optExpr(n, "right"),
		}
	case "instanceof_expression":
		return b.instanceOf(n)
	case "array_access":
		return &ArrayAccessExpr{base: originOf(n), X: b.optExpr(n, "array"), Index: b.optExpr(n, "index")}
	case "array_creation_expression":
		return b.arrayCreation(n)
	case "array_initializer":
		return &ArrayInitExpr{base: originOf(n), Elems: b.args(n)}
	case "lambda_expression":
		return b.lambda(n)
	case "method_reference":
		return b.methodRef(n)
	case "class_literal":
		lit := &ClassLitExpr{base: originOf(n)}
		if typ, ok := firstNamedOfType(n, keys(typeKinds)...); ok {
			lit.Type = b.typeRef(typ)
		}

		return lit
	}

	if skippedKinds[kind] || isTypeKind(kind) {
		return nil
	}

	return b.other(n)
}

func (b *builder) other(n sitter.Node) *OtherExpr {
	other := &OtherExpr{base: originOf(n), Kind: n.Type()}

	for _, child := range namedChildren(n) {
		kind := child.Type()

		switch {
		case skippedKinds[kind] || isTypeKind(kind):
		case isStatementKind(kind):
			if s := b.stmt(child); s != nil {
				other.Stmts = append(other.Stmts, s)
			}
		default:
			if e := b.expr(child); e != nil {
				other.Exprs = append(other.Exprs, e)
			}
		}
	}

	return other
}

func (b *builder) literal(n sitter.Node, kind LiteralKind) *LiteralExpr {
	text := b.text(n)

	switch kind {
	case LitInt:
		if strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
			kind = LitLong
		}
	case LitDouble:
		if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
			kind = LitFloat
		}
	case LitLong, LitFloat, LitChar, LitString, LitBool, LitNull:
	}

	return &LiteralExpr{base: originOf(n), Kind: kind, Text: text}
}

func (b *builder) operator(n sitter.Node) string {
	if op, ok := field(n, "operator"); ok {
		return op.Type()
	}

	return ""
}

// superToken reports whether n has an anonymous or named `super` child
// that is not its object field.
func superToken(n sitter.Node) bool {
	for _, child := range allChildren(n) {
		if child.Type() == "super" {
			return true
		}
	}

	return false
}

func (b *builder) call(n sitter.Node) *CallExpr {
	call := &CallExpr{base: originOf(n)}

	if name, ok := field(n, "name"); ok {
		call.Name = b.text(name)
	}

	if object, ok := field(n, "object"); ok {
		if object.Type() == "super" {
			call.Super = true
		} else {
			call.Target = b.expr(object)
			call.Super = superToken(n)
		}
	}

	if args, ok := field(n, "arguments"); ok {
		call.Args = b.args(args)
	}

	return call
}

func (b *builder) newExpr(n sitter.Node) *NewExpr {
	expr := &NewExpr{base: originOf(n)}
	typ, hasType := field(n, "type")

	if hasType {
		expr.Type = b.typeRef(typ)
	}

	for _, child := range allChildren(n) {
		if child.Type() == "new" {
			break
		}

		if child.IsNamed() && !isComment(child.Type()) {
			expr.Outer = b.expr(child)
		}
	}

	if args, ok := field(n, "arguments"); ok {
		expr.Args = b.args(args)
	}

	if body, ok := firstNamedOfType(n, "class_body"); ok {
		expr.Body = b.anonymousDecl(body, expr.Type)
	}

	return expr
}

func (b *builder) ctorCall(n sitter.Node) *CtorCallExpr {
	call := &CtorCallExpr{base: originOf(n)}

	if ctor, ok := field(n, "constructor"); ok {
		call.Super = ctor.Type() == "super"
	}

	if object, ok := field(n, "object"); ok {
		call.Outer = b.expr(object)
	}

	if args, ok := field(n, "arguments"); ok {
		call.Args = b.args(args)
	}

	return call
}

func (b *builder) fieldAccess(n sitter.Node) Expr {
	name, _ := field(n, "field")
	object, hasObject := field(n, "object")

	if name.Type() == "this" && hasObject {
		return &ThisExpr{base: originOf(n), Qualifier: stripSpace(b.text(object))}
	}

	access := &FieldAccessExpr{base: originOf(n), Name: b.text(name)}

	if hasObject {
		if object.Type() == "super" {
			access.Super = true
		} else {
			access.Target = b.expr(object)
			access.Super = superToken(n)
		}
	}

	return access
}

func (b *builder) instanceOf(n sitter.Node) *InstanceOfExpr {
	expr := &InstanceOfExpr{base: originOf(n), X: b.optExpr(n, "left")}

	if typ, ok := field(n, "right"); ok && isTypeKind(typ.Type()) {
		expr.Type = b.typeRef(typ)
	}

	if name, ok := field(n, "name"); ok {
		expr.Binding = &Var{base: originOf(name), Type: expr.Type, Name: b.text(name)}
	}

	if pattern, ok := field(n, "pattern"); ok && pattern.Type() == "type_pattern" {
		binding := &Var{base: originOf(pattern)}

		for _, child := range namedChildren(pattern) {
			switch {
			case isTypeKind(child.Type()):
				binding.Type = b.typeRef(child)
			case child.Type() == "identifier":
				binding.Name = b.text(child)
			}
		}

		expr.Type = binding.Type
		expr.Binding = binding
	}

	return expr
}

func (b *builder) arrayCreation(n sitter.Node) *ArrayCreationExpr {
	expr := &ArrayCreationExpr{base: originOf(n)}
	dims := 0

	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "dimensions_expr":
			dims++

			for _, inner := range namedChildren(child) {
				if e := b.expr(inner); e != nil {
					expr.DimExprs = append(expr.DimExprs, e)
				}
			}
		case "dimensions":
			dims += countDims(b.text(child))
		case "array_initializer":
			expr.Init = &ArrayInitExpr{base: originOf(child), Elems: b.args(child)}
		}
	}

	if typ, ok := field(n, "type"); ok {
		expr.Type = b.typeRef(typ).WithDims(dims)
	}

	return expr
}

func (b *builder) lambda(n sitter.Node) *LambdaExpr {
	lambda := &LambdaExpr{base: originOf(n)}

	if params, ok := field(n, "parameters"); ok {
		switch params.Type() {
		case "identifier":
			lambda.Params = []*Var{{base: originOf(params), Name: b.text(params)}}
		case "formal_parameters":
			lambda.Params = b.params(params)
		default:
			for _, child := range namedChildren(params) {
				if child.Type() == "identifier" {
					lambda.Params = append(lambda.Params, &Var{base: originOf(child), Name: b.text(child)})
				}
			}
		}
	}

	if body, ok := field(n, "body"); ok {
		if body.Type() == "block" {
			lambda.BodyBlock = b.block(body)
		} else {
			lambda.BodyExpr = b.expr(body)
		}
	}

	return lambda
}

func (b *builder) methodRef(n sitter.Node) *MethodRefExpr {
	ref := &MethodRefExpr{base: originOf(n)}
	children := allChildren(n)

	if len(children) == 0 {
		return ref
	}

	left := children[0]

	switch {
	case isTypeKind(left.Type()):
		ref.TypeName = b.typeRef(left).Name
	case left.Type() == "super":
	default:
		ref.Target = b.expr(left)
	}

	last := children[len(children)-1]
	ref.Name = b.text(last)

	return ref
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}
