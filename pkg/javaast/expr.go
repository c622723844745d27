package javaast

// Expr is an expression.
type Expr interface {
	Node
	expr()
}

// CallExpr is a method invocation. Target is nil for unqualified calls.
// Super is true for `super.m()` and `T.super.m()`.
type CallExpr struct {
	base
	Target Expr
	Super  bool
	Name   string
	Args   []Expr
}

// NewExpr is an object creation. Body is the anonymous class body, if any.
type NewExpr struct {
	base
	Outer Expr
	Type  TypeRef
	Args  []Expr
	Body  *TypeDecl
}

// CtorCallExpr is an explicit `this(...)` or `super(...)` invocation.
type CtorCallExpr struct {
	base
	Super bool
	Outer Expr
	Args  []Expr
}

// NameExpr is a bare identifier.
type NameExpr struct {
	base
	Name string
}

// FieldAccessExpr is `target.name`, `super.name`, or `T.super.name`.
type FieldAccessExpr struct {
	base
	Target Expr
	Super  bool
	Name   string
}

// LiteralKind classifies literals.
type LiteralKind int

// Literal kinds.
const (
	LitInt LiteralKind = iota
	LitLong
	LitFloat
	LitDouble
	LitChar
	LitString
	LitBool
	LitNull
)

// LiteralExpr is a literal constant.
type LiteralExpr struct {
	base
	Kind LiteralKind
	Text string
}

// ThisExpr is `this` or `Qualifier.this`.
type ThisExpr struct {
	base
	Qualifier string
}

// CastExpr is `(T) x`.
type CastExpr struct {
	base
	Type TypeRef
	X    Expr
}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	base
	Op string
	X  Expr
	Y  Expr
}

// UnaryExpr is a prefix or postfix unary operation, including ++ and --.
type UnaryExpr struct {
	base
	Op string
	X  Expr
}

// ConditionalExpr is `c ? a : b`.
type ConditionalExpr struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

// AssignExpr is an assignment or compound assignment.
type AssignExpr struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

// InstanceOfExpr is `x instanceof T` with an optional pattern binding.
type InstanceOfExpr struct {
	base
	X       Expr
	Type    TypeRef
	Binding *Var
}

// ArrayAccessExpr is `x[i]`.
type ArrayAccessExpr struct {
	base
	X     Expr
	Index Expr
}

// ArrayCreationExpr is `new T[n]...` or `new T[]{...}`. Type is the
// resulting array type.
type ArrayCreationExpr struct {
	base
	Type     TypeRef
	DimExprs []Expr
	Init     *ArrayInitExpr
}

// ArrayInitExpr is `{a, b, c}`.
type ArrayInitExpr struct {
	base
	Elems []Expr
}

// LambdaExpr is a lambda. Exactly one of BodyExpr and BodyBlock is set.
type LambdaExpr struct {
	base
	Params    []*Var
	BodyExpr  Expr
	BodyBlock *BlockStmt
}

// MethodRefExpr is `x::name`. Target is nil when the left side is a type.
type MethodRefExpr struct {
	base
	Target   Expr
	TypeName string
	Name     string
}

// ClassLitExpr is `T.class`.
type ClassLitExpr struct {
	base
	Type TypeRef
}

// ParenExpr is `(x)`.
type ParenExpr struct {
	base
	X Expr
}

// OtherExpr is any expression the slicer does not interpret, for example
// a switch expression. Its sub-expressions and statements are still
// walked so calls inside are reachable.
type OtherExpr struct {
	base
	Kind  string
	Exprs []Expr
	Stmts []Stmt
}

func (*CallExpr) expr()          {}
func (*NewExpr) expr()           {}
func (*CtorCallExpr) expr()      {}
func (*NameExpr) expr()          {}
func (*FieldAccessExpr) expr()   {}
func (*LiteralExpr) expr()       {}
func (*ThisExpr) expr()          {}
func (*CastExpr) expr()          {}
func (*BinaryExpr) expr()        {}
func (*UnaryExpr) expr()         {}
func (*ConditionalExpr) expr()   {}
func (*AssignExpr) expr()        {}
func (*InstanceOfExpr) expr()    {}
func (*ArrayAccessExpr) expr()   {}
func (*ArrayCreationExpr) expr() {}
func (*ArrayInitExpr) expr()     {}
func (*LambdaExpr) expr()        {}
func (*MethodRefExpr) expr()     {}
func (*ClassLitExpr) expr()      {}
func (*ParenExpr) expr()         {}
func (*OtherExpr) expr()         {}
