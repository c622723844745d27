package javaast

// Stmt is a statement inside a callable or initializer body.
type Stmt interface {
	Node
	stmt()
}

// BlockStmt is `{ ... }`.
type BlockStmt struct {
	base
	Stmts []Stmt
}

// LocalVarStmt declares local variables. Each Var carries its own type
// with any declarator dimensions applied.
type LocalVarStmt struct {
	base
	Vars []*Var
}

// LocalTypeStmt is a class, interface, enum, or record declared in a block.
type LocalTypeStmt struct {
	base
	Decl *TypeDecl
}

// CompoundStmt is every other statement. Vars are the variables the
// statement introduces (for-loop init, enhanced-for variable, catch
// parameter, try resource); they are visible in Exprs and Body.
type CompoundStmt struct {
	base
	Kind  string
	Vars  []*Var
	Exprs []Expr
	Body  []Stmt
}

func (*BlockStmt) stmt()     {}
func (*LocalVarStmt) stmt()  {}
func (*LocalTypeStmt) stmt() {}
func (*CompoundStmt) stmt()  {}
