package javaast

import "fmt"

// Visitor receives nodes during Walk. Enter returning false skips the
// node's children; Exit is called only for nodes whose Enter returned true.
type Visitor interface {
	Enter(n Node) bool
	Exit(n Node)
}

// Walk traverses the tree rooted at n in source order.
func Walk(v Visitor, n Node) {
	if n == nil || !v.Enter(n) {
		return
	}

	for _, child := range Children(n) {
		Walk(v, child)
	}

	v.Exit(n)
}

type inspector func(Node) bool

func (f inspector) Enter(n Node) bool { return f(n) }
func (inspector) Exit(Node)           {}

// Inspect calls f for every node in pre-order; returning false prunes.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

// Children returns the direct children of n in source order.
//
//nolint:gocyclo,cyclop // exhaustive over the closed node set.
func Children(n Node) []Node {
	var out []Node

	add := func(children ...Node) {
		for _, c := range children {
			if !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch node := n.(type) {
	case *Unit:
		for _, item := range node.Items {
			add(item)
		}
	case *PackageDecl, *ImportDecl, *OtherItem, *RawMember,
		*NameExpr, *LiteralExpr, *ThisExpr, *ClassLitExpr:
	case *TypeDecl:
		for _, c := range node.RecordComponents {
			add(c)
		}

		for _, c := range node.EnumConstants {
			add(c)
		}

		for _, m := range node.Members {
			add(m)
		}
	case *EnumConstant:
		addExprs(add, node.Args)

		if node.Body != nil {
			add(node.Body)
		}
	case *MethodDecl:
		addVars(add, node.Params)

		if node.Body != nil {
			add(node.Body)
		}
	case *ConstructorDecl:
		addVars(add, node.Params)

		if node.Body != nil {
			add(node.Body)
		}
	case *FieldDecl:
		addVars(add, node.Vars)
	case *InitializerDecl:
		add(node.Body)
	case *Var:
		if node.Init != nil {
			add(node.Init)
		}
	case *BlockStmt:
		addStmts(add, node.Stmts)
	case *LocalVarStmt:
		addVars(add, node.Vars)
	case *LocalTypeStmt:
		add(node.Decl)
	case *CompoundStmt:
		addVars(add, node.Vars)
		addExprs(add, node.Exprs)
		addStmts(add, node.Body)
	case *CallExpr:
		if node.Target != nil {
			add(node.Target)
		}

		addExprs(add, node.Args)
	case *NewExpr:
		if node.Outer != nil {
			add(node.Outer)
		}

		addExprs(add, node.Args)

		if node.Body != nil {
			add(node.Body)
		}
	case *CtorCallExpr:
		if node.Outer != nil {
			add(node.Outer)
		}

		addExprs(add, node.Args)
	case *FieldAccessExpr:
		if node.Target != nil {
			add(node.Target)
		}
	case *CastExpr:
		add(node.X)
	case *BinaryExpr:
		add(node.X, node.Y)
	case *UnaryExpr:
		add(node.X)
	case *ConditionalExpr:
		add(node.Cond, node.Then, node.Else)
	case *AssignExpr:
		add(node.Left, node.Right)
	case *InstanceOfExpr:
		add(node.X)

		if node.Binding != nil {
			add(node.Binding)
		}
	case *ArrayAccessExpr:
		add(node.X, node.Index)
	case *ArrayCreationExpr:
		addExprs(add, node.DimExprs)

		if node.Init != nil {
			add(node.Init)
		}
	case *ArrayInitExpr:
		addExprs(add, node.Elems)
	case *LambdaExpr:
		addVars(add, node.Params)

		if node.BodyExpr != nil {
			add(node.BodyExpr)
		}

		if node.BodyBlock != nil {
			add(node.BodyBlock)
		}
	case *MethodRefExpr:
		if node.Target != nil {
			add(node.Target)
		}
	case *ParenExpr:
		add(node.X)
	case *OtherExpr:
		addExprs(add, node.Exprs)
		addStmts(add, node.Stmts)
	default:
		panic(fmt.Sprintf("javaast: unhandled node %T", n))
	}

	return out
}

func addVars(add func(...Node), vars []*Var) {
	for _, v := range vars {
		add(v)
	}
}

func addExprs(add func(...Node), exprs []Expr) {
	for _, e := range exprs {
		add(e)
	}
}

func addStmts(add func(...Node), stmts []Stmt) {
	for _, s := range stmts {
		add(s)
	}
}

// isNilNode guards against typed nil pointers stored in interfaces.
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}

	switch v := n.(type) {
	case *BlockStmt:
		return v == nil
	case *TypeDecl:
		return v == nil
	case *ArrayInitExpr:
		return v == nil
	case *Var:
		return v == nil
	}

	return false
}

// EnclosingType returns the nearest TypeDecl strictly above n, or nil.
func EnclosingType(n Node) *TypeDecl {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if t, ok := p.(*TypeDecl); ok {
			return t
		}
	}

	return nil
}

// EnclosingUnit returns the unit containing n.
func EnclosingUnit(n Node) *Unit {
	for cur := n; cur != nil; cur = cur.Parent() {
		if u, ok := cur.(*Unit); ok {
			return u
		}
	}

	return nil
}
