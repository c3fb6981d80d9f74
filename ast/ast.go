// Package ast defines SYL's expression and statement trees, produced by
// parser.Parse and consumed by semantic.Analyze and compiler.Compile.
package ast

import "github.com/racaem/sylph/value"

// BinOp identifies a binary operator in an Expr.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpMod
	OpLe
	OpLt
	OpGt
	OpGe
	OpEq
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpMod:
		return "%"
	case OpLe:
		return "<="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpEq:
		return "=="
	default:
		return "?"
	}
}

// Expr is the interface implemented by every expression node.
type Expr interface {
	exprNode()
}

// Number is an unsuffixed numeric literal; the parser has already chosen the
// smallest fitting width (spec.md §4.2).
type Number struct {
	Value value.IntegerValue
}

// TypedNumber is a width-suffixed numeric literal (e.g. 127i8, 5bigint).
type TypedNumber struct {
	Value value.IntegerValue
}

// Ident is a reference to a variable.
type Ident struct {
	Name string
}

// Binary is a binary operation between two expressions.
type Binary struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

// Call is a function application: a known function name applied to
// zero or more positional argument expressions (spec.md §4.3).
type Call struct {
	Name string
	Args []Expr
}

func (*Number) exprNode()      {}
func (*TypedNumber) exprNode() {}
func (*Ident) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Call) exprNode()        {}

// Stmt is the interface implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// Assign binds the result of Expr to Name.
type Assign struct {
	Name string
	Expr Expr
}

// If is a conditional block with no else clause (spec.md §4.3).
type If struct {
	Cond Expr
	Body []Stmt
}

// While is a loop block.
type While struct {
	Cond Expr
	Body []Stmt
}

// Return is a single-expression return statement. A return of a Call
// expression compiles to a tail call (spec.md §4.5).
type Return struct {
	Expr Expr
}

// Out is a single-expression print statement.
type Out struct {
	Expr Expr
}

// FuncDef is a function definition: name, parameter names, body.
type FuncDef struct {
	Name   string
	Params []string
	Body   []Stmt
}

func (*Assign) stmtNode()  {}
func (*If) stmtNode()      {}
func (*While) stmtNode()   {}
func (*Return) stmtNode()  {}
func (*Out) stmtNode()     {}
func (*FuncDef) stmtNode() {}

// Program is an ordered sequence of top-level statements.
type Program struct {
	Statements []Stmt
}
