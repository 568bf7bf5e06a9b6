// Package ast defines the toy language's abstract syntax tree: a single
// recursive sum type Expr with one variant per grammar production, plus the
// Function shape a compile unit parses into. Nodes are pure data — the
// visitor interface lives here so both the translator (frontend package)
// and the pretty-printer (print.go) can walk the tree without a type
// switch in every caller.
package ast

// BinOp identifies one of the four arithmetic operators.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// CmpOp identifies one of the six signed comparison operators.
type CmpOp int

const (
	Eq CmpOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Expr is the base interface every AST node implements.
type Expr interface {
	Accept(v Visitor) any
}

// Visitor is implemented by anything that walks the AST: the frontend
// translator, the pretty-printer, and tests that want to inspect shape.
type Visitor interface {
	VisitLiteral(e Literal) any
	VisitIdentifier(e Identifier) any
	VisitGlobalDataAddr(e GlobalDataAddr) any
	VisitAssign(e Assign) any
	VisitBinary(e Binary) any
	VisitCompare(e Compare) any
	VisitIfElse(e IfElse) any
	VisitWhileLoop(e WhileLoop) any
	VisitCall(e Call) any
}

// Literal is an unsigned decimal-digit integer constant.
type Literal struct {
	Value string
}

func (e Literal) Accept(v Visitor) any { return v.VisitLiteral(e) }

// Identifier reads the current value of a named variable.
type Identifier struct {
	Name string
}

func (e Identifier) Accept(v Visitor) any { return v.VisitIdentifier(e) }

// GlobalDataAddr yields the address of a named global data blob, spelled
// "&name" in source.
type GlobalDataAddr struct {
	Name string
}

func (e GlobalDataAddr) Accept(v Visitor) any { return v.VisitGlobalDataAddr(e) }

// Assign stores Rhs's value into Name and evaluates to that value.
type Assign struct {
	Name string
	Rhs  Expr
}

func (e Assign) Accept(v Visitor) any { return v.VisitAssign(e) }

// Binary is a two's-complement arithmetic operation (+, -, *, /). Division
// is unsigned — see the frontend translator, which is the only place that
// matters.
type Binary struct {
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

func (e Binary) Accept(v Visitor) any { return v.VisitBinary(e) }

// Compare is a signed integer comparison yielding 0 or 1.
type Compare struct {
	Op  CmpOp
	Lhs Expr
	Rhs Expr
}

func (e Compare) Accept(v Visitor) any { return v.VisitCompare(e) }

// IfElse is an expression: its value is the last statement of whichever
// branch ran, or zero if that branch is empty. Both branches are mandatory
// in this grammar — a bare "if" is a syntax error (see parser).
type IfElse struct {
	Cond Expr
	Then []Expr
	Else []Expr
}

func (e IfElse) Accept(v Visitor) any { return v.VisitIfElse(e) }

// WhileLoop is an expression whose value is always zero.
type WhileLoop struct {
	Cond Expr
	Body []Expr
}

func (e WhileLoop) Accept(v Visitor) any { return v.VisitWhileLoop(e) }

// Call invokes a function by name with positional word-sized arguments,
// returning a single word.
type Call struct {
	Name string
	Args []Expr
}

func (e Call) Accept(v Visitor) any { return v.VisitCall(e) }

// Function is a single compile unit: a name, its ordered parameter names,
// the single declared return variable, and its statement list.
type Function struct {
	Name   string
	Params []string
	Return string
	Body   []Expr
}
