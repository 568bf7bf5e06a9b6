package ast

import "strings"

// Sprint re-emits source text for fn from its AST. It is not needed by the
// compiler itself — nothing in frontend or session calls it — but tests use
// it to check the parser's round-trip property: re-parsing Sprint's output
// must reproduce an equivalent AST, modulo whitespace and parenthesization.
func Sprint(fn Function) string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(fn.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(fn.Params, ", "))
	b.WriteString(") -> (")
	b.WriteString(fn.Return)
	b.WriteString(") {\n")
	p := &printer{indent: 1}
	for _, stmt := range fn.Body {
		p.writeStmt(&b, stmt)
	}
	b.WriteString("}\n")
	return b.String()
}

type printer struct {
	indent int
}

func (p *printer) writeStmt(b *strings.Builder, e Expr) {
	b.WriteString(strings.Repeat("    ", p.indent))
	b.WriteString(p.expr(e))
	b.WriteByte('\n')
}

func (p *printer) expr(e Expr) string {
	return e.Accept(p).(string)
}

func (p *printer) VisitLiteral(e Literal) any        { return e.Value }
func (p *printer) VisitIdentifier(e Identifier) any   { return e.Name }
func (p *printer) VisitGlobalDataAddr(e GlobalDataAddr) any {
	return "&" + e.Name
}
func (p *printer) VisitAssign(e Assign) any {
	return e.Name + " = " + p.expr(e.Rhs)
}
func (p *printer) VisitBinary(e Binary) any {
	return "(" + p.expr(e.Lhs) + " " + e.Op.String() + " " + p.expr(e.Rhs) + ")"
}
func (p *printer) VisitCompare(e Compare) any {
	return "(" + p.expr(e.Lhs) + " " + e.Op.String() + " " + p.expr(e.Rhs) + ")"
}
func (p *printer) VisitCall(e Call) any {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = p.expr(a)
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}

func (p *printer) VisitIfElse(e IfElse) any {
	var b strings.Builder
	b.WriteString("if ")
	b.WriteString(p.expr(e.Cond))
	b.WriteString(" {\n")
	inner := &printer{indent: p.indent + 1}
	for _, s := range e.Then {
		inner.writeStmt(&b, s)
	}
	b.WriteString(strings.Repeat("    ", p.indent))
	b.WriteString("} else {\n")
	for _, s := range e.Else {
		inner.writeStmt(&b, s)
	}
	b.WriteString(strings.Repeat("    ", p.indent))
	b.WriteString("}")
	return b.String()
}

func (p *printer) VisitWhileLoop(e WhileLoop) any {
	var b strings.Builder
	b.WriteString("while ")
	b.WriteString(p.expr(e.Cond))
	b.WriteString(" {\n")
	inner := &printer{indent: p.indent + 1}
	for _, s := range e.Body {
		inner.writeStmt(&b, s)
	}
	b.WriteString(strings.Repeat("    ", p.indent))
	b.WriteString("}")
	return b.String()
}
