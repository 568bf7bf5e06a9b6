// Package frontend translates a parsed ast.Function into a backend
// Function: it assigns every source-level name a backend.Variable, then
// walks the body emitting backend.Builder calls that implement each
// expression's runtime behavior.
package frontend

import "toyjit/ast"

// discoverVariables walks fn the same way Cranelift's JIT demo does:
// every parameter, the return variable, and the left-hand side of every
// Assign (wherever it first appears, including inside nested if/else or
// while bodies) gets exactly one backend.Variable, in first-occurrence
// order. A name assigned more than once keeps its first slot — it's the
// same variable, just written again.
//
// This has to run as a separate pass before translation because the
// Builder's DefVar/UseVar calls need a Variable handle before the
// right-hand side of the very first statement that mentions the name
// (consider "x = x + 1" as a function's only statement referring to a
// parameter never otherwise assigned: x's Variable must exist before
// DefVar(x, ...) runs).
func discoverVariables(fn ast.Function) map[string]int {
	order := make(map[string]int)
	next := func(name string) {
		if _, ok := order[name]; !ok {
			order[name] = len(order)
		}
	}

	for _, p := range fn.Params {
		next(p)
	}
	next(fn.Return)

	var walkStmts func([]ast.Expr)
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case ast.Assign:
			next(n.Name)
			walk(n.Rhs)
		case ast.Binary:
			walk(n.Lhs)
			walk(n.Rhs)
		case ast.Compare:
			walk(n.Lhs)
			walk(n.Rhs)
		case ast.Call:
			for _, a := range n.Args {
				walk(a)
			}
		case ast.IfElse:
			walk(n.Cond)
			walkStmts(n.Then)
			walkStmts(n.Else)
		case ast.WhileLoop:
			walk(n.Cond)
			walkStmts(n.Body)
		case ast.Identifier, ast.Literal, ast.GlobalDataAddr:
			// no sub-expressions, no assignment target
		}
	}
	walkStmts = func(stmts []ast.Expr) {
		for _, s := range stmts {
			walk(s)
		}
	}
	walkStmts(fn.Body)

	return order
}
