package frontend

import (
	"toyjit/ast"
	"toyjit/backend"
)

var binOpTable = map[ast.BinOp]func(*backend.Builder, backend.Value, backend.Value) backend.Value{
	ast.Add: (*backend.Builder).Iadd,
	ast.Sub: (*backend.Builder).Isub,
	ast.Mul: (*backend.Builder).Imul,
	ast.Div: (*backend.Builder).Udiv,
}

var cmpOpTable = map[ast.CmpOp]backend.CmpOp{
	ast.Eq: backend.CmpEq,
	ast.Ne: backend.CmpNe,
	ast.Lt: backend.CmpLt,
	ast.Le: backend.CmpLe,
	ast.Gt: backend.CmpGt,
	ast.Ge: backend.CmpGe,
}

// maxParams mirrors the System V AMD64 ABI's six integer/pointer argument
// registers — the same limit the backend package enforces at codegen
// time. Checking it here, before any code is generated, turns an
// over-wide function into a clean ArityError instead of an ErrUnsupported
// error from the backend at finalize time.
const maxParams = 6

// Translate lowers a parsed function to the backend's SSA-ish IR, ready
// for backend.Module.DefineFunction. resolveCall and resolveData back
// onto the owning session's symbol table: resolveCall always succeeds
// structurally (unresolved names are only caught by the session after it
// finalizes the compiled code — see session.UnresolvedNameError), while
// resolveData must know about every global immediately, since a data
// address is baked into the instruction stream as an immediate the moment
// it's referenced. resolveArity reports a name's declared parameter
// count where it's already known (an earlier Compile call's function, or
// a builtin) — a call site disagreeing with it is rejected as
// ArityMismatchError; a name resolveArity doesn't know yet is left for
// session-level unresolved-name handling, not treated as zero-arity.
func Translate(fn ast.Function, resolveCall func(name string) (*uintptr, bool), resolveArity func(name string) (int, bool), resolveData func(name string) (uintptr, bool)) (*backend.Function, error) {
	if len(fn.Params) > maxParams {
		return nil, ArityError{Function: fn.Name, Got: len(fn.Params), Max: maxParams}
	}

	vars := discoverVariables(fn)
	b := backend.NewBuilder(fn.Name, len(fn.Params), resolveCall)
	t := &translator{
		b:            b,
		vars:         vars,
		resolveData:  resolveData,
		resolveArity: resolveArity,
		selfName:     fn.Name,
		selfArity:    len(fn.Params),
	}

	for i, p := range fn.Params {
		t.b.DefVar(backend.Variable(vars[p]), t.b.EntryParam(i))
	}
	t.b.DefVar(backend.Variable(vars[fn.Return]), t.b.Iconst(0))

	if err := t.translateStmts(fn.Body); err != nil {
		return nil, err
	}

	retVal := t.b.UseVar(backend.Variable(vars[fn.Return]))
	t.b.Return(retVal)
	return t.b.Finish(), nil
}

type translator struct {
	b            *backend.Builder
	vars         map[string]int
	resolveData  func(name string) (uintptr, bool)
	resolveArity func(name string) (int, bool)

	// selfName/selfArity let a self-recursive call be arity-checked even
	// though the function being translated isn't defined on the Module
	// until after Translate returns, so resolveArity can't see it yet.
	selfName  string
	selfArity int
}

// knownArity returns name's declared parameter count if this Translate
// call can determine it: either name is the function currently being
// translated (a self-recursive call), or the session already finished
// defining/binding name before this Compile call began. Anything else —
// a forward reference to a not-yet-defined function, or a name that will
// only resolve later via the host dynamic linker — reports ok=false and
// is left to session-level unresolved-name handling.
func (t *translator) knownArity(name string) (int, bool) {
	if name == t.selfName {
		return t.selfArity, true
	}
	return t.resolveArity(name)
}

func (t *translator) translateStmts(stmts []ast.Expr) error {
	for _, s := range stmts {
		if _, err := t.translateExpr(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *translator) translateExpr(e ast.Expr) (backend.Value, error) {
	switch n := e.(type) {
	case ast.Literal:
		return t.b.Iconst(int64(parseUint64Wrapping(n.Value))), nil

	case ast.Identifier:
		idx, ok := t.vars[n.Name]
		if !ok {
			return 0, UnresolvedVariableError{Name: n.Name}
		}
		return t.b.UseVar(backend.Variable(idx)), nil

	case ast.GlobalDataAddr:
		addr, ok := t.resolveData(n.Name)
		if !ok {
			return 0, UnresolvedDataError{Name: n.Name}
		}
		return t.b.Iconst(int64(addr)), nil

	case ast.Assign:
		val, err := t.translateExpr(n.Rhs)
		if err != nil {
			return 0, err
		}
		t.b.DefVar(backend.Variable(t.vars[n.Name]), val)
		return val, nil

	case ast.Binary:
		lhs, rhs, err := t.translatePair(n.Lhs, n.Rhs)
		if err != nil {
			return 0, err
		}
		return binOpTable[n.Op](t.b, lhs, rhs), nil

	case ast.Compare:
		lhs, rhs, err := t.translatePair(n.Lhs, n.Rhs)
		if err != nil {
			return 0, err
		}
		return t.b.Icmp(cmpOpTable[n.Op], lhs, rhs), nil

	case ast.Call:
		args := make([]backend.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := t.translateExpr(a)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		if len(args) > maxParams {
			return 0, ArityError{Function: n.Name, Got: len(args), Max: maxParams}
		}
		if want, ok := t.knownArity(n.Name); ok && want != len(args) {
			return 0, ArityMismatchError{Function: n.Name, Want: want, Got: len(args)}
		}
		val, _ := t.b.Call(n.Name, args)
		return val, nil

	case ast.IfElse:
		return t.translateIfElse(n)

	case ast.WhileLoop:
		return t.translateWhileLoop(n)

	default:
		return 0, UnresolvedVariableError{Name: "<unknown expression>"}
	}
}

func (t *translator) translatePair(l, r ast.Expr) (backend.Value, backend.Value, error) {
	lv, err := t.translateExpr(l)
	if err != nil {
		return 0, 0, err
	}
	rv, err := t.translateExpr(r)
	if err != nil {
		return 0, 0, err
	}
	return lv, rv, nil
}

// translateIfElse lowers to three new blocks: then and else (each with a
// single predecessor — the block the condition was computed in — sealed
// immediately) and a merge block sealed once both arms have jumped into
// it. The if/else expression's value travels as merge's one explicit
// block parameter, never through a Braun variable-phi — the Then/Else
// value isn't bound to any source variable.
func (t *translator) translateIfElse(n ast.IfElse) (backend.Value, error) {
	cond, err := t.translateExpr(n.Cond)
	if err != nil {
		return 0, err
	}

	thenBlk := t.b.CreateBlock()
	elseBlk := t.b.CreateBlock()
	mergeBlk := t.b.CreateBlock()
	mergeVal := t.b.AppendBlockParam(mergeBlk)

	t.b.BrCond(cond, thenBlk, elseBlk)
	t.b.SealBlock(thenBlk)
	t.b.SealBlock(elseBlk)

	t.b.SwitchToBlock(thenBlk)
	thenVal, err := t.translateBranch(n.Then)
	if err != nil {
		return 0, err
	}
	t.b.Jump(mergeBlk, thenVal)

	t.b.SwitchToBlock(elseBlk)
	elseVal, err := t.translateBranch(n.Else)
	if err != nil {
		return 0, err
	}
	t.b.Jump(mergeBlk, elseVal)

	t.b.SealBlock(mergeBlk)
	t.b.SwitchToBlock(mergeBlk)
	return mergeVal, nil
}

// translateBranch runs every statement in a then/else/while body and
// returns the last one's value, or zero for an empty body — the value an
// empty branch contributes to an enclosing if/else merge.
func (t *translator) translateBranch(stmts []ast.Expr) (backend.Value, error) {
	var last backend.Value
	have := false
	for _, s := range stmts {
		v, err := t.translateExpr(s)
		if err != nil {
			return 0, err
		}
		last, have = v, true
	}
	if !have {
		return t.b.Iconst(0), nil
	}
	return last, nil
}

// translateWhileLoop lowers to a header block (left unsealed until the
// back edge from the body is known, so variables read in the condition
// before then get Braun phi placeholders), a body block, and an exit
// block. A while loop's value is always zero.
func (t *translator) translateWhileLoop(n ast.WhileLoop) (backend.Value, error) {
	header := t.b.CreateBlock()
	t.b.Jump(header)

	t.b.SwitchToBlock(header)
	cond, err := t.translateExpr(n.Cond)
	if err != nil {
		return 0, err
	}

	body := t.b.CreateBlock()
	exit := t.b.CreateBlock()
	t.b.BrCond(cond, body, exit)
	t.b.SealBlock(body)
	t.b.SealBlock(exit)

	t.b.SwitchToBlock(body)
	if _, err := t.translateBranch(n.Body); err != nil {
		return 0, err
	}
	t.b.Jump(header)
	t.b.SealBlock(header)

	t.b.SwitchToBlock(exit)
	return t.b.Iconst(0), nil
}

// parseUint64Wrapping reads a run of ASCII decimal digits as an unsigned
// 64-bit integer, wrapping silently on overflow rather than rejecting the
// literal — an integer constant too wide for a machine word is still
// well-formed source, it just names whatever value its low 64 bits work
// out to, same as a narrowing integer cast.
func parseUint64Wrapping(digits string) uint64 {
	var v uint64
	for _, c := range digits {
		v = v*10 + uint64(c-'0')
	}
	return v
}
