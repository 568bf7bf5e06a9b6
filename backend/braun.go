package backend

// This file implements the variable side of Braun et al.'s SSA
// construction algorithm (def_var/use_var/seal_block), the same shape
// Cranelift's frontend crate uses: a variable's value is whatever was
// last written to it in the current block, or — recursively — whatever
// its predecessors agree it holds, with a phi inserted the moment two
// predecessors disagree. Blocks still being built (not yet sealed) defer
// that recursion via a placeholder phi that SealBlock later fills in.

// DefVar records that v now holds val at the current block.
func (b *Builder) DefVar(v Variable, val Value) {
	b.writeVariable(v, b.cur, val)
}

// UseVar resolves v's current value at the current block, inserting phi
// nodes as needed.
func (b *Builder) UseVar(v Variable) Value {
	return b.readVariable(v, b.cur)
}

func (b *Builder) writeVariable(v Variable, blk Block, val Value) {
	defs, ok := b.curDef[v]
	if !ok {
		defs = make(map[Block]Value)
		b.curDef[v] = defs
	}
	defs[blk] = val
}

func (b *Builder) readVariable(v Variable, blk Block) Value {
	if val, ok := b.curDef[v][blk]; ok {
		return val
	}
	return b.readVariableRecursive(v, blk)
}

func (b *Builder) readVariableRecursive(v Variable, blk Block) Value {
	bd := b.fn.block(blk)

	var val Value
	switch {
	case !bd.sealed:
		// Predecessors aren't all known yet (this is a loop header whose
		// back edge hasn't been emitted). Park a phi placeholder and
		// resolve it once SealBlock sees the rest of the predecessors.
		phi := &varPhi{variable: v, value: b.fn.newValue()}
		bd.incomplete[v] = phi
		val = phi.value
	case len(bd.preds) == 1:
		val = b.readVariable(v, bd.preds[0])
	default:
		phi := &varPhi{variable: v, value: b.fn.newValue()}
		bd.phis = append(bd.phis, phi)
		// Write the phi's own value before recursing so a cycle back to
		// this (block, variable) pair — a loop-carried variable read
		// again within the loop body — terminates instead of looping
		// forever.
		b.writeVariable(v, blk, phi.value)
		b.addPhiOperands(phi, blk)
		val = phi.value
	}

	b.writeVariable(v, blk, val)
	return val
}

func (b *Builder) addPhiOperands(phi *varPhi, blk Block) {
	bd := b.fn.block(blk)
	for _, pred := range bd.preds {
		phi.operands = append(phi.operands, phiOperand{pred: pred, value: b.readVariable(phi.variable, pred)})
	}
}

// SealBlock declares that blk will never gain another predecessor. Every
// variable read inside (or downstream of) blk before this point may have
// left behind an incomplete phi; those are resolved now against the
// now-final predecessor list.
func (b *Builder) SealBlock(blk Block) {
	bd := b.fn.block(blk)
	for v, phi := range bd.incomplete {
		b.addPhiOperands(phi, blk)
		bd.phis = append(bd.phis, phi)
		delete(bd.incomplete, v)
	}
	bd.sealed = true
}
