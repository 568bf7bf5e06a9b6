package backend

// Builder assembles one Function's blocks and instructions. Its variable
// API (DefVar/UseVar/SealBlock) implements Braun et al.'s construction
// algorithm: reading a variable that was last written in a different block
// transparently inserts phi nodes, recursing through unsealed
// predecessors and caching placeholders keyed by (block, variable) so a
// later SealBlock can fill in the operands a block's predecessors
// determine.
//
// Every block must eventually be sealed — call SealBlock as soon as all of
// a block's predecessors are known, which for this language's grammar
// means: right after emitting the branch into them for single-predecessor
// blocks (then/else arms, loop bodies, loop exits), once both arms have
// jumped in for if/else merge blocks, and right after emitting the
// back-edge jump for loop headers.
type Builder struct {
	fn *Function
	cur Block

	// curDef[v][b] is the value Variable v holds at the end of block b,
	// or the value it holds on entry if b has no local definition yet.
	curDef map[Variable]map[Block]Value

	resolveCall func(name string) (*uintptr, bool)
}

// NewBuilder starts building a fresh Function with the given name and
// parameter count, and creates+switches to its entry block.
func NewBuilder(name string, numParams int, resolveCall func(name string) (*uintptr, bool)) *Builder {
	fn := newFunction(name, numParams)
	b := &Builder{
		fn:          fn,
		curDef:      make(map[Variable]map[Block]Value),
		resolveCall: resolveCall,
	}
	entry := b.CreateBlock()
	fn.entry = entry
	b.cur = entry
	for i := 0; i < numParams; i++ {
		v := fn.newValue()
		b.appendInstr(instr{kind: insParam, result: v, index: i})
	}
	b.SealBlock(entry)
	return b
}

// Finish returns the Function being built. The caller must have reached
// the end of every reachable path with a terminator (Jump, BrCond, or
// Return) before calling this.
func (b *Builder) Finish() *Function { return b.fn }

// EntryParam returns the value holding the i'th incoming parameter,
// available only in the entry block itself; callers normally go through
// DefVar/UseVar instead, binding each parameter to a Variable right after
// NewBuilder returns.
func (b *Builder) EntryParam(i int) Value {
	blk := b.fn.block(b.fn.entry)
	for _, ins := range blk.instrs {
		if ins.kind == insParam && ins.index == i {
			return ins.result
		}
	}
	panic("backend: EntryParam index out of range")
}

func (b *Builder) CreateBlock() Block {
	b.fn.blocks = append(b.fn.blocks, &blockData{incomplete: make(map[Variable]*varPhi)})
	return Block(len(b.fn.blocks) - 1)
}

func (b *Builder) SwitchToBlock(blk Block) { b.cur = blk }

func (b *Builder) CurrentBlock() Block { return b.cur }

// AppendBlockParam adds an explicit parameter to blk — used for the
// if/else merge value, which every Jump into the merge block must supply
// as an argument in the same position.
func (b *Builder) AppendBlockParam(blk Block) Value {
	v := b.fn.newValue()
	bd := b.fn.block(blk)
	bd.params = append(bd.params, v)
	return v
}

// BlockParams returns blk's explicit parameters in declaration order.
func (b *Builder) BlockParams(blk Block) []Value {
	return b.fn.block(blk).params
}

func (b *Builder) appendInstr(ins instr) {
	bd := b.fn.block(b.cur)
	bd.instrs = append(bd.instrs, ins)
}

func (b *Builder) emitValue(ins instr) Value {
	v := b.fn.newValue()
	ins.result = v
	b.appendInstr(ins)
	return v
}

func (b *Builder) Iconst(imm int64) Value {
	return b.emitValue(instr{kind: insIconst, imm: imm})
}

func (b *Builder) Iadd(lhs, rhs Value) Value {
	return b.emitValue(instr{kind: insIadd, lhs: lhs, rhs: rhs})
}

func (b *Builder) Isub(lhs, rhs Value) Value {
	return b.emitValue(instr{kind: insIsub, lhs: lhs, rhs: rhs})
}

func (b *Builder) Imul(lhs, rhs Value) Value {
	return b.emitValue(instr{kind: insImul, lhs: lhs, rhs: rhs})
}

func (b *Builder) Udiv(lhs, rhs Value) Value {
	return b.emitValue(instr{kind: insUdiv, lhs: lhs, rhs: rhs})
}

func (b *Builder) Icmp(op CmpOp, lhs, rhs Value) Value {
	return b.emitValue(instr{kind: insIcmp, cmp: op, lhs: lhs, rhs: rhs})
}

// Call resolves name against the builder's call-target resolver (which
// knows about in-module functions, the builtin bridge, and host symbols)
// and emits a call instruction. ok is false when name is unresolved.
func (b *Builder) Call(name string, args []Value) (Value, bool) {
	slot, ok := b.resolveCall(name)
	if !ok {
		return 0, false
	}
	return b.emitValue(instr{kind: insCall, callName: name, callSlot: slot, args: args}), true
}

// Jump terminates the current block, transferring control (and args, for
// blk's explicit parameters) to blk.
func (b *Builder) Jump(blk Block, args ...Value) {
	bd := b.fn.block(b.cur)
	bd.instrs = append(bd.instrs, instr{kind: insJump, target: blk, args: args})
	bd.filled = true
	b.addPred(blk, b.cur)
}

// BrCond terminates the current block: control goes to trueBlk if cond is
// nonzero, falseBlk otherwise. Neither target may carry explicit block
// arguments along this edge — this language's grammar never needs that
// (see frontend/translate.go's if/else and while lowering).
func (b *Builder) BrCond(cond Value, trueBlk, falseBlk Block) {
	bd := b.fn.block(b.cur)
	bd.instrs = append(bd.instrs, instr{kind: insBrCond, cond: cond, target: trueBlk, falseTarget: falseBlk})
	bd.filled = true
	b.addPred(trueBlk, b.cur)
	b.addPred(falseBlk, b.cur)
}

func (b *Builder) Return(val Value) {
	bd := b.fn.block(b.cur)
	bd.instrs = append(bd.instrs, instr{kind: insReturn, retVal: val})
	bd.filled = true
}

func (b *Builder) addPred(blk, pred Block) {
	bd := b.fn.block(blk)
	bd.preds = append(bd.preds, pred)
}
