package backend

import "testing"

func TestMovRegImm64Encoding(t *testing.T) {
	a := &asm{}
	a.movRegImm64(rax, 0x1122334455667788)
	want := []byte{0x48, 0xB8, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}
	if string(a.code) != string(want) {
		t.Errorf("movRegImm64(rax, ...) = % x, want % x", a.code, want)
	}
}

func TestMovRegImm64ExtendedReg(t *testing.T) {
	a := &asm{}
	a.movRegImm64(r11, 1)
	// REX.W + REX.B (0x49), opcode B8+3 (r11's low 3 bits), imm64.
	if a.code[0] != 0x49 || a.code[1] != 0xBB {
		t.Errorf("movRegImm64(r11, 1) prefix/opcode = % x, want 49 bb", a.code[:2])
	}
}

func TestRetIsSingleByte(t *testing.T) {
	a := &asm{}
	a.ret()
	if len(a.code) != 1 || a.code[0] != 0xC3 {
		t.Errorf("ret() = % x, want c3", a.code)
	}
}

func TestStoreAndLoadSlotRoundTripDisplacement(t *testing.T) {
	a := &asm{}
	a.storeSlot(2, rax)
	a.loadSlot(rcx, 2)
	// storeSlot: REX.W(48) 89 modrm disp32; loadSlot: REX.W(48) 8B modrm disp32.
	if a.code[1] != 0x89 || a.code[8] != 0x8B {
		t.Fatalf("unexpected opcodes in % x", a.code)
	}
	wantDisp := slotDisp(2)
	gotStoreDisp := int32(uint32(a.code[3]) | uint32(a.code[4])<<8 | uint32(a.code[5])<<16 | uint32(a.code[6])<<24)
	if gotStoreDisp != wantDisp {
		t.Errorf("storeSlot disp = %d, want %d", gotStoreDisp, wantDisp)
	}
}

func TestJmpRel32RecordsFixup(t *testing.T) {
	a := &asm{}
	a.jmpRel32(Block(3))
	if len(a.fixups) != 1 {
		t.Fatalf("len(fixups) = %d, want 1", len(a.fixups))
	}
	if a.fixups[0].target != Block(3) {
		t.Errorf("fixup target = %d, want 3", a.fixups[0].target)
	}
	if a.fixups[0].pos != 1 {
		t.Errorf("fixup pos = %d, want 1 (right after the E9 opcode byte)", a.fixups[0].pos)
	}
}

func TestCodegenFunctionResolvesJumpFixup(t *testing.T) {
	noCalls := func(string) (*uintptr, bool) { return nil, false }
	b := NewBuilder("f", 0, noCalls)
	target := b.CreateBlock()
	b.Jump(target)
	b.SealBlock(target)
	b.SwitchToBlock(target)
	v := b.Iconst(7)
	b.Return(v)

	code, err := codegenFunction(b.Finish())
	if err != nil {
		t.Fatalf("codegenFunction() error = %v", err)
	}
	if len(code) == 0 {
		t.Fatal("codegenFunction() returned no code")
	}
}
