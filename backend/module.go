package backend

import (
	"fmt"
	"sync"
	"unsafe"
)

// Module accumulates function and data definitions for one JIT session
// and resolves calls by name through per-symbol pointer slots allocated
// up front. Allocating the slot before the callee's code exists is what
// lets Builder.Call encode a self-recursive or forward-referencing call:
// the call instruction loads the slot's address as an immediate and
// dereferences it at call time, so it only needs the callee's final
// address to exist by the time the call actually runs, not by the time
// it's encoded.
//
// A symbol's declared parameter count is recorded alongside its slot
// whenever it becomes known — a defined function's from its own
// Function.NumParams, a builtin's from BindSymbolArity — so frontend.
// Translate can reject a mismatched call site before any code is
// generated for it, instead of letting the backend load whatever
// happens to be sitting in an argument register that was never written.
type Module struct {
	mu        sync.Mutex
	slots     map[string]*uintptr
	arities   map[string]int
	data      map[string][]byte
	dataAddrs map[string]uintptr
	pending   []*Function
	regions   [][]byte // retained so the mapped pages are never collected
}

func NewModule() *Module {
	return &Module{
		slots:     make(map[string]*uintptr),
		arities:   make(map[string]int),
		data:      make(map[string][]byte),
		dataAddrs: make(map[string]uintptr),
	}
}

// DeclareSymbol reserves (or returns the existing) call slot for name.
func (m *Module) DeclareSymbol(name string) *uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.declareSymbolLocked(name)
}

func (m *Module) declareSymbolLocked(name string) *uintptr {
	if slot, ok := m.slots[name]; ok {
		return slot
	}
	slot := new(uintptr)
	m.slots[name] = slot
	return slot
}

// BindSymbol points name's call slot directly at addr — used for host
// symbols resolved via the dynamic linker, whose machine code already
// exists outside this Module and whose declared arity this Module has no
// way of knowing.
func (m *Module) BindSymbol(name string, addr uintptr) {
	*m.DeclareSymbol(name) = addr
}

// BindSymbolArity is BindSymbol plus recording name's declared parameter
// count, so later calls to name can be checked for ArityMismatch at
// translate time — used for the builtin bridge, whose Go signatures are
// fixed and known up front, unlike an arbitrary host symbol.
func (m *Module) BindSymbolArity(name string, addr uintptr, arity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.declareSymbolLocked(name) = addr
	m.arities[name] = arity
}

// Resolver returns the name-to-slot lookup a Builder needs. Every name
// gets a slot, even one nothing has bound yet — whether the call actually
// resolves is checked by the session right after Finalize, not at build
// time (see session.UnresolvedNameError).
func (m *Module) Resolver() func(name string) (*uintptr, bool) {
	return func(name string) (*uintptr, bool) {
		return m.DeclareSymbol(name), true
	}
}

// ArityResolver returns the name-to-arity lookup Translate needs to
// reject an ArityMismatch call site before any code is generated for it.
// A name with no recorded arity — not yet defined in this session, or
// only ever resolved later via the host dynamic linker — reports
// ok=false, which callers must read as "can't check this call", not as
// "this call takes zero arguments".
func (m *Module) ArityResolver() func(name string) (int, bool) {
	return m.Arity
}

// Arity returns name's declared parameter count, recorded when it was
// either defined (DefineFunction) or bound with an explicit arity
// (BindSymbolArity).
func (m *Module) Arity(name string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	arity, ok := m.arities[name]
	return arity, ok
}

// DefineFunction registers fn, built by a Builder, to be compiled on the
// next Finalize call.
func (m *Module) DefineFunction(fn *Function) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	m.declareSymbolLocked(fn.Name)
	m.arities[fn.Name] = fn.NumParams
}

// DeclareData registers a named immutable byte blob — typically a
// NUL-terminated string literal backing a GlobalDataAddr — to be mapped
// on the next Finalize call. ok is false if name is already declared:
// data names, like function names, are unique for the module's lifetime.
func (m *Module) DeclareData(name string, bytes []byte) (ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[name]; exists {
		return false
	}
	m.data[name] = bytes
	return true
}

// DataAddr returns name's finalized address, valid once Finalize has run
// since the data was declared.
func (m *Module) DataAddr(name string) (uintptr, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr, ok := m.dataAddrs[name]
	return addr, ok
}

// FunctionAddr returns name's finalized code address, if name has been
// both declared and compiled.
func (m *Module) FunctionAddr(name string) (uintptr, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[name]
	if !ok || *slot == 0 {
		return 0, false
	}
	return *slot, true
}

// IsDeclared reports whether name has a reserved call slot, regardless of
// whether it has been bound yet.
func (m *Module) IsDeclared(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slots[name]
	return ok
}

// UnresolvedSymbols lists every declared symbol whose slot has never been
// bound — names a compiled function calls that resolve neither to another
// defined function nor to a builtin/host symbol. Call this after Finalize
// and before running any newly compiled function.
func (m *Module) UnresolvedSymbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name, slot := range m.slots {
		if *slot == 0 {
			names = append(names, name)
		}
	}
	return names
}

// UnresolvedAmong reports which of names have a declared slot that is
// still unbound (zero). Unlike UnresolvedSymbols, which scans every
// symbol ever declared across the module's whole lifetime, this scopes
// the check to a caller-supplied set — typically one function's own
// called names — so a stale unresolved call left behind by an earlier,
// failed Compile doesn't permanently block every later Compile that
// never itself references it.
func (m *Module) UnresolvedAmong(names []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var unresolved []string
	for _, name := range names {
		slot, ok := m.slots[name]
		if !ok || *slot == 0 {
			unresolved = append(unresolved, name)
		}
	}
	return unresolved
}

// Finalize maps every data blob declared and compiles every function
// defined since the previous call, into freshly allocated read-only and
// executable pages respectively, and patches each symbol's slot to its
// final address.
func (m *Module) Finalize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.finalizeDataLocked(); err != nil {
		return err
	}
	return m.finalizeFunctionsLocked()
}

func (m *Module) finalizeDataLocked() error {
	var names []string
	for name := range m.data {
		if _, done := m.dataAddrs[name]; !done {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	blobs := make([][]byte, len(names))
	for i, name := range names {
		blobs[i] = m.data[name]
	}
	region, offsets, err := allocReadOnly(blobs)
	if err != nil {
		return fmt.Errorf("backend: mapping data: %w", err)
	}
	m.regions = append(m.regions, region)
	base := regionAddr(region)
	for i, name := range names {
		m.dataAddrs[name] = base + uintptr(offsets[i])
	}
	return nil
}

func (m *Module) finalizeFunctionsLocked() error {
	if len(m.pending) == 0 {
		return nil
	}
	blobs := make([][]byte, len(m.pending))
	for i, fn := range m.pending {
		code, err := codegenFunction(fn)
		if err != nil {
			return fmt.Errorf("backend: compiling %q: %w", fn.Name, err)
		}
		blobs[i] = code
	}
	region, offsets, err := allocExecutable(blobs)
	if err != nil {
		return fmt.Errorf("backend: mapping code: %w", err)
	}
	m.regions = append(m.regions, region)
	base := regionAddr(region)
	for i, fn := range m.pending {
		*m.slots[fn.Name] = base + uintptr(offsets[i])
	}
	m.pending = nil
	return nil
}

func uintptrAddr(p *uintptr) uintptr { return uintptr(unsafe.Pointer(p)) }

func regionAddr(region []byte) uintptr { return uintptr(unsafe.Pointer(&region[0])) }
