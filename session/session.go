// Package session is the JIT's top-level facade: parse one function,
// translate it, hand it to the backend, and make the result callable,
// wired together behind CreateData, Compile, Lookup and Invoke.
package session

import (
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"

	"toyjit/backend"
	"toyjit/builtins"
	"toyjit/frontend"
	"toyjit/lexer"
	"toyjit/parser"
)

// Session holds one JIT compilation unit's accumulated state: every
// function and global compiled into it so far, all sharing one address
// space so later definitions can call earlier ones (and themselves) by
// name. A Session is single-threaded and cooperative, not reentrant: the
// mutex below exists only to turn a concurrent mutating call into a clean
// ErrNotReentrant instead of a data race, not to make the session safe
// for concurrent use. Callers needing concurrency should use one Session
// per goroutine.
type Session struct {
	mu      sync.Mutex
	mod     *backend.Module
	defined map[string]bool
}

// New creates a Session with the builtin bridge (println_int,
// println_string, assert_int, puts) already bound.
func New() (*Session, error) {
	mod := backend.NewModule()
	if err := builtins.Register(mod.BindSymbolArity); err != nil {
		return nil, fmt.Errorf("session: registering builtins: %w", err)
	}
	return &Session{mod: mod, defined: make(map[string]bool)}, nil
}

// CreateData declares a named global byte blob — source refers to it as
// "&name" — and appends a trailing NUL so it can double as a C string for
// puts/println_string. The blob is mapped, and its address assigned, by
// the next Compile call that gets past parsing, before that call
// translates its function.
func (s *Session) CreateData(name string, data []byte) error {
	if !s.mu.TryLock() {
		return ErrNotReentrant
	}
	defer s.mu.Unlock()
	withNUL := make([]byte, len(data)+1)
	copy(withNUL, data)
	if !s.mod.DeclareData(name, withNUL) {
		return DuplicateDataError{Name: name}
	}
	return nil
}

// Compile parses source as a single function definition, translates and
// compiles it, and returns its finalized, callable address. Source must
// define exactly one function whose name hasn't been defined earlier in
// this session.
//
// A failure before the function is handed to the backend defines nothing
// new, though call slots reserved while translating its calls stay
// declared (unbound), and data declared by CreateData may already have
// been mapped. A failure at the UnresolvedNameError check, after Finalize
// has already run, still maps the function's code, but the name isn't
// recorded as defined — a later Compile call for the same name (with the
// typo or missing definition fixed) redefines it rather than hitting
// DuplicateDefinitionError.
func (s *Session) Compile(source string) (uintptr, error) {
	if !s.mu.TryLock() {
		return 0, ErrNotReentrant
	}
	defer s.mu.Unlock()

	tokens, err := lexer.New(source).Scan()
	if err != nil {
		return 0, err
	}
	fn, err := parser.Function(tokens)
	if err != nil {
		return 0, err
	}
	if s.defined[fn.Name] {
		return 0, DuplicateDefinitionError{Name: fn.Name}
	}

	// Map data declared since the last Compile, so "&name" in this
	// function resolves to an address during translation.
	if err := s.mod.Finalize(); err != nil {
		return 0, err
	}

	backendFn, err := frontend.Translate(fn, s.mod.Resolver(), s.mod.ArityResolver(), s.mod.DataAddr)
	if err != nil {
		return 0, err
	}

	s.mod.DefineFunction(backendFn)
	if err := s.mod.Finalize(); err != nil {
		return 0, err
	}

	s.resolveViaHostLinker()
	if names := s.mod.UnresolvedAmong(backendFn.CalledNames()); len(names) > 0 {
		// fn.Name's code is already mapped, but it isn't marked defined:
		// its module slot stays declared (and callable, though it calls
		// through still-unbound slots if ever invoked), so a later
		// Compile with corrected source for the same name redefines it
		// cleanly instead of hitting DuplicateDefinitionError. Scoping
		// the check to this function's own calls (rather than every
		// symbol the module has ever declared) keeps one bad call from
		// permanently poisoning every unrelated Compile afterward.
		return 0, UnresolvedNameError{Names: names}
	}
	s.defined[fn.Name] = true

	addr, _ := s.mod.FunctionAddr(fn.Name)
	return addr, nil
}

// resolveViaHostLinker is the unresolved-symbol fallback: any call
// naming neither an earlier definition nor one of the four builtins is
// tried against the host process's own dynamic symbol table, the same
// mechanism that finds libc's puts. A typo silently binds to whatever
// same-named symbol the process happens to have loaded, so every
// fallback binding is logged.
func (s *Session) resolveViaHostLinker() {
	for _, name := range s.mod.UnresolvedSymbols() {
		addr, ok := builtins.ResolveHostSymbol(name)
		if !ok {
			continue
		}
		fmt.Fprintf(os.Stderr, "⚠️  %q resolved via host dynamic linker fallback\n", name)
		s.mod.BindSymbol(name, addr)
	}
}

// Lookup returns a previously compiled function's address by name.
func (s *Session) Lookup(name string) (uintptr, bool) {
	if !s.mu.TryLock() {
		return 0, false
	}
	defer s.mu.Unlock()
	return s.mod.FunctionAddr(name)
}

// Invoke calls a compiled function's raw address with up to six int64
// arguments (the System V register limit this backend's code generator
// shares) and returns its int64 result. There is no cgo involved: the
// call itself goes through purego's architecture-specific trampoline,
// the same mechanism the builtin bridge uses in reverse to make Go
// functions callable from JIT'd code.
func (s *Session) Invoke(addr uintptr, args ...int64) int64 {
	raw := make([]uintptr, len(args))
	for i, a := range args {
		raw[i] = uintptr(a)
	}
	r1, _, _ := purego.SyscallN(addr, raw...)
	return int64(r1)
}
