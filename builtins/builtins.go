// Package builtins is the fixed bridge of host functions every compiled
// program can call without a prior declaration: println_int and
// println_string for quick diagnostic output, assert_int for the
// self-checking demo programs, and puts — resolved from the host's own
// libc through the dynamic linker.
//
// None of this touches cgo. println_int/println_string/assert_int become
// callable from JIT'd machine code via purego.NewCallback, which builds a
// small native trampoline around an ordinary Go function; puts is resolved
// by dlopen/dlsym against the host's C library, also via purego.
package builtins

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// libcCandidates covers the handful of shared library names puts is
// findable under on the platforms purego supports.
var libcCandidates = []string{
	"libc.so.6",
	"libc.so",
	"libSystem.B.dylib",
	"libSystem.dylib",
}

// Register installs every builtin's address and declared arity into the
// session by calling bind(name, addr, arity) once per symbol — bind is
// normally backend.Module.BindSymbolArity.
func Register(bind func(name string, addr uintptr, arity int)) error {
	bind("println_int", purego.NewCallback(printlnInt), 1)
	bind("println_string", purego.NewCallback(printlnString), 1)
	bind("assert_int", purego.NewCallback(assertInt), 2)

	puts, err := resolvePuts()
	if err != nil {
		return err
	}
	bind("puts", puts, 1)
	return nil
}

// printlnInt prints a signed 64-bit value. The int64 return matches every
// builtin's signature from the compiled program's point of view — this
// language has no void type, so builtins called purely for effect still
// hand back a word the caller is free to ignore.
func printlnInt(n int64) int64 {
	fmt.Println(n)
	return 0
}

func printlnString(addr uintptr) int64 {
	fmt.Println(readCString(addr))
	return 0
}

// assertInt aborts the process on a mismatch, per assert_int's contract.
// It's called through purego's callback trampoline from JIT'd machine
// code with no Go frame info, so an unrecovered panic here can't unwind
// cleanly back through the caller — it reaches the runtime's fatal-panic
// path and terminates the process, which satisfies "abort" even though
// it isn't a tidy os.Exit. Called directly (as in this package's own
// tests), the panic is an ordinary recoverable one.
func assertInt(actual, expected int64) int64 {
	if actual != expected {
		panic(AssertionError{Actual: actual, Expected: expected})
	}
	return 0
}

func readCString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(n))) != 0 {
		n++
	}
	return unsafe.String((*byte)(unsafe.Pointer(addr)), n)
}

func resolvePuts() (uintptr, error) {
	var lastErr error
	for _, name := range libcCandidates {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		sym, err := purego.Dlsym(handle, "puts")
		if err != nil {
			lastErr = err
			continue
		}
		return sym, nil
	}
	return 0, fmt.Errorf("builtins: resolving puts via the host dynamic linker: %w", lastErr)
}

// ResolveHostSymbol looks up name against the host process's whole
// dynamic symbol table — the unresolved-call fallback. It's the same
// dlopen/dlsym path puts itself goes through, just against the process
// image (an empty library name) rather than one specific library, so any
// loaded library's exports are visible.
func ResolveHostSymbol(name string) (uintptr, bool) {
	handle, err := purego.Dlopen("", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, false
	}
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, false
	}
	return sym, true
}
