package session_test

import (
	"testing"

	"toyjit/frontend"
	"toyjit/session"
)

func TestFoo(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addr, err := s.Compile(`
fn foo(a, b) -> (c) {
    c = if a {
        if b {
            30
        } else {
            40
        }
    } else {
        50
    }
    c = c + 2
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := s.Invoke(addr, 1, 0); got != 42 {
		t.Errorf("foo(1, 0) = %d, want 42", got)
	}
}

func TestRecursiveFib(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addr, err := s.Compile(`
fn recursive_fib(n) -> (r) {
    r = if n == 0 {
        0
    } else {
        if n == 1 {
            1
        } else {
            recursive_fib(n - 1) + recursive_fib(n - 2)
        }
    }
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := s.Invoke(addr, 10); got != 55 {
		t.Errorf("recursive_fib(10) = %d, want 55", got)
	}
}

func TestIterativeFib(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addr, err := s.Compile(`
fn iterative_fib(n) -> (r) {
    if n == 0 {
        r = 0
    } else {
        n = n - 1
        a = 0
        r = 1
        while n != 0 {
            t = r
            r = r + a
            a = t
            n = n - 1
        }
    }
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := s.Invoke(addr, 10); got != 55 {
		t.Errorf("iterative_fib(10) = %d, want 55", got)
	}
}

func TestCountdown(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addr, err := s.Compile(`
fn countdown(n) -> (r) {
    r = if n == 0 {
        0
    } else {
        println_int(n)
        countdown(n - 1)
    }
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := s.Invoke(addr, 5); got != 0 {
		t.Errorf("countdown(5) = %d, want 0", got)
	}
}

func TestHello(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.CreateData("hello_string", []byte("hello world!")); err != nil {
		t.Fatalf("CreateData() error = %v", err)
	}
	addr, err := s.Compile(`
fn hello() -> (r) {
    r = puts(&hello_string)
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	s.Invoke(addr)
}

func TestDuplicateData(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.CreateData("greeting", []byte("hi")); err != nil {
		t.Fatalf("first CreateData() error = %v", err)
	}
	err = s.CreateData("greeting", []byte("bye"))
	if _, ok := err.(session.DuplicateDataError); !ok {
		t.Fatalf("second CreateData() error = %v (%T), want session.DuplicateDataError", err, err)
	}
}

func TestDuplicateDefinition(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	const src = `
fn dup() -> (r) {
    r = 1
}
`
	if _, err := s.Compile(src); err != nil {
		t.Fatalf("first Compile() error = %v", err)
	}
	_, err = s.Compile(src)
	if _, ok := err.(session.DuplicateDefinitionError); !ok {
		t.Fatalf("second Compile() error = %v (%T), want session.DuplicateDefinitionError", err, err)
	}
}

func TestUnresolvedName(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = s.Compile(`
fn callsNothing() -> (r) {
    r = this_symbol_does_not_exist_anywhere(1)
}
`)
	if _, ok := err.(session.UnresolvedNameError); !ok {
		t.Fatalf("Compile() error = %v (%T), want session.UnresolvedNameError", err, err)
	}
}

// TestUnresolvedNameLeavesNameRedefinable checks that a Compile call
// failing on UnresolvedNameError doesn't permanently consume its
// function's name — fixing the typo and recompiling must succeed
// instead of hitting DuplicateDefinitionError.
func TestUnresolvedNameLeavesNameRedefinable(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = s.Compile(`
fn retryable() -> (r) {
    r = this_symbol_does_not_exist_anywhere(1)
}
`)
	if _, ok := err.(session.UnresolvedNameError); !ok {
		t.Fatalf("first Compile() error = %v (%T), want session.UnresolvedNameError", err, err)
	}

	addr, err := s.Compile(`
fn retryable() -> (r) {
    r = 9
}
`)
	if err != nil {
		t.Fatalf("retry Compile() error = %v", err)
	}
	if got := s.Invoke(addr); got != 9 {
		t.Errorf("retryable() = %d, want 9", got)
	}
}

// TestUnresolvedNameDoesNotPoisonLaterCompiles checks that a stale
// unresolved call left behind by one failed Compile doesn't block a
// later, unrelated Compile that never references it.
func TestUnresolvedNameDoesNotPoisonLaterCompiles(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = s.Compile(`
fn leavesDangling() -> (r) {
    r = this_symbol_does_not_exist_anywhere(1)
}
`)
	if _, ok := err.(session.UnresolvedNameError); !ok {
		t.Fatalf("first Compile() error = %v (%T), want session.UnresolvedNameError", err, err)
	}

	addr, err := s.Compile(`
fn unrelated() -> (r) {
    r = 7
}
`)
	if err != nil {
		t.Fatalf("second Compile() error = %v, want nil", err)
	}
	if got := s.Invoke(addr); got != 7 {
		t.Errorf("unrelated() = %d, want 7", got)
	}
}

func TestArityMismatch(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Compile(`
fn foo(a, b) -> (c) {
    c = a + b
}
`); err != nil {
		t.Fatalf("Compile(foo) error = %v", err)
	}
	_, err = s.Compile(`
fn bar() -> (r) {
    r = foo(1)
}
`)
	if _, ok := err.(frontend.ArityMismatchError); !ok {
		t.Fatalf("Compile(bar) error = %v (%T), want frontend.ArityMismatchError", err, err)
	}
}

func TestArityMismatchAgainstBuiltin(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = s.Compile(`
fn callsAssertWrong(a) -> (r) {
    r = assert_int(a)
}
`)
	if _, ok := err.(frontend.ArityMismatchError); !ok {
		t.Fatalf("Compile() error = %v (%T), want frontend.ArityMismatchError", err, err)
	}
}

func TestArityMismatchSelfRecursive(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = s.Compile(`
fn badRecurse(n) -> (r) {
    r = badRecurse(n, n)
}
`)
	if _, ok := err.(frontend.ArityMismatchError); !ok {
		t.Fatalf("Compile() error = %v (%T), want frontend.ArityMismatchError", err, err)
	}
}

func TestReturnsZeroWithNoAssignToReturnVariable(t *testing.T) {
	s, err := session.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	addr, err := s.Compile(`
fn noop(x) -> (r) {
    x = x + 1
}
`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := s.Invoke(addr, 7); got != 0 {
		t.Errorf("noop(7) = %d, want 0", got)
	}
}
