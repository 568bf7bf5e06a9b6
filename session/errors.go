package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotReentrant is returned when a Session method that mutates session
// state is called while another such call is already in flight — the
// session is single-threaded and cooperative, not safe for concurrent
// use, but it would rather fail cleanly than race.
var ErrNotReentrant = errors.New("🤖 session is not reentrant: a call is already in progress")

// DuplicateDefinitionError is returned when Compile is asked to define a
// function whose name this session has already defined. The session
// keeps no notion of redefinition or shadowing — once a name is taken,
// it's taken for the session's lifetime.
type DuplicateDefinitionError struct {
	Name string
}

func (e DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("💥 %q is already defined in this session", e.Name)
}

// DuplicateDataError is returned when CreateData is asked to declare a
// data blob whose name this session has already declared. Like function
// names, data names are unique for the session's lifetime.
type DuplicateDataError struct {
	Name string
}

func (e DuplicateDataError) Error() string {
	return fmt.Sprintf("💥 data %q is already defined in this session", e.Name)
}

// UnresolvedNameError is returned when a newly compiled function calls one
// or more names that resolve to neither an earlier definition nor a
// builtin/host symbol. Unlike a syntax or arity error, this can only be
// detected after the whole module is built — a name undefined now might
// still be defined by a later Compile call, so the check runs once per
// Compile rather than rejecting the call site up front.
type UnresolvedNameError struct {
	Names []string
}

func (e UnresolvedNameError) Error() string {
	return fmt.Sprintf("🤖 unresolved name(s): %s", strings.Join(e.Names, ", "))
}
