package builtins

import "fmt"

// AssertionError is what assert_int raises (as a Go panic, since the
// builtin bridge has no way to hand a `bool` back across the native call
// boundary) when a compiled program's internal self-check fails.
type AssertionError struct {
	Actual, Expected int64
}

func (e AssertionError) Error() string {
	return fmt.Sprintf("💥 assert_int: got %d, expected %d", e.Actual, e.Expected)
}
