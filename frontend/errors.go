package frontend

import "fmt"

// UnresolvedVariableError is returned when a function body reads an
// identifier that is neither a parameter, the declared return variable,
// nor the target of some earlier assignment — there is nothing in scope
// for it to name.
type UnresolvedVariableError struct {
	Name string
}

func (e UnresolvedVariableError) Error() string {
	return fmt.Sprintf("🤖 unresolved variable %q", e.Name)
}

// UnresolvedDataError is returned for "&name" where name was never
// declared as a global data blob on the session.
type UnresolvedDataError struct {
	Name string
}

func (e UnresolvedDataError) Error() string {
	return fmt.Sprintf("🤖 unresolved global data %q", e.Name)
}

// ArityError is returned when a function definition or call site exceeds
// the six-argument limit this backend's register-only calling convention
// supports.
type ArityError struct {
	Function string
	Got      int
	Max      int
}

func (e ArityError) Error() string {
	return fmt.Sprintf("💥 %q takes %d arguments, this backend supports at most %d", e.Function, e.Got, e.Max)
}

// ArityMismatchError is returned when a call site's argument count
// disagrees with the declared parameter count of the function or builtin
// it resolves to — distinct from ArityError, which rejects a definition
// or call site against the backend's own six-register ceiling regardless
// of what (if anything) it resolves to.
type ArityMismatchError struct {
	Function string
	Want     int
	Got      int
}

func (e ArityMismatchError) Error() string {
	return fmt.Sprintf("💥 %q takes %d argument(s), call site has %d", e.Function, e.Want, e.Got)
}
