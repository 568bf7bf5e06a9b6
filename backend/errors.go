package backend

import "errors"

// ErrUnsupported marks a failure caused by a structural limit of this
// code generator — too many parameters or call arguments for the
// register-only argument passing it implements, or a conditional branch
// whose target needs values merged along that edge — rather than a bug in
// the function being compiled.
var ErrUnsupported = errors.New("unsupported by the amd64 backend")
