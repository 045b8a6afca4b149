// Package fcerrors holds the sentinel errors fedcore's collaborator
// callbacks can return to mean "no such resource" without fedcore having
// to distinguish a real failure from an ordinary miss.
package fcerrors

import "errors"

// ErrNotFound is equivalent to a dispatcher returning a nil value with a
// nil error; fedcore's responders treat both the same way. Collaborators
// may return it instead of rolling their own not-found sentinel.
var ErrNotFound = errors.New("fedcore: not found")

// ErrNotConfigured means a required collaborator (a dispatcher, a
// signature verifier) was never wired in. Responders and the inbox
// pipeline log it rather than return it. A missing dispatcher is answered
// like ErrNotFound, via OnNotFound, since the resource genuinely isn't
// being served; the inbox pipeline answers a missing signature verifier
// or key-ownership predicate with 401.
var ErrNotConfigured = errors.New("fedcore: not configured")
