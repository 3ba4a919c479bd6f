// Package ferr defines the shared error taxonomy used at every public
// boundary of fimo-std: the graph, module, and tracing packages all fail
// with one of these sentinels (or an error that wraps one), so a caller
// can always branch with errors.Is regardless of which subsystem raised
// the failure.
//
// This follows lvlath/core and lvlath/builder's own convention:
// package-level sentinel errors, never stringified at the definition site;
// call sites attach context with fmt.Errorf("pkg: Func: %w", err).
package ferr

import "errors"

var (
	// ErrInvalid reports a malformed argument or a request incompatible
	// with the current object state.
	ErrInvalid = errors.New("fimo: invalid argument or state")

	// ErrPermission reports a forbidden state transition or an access
	// check that failed (visibility rules, unload locks, call-stack
	// state-machine transitions).
	ErrPermission = errors.New("fimo: operation not permitted")

	// ErrNotFound reports that a named entity (node, edge, module, symbol,
	// namespace, parameter) does not exist.
	ErrNotFound = errors.New("fimo: not found")

	// ErrAlreadyExists reports a collision with an existing entity
	// (duplicate module name, namespace already included).
	ErrAlreadyExists = errors.New("fimo: already exists")

	// ErrOutOfMemory reports an allocation failure.
	ErrOutOfMemory = errors.New("fimo: out of memory")

	// ErrOutOfRange reports an arithmetic overflow: a counter, duration,
	// or index computation exceeded its representable range.
	ErrOutOfRange = errors.New("fimo: out of range")

	// ErrNotCompatible reports a version-compatibility check failure
	// (see the comparison rule in the fimo package's CheckVersion).
	ErrNotCompatible = errors.New("fimo: version not compatible")

	// ErrSystem wraps a passthrough host OS error. Use errors.Unwrap to
	// recover the underlying error.
	ErrSystem = errors.New("fimo: system error")
)
