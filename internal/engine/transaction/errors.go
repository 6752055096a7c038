package transaction

import "errors"

// Sentinel errors returned by ChangeSet and Transaction operations. These
// indicate structural mismatches between a change and the rope it is being
// applied to or composed with; callers in the command layer treat them as
// "abort the command, leave the document untouched".
var (
	// ErrLengthMismatch is returned when a ChangeSet's LenBefore does not
	// match the length of the rope/ChangeSet it is being applied/composed
	// against.
	ErrLengthMismatch = errors.New("transaction: length mismatch")

	// ErrOutOfBounds is returned when a Change op would read or write past
	// the end of its input.
	ErrOutOfBounds = errors.New("transaction: operation out of bounds")

	// ErrCompose indicates an internal inconsistency encountered while
	// composing two ChangeSets; it signals a bug rather than bad input.
	ErrCompose = errors.New("transaction: compose failed")
)
