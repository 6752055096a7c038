package document

import "errors"

// Error taxonomy for Document operations. These propagate as return values
// to the command layer; a failed Apply/SetSelection leaves the Document
// unchanged.
var (
	ErrLengthMismatch       = errors.New("document: transaction length mismatch")
	ErrSelectionOutOfBounds = errors.New("document: selection out of bounds")
	ErrReadOnly             = errors.New("document: read-only")
	ErrCursorOverlap        = errors.New("document: cursor overlap during multi-range edit")
	ErrComposeError         = errors.New("document: internal compose error")
	ErrNothingToUndo        = errors.New("document: nothing to undo")
	ErrNothingToRedo        = errors.New("document: nothing to redo")
)
