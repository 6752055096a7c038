package selection

import "errors"

// Construction and validation errors, surfaced to the command layer, which
// aborts the command and leaves the Document untouched.
var (
	ErrEmpty           = errors.New("selection: no ranges")
	ErrIndexOutOfRange = errors.New("selection: primary index out of range")
	ErrOverlap         = errors.New("selection: ranges overlap")
	ErrRangeExceedsText = errors.New("selection: range exceeds text bounds")
)
