package terminal

import "errors"

// Sentinel errors, matched with errors.Is at the command layer.
var (
	// ErrShellNotFound means the configured shell is not on PATH.
	ErrShellNotFound = errors.New("terminal: shell not found")

	// ErrTerminalClosed means the pane's process has already exited.
	ErrTerminalClosed = errors.New("terminal: terminal closed")

	// ErrTerminalNotFound means no terminal with the given id exists.
	ErrTerminalNotFound = errors.New("terminal: terminal not found")

	// ErrInvalidSize rejects a non-positive resize.
	ErrInvalidSize = errors.New("terminal: invalid size")

	// ErrManagerClosed means the manager has shut down and cannot spawn.
	ErrManagerClosed = errors.New("terminal: manager closed")

	// ErrPTYNotSupported means this platform has no PTY implementation.
	ErrPTYNotSupported = errors.New("terminal: pty not supported on this platform")
)
