package terminal

import (
	"os"
	"os/exec"
)

// PTY is the pseudo-terminal a shell pane runs inside. The parent process
// holds the master side: reads deliver the child's output bytes, writes
// deliver keystrokes (and parser response bytes) to the child.
type PTY interface {
	// File exposes the master descriptor, for poll/select integration.
	File() *os.File

	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)

	// Resize propagates a new window size to the child (SIGWINCH).
	Resize(cols, rows uint16) error

	Close() error
}

// StartPTY launches cmd with a fresh PTY pair as its controlling terminal
// and returns the parent's master side. Platform-specific allocation lives
// in pty_linux / pty_darwin.
func StartPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	return startPTY(cmd, cols, rows)
}
