// Package terminal implements the embedded terminal panes: PTY management,
// ANSI escape-sequence parsing, a cell-grid screen model with scrollback
// and an alternate buffer, and the snapshot adapter the render loop uses to
// redraw only the rows that changed.
//
// # Core types
//
//   - PTY: platform pseudo-terminal (Linux and Darwin)
//   - Parser: ANSI/VT parser driving a Screen; device status reports and
//     device-attribute replies go back to the host process through a
//     response callback
//   - Screen: the cell grid, cursor, modes, scrollback, and alternate
//     buffer
//   - Adapter: per-frame ScreenSnapshot with dirty-row diffing and row
//     pinning
//   - Terminal / Manager: a running shell process and the set of them
//
// # Rendering
//
// A renderer takes a Snapshot, which captures cursor position, size, and
// the dirty-row list under a brief lock, then reads row cells afterwards:
//
//	snap := adapter.Snapshot()
//	for _, row := range snap.DirtyRows {
//	    cells := adapter.Screen().Line(row)
//	    // paint cells...
//	}
//
// On the first frame and after a resize, NeedsFullRebuild is set and every
// row is dirty.
//
// # Thread safety
//
// Screen and Adapter are safe for concurrent use; the PTY read loop runs on
// its own goroutine per terminal and feeds the parser directly.
package terminal
