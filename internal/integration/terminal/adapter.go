package terminal

import "sync"

// Pos is a (column, row) screen position, 0-indexed.
type Pos struct {
	X, Y int
}

// ScreenSnapshot is one frame's worth of terminal state as seen by a
// renderer: the cursor position, the current grid size, which rows changed
// since the previous snapshot, and whether the whole grid must be redrawn
// (a resize invalidates any prior row-diff).
type ScreenSnapshot struct {
	CursorPos        Pos
	Width            int
	Height           int
	DirtyRows        []int
	NeedsFullRebuild bool
}

// Adapter diffs a Screen across successive frames so a renderer can redraw
// only the rows that changed instead of the whole grid every tick. Screen
// itself tracks no dirty state (ANSI mutation is scattered across dozens of
// escape-sequence handlers in parser.go), so Adapter keeps its own
// previous-frame snapshot and compares cell-by-cell.
type Adapter struct {
	mu sync.Mutex

	screen *Screen

	havePrev   bool
	prevWidth  int
	prevHeight int
	prevRows   [][]Cell

	pinned map[int]bool
}

// NewAdapter wraps screen for snapshot-based dirty-row tracking.
func NewAdapter(screen *Screen) *Adapter {
	return &Adapter{
		screen: screen,
		pinned: make(map[int]bool),
	}
}

// Screen returns the wrapped screen, for reading row cells after a
// Snapshot reported which rows changed.
func (a *Adapter) Screen() *Screen {
	return a.screen
}

// PinRow marks row as caller-managed: Snapshot never reports it dirty, even
// when its cells change, because the caller redraws it unconditionally on
// every frame (e.g. a status line showing a live clock) rather than relying
// on the diff.
func (a *Adapter) PinRow(row int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pinned[row] = true
}

// UnpinRow clears a row pinned by PinRow, restoring normal dirty tracking
// for it.
func (a *Adapter) UnpinRow(row int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pinned, row)
}

// Snapshot captures the terminal's current screen state and reports which
// rows differ from the previous call. The first call, and any call after
// the screen has resized, reports NeedsFullRebuild and every unpinned row
// as dirty.
func (a *Adapter) Snapshot() ScreenSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	scr := a.screen
	width, height := scr.Width(), scr.Height()
	cursorX, cursorY := scr.CursorPos()

	rebuild := !a.havePrev || width != a.prevWidth || height != a.prevHeight

	rows := make([][]Cell, height)
	var dirty []int
	for row := 0; row < height; row++ {
		line := scr.Line(row)
		rows[row] = line
		if a.pinned[row] {
			continue
		}
		if rebuild {
			dirty = append(dirty, row)
			continue
		}
		if row >= len(a.prevRows) || !equalRow(a.prevRows[row], line) {
			dirty = append(dirty, row)
		}
	}

	a.prevRows = rows
	a.prevWidth = width
	a.prevHeight = height
	a.havePrev = true

	return ScreenSnapshot{
		CursorPos:        Pos{X: cursorX, Y: cursorY},
		Width:            width,
		Height:           height,
		DirtyRows:        dirty,
		NeedsFullRebuild: rebuild,
	}
}

// Reset discards the cached previous-frame rows, forcing the next Snapshot
// to report a full rebuild. Useful after an out-of-band screen mutation the
// caller doesn't want diffed cell-by-cell (e.g. Screen.Reset).
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.havePrev = false
	a.prevRows = nil
}

func equalRow(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
