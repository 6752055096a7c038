// Package backend abstracts the host terminal the editor draws into. The
// render pipeline produces backend-agnostic RenderPlans; this package owns
// the double-buffered cell grid they are painted into and the tcell
// implementation that flushes it to the real terminal.
package backend

import "github.com/dshills/keystorm/internal/renderer/core"

// CursorStyle selects how the hardware cursor is drawn.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
	CursorHidden
)

// EventType identifies a host-terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventPaste
	EventInterrupt
)

// ModMask is a bit set of key modifiers.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Key identifies a non-rune key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Event is one host-terminal event.
type Event struct {
	Type EventType

	// Key event fields. Key == KeyRune means Rune holds the character.
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields.
	Width, Height int

	// Paste event fields.
	PasteText string
}

// Backend is the host terminal contract.
type Backend interface {
	Init() error
	Shutdown()

	Size() (width, height int)
	OnResize(func(width, height int))

	SetCell(x, y int, cell core.Cell)
	Clear()
	Show()

	ShowCursor(x, y int)
	HideCursor()
	SetCursorStyle(style CursorStyle)

	PollEvent() Event
	PostEvent(Event)

	HasTrueColor() bool
}
