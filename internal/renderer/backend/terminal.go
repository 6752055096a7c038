package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keystorm/internal/renderer/core"
)

// Terminal is the tcell-backed Backend.
type Terminal struct {
	screen   tcell.Screen
	onResize func(width, height int)
}

// NewTerminal creates a tcell backend over the host terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// Init initializes the terminal screen.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	t.screen.Clear()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Size returns the terminal dimensions.
func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

// OnResize registers the resize callback, invoked from PollEvent.
func (t *Terminal) OnResize(callback func(width, height int)) {
	t.onResize = callback
}

// SetCell writes one cell.
func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

// Clear erases the screen.
func (t *Terminal) Clear() {
	t.screen.Clear()
}

// Show flushes pending writes to the terminal.
func (t *Terminal) Show() {
	t.screen.Show()
}

// ShowCursor places the hardware cursor.
func (t *Terminal) ShowCursor(x, y int) {
	t.screen.ShowCursor(x, y)
}

// HideCursor hides the hardware cursor.
func (t *Terminal) HideCursor() {
	t.screen.HideCursor()
}

// SetCursorStyle selects the hardware cursor shape.
func (t *Terminal) SetCursorStyle(style CursorStyle) {
	switch style {
	case CursorUnderline:
		t.screen.SetCursorStyle(tcell.CursorStyleSteadyUnderline)
	case CursorBar:
		t.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
	case CursorHidden:
		t.screen.HideCursor()
	default:
		t.screen.SetCursorStyle(tcell.CursorStyleSteadyBlock)
	}
}

// PollEvent blocks for the next terminal event.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{Type: EventInterrupt}
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			return convertKeyEvent(tev)
		case *tcell.EventResize:
			w, h := tev.Size()
			if t.onResize != nil {
				t.onResize(w, h)
			}
			return Event{Type: EventResize, Width: w, Height: h}
		case *tcell.EventPaste:
			// Paste content arrives as key events between start/end
			// markers; the start marker alone is enough for the caller to
			// switch modes.
			if tev.Start() {
				return Event{Type: EventPaste}
			}
		case *tcell.EventInterrupt:
			return Event{Type: EventInterrupt}
		}
	}
}

// PostEvent injects a wakeup into PollEvent from another goroutine.
func (t *Terminal) PostEvent(Event) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// HasTrueColor reports 24-bit color support.
func (t *Terminal) HasTrueColor() bool {
	return t.screen.Colors() >= 1<<24
}

func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(s.Foreground)).
		Background(convertColor(s.Background))

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	if s.Attributes.Has(core.AttrBlink) {
		style = style.Blink(true)
	}

	if s.Underline != core.UnderlineNone {
		us := tcell.UnderlineStyleSolid
		switch s.Underline {
		case core.UnderlineDouble:
			us = tcell.UnderlineStyleDouble
		case core.UnderlineCurly:
			us = tcell.UnderlineStyleCurly
		case core.UnderlineDotted:
			us = tcell.UnderlineStyleDotted
		case core.UnderlineDashed:
			us = tcell.UnderlineStyleDashed
		}
		if s.UnderlineColor.IsDefault() {
			style = style.Underline(us)
		} else {
			style = style.Underline(us, convertColor(s.UnderlineColor))
		}
	}
	return style
}

func convertColor(c core.Color) tcell.Color {
	switch {
	case c.Default:
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}

func convertKeyEvent(ev *tcell.EventKey) Event {
	out := Event{Type: EventKey}

	mod := ev.Modifiers()
	if mod&tcell.ModShift != 0 {
		out.Mod |= ModShift
	}
	if mod&tcell.ModCtrl != 0 {
		out.Mod |= ModCtrl
	}
	if mod&tcell.ModAlt != 0 {
		out.Mod |= ModAlt
	}

	switch key := ev.Key(); key {
	case tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyEscape:
		out.Key = KeyEscape
	case tcell.KeyEnter:
		out.Key = KeyEnter
	case tcell.KeyTab:
		out.Key = KeyTab
	case tcell.KeyBacktab:
		out.Key = KeyBacktab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = KeyBackspace
	case tcell.KeyDelete:
		out.Key = KeyDelete
	case tcell.KeyHome:
		out.Key = KeyHome
	case tcell.KeyEnd:
		out.Key = KeyEnd
	case tcell.KeyPgUp:
		out.Key = KeyPageUp
	case tcell.KeyPgDn:
		out.Key = KeyPageDown
	case tcell.KeyUp:
		out.Key = KeyUp
	case tcell.KeyDown:
		out.Key = KeyDown
	case tcell.KeyLeft:
		out.Key = KeyLeft
	case tcell.KeyRight:
		out.Key = KeyRight
	default:
		// Control characters arrive as their own tcell keys; normalize to
		// a rune plus the ctrl modifier.
		if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
			out.Key = KeyRune
			out.Rune = rune('a' + int(key) - int(tcell.KeyCtrlA))
			out.Mod |= ModCtrl
		} else {
			out.Key = KeyNone
		}
	}
	return out
}
