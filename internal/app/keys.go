package app

import (
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/layout/split"
	"github.com/dshills/keystorm/internal/renderer/plan"
)

// handleKey dispatches a key event. A focused terminal pane receives
// everything except the pane-management chords, which stay with the editor.
func (app *Application) handleKey(ev backend.Event) {
	if app.picker != nil {
		app.handlePickerKey(ev)
		return
	}

	if term, ok := app.activeTerminal(); ok {
		if ev.Key == backend.KeyRune && ev.Mod&backend.ModCtrl != 0 {
			switch ev.Rune {
			case 'q', 'w', 'h', 'j', 'k', 'l', 'o':
				app.handleControlKey(ev.Rune)
				return
			case 'x':
				app.closeTerminalPane(app.editor.Panes().ActivePane())
				return
			}
		}
		app.forwardKeyToTerminal(term, ev)
		return
	}

	if app.mode == ModeInsert {
		app.handleInsertKey(ev)
		return
	}
	app.handleNormalKey(ev)
}

func (app *Application) handleInsertKey(ev backend.Event) {
	switch {
	case ev.Key == backend.KeyEscape:
		app.mode = ModeNormal
	case ev.Key == backend.KeyEnter:
		app.report(app.editor.InsertText(app.activeView, "\n"))
	case ev.Key == backend.KeyTab:
		app.report(app.editor.InsertText(app.activeView, "\t"))
	case ev.Key == backend.KeyBackspace:
		app.report(app.editor.DeleteBackward(app.activeView))
	case ev.Key == backend.KeyDelete:
		app.report(app.editor.DeleteForward(app.activeView))
	case ev.Key == backend.KeyRune && ev.Mod&backend.ModCtrl == 0:
		app.report(app.editor.InsertText(app.activeView, string(ev.Rune)))
	default:
		app.handleMotionKey(ev)
	}
}

func (app *Application) handleNormalKey(ev backend.Event) {
	if app.handleMotionKey(ev) {
		return
	}

	if ev.Key == backend.KeyRune && ev.Mod&backend.ModCtrl != 0 {
		app.handleControlKey(ev.Rune)
		return
	}
	if ev.Key != backend.KeyRune {
		return
	}

	switch ev.Rune {
	case 'i':
		app.mode = ModeInsert
	case 'x':
		app.report(app.editor.DeleteForward(app.activeView))
	case 'd':
		app.report(app.editor.DeleteSelection(app.activeView))
	case 'u':
		app.report(app.editor.Undo(app.activeView))
	case 'U':
		app.report(app.editor.Redo(app.activeView))
	case 'c':
		app.report(app.editor.ToggleLineComment(app.activeView, app.commentToken()))
	case ';':
		// Collapse every range to its cursor.
		app.report(app.editor.TransformSelection(app.activeView, func(text rope.Rope, r selection.Range) selection.Range {
			return selection.Point(r.Cursor(text))
		}))
	}
}

func (app *Application) handleControlKey(r rune) {
	panes := app.editor.Panes()
	switch r {
	case 'q':
		app.Quit()
	case 's':
		app.splitActive(split.Horizontal)
	case 'v':
		app.splitActive(split.Vertical)
	case 'w':
		panes.RotateFocus(true)
		app.focusPane(panes.ActivePane())
	case 'o':
		panes.OnlyActive()
		app.focusPane(panes.ActivePane())
	case 'r':
		app.report(app.editor.Redo(app.activeView))
	case 'h':
		app.jump(split.Left)
	case 'j':
		app.jump(split.Down)
	case 'k':
		app.jump(split.Up)
	case 'l':
		app.jump(split.Right)
	case 'x':
		app.closeActivePane()
	case 't':
		panes.TransposeActiveBranch()
	case 'e':
		app.openTerminalPane()
	case 'p':
		app.openPicker()
	}
}

// handleMotionKey moves every cursor for arrow keys (shift extends).
// Returns true when the event was a motion.
func (app *Application) handleMotionKey(ev backend.Event) bool {
	var dx, dy int
	switch ev.Key {
	case backend.KeyLeft:
		dx = -1
	case backend.KeyRight:
		dx = 1
	case backend.KeyUp:
		dy = -1
	case backend.KeyDown:
		dy = 1
	case backend.KeyRune:
		if app.mode != ModeNormal || ev.Mod&backend.ModCtrl != 0 {
			return false
		}
		switch ev.Rune {
		case 'h':
			dx = -1
		case 'l':
			dx = 1
		case 'k':
			dy = -1
		case 'j':
			dy = 1
		default:
			return false
		}
	default:
		return false
	}

	extend := ev.Mod&backend.ModShift != 0
	if dx != 0 {
		app.moveHorizontal(dx, extend)
	} else {
		app.moveVertical(dy, extend)
	}
	return true
}

func (app *Application) moveHorizontal(delta int, extend bool) {
	err := app.editor.TransformSelection(app.activeView, func(text rope.Rope, r selection.Range) selection.Range {
		pos := r.Cursor(text) + delta
		if pos < 0 {
			pos = 0
		}
		if limit := int(text.LenChars()); pos > limit {
			pos = limit
		}
		return r.PutCursor(text, pos, extend)
	})
	app.report(err)
}

// moveVertical moves by visual rows, preserving the cursor's column via the
// cached visual column on each range.
func (app *Application) moveVertical(delta int, extend bool) {
	v, err := app.editor.View(app.activeView)
	if err != nil {
		return
	}
	doc, err := app.editor.Document(v.Document)
	if err != nil {
		return
	}
	tf := v.Format
	anns := doc.Annotations()

	err = app.editor.TransformSelection(app.activeView, func(text rope.Rope, r selection.Range) selection.Range {
		cursor := r.Cursor(text)
		pos, ok := plan.VisualPosAtChar(text, tf, anns, cursor)
		if !ok {
			return r
		}
		col := pos.Col
		if r.HasVCol {
			col = r.VCol
		}
		target := annotations.Position{Row: pos.Row + delta, Col: col}
		if target.Row < 0 {
			return r
		}
		charIdx, ok := plan.CharAtVisualPos(text, tf, anns, target)
		if !ok {
			return r
		}
		return r.PutCursor(text, charIdx, extend).WithVisualColumn(col)
	})
	app.report(err)
}

// splitActive opens a second view onto the focused document in a new pane.
func (app *Application) splitActive(axis split.Axis) {
	v, err := app.editor.View(app.activeView)
	if err != nil {
		return
	}
	viewID, err := app.editor.OpenView(v.Document, axis)
	if err != nil {
		app.report(err)
		return
	}
	app.registerView(viewID)
}

func (app *Application) jump(dir split.Direction) {
	panes := app.editor.Panes()
	if panes.JumpActive(dir) {
		app.focusPane(panes.ActivePane())
	}
}

func (app *Application) focusPane(pane split.PaneID) {
	if viewID, ok := app.paneViews[pane]; ok {
		app.activeView = viewID
	}
}

func (app *Application) closeActivePane() {
	viewID := app.activeView
	v, err := app.editor.View(viewID)
	if err != nil {
		return
	}
	if err := app.editor.CloseView(viewID); err != nil {
		app.report(err)
		return
	}
	delete(app.paneViews, v.Pane)
	app.focusPane(app.editor.Panes().ActivePane())
}

func (app *Application) commentToken() string {
	return "//"
}

// report surfaces a command error on the statusline without aborting the
// loop; nil clears nothing.
func (app *Application) report(err error) {
	if err != nil {
		app.status = err.Error()
	}
}
