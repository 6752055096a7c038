package app

import (
	"fmt"

	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/plan"
)

// render paints one frame: every pane in the split layout, then the
// statusline, then flushes the changed cells.
func (app *Application) render() {
	if app.buffer == nil {
		return
	}
	width, height := app.buffer.Size()
	if height < 2 {
		return
	}

	contentArea := core.NewScreenRect(0, 0, height-1, width)
	resolver := backend.StyleResolver{
		Theme:   app.theme,
		Base:    app.theme.Get("ui"),
		Virtual: app.theme.Get("ui.virtual"),
	}
	styles := plan.RenderStyles{
		Selection:    app.theme.Get("ui.selection"),
		Cursor:       app.theme.Get("ui.cursor"),
		ActiveCursor: app.theme.Get("ui.cursor.primary"),
	}

	app.backend.HideCursor()
	for _, pr := range app.editor.Panes().Layout(contentArea) {
		if adapter, ok := app.editor.TerminalAdapter(pr.Pane); ok {
			snap := adapter.Snapshot()
			backend.PaintTerminal(app.buffer, pr.Rect, snap, adapter.Screen(), resolver.Base)
			if pr.Pane == app.editor.Panes().ActivePane() {
				app.backend.ShowCursor(pr.Rect.Left+snap.CursorPos.X, pr.Rect.Top+snap.CursorPos.Y)
			}
			continue
		}

		viewID, ok := app.paneViews[pr.Pane]
		if !ok {
			app.buffer.Fill(pr.Rect, core.Cell{Rune: ' ', Style: resolver.Base, Width: 1})
			continue
		}
		p, err := app.editor.Render(viewID, pr.Rect, styles)
		if err != nil {
			app.report(err)
			continue
		}
		backend.PaintPlan(app.buffer, pr.Rect, p, resolver)
	}

	app.renderStatusline(height-1, width)
	if app.picker != nil {
		app.renderPicker()
	}
	app.buffer.FlushTo(app.backend)
	app.backend.Show()
}

func (app *Application) renderStatusline(row, width int) {
	style := app.theme.Get("ui.statusline")
	app.buffer.Fill(core.NewScreenRect(row, 0, row+1, width), core.Cell{Rune: ' ', Style: style, Width: 1})

	left := fmt.Sprintf(" %s ", app.mode)
	if v, err := app.editor.View(app.activeView); err == nil {
		if doc, err := app.editor.Document(v.Document); err == nil {
			name := doc.Path()
			if name == "" {
				name = "[scratch]"
			}
			dirty := ""
			if doc.Dirty() {
				dirty = " [+]"
			}
			left += fmt.Sprintf("%s%s  v%d", name, dirty, doc.Version())
		}
	}
	x := app.buffer.SetString(0, row, left, style)

	if app.status != "" && x+2 < width {
		app.buffer.SetString(x+2, row, app.status, style)
	}
}
