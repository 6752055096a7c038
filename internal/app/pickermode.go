package app

import (
	"os"
	"sync"

	"github.com/dshills/keystorm/internal/picker"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/core"
)

// pickerState is the file-picker overlay: a background scan streaming paths
// in while the user types a fuzzy query.
type pickerState struct {
	mu      sync.Mutex
	paths   []string
	done    bool
	scanner *picker.Scanner

	query    string
	selected int
}

func (ps *pickerState) addBatch(b picker.Batch) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.paths = append(ps.paths, b.Paths...)
	if b.Done {
		ps.done = true
	}
}

func (ps *pickerState) matches(limit int) []picker.Match {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return picker.MatchAll(ps.query, ps.paths, limit)
}

// openPicker starts a scan of the working directory and enters picker mode.
func (app *Application) openPicker() {
	root, err := os.Getwd()
	if err != nil {
		app.report(err)
		return
	}
	ps := &pickerState{scanner: picker.NewScanner(root)}
	ch, gen := ps.scanner.Scan()
	go func() {
		for b := range ch {
			if b.Generation != gen {
				continue
			}
			ps.addBatch(b)
			app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
		}
	}()
	app.picker = ps
}

// handlePickerKey edits the query, moves the selection, confirms, or
// cancels.
func (app *Application) handlePickerKey(ev backend.Event) {
	ps := app.picker
	switch {
	case ev.Key == backend.KeyEscape:
		ps.scanner.Cancel()
		app.picker = nil
	case ev.Key == backend.KeyEnter:
		matches := ps.matches(1 + ps.selected)
		ps.scanner.Cancel()
		app.picker = nil
		if len(matches) == 0 {
			return
		}
		idx := ps.selected
		if idx >= len(matches) {
			idx = len(matches) - 1
		}
		app.openPickedFile(matches[idx].Path)
	case ev.Key == backend.KeyBackspace:
		if n := len(ps.query); n > 0 {
			ps.query = ps.query[:n-1]
			ps.selected = 0
		}
	case ev.Key == backend.KeyUp:
		if ps.selected > 0 {
			ps.selected--
		}
	case ev.Key == backend.KeyDown:
		ps.selected++
	case ev.Key == backend.KeyRune && ev.Mod&backend.ModCtrl == 0:
		ps.query += string(ev.Rune)
		ps.selected = 0
	}
}

func (app *Application) openPickedFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		app.report(err)
		return
	}
	_, viewID := app.editor.OpenDocument(path, string(data))
	app.registerView(viewID)
}

// renderPicker draws the overlay: a prompt line plus the top matches.
func (app *Application) renderPicker() {
	width, height := app.buffer.Size()
	rows := height / 2
	if rows < 3 {
		rows = height
	}
	style := app.theme.Get("ui.statusline")
	selStyle := app.theme.Get("ui.selection").Merge(style)

	limit := rows - 1
	matches := app.picker.matches(limit)
	if app.picker.selected >= len(matches) && len(matches) > 0 {
		app.picker.selected = len(matches) - 1
	}

	app.buffer.Fill(core.NewScreenRect(0, 0, rows, width), core.Cell{Rune: ' ', Style: style, Width: 1})
	app.buffer.SetString(0, 0, "> "+app.picker.query, style)
	for i, m := range matches {
		rowStyle := style
		if i == app.picker.selected {
			rowStyle = selStyle
		}
		app.buffer.SetString(1, i+1, m.Path, rowStyle)
	}
}
