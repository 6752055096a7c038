package app

import (
	"context"

	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/event"
	"github.com/dshills/keystorm/internal/event/topic"
	"github.com/dshills/keystorm/internal/integration/terminal"
	"github.com/dshills/keystorm/internal/renderer/backend"
)

// busPublisher bridges the terminal manager's flat event callbacks onto the
// application event bus.
type busPublisher struct {
	bus event.Bus
}

func (p busPublisher) Publish(eventType string, data map[string]any) {
	_ = p.bus.PublishAsync(context.Background(), event.NewEvent(topic.Topic(eventType), data, "terminal"))
}

// openTerminalPane spawns a shell and attaches its screen to a new pane.
func (app *Application) openTerminalPane() {
	if app.terms == nil {
		app.terms = terminal.NewManager(terminal.ManagerConfig{
			DefaultShell: app.cfg.Terminal.Shell,
			Scrollback:   app.cfg.Terminal.Scrollback,
			EventBus:     busPublisher{bus: app.bus},
		})
	}

	term, err := app.terms.Create(terminal.Options{
		Shell:      app.cfg.Terminal.Shell,
		Scrollback: app.cfg.Terminal.Scrollback,
	})
	if err != nil {
		app.report(err)
		return
	}

	pane := app.editor.AttachTerminalPane(terminal.NewAdapter(term.Screen()))
	app.paneTerms[pane] = term
	app.editor.Panes().SetActivePane(pane)
}

// activeTerminal returns the focused pane's shell, if it is a terminal pane.
func (app *Application) activeTerminal() (*terminal.Terminal, bool) {
	term, ok := app.paneTerms[app.editor.Panes().ActivePane()]
	return term, ok
}

// closeTerminalPane closes the focused terminal pane and its shell.
func (app *Application) closeTerminalPane(pane editor.PaneID) {
	term, ok := app.paneTerms[pane]
	if !ok {
		return
	}
	if err := app.editor.CloseTerminalPane(pane); err != nil {
		app.report(err)
		return
	}
	delete(app.paneTerms, pane)
	_ = term.Close()
	app.focusPane(app.editor.Panes().ActivePane())
}

// forwardKeyToTerminal translates a key event into the byte sequence the
// shell expects and writes it to the PTY. Arrow keys honor application
// cursor-key mode.
func (app *Application) forwardKeyToTerminal(term *terminal.Terminal, ev backend.Event) {
	var seq []byte
	switch ev.Key {
	case backend.KeyRune:
		if ev.Mod&backend.ModCtrl != 0 && ev.Rune >= 'a' && ev.Rune <= 'z' {
			seq = []byte{byte(ev.Rune-'a') + 1}
		} else {
			seq = []byte(string(ev.Rune))
		}
	case backend.KeyEnter:
		seq = []byte{'\r'}
	case backend.KeyTab:
		seq = []byte{'\t'}
	case backend.KeyEscape:
		seq = []byte{0x1b}
	case backend.KeyBackspace:
		seq = []byte{0x7f}
	case backend.KeyDelete:
		seq = []byte("\x1b[3~")
	case backend.KeyUp, backend.KeyDown, backend.KeyRight, backend.KeyLeft:
		final := map[backend.Key]byte{
			backend.KeyUp: 'A', backend.KeyDown: 'B',
			backend.KeyRight: 'C', backend.KeyLeft: 'D',
		}[ev.Key]
		if term.Screen().AppCursorKeys() {
			seq = []byte{0x1b, 'O', final}
		} else {
			seq = []byte{0x1b, '[', final}
		}
	case backend.KeyHome:
		seq = []byte("\x1b[H")
	case backend.KeyEnd:
		seq = []byte("\x1b[F")
	case backend.KeyPageUp:
		seq = []byte("\x1b[5~")
	case backend.KeyPageDown:
		seq = []byte("\x1b[6~")
	default:
		return
	}
	if _, err := term.Write(seq); err != nil {
		app.report(err)
	}
}
