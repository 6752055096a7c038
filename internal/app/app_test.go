package app

import (
	"testing"

	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/core"
)

// fakeBackend feeds scripted events into the main loop and swallows draws.
type fakeBackend struct {
	events []backend.Event
	width  int
	height int
}

func newFakeBackend(events ...backend.Event) *fakeBackend {
	return &fakeBackend{events: events, width: 40, height: 10}
}

func (f *fakeBackend) Init() error                        { return nil }
func (f *fakeBackend) Shutdown()                          {}
func (f *fakeBackend) Size() (int, int)                   { return f.width, f.height }
func (f *fakeBackend) OnResize(func(int, int))            {}
func (f *fakeBackend) SetCell(int, int, core.Cell)        {}
func (f *fakeBackend) Clear()                             {}
func (f *fakeBackend) Show()                              {}
func (f *fakeBackend) ShowCursor(int, int)                {}
func (f *fakeBackend) HideCursor()                        {}
func (f *fakeBackend) SetCursorStyle(backend.CursorStyle) {}
func (f *fakeBackend) PostEvent(backend.Event)            {}
func (f *fakeBackend) HasTrueColor() bool                 { return true }

func (f *fakeBackend) PollEvent() backend.Event {
	if len(f.events) == 0 {
		// Out of script: quit so Run terminates.
		return key('q', backend.ModCtrl)
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev
}

func key(r rune, mod backend.ModMask) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r, Mod: mod}
}

func special(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func newTestApp(t *testing.T, events ...backend.Event) *Application {
	t.Helper()
	application, err := New(Options{
		ConfigPath: "/nonexistent/keystorm/config.toml",
		Backend:    newFakeBackend(events...),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return application
}

func docText(t *testing.T, app *Application) string {
	t.Helper()
	v, err := app.Editor().View(app.ActiveView())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	doc, err := app.Editor().Document(v.Document)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	return doc.Text().String()
}

func TestInsertModeTypesText(t *testing.T) {
	app := newTestApp(t,
		key('i', 0),
		key('h', 0),
		key('e', 0),
		key('y', 0),
		special(backend.KeyEscape),
	)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := docText(t, app); got != "hey" {
		t.Errorf("document = %q", got)
	}
	if app.Mode() != ModeNormal {
		t.Errorf("mode after escape = %v", app.Mode())
	}
}

func TestAutoPairAndBackspace(t *testing.T) {
	app := newTestApp(t,
		key('i', 0),
		key('(', 0),
		special(backend.KeyBackspace),
		special(backend.KeyEscape),
	)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// "(" auto-closed to "()", backspace deleted the empty pair.
	if got := docText(t, app); got != "" {
		t.Errorf("document = %q", got)
	}
}

func TestUndoRestoresText(t *testing.T) {
	app := newTestApp(t,
		key('i', 0),
		key('a', 0),
		special(backend.KeyEscape),
		key('u', 0),
	)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := docText(t, app); got != "" {
		t.Errorf("document after undo = %q", got)
	}
}

func TestSplitAndPaneFocus(t *testing.T) {
	app := newTestApp(t,
		key('s', backend.ModCtrl),
	)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	panes := app.Editor().Panes()
	if panes.PaneCount() != 2 {
		t.Fatalf("PaneCount = %d", panes.PaneCount())
	}
	// Both panes view the same document.
	views := make(map[uint64]bool)
	var docs []uint64
	for _, viewID := range app.paneViews {
		v, err := app.Editor().View(viewID)
		if err != nil {
			t.Fatal(err)
		}
		views[uint64(v.ID)] = true
		docs = append(docs, uint64(v.Document))
	}
	if len(views) != 2 || len(docs) != 2 || docs[0] != docs[1] {
		t.Errorf("views=%v docs=%v", views, docs)
	}
}

func TestQuitStopsLoop(t *testing.T) {
	app := newTestApp(t) // empty script: first poll returns ctrl-q
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !app.quit {
		t.Error("quit flag not set")
	}
}
