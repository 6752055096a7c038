package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dshills/keystorm/internal/config"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/event"
	"github.com/dshills/keystorm/internal/event/events"
	"github.com/dshills/keystorm/internal/integration/terminal"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/highlight"
)

// Mode is the input mode the key handler is in.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

// String returns the mode's statusline name.
func (m Mode) String() string {
	if m == ModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Options configures a new Application.
type Options struct {
	// Files are opened at startup; empty opens one scratch buffer.
	Files []string

	// ConfigPath overrides the default config file location.
	ConfigPath string

	// LogPath enables file logging when non-empty.
	LogPath string

	// LogLevel filters log messages.
	LogLevel string

	// Backend overrides the tcell backend, for tests.
	Backend backend.Backend
}

// Application owns the composition: one Editor arena, one host-terminal
// backend, one screen buffer, and the input loop that connects them.
type Application struct {
	logger *Logger
	bus    event.Bus

	cfg        config.Config
	cfgWatcher *config.Watcher

	editor *editor.Editor
	theme  *highlight.Theme

	backend backend.Backend
	buffer  *backend.ScreenBuffer

	terms     *terminal.Manager
	paneTerms map[editor.PaneID]*terminal.Terminal

	mode       Mode
	picker     *pickerState
	activeView editor.ViewID
	paneViews  map[editor.PaneID]editor.ViewID
	status     string

	// pendingCfg is written by the config-watcher subscription (on the
	// watcher goroutine) and drained by the main loop.
	cfgMu      sync.Mutex
	pendingCfg *config.Config
	cfgFailed  bool

	quit bool
}

// New builds an Application from opts. The backend is not initialized; Run
// does that.
func New(opts Options) (*Application, error) {
	logger := NewLogger(os.Stderr, ParseLogLevel(opts.LogLevel))
	if opts.LogPath != "" {
		fl, err := NewFileLogger(opts.LogPath, ParseLogLevel(opts.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger = fl
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	bus := event.NewBus(0)
	_ = bus.Start()

	app := &Application{
		logger:    logger,
		bus:       bus,
		cfg:       cfg,
		editor:    editor.New(bus),
		theme:     highlight.DefaultTheme(),
		backend:   opts.Backend,
		paneViews: make(map[editor.PaneID]editor.ViewID),
		paneTerms: make(map[editor.PaneID]*terminal.Terminal),
	}

	if app.backend == nil {
		term, err := backend.NewTerminal()
		if err != nil {
			return nil, err
		}
		app.backend = term
	}

	if cfgPath != "" {
		if w, err := config.NewWatcher(cfgPath, cfg, bus); err == nil {
			app.cfgWatcher = w
			app.subscribeConfig()
		} else {
			logger.Warnf("config watcher disabled: %v", err)
		}
	}

	app.openInitialFiles(opts.Files)
	return app, nil
}

func (app *Application) openInitialFiles(files []string) {
	opened := false
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			app.logger.Errorf("open %s: %v", path, err)
			app.status = fmt.Sprintf("open %s: %v", path, err)
			continue
		}
		_, viewID := app.editor.OpenDocument(path, string(data))
		app.registerView(viewID)
		opened = true
	}
	if !opened {
		_, viewID := app.editor.OpenDocument("", "")
		app.registerView(viewID)
	}
}

func (app *Application) registerView(viewID editor.ViewID) {
	v, err := app.editor.View(viewID)
	if err != nil {
		return
	}
	v.Format = app.cfg.TextFormat()
	app.paneViews[v.Pane] = viewID
	app.activeView = viewID
	app.editor.Panes().SetActivePane(v.Pane)
}

// subscribeConfig stages watcher results for the main loop; the handlers
// run on the watcher goroutine and must not touch loop-owned state.
func (app *Application) subscribeConfig() {
	_, _ = app.bus.Subscribe(events.TopicConfigReloaded, func(_ context.Context, _ event.Event) error {
		cfg := app.cfgWatcher.Current()
		app.cfgMu.Lock()
		app.pendingCfg = &cfg
		app.cfgMu.Unlock()
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
		return nil
	})
	_, _ = app.bus.Subscribe(events.TopicConfigError, func(_ context.Context, _ event.Event) error {
		app.cfgMu.Lock()
		app.cfgFailed = true
		app.cfgMu.Unlock()
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
		return nil
	})
}

// drainConfigUpdates applies a staged config reload on the main loop.
func (app *Application) drainConfigUpdates() {
	app.cfgMu.Lock()
	pending := app.pendingCfg
	failed := app.cfgFailed
	app.pendingCfg = nil
	app.cfgFailed = false
	app.cfgMu.Unlock()

	if failed {
		app.status = "configuration reload failed, keeping previous"
	}
	if pending == nil {
		return
	}
	app.cfg = *pending
	tf := app.cfg.TextFormat()
	for _, viewID := range app.paneViews {
		if v, err := app.editor.View(viewID); err == nil {
			v.Format = tf
		}
	}
	app.status = "configuration reloaded"
}

// Editor exposes the arena for tests and integration callers.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Mode returns the current input mode.
func (app *Application) Mode() Mode {
	return app.mode
}

// ActiveView returns the focused view's id.
func (app *Application) ActiveView() editor.ViewID {
	return app.activeView
}

// Status returns the statusline message.
func (app *Application) Status() string {
	return app.status
}

// Run initializes the backend and drives the input/render loop until quit.
func (app *Application) Run() error {
	if err := app.backend.Init(); err != nil {
		return err
	}
	defer app.backend.Shutdown()

	w, h := app.backend.Size()
	app.buffer = backend.NewScreenBuffer(w, h)
	app.backend.OnResize(func(w, h int) {
		app.buffer.Resize(w, h)
	})

	app.render()
	for !app.quit {
		ev := app.backend.PollEvent()
		app.drainConfigUpdates()
		app.handleEvent(ev)
		app.render()
	}

	app.shutdown()
	return nil
}

func (app *Application) handleEvent(ev backend.Event) {
	switch ev.Type {
	case backend.EventKey:
		app.handleKey(ev)
	case backend.EventResize:
		// The buffer already resized in OnResize; nothing else to do.
	}
}

func (app *Application) shutdown() {
	if app.cfgWatcher != nil {
		_ = app.cfgWatcher.Close()
	}
	if app.terms != nil {
		app.terms.Shutdown(time.Second)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = app.bus.Stop(ctx)
	_ = app.logger.Close()
}

// Quit asks the main loop to exit after the current event.
func (app *Application) Quit() {
	app.quit = true
}
