package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keystorm/internal/event"
	"github.com/dshills/keystorm/internal/event/events"
	"github.com/dshills/keystorm/internal/event/topic"
)

// debounceWindow coalesces the burst of fsnotify events an editor save
// produces (write, chmod, rename) into one reload.
const debounceWindow = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk and publishes
// config.reloaded / config.error events. The parent directory is watched
// rather than the file itself, so atomic-rename saves keep working.
type Watcher struct {
	path string
	bus  event.Bus

	fsw *fsnotify.Watcher

	mu      sync.RWMutex
	current Config

	done chan struct{}
}

// NewWatcher starts watching path. initial is served from Current until the
// first successful reload.
func NewWatcher(path string, initial Config, bus event.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		bus:     bus,
		fsw:     fsw,
		current: initial,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.publish(events.TopicConfigError, events.ConfigError{Path: w.path, Err: err.Error()})
		return
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
	w.publish(events.TopicConfigReloaded, events.ConfigReloaded{Path: w.path})
}

func (w *Watcher) publish(t topic.Topic, payload any) {
	if w.bus == nil {
		return
	}
	_ = w.bus.PublishSync(context.Background(), event.NewEvent(t, payload, "config"))
}
