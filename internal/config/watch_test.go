package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dshills/keystorm/internal/event"
	"github.com/dshills/keystorm/internal/event/events"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bus := event.NewBus(0)
	var mu sync.Mutex
	reloads := 0
	errorsSeen := 0
	_, _ = bus.Subscribe(events.TopicConfigReloaded, func(_ context.Context, _ event.Event) error {
		mu.Lock()
		reloads++
		mu.Unlock()
		return nil
	})
	_, _ = bus.Subscribe(events.TopicConfigError, func(_ context.Context, _ event.Event) error {
		mu.Lock()
		errorsSeen++
		mu.Unlock()
		return nil
	})

	initial, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path, initial, bus)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if w.Current().Editor.TabWidth == 8 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := w.Current().Editor.TabWidth; got != 8 {
		t.Fatalf("tab_width after reload = %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if reloads == 0 {
		t.Error("no config.reloaded event published")
	}
	if errorsSeen != 0 {
		t.Errorf("unexpected config.error events: %d", errorsSeen)
	}
}

func TestWatcherKeepsOldConfigOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\ntab_width = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bus := event.NewBus(0)
	errCh := make(chan struct{}, 1)
	_, _ = bus.Subscribe(events.TopicConfigError, func(_ context.Context, _ event.Event) error {
		select {
		case errCh <- struct{}{}:
		default:
		}
		return nil
	})

	initial, _ := Load(path)
	w, err := NewWatcher(path, initial, bus)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("tab_width = ["), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("no config.error event published")
	}
	if got := w.Current().Editor.TabWidth; got != 4 {
		t.Errorf("bad file should keep old config, tab_width = %d", got)
	}
}
