package lsp

import (
	"sync"
	"time"
)

// TriggerKind classifies what caused a completion request.
type TriggerKind int

const (
	// TriggerAuto is an identifier-character keystroke; debounced longest
	// so fast typing does not spam the server.
	TriggerAuto TriggerKind = iota

	// TriggerCharacter is a server-declared trigger character ("." etc.);
	// debounced just enough to coalesce a paste.
	TriggerCharacter

	// TriggerManual is an explicit user request; fires immediately.
	TriggerManual
)

// Debounce delays per trigger kind.
const (
	AutoTriggerDelay      = 120 * time.Millisecond
	CharacterTriggerDelay = 5 * time.Millisecond
)

// CompletionDebouncer coalesces completion triggers and hands each fired
// request a generation number. A new trigger supersedes the pending one; a
// cursor move to before the pending trigger position cancels it; results
// carrying a stale generation are the caller's to discard via IsCurrent.
type CompletionDebouncer struct {
	mu sync.Mutex

	autoDelay time.Duration
	charDelay time.Duration

	timer      *time.Timer
	generation uint64
	pendingPos int
	hasPending bool

	fire func(generation uint64, pos int)
}

// NewCompletionDebouncer returns a debouncer with the standard delays.
// fire runs on the debounce timer's goroutine (or the caller's, for manual
// triggers) once the delay elapses without being superseded.
func NewCompletionDebouncer(fire func(generation uint64, pos int)) *CompletionDebouncer {
	return &CompletionDebouncer{
		autoDelay: AutoTriggerDelay,
		charDelay: CharacterTriggerDelay,
		fire:      fire,
	}
}

// Trigger schedules a completion request at pos. Any pending trigger and
// any in-flight request are superseded.
func (d *CompletionDebouncer) Trigger(pos int, kind TriggerKind) {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.pendingPos = pos
	d.hasPending = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	var delay time.Duration
	switch kind {
	case TriggerCharacter:
		delay = d.charDelay
	case TriggerManual:
		d.hasPending = false
		d.mu.Unlock()
		d.fire(gen, pos)
		return
	default:
		delay = d.autoDelay
	}

	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.generation != gen || !d.hasPending {
			d.mu.Unlock()
			return
		}
		d.hasPending = false
		d.mu.Unlock()
		d.fire(gen, pos)
	})
	d.mu.Unlock()
}

// CursorMoved reports a cursor position change. Moving to before the
// pending trigger position cancels it; moving after leaves it pending (the
// fired request will cover the newer position's prefix).
func (d *CompletionDebouncer) CursorMoved(pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasPending && pos < d.pendingPos {
		d.cancelLocked()
	}
}

// Cancel drops the pending trigger and invalidates any in-flight request.
func (d *CompletionDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *CompletionDebouncer) cancelLocked() {
	d.generation++
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// IsCurrent reports whether a request fired with generation is still the
// newest; stale results must be discarded.
func (d *CompletionDebouncer) IsCurrent(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return generation == d.generation
}
