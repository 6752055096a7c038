package lsp

import (
	"sync"
	"testing"
	"time"
)

type fireRecorder struct {
	mu    sync.Mutex
	fires []int
	gens  []uint64
}

func (r *fireRecorder) fire(gen uint64, pos int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fires = append(r.fires, pos)
	r.gens = append(r.gens, gen)
}

func (r *fireRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fires)
}

func (r *fireRecorder) last() (pos int, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fires[len(r.fires)-1], r.gens[len(r.gens)-1]
}

func waitForFires(t *testing.T, r *fireRecorder, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.count() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.count() < n {
		t.Fatalf("only %d fires, want %d", r.count(), n)
	}
}

func TestManualTriggerFiresImmediately(t *testing.T) {
	r := &fireRecorder{}
	d := NewCompletionDebouncer(r.fire)
	d.Trigger(10, TriggerManual)
	if r.count() != 1 {
		t.Fatalf("fires = %d", r.count())
	}
	pos, gen := r.last()
	if pos != 10 || !d.IsCurrent(gen) {
		t.Errorf("pos=%d current=%v", pos, d.IsCurrent(gen))
	}
}

func TestLaterTriggerSupersedesEarlier(t *testing.T) {
	r := &fireRecorder{}
	d := NewCompletionDebouncer(r.fire)

	d.Trigger(5, TriggerAuto)
	d.Trigger(6, TriggerCharacter)
	waitForFires(t, r, 1)

	// Only the later trigger fires; the auto one was superseded.
	time.Sleep(AutoTriggerDelay + 50*time.Millisecond)
	if r.count() != 1 {
		t.Fatalf("fires = %d, want 1", r.count())
	}
	if pos, _ := r.last(); pos != 6 {
		t.Errorf("fired pos = %d, want 6", pos)
	}
}

func TestCursorMoveBeforePendingCancels(t *testing.T) {
	r := &fireRecorder{}
	d := NewCompletionDebouncer(r.fire)

	d.Trigger(10, TriggerAuto)
	d.CursorMoved(8)

	time.Sleep(AutoTriggerDelay + 50*time.Millisecond)
	if r.count() != 0 {
		t.Errorf("fires = %d, want 0 after backwards cursor move", r.count())
	}
}

func TestCursorMoveAfterPendingKeeps(t *testing.T) {
	r := &fireRecorder{}
	d := NewCompletionDebouncer(r.fire)

	d.Trigger(10, TriggerCharacter)
	d.CursorMoved(12)
	waitForFires(t, r, 1)
	if pos, _ := r.last(); pos != 10 {
		t.Errorf("fired pos = %d", pos)
	}
}

func TestCancelInvalidatesInFlightGeneration(t *testing.T) {
	r := &fireRecorder{}
	d := NewCompletionDebouncer(r.fire)

	d.Trigger(3, TriggerManual)
	_, gen := r.last()
	if !d.IsCurrent(gen) {
		t.Fatal("generation should be current before Cancel")
	}
	d.Cancel()
	if d.IsCurrent(gen) {
		t.Error("Cancel should invalidate the in-flight generation")
	}
}
