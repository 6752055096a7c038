package document

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
)

func TestDocumentApplyBumpsVersionAndDirty(t *testing.T) {
	d := New("hello")
	if d.Version() != 0 {
		t.Fatalf("version = %d want 0", d.Version())
	}
	if d.Dirty() {
		t.Fatalf("new document should not be dirty")
	}

	tx := transaction.InsertAt(d.Text(), []int{5}, " world")
	if err := d.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := d.Text().String(), "hello world"; got != want {
		t.Fatalf("text = %q want %q", got, want)
	}
	if d.Version() != 1 {
		t.Fatalf("version = %d want 1", d.Version())
	}
	if !d.Dirty() {
		t.Fatalf("document should be dirty after apply")
	}
}

func TestDocumentApplyRejectsLengthMismatch(t *testing.T) {
	d := New("hello")
	stale := transaction.InsertAt(rope.FromString("stale value"), []int{2}, "X")
	if err := d.Apply(stale); err != ErrLengthMismatch {
		t.Fatalf("err = %v want ErrLengthMismatch", err)
	}
	if d.Version() != 0 {
		t.Fatalf("version changed on rejected apply")
	}
}

func TestDocumentReadOnlyRejectsApply(t *testing.T) {
	d := New("hello")
	d.SetReadOnly(true)
	tx := transaction.InsertAt(d.Text(), []int{0}, "X")
	if err := d.Apply(tx); err != ErrReadOnly {
		t.Fatalf("err = %v want ErrReadOnly", err)
	}
}

func TestDocumentUndoRedoRoundTrip(t *testing.T) {
	d := New("abc")
	if err := d.SetSelection(selection.PointSelection(1)); err != nil {
		t.Fatalf("set selection: %v", err)
	}

	tx := transaction.InsertAt(d.Text(), []int{1}, "XY")
	if err := d.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := d.Text().String(), "aXYbc"; got != want {
		t.Fatalf("text = %q want %q", got, want)
	}
	if d.Version() != 1 {
		t.Fatalf("version = %d want 1", d.Version())
	}

	if err := d.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got, want := d.Text().String(), "abc"; got != want {
		t.Fatalf("after undo text = %q want %q", got, want)
	}
	if d.Selection().Primary().Head != 1 {
		t.Fatalf("undo did not restore prior selection")
	}

	if err := d.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if got, want := d.Text().String(), "aXYbc"; got != want {
		t.Fatalf("after redo text = %q want %q", got, want)
	}
}

func TestDocumentUndoAtRootFails(t *testing.T) {
	d := New("abc")
	if err := d.Undo(); err != ErrNothingToUndo {
		t.Fatalf("err = %v want ErrNothingToUndo", err)
	}
}

func TestDocumentRedoWithoutUndoFails(t *testing.T) {
	d := New("abc")
	if err := d.Redo(); err != ErrNothingToRedo {
		t.Fatalf("err = %v want ErrNothingToRedo", err)
	}
}

func TestDocumentNewEditSupersedesRedoBranch(t *testing.T) {
	d := New("abc")
	tx1 := transaction.InsertAt(d.Text(), []int{0}, "1")
	if err := d.Apply(tx1); err != nil {
		t.Fatalf("apply 1: %v", err)
	}
	if err := d.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	tx2 := transaction.InsertAt(d.Text(), []int{0}, "2")
	if err := d.Apply(tx2); err != nil {
		t.Fatalf("apply 2: %v", err)
	}
	if got, want := d.Text().String(), "2abc"; got != want {
		t.Fatalf("text = %q want %q", got, want)
	}

	// redo should now find no newer branch beyond this edit
	if err := d.Redo(); err != ErrNothingToRedo {
		t.Fatalf("err = %v want ErrNothingToRedo", err)
	}
}

func TestDocumentIDsAreUniqueAndNonzero(t *testing.T) {
	a := New("a")
	b := New("b")
	if a.ID() == 0 || b.ID() == 0 {
		t.Fatalf("document IDs must be non-zero")
	}
	if a.ID() == b.ID() {
		t.Fatalf("document IDs must be unique")
	}
}

func TestDocumentSetSelectionRejectsOutOfBounds(t *testing.T) {
	d := New("abc")
	before := d.Selection()

	oob, err := selection.New([]selection.Range{selection.NewRange(100, 100)}, 0)
	if err != nil {
		t.Fatalf("build selection: %v", err)
	}
	if err := d.SetSelection(oob); err != ErrSelectionOutOfBounds {
		t.Fatalf("err = %v want ErrSelectionOutOfBounds", err)
	}
	if d.Selection() != before {
		t.Fatalf("selection changed after rejected SetSelection")
	}
}

func TestDocumentSetSelectionAcceptsInBounds(t *testing.T) {
	d := New("abc")
	sel, err := selection.New([]selection.Range{selection.NewRange(1, 3)}, 0)
	if err != nil {
		t.Fatalf("build selection: %v", err)
	}
	if err := d.SetSelection(sel); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	if got := d.Selection().Primary(); got.Anchor != 1 || got.Head != 3 {
		t.Fatalf("selection = %+v want (1,3)", got)
	}
}
