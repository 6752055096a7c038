package editor

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/transaction"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/plan"
)

func TestOpenDocumentAssignsDistinctIDs(t *testing.T) {
	e := New(nil)

	docA, viewA := e.OpenDocument("", "hello")
	docB, viewB := e.OpenDocument("", "world")

	if docA == docB {
		t.Fatalf("document IDs must be unique: %v == %v", docA, docB)
	}
	if viewA == viewB {
		t.Fatalf("view IDs must be unique: %v == %v", viewA, viewB)
	}
	if e.Panes().PaneCount() != 2 {
		t.Fatalf("pane count = %d want 2", e.Panes().PaneCount())
	}
}

// Closing a document/view and opening a fresh one must never hand back an
// ID that collides with one still (or previously) live.
func TestDocumentAndViewIDsNeverReusedAcrossCloseOpen(t *testing.T) {
	e := New(nil)
	seenDocs := map[uint64]bool{}
	seenViews := map[uint64]bool{}
	record := func(doc DocumentID, view ViewID) {
		if seenDocs[uint64(doc)] {
			t.Fatalf("document ID %v reused", doc)
		}
		seenDocs[uint64(doc)] = true
		if seenViews[uint64(view)] {
			t.Fatalf("view ID %v reused", view)
		}
		seenViews[uint64(view)] = true
	}

	doc1, view1 := e.OpenDocument("", "first")
	record(doc1, view1)

	doc2, view2 := e.OpenDocument("", "second")
	record(doc2, view2)

	if err := e.CloseView(view2); err != nil {
		t.Fatalf("close view2: %v", err)
	}
	if err := e.CloseDocument(doc2); err != nil {
		t.Fatalf("close doc2: %v", err)
	}

	doc3, view3 := e.OpenDocument("", "third")
	record(doc3, view3)
}

func TestApplyRejectsUnknownView(t *testing.T) {
	e := New(nil)
	tx := transaction.InsertAt(rope.FromString(""), []int{0}, "x")
	if err := e.Apply(ViewID(999), tx); err != ErrUnknownView {
		t.Fatalf("err = %v want ErrUnknownView", err)
	}
}

func TestApplyCommitsThroughDocumentAndBumpsVersion(t *testing.T) {
	e := New(nil)
	doc, view := e.OpenDocument("", "hello")

	d, err := e.Document(doc)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	tx := transaction.InsertAt(d.Text(), []int{5}, " world")
	if err := e.Apply(view, tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := d.Text().String(), "hello world"; got != want {
		t.Fatalf("text = %q want %q", got, want)
	}
}

func TestCloseDocumentRejectsWhileViewOpen(t *testing.T) {
	e := New(nil)
	doc, _ := e.OpenDocument("", "x")
	if err := e.CloseDocument(doc); err != ErrDocumentInUse {
		t.Fatalf("err = %v want ErrDocumentInUse", err)
	}
}

func TestToggleLineCommentRoundTrips(t *testing.T) {
	e := New(nil)
	_, view := e.OpenDocument("", "foo")

	if err := e.ToggleLineComment(view, "//"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	d, _ := e.documentForView(view)
	if got := d.Text().String(); got != "// foo" {
		t.Fatalf("text = %q want '// foo'", got)
	}

	if err := e.ToggleLineComment(view, "//"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if got := d.Text().String(); got != "foo" {
		t.Fatalf("text = %q want 'foo'", got)
	}
}

func TestOpenTerminalPaneTracksDirtyRows(t *testing.T) {
	e := New(nil)
	_, docView := e.OpenDocument("", "abc")

	pane, adapter := e.OpenTerminalPane(10, 3)
	if pane == 0 {
		t.Fatalf("terminal pane id must be non-zero")
	}
	if e.Panes().PaneCount() != 2 {
		t.Fatalf("pane count = %d want 2", e.Panes().PaneCount())
	}

	got, ok := e.TerminalAdapter(pane)
	if !ok || got != adapter {
		t.Fatalf("TerminalAdapter(%v) = %v, %v want the adapter returned by OpenTerminalPane", pane, got, ok)
	}

	snap := adapter.Snapshot()
	if !snap.NeedsFullRebuild {
		t.Fatalf("first snapshot should report a full rebuild")
	}

	if err := e.CloseTerminalPane(pane); err != nil {
		t.Fatalf("close terminal pane: %v", err)
	}
	if _, ok := e.TerminalAdapter(pane); ok {
		t.Fatalf("terminal adapter should be gone after CloseTerminalPane")
	}
	_ = docView
}

func TestRenderProducesPlanForOpenDocument(t *testing.T) {
	e := New(nil)
	_, view := e.OpenDocument("", "abc\ndef")

	area := core.RectFromSize(0, 0, 5, 10)
	p, err := e.Render(view, area, plan.RenderStyles{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("got %d lines want 2", len(p.Lines))
	}
}
