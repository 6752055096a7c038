package editing

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
)

func TestPairShouldCloseAtEndOfLine(t *testing.T) {
	r := rope.FromString("foo \n")
	p := Pair{Open: "(", Close: ")"}
	sel := selection.PointSelection(4)
	if !p.ShouldClose(r, sel.Primary()) {
		t.Fatalf("expected should-close before whitespace")
	}
}

func TestPairShouldNotCloseBeforeIdentifier(t *testing.T) {
	r := rope.FromString("(foo")
	p := Pair{Open: "(", Close: ")"}
	sel := selection.PointSelection(1)
	if p.ShouldClose(r, sel.Primary()) {
		t.Fatalf("expected no auto-close before an identifier char")
	}
}

func TestPairSameRequiresNonAlphaOnBothSides(t *testing.T) {
	r := rope.FromString("dont")
	p := Pair{Open: "'", Close: "'"}
	sel := selection.PointSelection(4) // cursor right after the trailing 't'
	if p.ShouldClose(r, sel.Primary()) {
		t.Fatalf("expected no auto-close right after a word char for a same-char pair")
	}
}

// Typing an opening bracket at an empty buffer position inserts both the
// open and close delimiter with the cursor left between them.
func TestHookInsertsPairAtEmptyBuffer(t *testing.T) {
	r := rope.FromString("")
	sel := selection.PointSelection(0)
	pairs := NewDefaultAutoPairs()

	tx := Hook(r, sel, '(', pairs)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	newSel, err := tx.Apply(&r, sel)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "()"; got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}
	prim := newSel.Primary()
	if prim.Anchor != 1 || prim.Head != 1 {
		t.Fatalf("cursor = %+v want point at 1", prim)
	}
}

func TestHookSkipsOverExistingClose(t *testing.T) {
	r := rope.FromString("()")
	sel := selection.PointSelection(1)
	pairs := NewDefaultAutoPairs()

	tx := Hook(r, sel, ')', pairs)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	newSel, err := tx.Apply(&r, sel)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "()"; got != want {
		t.Fatalf("rope should be unchanged, got %q want %q", got, want)
	}
	prim := newSel.Primary()
	if prim.Head != 2 {
		t.Fatalf("cursor = %+v want head at 2 (skipped over close)", prim)
	}
}

func TestHookReturnsNilForUnmatchedChar(t *testing.T) {
	r := rope.FromString("")
	sel := selection.PointSelection(0)
	pairs := NewDefaultAutoPairs()

	if tx := Hook(r, sel, 'x', pairs); tx != nil {
		t.Fatalf("expected nil transaction for a non-pair char")
	}
}

func TestDeleteHookRemovesBothDelimiters(t *testing.T) {
	r := rope.FromString("(a())")
	sel := selection.PointSelection(3) // cursor between the inner "()"
	pairs := NewDefaultAutoPairs()

	tx := DeleteHook(r, sel, pairs)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	if _, err := tx.Apply(&r, sel); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "(a)"; got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}
}

func TestDeleteHookNilWhenNotBetweenPair(t *testing.T) {
	r := rope.FromString("(ab)")
	sel := selection.PointSelection(2)
	pairs := NewDefaultAutoPairs()

	if tx := DeleteHook(r, sel, pairs); tx != nil {
		t.Fatalf("expected nil transaction, cursor is not between a pair")
	}
}

func TestMatchOpenPairPrefersLongestMatch(t *testing.T) {
	pairs := NewAutoPairs([]Pair{
		{Open: "\"", Close: "\""},
		{Open: "\"\"\"", Close: "\"\"\""},
	})
	r := rope.FromString("\"\"")
	p, ok := matchOpenPair(r, 2, '"', pairs)
	if !ok {
		t.Fatalf("expected a longest-match open pair")
	}
	if p.Open != "\"\"\"" {
		t.Fatalf("matched open %q, want the triple quote", p.Open)
	}
}
