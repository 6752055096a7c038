package selection

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
)

func TestRangeCursor(t *testing.T) {
	text := rope.FromString("abcde")

	forward := NewRange(1, 4)
	if got, want := forward.Cursor(text), 3; got != want {
		t.Fatalf("forward cursor = %d want %d", got, want)
	}

	backward := NewRange(4, 1)
	if got, want := backward.Cursor(text), 1; got != want {
		t.Fatalf("backward cursor = %d want %d", got, want)
	}

	point := Point(2)
	if got, want := point.Cursor(text), 2; got != want {
		t.Fatalf("point cursor = %d want %d", got, want)
	}
}

func TestLineRange(t *testing.T) {
	text := rope.FromString("aa\nbb\ncc")
	r := NewRange(0, 6) // covers "aa\nbb\n"
	start, end := r.LineRange(text)
	if start != 0 || end != 1 {
		t.Fatalf("line range = (%d,%d) want (0,1)", start, end)
	}

	empty := Point(4)
	s2, e2 := empty.LineRange(text)
	if s2 != e2 {
		t.Fatalf("empty range should cover one line, got (%d,%d)", s2, e2)
	}
}

func TestPutCursor(t *testing.T) {
	text := rope.FromString("hello")
	r := Point(0)
	extended := r.PutCursor(text, 3, true)
	if extended.Anchor != 0 || extended.Head != 3 {
		t.Fatalf("extended = %+v", extended)
	}
	collapsed := r.PutCursor(text, 3, false)
	if collapsed.Anchor != 3 || collapsed.Head != 3 {
		t.Fatalf("collapsed = %+v", collapsed)
	}
}
