package backend

import (
	"testing"

	"github.com/dshills/keystorm/internal/renderer/core"
)

// cellRecorder collects FlushTo writes.
type cellRecorder struct {
	writes map[[2]int]core.Cell
}

func newCellRecorder() *cellRecorder {
	return &cellRecorder{writes: make(map[[2]int]core.Cell)}
}

func (r *cellRecorder) SetCell(x, y int, cell core.Cell) {
	r.writes[[2]int{x, y}] = cell
}

func TestFlushPushesEverythingOnce(t *testing.T) {
	sb := NewScreenBuffer(4, 2)
	sb.SetString(0, 0, "hi", core.DefaultStyle())

	rec := newCellRecorder()
	sb.FlushTo(rec)
	if len(rec.writes) != 8 {
		t.Fatalf("first flush wrote %d cells, want all 8", len(rec.writes))
	}
	if rec.writes[[2]int{0, 0}].Rune != 'h' {
		t.Errorf("cell(0,0) = %+v", rec.writes[[2]int{0, 0}])
	}

	// An unchanged buffer flushes nothing.
	rec = newCellRecorder()
	sb.FlushTo(rec)
	if len(rec.writes) != 0 {
		t.Errorf("idle flush wrote %d cells", len(rec.writes))
	}

	// One changed cell flushes one cell.
	sb.Set(3, 1, core.NewStyledCell('x', core.DefaultStyle()))
	if sb.DirtyCount() != 1 {
		t.Errorf("DirtyCount = %d", sb.DirtyCount())
	}
	rec = newCellRecorder()
	sb.FlushTo(rec)
	if len(rec.writes) != 1 || rec.writes[[2]int{3, 1}].Rune != 'x' {
		t.Errorf("incremental flush = %+v", rec.writes)
	}
}

func TestResizeForcesFullRepaint(t *testing.T) {
	sb := NewScreenBuffer(2, 2)
	sb.FlushTo(newCellRecorder())

	sb.Resize(3, 2)
	rec := newCellRecorder()
	sb.FlushTo(rec)
	if len(rec.writes) != 6 {
		t.Errorf("post-resize flush wrote %d cells, want 6", len(rec.writes))
	}
}

func TestSetStringClipsAtEdge(t *testing.T) {
	sb := NewScreenBuffer(3, 1)
	end := sb.SetString(1, 0, "long", core.DefaultStyle())
	if end != 3 {
		t.Errorf("end col = %d", end)
	}
	if sb.Get(2, 0).Rune != 'o' {
		t.Errorf("cell(2,0) = %q", sb.Get(2, 0).Rune)
	}
}

func TestMergeStyleKeepsRunes(t *testing.T) {
	sb := NewScreenBuffer(3, 1)
	sb.SetString(0, 0, "abc", core.DefaultStyle())
	sel := core.DefaultStyle().WithBackground(core.ColorBlue)
	sb.MergeStyle(core.NewScreenRect(0, 1, 1, 3), sel)

	if got := sb.Get(1, 0); got.Rune != 'b' || got.Style.Background != core.ColorBlue {
		t.Errorf("merged cell = %+v", got)
	}
	if got := sb.Get(0, 0); got.Style.Background == core.ColorBlue {
		t.Errorf("cell outside rect restyled: %+v", got)
	}
}
