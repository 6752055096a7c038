package terminal

import "testing"

func TestAdapterFirstSnapshotReportsFullRebuild(t *testing.T) {
	scr := NewScreen(10, 3)
	a := NewAdapter(scr)

	snap := a.Snapshot()
	if !snap.NeedsFullRebuild {
		t.Fatalf("first snapshot should report a full rebuild")
	}
	if len(snap.DirtyRows) != 3 {
		t.Fatalf("got %d dirty rows want 3", len(snap.DirtyRows))
	}
}

func TestAdapterSecondSnapshotReportsOnlyChangedRows(t *testing.T) {
	scr := NewScreen(10, 3)
	a := NewAdapter(scr)
	_ = a.Snapshot()

	scr.WriteRune('x')

	snap := a.Snapshot()
	if snap.NeedsFullRebuild {
		t.Fatalf("second snapshot should not report a full rebuild")
	}
	if len(snap.DirtyRows) != 1 || snap.DirtyRows[0] != 0 {
		t.Fatalf("dirty rows = %v want [0]", snap.DirtyRows)
	}
}

func TestAdapterQuiescentFrameReportsNoDirtyRows(t *testing.T) {
	scr := NewScreen(10, 3)
	a := NewAdapter(scr)
	_ = a.Snapshot()
	_ = a.Snapshot()

	snap := a.Snapshot()
	if len(snap.DirtyRows) != 0 {
		t.Fatalf("dirty rows = %v want none", snap.DirtyRows)
	}
}

func TestAdapterResizeForcesFullRebuild(t *testing.T) {
	scr := NewScreen(10, 3)
	a := NewAdapter(scr)
	_ = a.Snapshot()

	scr.Resize(20, 5)

	snap := a.Snapshot()
	if !snap.NeedsFullRebuild {
		t.Fatalf("resize should force a full rebuild")
	}
	if snap.Width != 20 || snap.Height != 5 {
		t.Fatalf("snapshot size = %dx%d want 20x5", snap.Width, snap.Height)
	}
}

func TestAdapterPinnedRowNeverReportedDirty(t *testing.T) {
	scr := NewScreen(10, 3)
	a := NewAdapter(scr)
	a.PinRow(0)
	_ = a.Snapshot()

	scr.WriteRune('x')

	snap := a.Snapshot()
	for _, row := range snap.DirtyRows {
		if row == 0 {
			t.Fatalf("pinned row 0 reported dirty: %v", snap.DirtyRows)
		}
	}
}

func TestAdapterCursorPosReflectsScreen(t *testing.T) {
	scr := NewScreen(10, 3)
	scr.MoveCursor(4, 1)
	a := NewAdapter(scr)

	snap := a.Snapshot()
	if snap.CursorPos != (Pos{X: 4, Y: 1}) {
		t.Fatalf("cursor pos = %+v want (4,1)", snap.CursorPos)
	}
}
