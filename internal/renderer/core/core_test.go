package core

import "testing"

func TestRectGeometry(t *testing.T) {
	r := RectFromSize(2, 3, 10, 20)
	if r.Top != 2 || r.Left != 3 || r.Bottom != 12 || r.Right != 23 {
		t.Fatalf("RectFromSize = %+v", r)
	}
	if w, h := r.Size(); w != 20 || h != 10 {
		t.Errorf("Size() = %d, %d", w, h)
	}
	if r.Area() != 200 {
		t.Errorf("Area() = %d", r.Area())
	}
	if !r.Contains(ScreenPos{Row: 2, Col: 3}) {
		t.Error("top-left corner should be contained")
	}
	if r.Contains(ScreenPos{Row: 12, Col: 3}) {
		t.Error("bottom edge is exclusive")
	}
}

func TestRectIntersect(t *testing.T) {
	a := NewScreenRect(0, 0, 10, 10)
	b := NewScreenRect(5, 5, 15, 15)
	got := a.Intersect(b)
	if got != NewScreenRect(5, 5, 10, 10) {
		t.Errorf("Intersect = %+v", got)
	}
	c := NewScreenRect(20, 20, 25, 25)
	if !a.Intersect(c).IsEmpty() {
		t.Error("disjoint rects should intersect to empty")
	}
}

func TestPosBefore(t *testing.T) {
	if !(ScreenPos{Row: 1, Col: 9}).Before(ScreenPos{Row: 2, Col: 0}) {
		t.Error("earlier row should come first")
	}
	if (ScreenPos{Row: 1, Col: 5}).Before(ScreenPos{Row: 1, Col: 5}) {
		t.Error("equal positions are not before each other")
	}
}

func TestStyleMerge(t *testing.T) {
	base := DefaultStyle().WithForeground(ColorRed)
	over := DefaultStyle().WithBackground(ColorBlue).Bold()
	got := base.Merge(over)
	if got.Foreground != ColorRed {
		t.Errorf("merge clobbered foreground: %+v", got.Foreground)
	}
	if got.Background != ColorBlue {
		t.Errorf("merge did not take background: %+v", got.Background)
	}
	if !got.Attributes.Has(AttrBold) {
		t.Error("merge did not union attributes")
	}

	under := DefaultStyle().WithUnderline(UnderlineCurly, ColorGreen)
	got = base.Merge(under)
	if got.Underline != UnderlineCurly || got.UnderlineColor != ColorGreen {
		t.Errorf("merge did not take underline: %+v", got)
	}
}

func TestStyleDefaults(t *testing.T) {
	if !DefaultStyle().IsDefault() {
		t.Error("DefaultStyle should report IsDefault")
	}
	if DefaultStyle().WithForeground(ColorWhite).IsDefault() {
		t.Error("styled foreground should not be default")
	}
	if !ColorDefault.IsDefault() || ColorFromRGB(1, 2, 3).IsDefault() {
		t.Error("color default flags wrong")
	}
}
