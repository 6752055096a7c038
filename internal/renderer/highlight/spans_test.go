package highlight

import "testing"

func TestSpanHighlighterMonotonic(t *testing.T) {
	hl := NewSpanHighlighter([]Span{
		{Start: 0, End: 3, Highlight: RGBHighlight(1, 0, 0)},
		{Start: 5, End: 9, Highlight: RGBHighlight(0, 1, 0)},
	})

	cases := []struct {
		idx  int
		want Highlight
		ok   bool
	}{
		{0, RGBHighlight(1, 0, 0), true},
		{2, RGBHighlight(1, 0, 0), true},
		{3, 0, false},
		{4, 0, false},
		{5, RGBHighlight(0, 1, 0), true},
		{8, RGBHighlight(0, 1, 0), true},
		{9, 0, false},
	}
	for _, c := range cases {
		got, ok := hl.HighlightAt(c.idx)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("HighlightAt(%d) = %v, %v", c.idx, got, ok)
		}
	}
}

func TestSpanHighlighterReseek(t *testing.T) {
	hl := NewSpanHighlighter([]Span{
		{Start: 0, End: 2, Highlight: RGBHighlight(1, 1, 1)},
		{Start: 10, End: 12, Highlight: RGBHighlight(2, 2, 2)},
	})

	if _, ok := hl.HighlightAt(11); !ok {
		t.Fatal("expected hit at 11")
	}
	// Going backwards must reseek, not miss.
	if got, ok := hl.HighlightAt(1); !ok || got != RGBHighlight(1, 1, 1) {
		t.Errorf("backwards query = %v, %v", got, ok)
	}
}

func TestSpanHighlighterOverlapLaterWins(t *testing.T) {
	hl := NewSpanHighlighter([]Span{
		{Start: 0, End: 10, Highlight: RGBHighlight(1, 0, 0)},
		{Start: 4, End: 6, Highlight: RGBHighlight(0, 2, 0)},
	})
	if got, _ := hl.HighlightAt(5); got != RGBHighlight(0, 2, 0) {
		t.Errorf("inner span should win, got %v", got)
	}
	if got, _ := hl.HighlightAt(7); got != RGBHighlight(1, 0, 0) {
		t.Errorf("outer span should resume, got %v", got)
	}
}
