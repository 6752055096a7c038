package highlight

import "sort"

// Span is a highlighted half-open char range [Start, End).
type Span struct {
	Start     int
	End       int
	Highlight Highlight
}

// SpanHighlighter resolves per-character highlight ids from a sorted set of
// spans. It implements CharHighlighter with the monotonic-query contract
// the render-plan builder relies on: repeated calls with non-decreasing
// charIdx advance an internal index instead of re-searching, and a query
// before the last one reseeks with a binary search.
type SpanHighlighter struct {
	spans []Span
	idx   int
	last  int
}

// NewSpanHighlighter returns a highlighter over spans. The spans are sorted
// by start; overlapping spans resolve to the later one in sorted order.
func NewSpanHighlighter(spans []Span) *SpanHighlighter {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &SpanHighlighter{spans: sorted, last: -1}
}

// HighlightAt returns the highlight covering charIdx, if any.
func (s *SpanHighlighter) HighlightAt(charIdx int) (Highlight, bool) {
	if charIdx < s.last {
		s.idx = sort.Search(len(s.spans), func(i int) bool { return s.spans[i].End > charIdx })
	}
	s.last = charIdx

	for s.idx < len(s.spans) && s.spans[s.idx].End <= charIdx {
		s.idx++
	}

	var h Highlight
	found := false
	for i := s.idx; i < len(s.spans) && s.spans[i].Start <= charIdx; i++ {
		if s.spans[i].End > charIdx {
			h = s.spans[i].Highlight
			found = true
		}
	}
	return h, found
}

// Reset rewinds the internal cursor so the highlighter can be traversed
// again from the start.
func (s *SpanHighlighter) Reset() {
	s.idx = 0
	s.last = -1
}
