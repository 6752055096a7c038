package selection

import (
	"sort"
	"sync/atomic"
)

// CursorID is an opaque, non-zero, process-unique handle for a Range within
// a Selection. It is preserved positionally across Transform and (where the
// underlying range survives) across Map.
type CursorID uint64

var cursorIDCounter uint64

// NextCursorID allocates a fresh, never-reused CursorID.
func NextCursorID() CursorID {
	return CursorID(atomic.AddUint64(&cursorIDCounter, 1))
}

// Selection is an ordered, non-overlapping sequence of Ranges with a
// designated primary range and a parallel slice of stable CursorIDs.
type Selection struct {
	ranges  []Range
	ids     []CursorID
	primary int
}

// New validates ranges and primary and returns a Selection with freshly
// allocated CursorIDs. It fails with ErrEmpty if ranges is empty,
// ErrIndexOutOfRange if primary is out of bounds, or ErrOverlap if any two
// ranges overlap.
func New(ranges []Range, primary int) (*Selection, error) {
	ids := make([]CursorID, len(ranges))
	for i := range ids {
		ids[i] = NextCursorID()
	}
	return newWithIDs(ranges, ids, primary)
}

func newWithIDs(ranges []Range, ids []CursorID, primary int) (*Selection, error) {
	if len(ranges) == 0 {
		return nil, ErrEmpty
	}
	if primary < 0 || primary >= len(ranges) {
		return nil, ErrIndexOutOfRange
	}
	for i := range ranges {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Overlaps(ranges[j]) {
				return nil, ErrOverlap
			}
		}
	}
	return &Selection{
		ranges:  append([]Range(nil), ranges...),
		ids:     append([]CursorID(nil), ids...),
		primary: primary,
	}, nil
}

// Single returns a Selection containing exactly one range.
func Single(r Range) *Selection {
	s, _ := New([]Range{r}, 0)
	return s
}

// PointSelection returns a Selection containing a single point cursor.
func PointSelection(pos int) *Selection {
	return Single(Point(pos))
}

// Len returns the number of ranges.
func (s *Selection) Len() int { return len(s.ranges) }

// Ranges returns the ranges in their stored (not necessarily sorted) order.
func (s *Selection) Ranges() []Range {
	return append([]Range(nil), s.ranges...)
}

// RangesSortedByPosition returns a copy of the ranges sorted by From().
func (s *Selection) RangesSortedByPosition() []Range {
	out := append([]Range(nil), s.ranges...)
	sort.Slice(out, func(i, j int) bool { return out[i].From() < out[j].From() })
	return out
}

// CursorIDs returns the CursorIDs parallel to Ranges().
func (s *Selection) CursorIDs() []CursorID {
	return append([]CursorID(nil), s.ids...)
}

// PrimaryIndex returns the index of the primary range.
func (s *Selection) PrimaryIndex() int { return s.primary }

// Primary returns the designated primary range.
func (s *Selection) Primary() Range { return s.ranges[s.primary] }

// At returns the i'th range.
func (s *Selection) At(i int) Range { return s.ranges[i] }

// IDAt returns the i'th range's CursorID.
func (s *Selection) IDAt(i int) CursorID { return s.ids[i] }

// Normalize sorts ranges by From(), merges overlapping ranges (keeping the
// CursorID of the earlier range in each merged group), and recomputes the
// primary index to track the same CursorID when possible.
func (s *Selection) Normalize() *Selection {
	type item struct {
		r  Range
		id CursorID
	}
	items := make([]item, len(s.ranges))
	for i := range s.ranges {
		items[i] = item{s.ranges[i], s.ids[i]}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].r.From() < items[j].r.From() })

	var outR []Range
	var outID []CursorID
	for _, it := range items {
		if n := len(outR); n > 0 && outR[n-1].Overlaps(it.r) {
			outR[n-1] = mergeRanges(outR[n-1], it.r)
			continue
		}
		outR = append(outR, it.r)
		outID = append(outID, it.id)
	}

	primaryID := s.ids[s.primary]
	newPrimary := 0
	for i, id := range outID {
		if id == primaryID {
			newPrimary = i
			break
		}
	}
	if newPrimary >= len(outR) {
		newPrimary = len(outR) - 1
	}
	return &Selection{ranges: outR, ids: outID, primary: newPrimary}
}

func mergeRanges(a, b Range) Range {
	from := a.From()
	if b.From() < from {
		from = b.From()
	}
	to := a.To()
	if b.To() > to {
		to = b.To()
	}
	if a.Direction() == DirBackward {
		return Range{Anchor: to, Head: from}
	}
	return Range{Anchor: from, Head: to}
}

// Transform maps every range through f, preserving the primary index and
// CursorIDs one-to-one, then re-normalizes.
func (s *Selection) Transform(f func(Range) Range) *Selection {
	ranges := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		ranges[i] = f(r)
	}
	ns := &Selection{ranges: ranges, ids: append([]CursorID(nil), s.ids...), primary: s.primary}
	return ns.Normalize()
}

// Mapper maps a char position through an edit. ChangeSet implements this.
type Mapper interface {
	MapPos(pos int, assoc Assoc) int
}

// Assoc disambiguates which side of an insertion/replacement a mapped
// position sticks to.
type Assoc uint8

const (
	// Before keeps the position at the left edge of an insertion.
	Before Assoc = iota
	// After moves the position past an insertion at the same point.
	After
)

// Map maps every range's anchor (Assoc Before) and head (Assoc After)
// through m, preserving CursorIDs positionally, then re-normalizes so the
// result is a valid Selection (overlaps produced by the edit are merged).
func (s *Selection) Map(m Mapper) *Selection {
	ranges := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		ranges[i] = Range{
			Anchor: m.MapPos(r.Anchor, Before),
			Head:   m.MapPos(r.Head, After),
		}
	}
	ns := &Selection{ranges: ranges, ids: append([]CursorID(nil), s.ids...), primary: s.primary}
	return ns.Normalize()
}

// Clamp clamps every range's endpoints to [0, maxPos].
func (s *Selection) Clamp(maxPos int) *Selection {
	return s.Transform(func(r Range) Range {
		clampOne := func(p int) int {
			if p < 0 {
				return 0
			}
			if p > maxPos {
				return maxPos
			}
			return p
		}
		r.Anchor = clampOne(r.Anchor)
		r.Head = clampOne(r.Head)
		return r
	})
}
