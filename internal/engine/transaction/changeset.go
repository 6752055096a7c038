package transaction

import (
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
)

// Kind identifies the operation a Change performs.
type Kind uint8

const (
	// Retain keeps N chars from the source unchanged.
	Retain Kind = iota
	// Delete removes the next N chars of the source.
	Delete
	// Insert inserts Text verbatim; it does not consume any source chars.
	Insert
)

// Change is a single op in a ChangeSet. Exactly one of N (Retain/Delete) or
// Text (Insert) is meaningful depending on Kind.
type Change struct {
	Kind Kind
	N    int    // char count, for Retain/Delete
	Text string // literal text, for Insert
}

// Chars returns the number of result chars this op contributes.
func (c Change) Chars() int {
	switch c.Kind {
	case Retain:
		return c.N
	case Insert:
		return len([]rune(c.Text))
	default:
		return 0
	}
}

// consumed returns how many source chars this op consumes.
func (c Change) consumed() int {
	switch c.Kind {
	case Retain, Delete:
		return c.N
	default:
		return 0
	}
}

func retain(n int) Change { return Change{Kind: Retain, N: n} }
func del(n int) Change    { return Change{Kind: Delete, N: n} }
func ins(s string) Change { return Change{Kind: Insert, Text: s} }

// ChangeSet is an ordered sequence of Changes together with the char length
// of the rope it is meant to apply to (LenBefore).
type ChangeSet struct {
	LenBefore int
	Changes   []Change
}

// Identity returns a no-op ChangeSet over a rope of the given length.
func Identity(lenBefore int) *ChangeSet {
	cs := &ChangeSet{LenBefore: lenBefore}
	if lenBefore > 0 {
		cs.Changes = []Change{retain(lenBefore)}
	}
	return cs
}

// NewBuilder returns a ChangeSetBuilder for the given source length.
func NewBuilder(lenBefore int) *ChangeSetBuilder {
	return &ChangeSetBuilder{lenBefore: lenBefore}
}

// ChangeSetBuilder accumulates ops in non-decreasing source-position order
// and normalizes them into a ChangeSet on Build.
type ChangeSetBuilder struct {
	lenBefore int
	changes   []Change
	consumed  int
}

// Retain appends a Retain(n) op.
func (b *ChangeSetBuilder) Retain(n int) *ChangeSetBuilder {
	if n <= 0 {
		return b
	}
	b.changes = append(b.changes, retain(n))
	b.consumed += n
	return b
}

// Delete appends a Delete(n) op.
func (b *ChangeSetBuilder) Delete(n int) *ChangeSetBuilder {
	if n <= 0 {
		return b
	}
	b.changes = append(b.changes, del(n))
	b.consumed += n
	return b
}

// Insert appends an Insert(text) op.
func (b *ChangeSetBuilder) Insert(text string) *ChangeSetBuilder {
	if text == "" {
		return b
	}
	b.changes = append(b.changes, ins(text))
	return b
}

// Build retains any remaining source chars and returns the normalized
// ChangeSet.
func (b *ChangeSetBuilder) Build() *ChangeSet {
	if rest := b.lenBefore - b.consumed; rest > 0 {
		b.changes = append(b.changes, retain(rest))
	}
	cs := &ChangeSet{LenBefore: b.lenBefore, Changes: b.changes}
	cs.normalize()
	return cs
}

// normalize merges adjacent same-kind ops, drops zero-length ops, and
// coalesces adjacent Insert text. A Delete immediately followed by an
// Insert is left as two ops (a "replacement") so inversion can pair them.
func (cs *ChangeSet) normalize() {
	out := make([]Change, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		switch c.Kind {
		case Retain:
			if c.N == 0 {
				continue
			}
		case Delete:
			if c.N == 0 {
				continue
			}
		case Insert:
			if c.Text == "" {
				continue
			}
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Kind == c.Kind {
				switch c.Kind {
				case Retain, Delete:
					last.N += c.N
					continue
				case Insert:
					last.Text += c.Text
					continue
				}
			}
		}
		out = append(out, c)
	}
	cs.Changes = out
}

// LenAfter returns the char length of the rope after applying this ChangeSet.
func (cs *ChangeSet) LenAfter() int {
	n := 0
	for _, c := range cs.Changes {
		n += c.Chars()
	}
	return n
}

// IsEmpty reports whether the ChangeSet performs no edits at all.
func (cs *ChangeSet) IsEmpty() bool {
	for _, c := range cs.Changes {
		if c.Kind != Retain {
			return false
		}
	}
	return true
}

// Apply runs the ChangeSet against r and returns the resulting rope. It
// returns ErrLengthMismatch if r's length does not match cs.LenBefore.
func (cs *ChangeSet) Apply(r rope.Rope) (rope.Rope, error) {
	if int(r.LenChars()) != cs.LenBefore {
		return rope.Rope{}, ErrLengthMismatch
	}
	pos := rope.CharOffset(0)
	out := rope.NewBuilder()
	for _, c := range cs.Changes {
		switch c.Kind {
		case Retain:
			out.WriteString(r.SliceChars(pos, pos+rope.CharOffset(c.N)))
			pos += rope.CharOffset(c.N)
		case Delete:
			pos += rope.CharOffset(c.N)
		case Insert:
			out.WriteString(c.Text)
		}
	}
	return out.Build(), nil
}

// deletedSlices extracts, for every Delete op, the text it removes from
// rBefore (the pre-image rope). Used by Invert.
func (cs *ChangeSet) deletedSlices(rBefore rope.Rope) []string {
	pos := rope.CharOffset(0)
	slices := make([]string, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		switch c.Kind {
		case Retain:
			pos += rope.CharOffset(c.N)
		case Delete:
			slices = append(slices, rBefore.SliceChars(pos, pos+rope.CharOffset(c.N)))
			pos += rope.CharOffset(c.N)
		case Insert:
			// no source chars consumed
		}
	}
	return slices
}

// Invert returns the ChangeSet which, applied to Apply(cs, rBefore), restores
// rBefore. rBefore must be the rope cs was built against (len == LenBefore).
func (cs *ChangeSet) Invert(rBefore rope.Rope) *ChangeSet {
	deleted := cs.deletedSlices(rBefore)
	di := 0
	out := &ChangeSet{LenBefore: cs.LenAfter()}
	for _, c := range cs.Changes {
		switch c.Kind {
		case Retain:
			out.Changes = append(out.Changes, retain(c.N))
		case Insert:
			out.Changes = append(out.Changes, del(len([]rune(c.Text))))
		case Delete:
			out.Changes = append(out.Changes, ins(deleted[di]))
			di++
		}
	}
	out.normalize()
	return out
}

// opQueue is a FIFO of Change fragments that supports taking a prefix of up
// to n chars off the front, splitting the front fragment if necessary.
// Insert fragments are measured and split in runes; Retain/Delete in N.
type opQueue struct {
	q []Change
}

func newOpQueue(changes []Change) *opQueue {
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if c.Kind == Insert && c.Text == "" {
			continue
		}
		if c.Kind != Insert && c.N == 0 {
			continue
		}
		out = append(out, c)
	}
	return &opQueue{q: out}
}

func (o *opQueue) empty() bool { return len(o.q) == 0 }

func (o *opQueue) peekKind() Kind { return o.q[0].Kind }

func (o *opQueue) peekLen() int {
	c := o.q[0]
	if c.Kind == Insert {
		return len([]rune(c.Text))
	}
	return c.N
}

// take removes up to n units from the front fragment and returns them as a
// Change of the same Kind; the front fragment is shrunk or popped.
func (o *opQueue) take(n int) Change {
	c := o.q[0]
	full := o.peekLen()
	if n >= full {
		o.q = o.q[1:]
		return c
	}
	if c.Kind == Insert {
		r := []rune(c.Text)
		taken := ins(string(r[:n]))
		o.q[0] = ins(string(r[n:]))
		return taken
	}
	taken := Change{Kind: c.Kind, N: n}
	o.q[0] = Change{Kind: c.Kind, N: c.N - n}
	return taken
}

// Compose returns a ChangeSet equivalent to applying cs then other: i.e.
// Apply(Compose(cs, other), r) == Apply(other, Apply(cs, r)). other.LenBefore
// must equal cs.LenAfter().
func (cs *ChangeSet) Compose(other *ChangeSet) (*ChangeSet, error) {
	if cs.LenAfter() != other.LenBefore {
		return nil, ErrLengthMismatch
	}
	b := NewBuilder(cs.LenBefore)
	a := newOpQueue(cs.Changes)
	o := newOpQueue(other.Changes)

	for !a.empty() || !o.empty() {
		switch {
		case !o.empty() && o.peekKind() == Insert:
			b.Insert(o.take(o.peekLen()).Text)
		case !a.empty() && a.peekKind() == Delete:
			b.Delete(a.take(a.peekLen()).N)
		case !a.empty() && a.peekKind() == Insert:
			// Inserted text from `a` is retained, deleted, or replaced by `o`.
			if o.empty() {
				c := a.take(a.peekLen())
				b.Insert(c.Text)
				continue
			}
			n := min(a.peekLen(), o.peekLen())
			ac := a.take(n)
			switch o.peekKind() {
			case Retain:
				o.take(n)
				b.Insert(ac.Text)
			case Delete:
				o.take(n)
				// dropped: inserted-then-deleted text contributes nothing
			case Insert:
				b.Insert(o.take(o.peekLen()).Text)
			}
		case a.empty() || o.empty():
			return nil, ErrCompose
		default:
			n := min(a.peekLen(), o.peekLen())
			ac := a.take(n)
			oc := o.take(n)
			switch {
			case ac.Kind == Delete:
				b.Delete(n)
			case oc.Kind == Delete:
				b.Delete(n)
			default: // Retain, Retain
				b.Retain(n)
			}
		}
	}
	return b.Build(), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Assoc re-exports selection.Assoc so callers need not import both packages
// when only mapping positions.
type Assoc = selection.Assoc

// Before and After re-export selection.Before/selection.After.
const (
	Before = selection.Before
	After  = selection.After
)

// MapPos maps pos (a char index in the pre-image) through the ChangeSet,
// returning its image in the post-image coordinate space. ChangeSet
// satisfies selection.Mapper.
func (cs *ChangeSet) MapPos(pos int, assoc Assoc) int {
	if cs.IsEmpty() {
		return pos
	}
	oldPos := 0
	newPos := 0
	for _, c := range cs.Changes {
		switch c.Kind {
		case Retain:
			if pos < oldPos+c.N {
				return newPos + (pos - oldPos)
			}
			oldPos += c.N
			newPos += c.N
		case Delete:
			if pos < oldPos+c.N {
				return newPos
			}
			oldPos += c.N
		case Insert:
			n := c.Chars()
			if pos == oldPos {
				if assoc == After {
					newPos += n
					continue
				}
				return newPos
			}
			newPos += n
		}
	}
	return newPos
}
