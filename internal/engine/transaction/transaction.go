package transaction

import (
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
)

// Transaction pairs a ChangeSet with an optional post-image Selection. It is
// the unit of mutation Document.Apply accepts.
type Transaction struct {
	changes *ChangeSet
	sel     *selection.Selection
}

// New wraps a ChangeSet as a Transaction with no explicit post-image
// selection; the caller is expected to derive one via Selection.Map.
func New(cs *ChangeSet) *Transaction {
	return &Transaction{changes: cs}
}

// WithSelection attaches a post-image selection. It does not validate the
// selection against the resulting rope length; callers should do so (or rely
// on Document.Apply, which validates before committing).
func (t *Transaction) WithSelection(sel *selection.Selection) *Transaction {
	t2 := *t
	t2.sel = sel
	return &t2
}

// Changes returns the underlying ChangeSet.
func (t *Transaction) Changes() *ChangeSet { return t.changes }

// Selection returns the attached post-image selection, or nil if none was
// set.
func (t *Transaction) Selection() *selection.Selection { return t.sel }

// Applicable reports whether t's ChangeSet pre-image length matches r.
func (t *Transaction) Applicable(r rope.Rope) bool {
	return int(r.LenChars()) == t.changes.LenBefore
}

// Apply mutates *r in place (by replacing its value) according to t, and
// returns the resulting post-image selection: t.sel if set, otherwise
// priorSel mapped through t.changes.
func (t *Transaction) Apply(r *rope.Rope, priorSel *selection.Selection) (*selection.Selection, error) {
	if !t.Applicable(*r) {
		return nil, ErrLengthMismatch
	}
	out, err := t.changes.Apply(*r)
	if err != nil {
		return nil, err
	}
	*r = out
	if t.sel != nil {
		return t.sel, nil
	}
	if priorSel == nil {
		return nil, nil
	}
	mapped := priorSel.Map(t.changes)
	return mapped, nil
}

// Invert returns the Transaction that undoes t, given the pre-image rope and
// the selection that was active before t was applied.
func (t *Transaction) Invert(rBefore rope.Rope, selectionBefore *selection.Selection) *Transaction {
	return &Transaction{
		changes: t.changes.Invert(rBefore),
		sel:     selectionBefore,
	}
}

// Compose sequences t then next into a single Transaction, keeping next's
// selection (or t's, if next has none) as the combined post-image.
func (t *Transaction) Compose(next *Transaction) (*Transaction, error) {
	cs, err := t.changes.Compose(next.changes)
	if err != nil {
		return nil, err
	}
	sel := next.sel
	if sel == nil {
		sel = t.sel
	}
	return &Transaction{changes: cs, sel: sel}, nil
}

// InsertAt builds a Transaction inserting text at the given sorted,
// non-overlapping char positions in r.
func InsertAt(r rope.Rope, positions []int, text string) *Transaction {
	lenBefore := int(r.LenChars())
	b := NewBuilder(lenBefore)
	prev := 0
	for _, p := range positions {
		b.Retain(p - prev)
		b.Insert(text)
		prev = p
	}
	return New(b.Build())
}

// ChangeFunc computes the (from, to, replacement) for a single range during
// a selection-driven edit. A nil replacement means "delete only".
type ChangeFunc func(rng selection.Range) (from, to int, replacement *string)

// ChangeBySelection builds a Transaction from applying fn to every range in
// sel, in ascending non-overlapping order. Ranges are visited in document
// order regardless of sel's internal ordering.
func ChangeBySelection(r rope.Rope, sel *selection.Selection, fn ChangeFunc) *Transaction {
	lenBefore := int(r.LenChars())
	b := NewBuilder(lenBefore)
	prev := 0
	for _, rng := range sel.RangesSortedByPosition() {
		from, to, repl := fn(rng)
		if from < prev {
			from = prev
		}
		if to < from {
			to = from
		}
		b.Retain(from - prev)
		b.Delete(to - from)
		if repl != nil {
			b.Insert(*repl)
		}
		prev = to
	}
	return New(b.Build())
}

// DeleteBySelection builds a Transaction deleting, for every range in sel,
// the span fn returns (no replacement text).
func DeleteBySelection(r rope.Rope, sel *selection.Selection, fn func(selection.Range) (from, to int)) *Transaction {
	return ChangeBySelection(r, sel, func(rng selection.Range) (int, int, *string) {
		from, to := fn(rng)
		return from, to, nil
	})
}
