// Package document implements Document: the owning type that pairs a rope
// with its active Selection, a tree-shaped undo history, and a
// TextAnnotations set, and is the sole place transactions are committed.
// The version counter bumps on every successful mutation and is the
// invalidation key every render cache observes.
package document

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
	"github.com/dshills/keystorm/internal/renderer/annotations"
)

// ID uniquely identifies a Document within a process.
type ID uint64

var idCounter uint64

// NextID allocates a fresh Document ID.
func NextID() ID {
	return ID(atomic.AddUint64(&idCounter, 1))
}

// LineEnding is the line terminator a Document normalizes new inserts to
// when StripCR/UseCRLF policies are applied by callers; Document itself does
// not rewrite existing content.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

// Document owns a rope buffer, the active multi-cursor Selection, a
// tree-shaped undo history, and text annotations. All mutation goes through
// Apply, which keeps the rope, selection, and history in sync or rejects the
// transaction entirely.
type Document struct {
	mu sync.Mutex

	id   ID
	path string

	text rope.Rope
	sel  *selection.Selection

	version    uint64
	history    *historyTree
	lineEnding LineEnding
	readOnly   bool
	dirty      bool

	annotations *annotations.TextAnnotations
}

// New creates a Document over the given text, with a single cursor at
// position 0.
func New(text string) *Document {
	r := rope.FromString(text)
	return &Document{
		id:          NextID(),
		text:        r,
		sel:         selection.PointSelection(0),
		history:     newHistoryTree(),
		lineEnding:  LF,
		annotations: annotations.New(),
	}
}

// ID returns this Document's identity.
func (d *Document) ID() ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Path returns the backing file path, or "" for an unsaved buffer.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// SetPath sets the backing file path.
func (d *Document) SetPath(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.path = path
}

// Text returns the current buffer contents.
func (d *Document) Text() rope.Rope {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Selection returns the active selection.
func (d *Document) Selection() *selection.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel
}

// Version returns the monotonically increasing counter bumped by every
// successful Apply, Undo, or Redo; render caches key off it.
func (d *Document) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// Dirty reports whether the buffer has unsaved changes.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (d *Document) MarkClean() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = false
}

// ReadOnly reports whether Apply rejects mutating transactions.
func (d *Document) ReadOnly() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readOnly
}

// SetReadOnly toggles the read-only flag.
func (d *Document) SetReadOnly(ro bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readOnly = ro
}

// LineEnding returns the line-ending policy new inserts should follow.
func (d *Document) LineEnding() LineEnding {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineEnding
}

// SetLineEnding sets the line-ending policy.
func (d *Document) SetLineEnding(le LineEnding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lineEnding = le
}

// Annotations returns the document's TextAnnotations set for mutation by
// diagnostic/blame/inlay-hint providers.
func (d *Document) Annotations() *annotations.TextAnnotations {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.annotations
}

// Apply commits tx: it must be applicable to the current rope, and the
// selection it produces (either tx's explicit selection or the current
// selection mapped through tx's ChangeSet) must lie within the resulting
// rope's bounds. On any failure the Document is left unchanged. On success
// the edit is recorded in the undo tree and any redo branch from a different
// edit is superseded by this one.
func (d *Document) Apply(tx *transaction.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readOnly {
		return ErrReadOnly
	}
	if !tx.Applicable(d.text) {
		return ErrLengthMismatch
	}

	before := d.text
	selBefore := d.sel

	working := d.text
	newSel, err := tx.Apply(&working, d.sel)
	if err != nil {
		return err
	}
	if newSel == nil {
		newSel = selection.PointSelection(0)
	}
	newSel = newSel.Clamp(int(working.LenChars()))

	inverse := tx.Invert(before, selBefore)

	d.text = working
	d.sel = newSel
	d.version++
	d.dirty = true
	d.history.record(tx, inverse, selBefore, newSel)

	return nil
}

// SetSelection replaces the active selection without recording history. sel
// is validated against the current rope length: any range reaching outside
// [0, len] is rejected with ErrSelectionOutOfBounds and the Document is left
// unchanged, mirroring Apply's reject-on-failure contract.
func (d *Document) SetSelection(sel *selection.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	maxPos := int(d.text.LenChars())
	for i := 0; i < sel.Len(); i++ {
		r := sel.At(i)
		if r.Anchor < 0 || r.Anchor > maxPos || r.Head < 0 || r.Head > maxPos {
			return ErrSelectionOutOfBounds
		}
	}
	d.sel = sel
	return nil
}

// Undo reverts the most recent edit still on the current history branch,
// restoring the selection active immediately before that edit.
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	node, ok := d.history.undo()
	if !ok {
		return ErrNothingToUndo
	}
	working := d.text
	if _, err := node.inverse.Apply(&working, d.sel); err != nil {
		d.history.current = node
		return err
	}
	d.text = working
	d.sel = node.selectionBefore
	d.version++
	d.dirty = true
	return nil
}

// Redo re-applies the most recently undone edit on the current branch,
// restoring the selection active immediately after that edit.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	node, ok := d.history.redo()
	if !ok {
		return ErrNothingToRedo
	}
	working := d.text
	if _, err := node.tx.Apply(&working, d.sel); err != nil {
		d.history.current = node.parent
		return err
	}
	d.text = working
	d.sel = node.selectionAfter
	d.version++
	d.dirty = true
	return nil
}
