package editor

import (
	"sort"

	"github.com/dshills/keystorm/internal/engine/editing"
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
)

// InsertText inserts text at every cursor. A single-rune insertion goes
// through the auto-pairs hook first, so typing an opener also inserts its
// closer and typing over a closer skips it; anything the hook declines is
// inserted literally. Cursor mapping happens in Document.Apply.
func (e *Editor) InsertText(viewID ViewID, text string) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}

	runes := []rune(text)
	if len(runes) == 1 {
		if tx := editing.Hook(doc.Text(), doc.Selection(), runes[0], e.pairs); tx != nil {
			return e.Apply(viewID, tx)
		}
	}

	tx := transaction.InsertAt(doc.Text(), cursorPositions(doc.Selection()), text)
	return e.Apply(viewID, tx)
}

// DeleteBackward deletes one grapheme before every cursor. A cursor sitting
// inside an empty auto-pair deletes both tokens.
func (e *Editor) DeleteBackward(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}

	if tx := editing.DeleteHook(doc.Text(), doc.Selection(), e.pairs); tx != nil {
		return e.Apply(viewID, tx)
	}

	text := doc.Text()
	tx := transaction.DeleteBySelection(text, doc.Selection(), func(r selection.Range) (int, int) {
		pos := r.Cursor(text)
		if pos <= 0 {
			return 0, 0
		}
		return selection.PrevGraphemeBoundary(text, pos), pos
	})
	if tx.Changes().IsEmpty() {
		return nil
	}
	return e.Apply(viewID, tx)
}

// DeleteForward deletes the grapheme under every cursor.
func (e *Editor) DeleteForward(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}

	text := doc.Text()
	limit := int(text.LenChars())
	tx := transaction.DeleteBySelection(text, doc.Selection(), func(r selection.Range) (int, int) {
		pos := r.Cursor(text)
		if pos >= limit {
			return limit, limit
		}
		return pos, selection.NextGraphemeBoundary(text, pos)
	})
	if tx.Changes().IsEmpty() {
		return nil
	}
	return e.Apply(viewID, tx)
}

// DeleteSelection deletes every non-empty range, collapsing cursors to the
// range starts. Point cursors are left alone.
func (e *Editor) DeleteSelection(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}

	any := false
	for _, r := range doc.Selection().Ranges() {
		if r.From() != r.To() {
			any = true
			break
		}
	}
	if !any {
		return nil
	}

	tx := transaction.DeleteBySelection(doc.Text(), doc.Selection(), func(r selection.Range) (int, int) {
		return r.From(), r.To()
	})
	return e.Apply(viewID, tx)
}

// TransformSelection replaces the view's selection with f applied to every
// range, renormalized. Motions are expressed this way so multi-cursor moves
// stay atomic.
func (e *Editor) TransformSelection(viewID ViewID, f func(text rope.Rope, r selection.Range) selection.Range) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	text := doc.Text()
	return doc.SetSelection(doc.Selection().Transform(func(r selection.Range) selection.Range {
		return f(text, r)
	}))
}

// cursorPositions returns every cursor's insertion point, ascending and
// deduplicated, the order InsertAt requires.
func cursorPositions(sel *selection.Selection) []int {
	seen := make(map[int]bool)
	var positions []int
	for _, r := range sel.Ranges() {
		if !seen[r.Head] {
			seen[r.Head] = true
			positions = append(positions, r.Head)
		}
	}
	sort.Ints(positions)
	return positions
}
