package document

import (
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
)

// historyNode is one edit in the undo tree: the transaction that was
// applied, its precomputed inverse, and the selections immediately before
// and after it. Non-linear undo is supported by keeping every branch
// reachable from root instead of discarding it on a new edit (as a flat
// stack would); redo always resumes the most recently created branch, so
// undo immediately followed by redo round-trips.
type historyNode struct {
	parent          *historyNode
	children        []*historyNode
	tx              *transaction.Transaction
	inverse         *transaction.Transaction
	selectionBefore *selection.Selection
	selectionAfter  *selection.Selection
}

// historyTree roots an undo tree at an empty sentinel node (representing the
// document's initial state) and tracks the current node.
type historyTree struct {
	root    *historyNode
	current *historyNode
}

func newHistoryTree() *historyTree {
	root := &historyNode{}
	return &historyTree{root: root, current: root}
}

// record appends a new node as a child of the current node and makes it
// current, truncating no existing branch (older branches stay in the tree
// as children of their parent; Redo only walks the newest branch).
func (h *historyTree) record(tx, inverse *transaction.Transaction, before, after *selection.Selection) {
	node := &historyNode{
		parent:          h.current,
		tx:              tx,
		inverse:         inverse,
		selectionBefore: before,
		selectionAfter:  after,
	}
	h.current.children = append(h.current.children, node)
	h.current = node
}

// undo returns the node representing the edit to undo (the current node)
// and moves current to its parent. ok is false at the root.
func (h *historyTree) undo() (*historyNode, bool) {
	if h.current.parent == nil {
		return nil, false
	}
	node := h.current
	h.current = node.parent
	return node, true
}

// redo re-applies the most recently created child of the current node. ok
// is false if the current node is a leaf.
func (h *historyTree) redo() (*historyNode, bool) {
	if len(h.current.children) == 0 {
		return nil, false
	}
	node := h.current.children[len(h.current.children)-1]
	h.current = node
	return node, true
}
