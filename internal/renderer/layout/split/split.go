// Package split implements SplitTree: a pure binary tree of editor panes
// with axis-aware splitting, closing, focus rotation, geometric directional
// jump/swap, branch transposition, and proportional rectangle layout.
// Nodes live in a plain map; iteration order is never invariant-relevant
// because layout walks via an explicit stack and pane/node enumeration
// sorts by id where order matters.
package split

import (
	"sort"

	"github.com/dshills/keystorm/internal/renderer/core"
)

// PaneID identifies a leaf pane. IDs are never reused within a Tree's
// lifetime.
type PaneID uint64

// NodeID identifies a tree node (leaf or branch).
type NodeID uint64

// Axis is the split direction of a branch node.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

// Transpose returns the opposite axis.
func (a Axis) Transpose() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Direction is a geometric jump/swap direction relative to the active pane.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Error is the Tree mutation error taxonomy.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownPane Error = "split: unknown pane"
	ErrLastPane    Error = "split: cannot close the last pane"
	ErrCorrupt     Error = "split: tree invariant violated"
)

// InvariantError is returned by Validate.
type InvariantError string

func (e InvariantError) Error() string { return string(e) }

const (
	ErrEmptyTree       InvariantError = "split: empty tree"
	ErrMissingRoot     InvariantError = "split: missing root"
	ErrRootHasParent   InvariantError = "split: root has a parent"
	ErrParentMismatch  InvariantError = "split: parent mismatch"
	ErrMissingNode     InvariantError = "split: missing node"
	ErrUnknownChild    InvariantError = "split: unknown child"
	ErrDuplicateVisit  InvariantError = "split: node visited twice"
	ErrUnreachableNode InvariantError = "split: unreachable node"
	ErrPaneMismatch    InvariantError = "split: pane/node mismatch"
	ErrMissingActive   InvariantError = "split: active pane missing"
)

// Node is a leaf (a single pane) or a branch (two children split along an
// axis at a proportional ratio).
type Node struct {
	IsLeaf bool

	// Leaf
	Pane PaneID

	// Branch
	Axis   Axis
	Ratio  float32
	First  NodeID
	Second NodeID
}

type nodeState struct {
	parent NodeID
	hasParent bool
	node   Node
}

// Tree is a binary tree of panes. The zero value is not usable; call New.
type Tree struct {
	root   NodeID
	active PaneID

	nodes     map[NodeID]nodeState
	paneNodes map[PaneID]NodeID

	nextNodeID NodeID
	nextPaneID PaneID
}

// New returns a tree with a single pane occupying the whole area.
func New() *Tree {
	root := NodeID(1)
	active := PaneID(1)
	t := &Tree{
		root:       root,
		active:     active,
		nodes:      map[NodeID]nodeState{root: {node: Node{IsLeaf: true, Pane: active}}},
		paneNodes:  map[PaneID]NodeID{active: root},
		nextNodeID: 2,
		nextPaneID: 2,
	}
	return t
}

// Root returns the root node's id.
func (t *Tree) Root() NodeID { return t.root }

// ActivePane returns the currently focused pane.
func (t *Tree) ActivePane() PaneID { return t.active }

// PaneCount returns the number of leaf panes.
func (t *Tree) PaneCount() int { return len(t.paneNodes) }

// NodeCount returns the number of tree nodes (leaves plus branches).
func (t *Tree) NodeCount() int { return len(t.nodes) }

// ContainsPane reports whether pane exists in the tree.
func (t *Tree) ContainsPane(pane PaneID) bool {
	_, ok := t.paneNodes[pane]
	return ok
}

// SetActivePane focuses pane, returning false if it doesn't exist.
func (t *Tree) SetActivePane(pane PaneID) bool {
	if !t.ContainsPane(pane) {
		return false
	}
	t.active = pane
	return true
}

// Node returns the node at id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	s, ok := t.nodes[id]
	return s.node, ok
}

// PaneOrder returns panes in left-to-right, top-to-bottom leaf order.
func (t *Tree) PaneOrder() []PaneID {
	order := t.leafOrder()
	out := make([]PaneID, 0, len(order))
	for _, id := range order {
		if p, ok := t.leafPane(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// SplitActive splits the active pane along axis, returning the new pane
// (which becomes active).
func (t *Tree) SplitActive(axis Axis) PaneID {
	p, err := t.SplitPane(t.active, axis)
	if err != nil {
		panic("split: active pane is always valid")
	}
	return p
}

// SplitPane splits pane along axis into two leaves at ratio 0.5, returning
// the newly created pane.
func (t *Tree) SplitPane(pane PaneID, axis Axis) (PaneID, error) {
	leafID, ok := t.paneNodes[pane]
	if !ok {
		return 0, ErrUnknownPane
	}

	parent, hasParent := t.nodeParent(leafID)
	firstLeaf := t.allocNodeID()
	secondLeaf := t.allocNodeID()
	newPane := t.allocPaneID()

	t.nodes[firstLeaf] = nodeState{parent: leafID, hasParent: true, node: Node{IsLeaf: true, Pane: pane}}
	t.nodes[secondLeaf] = nodeState{parent: leafID, hasParent: true, node: Node{IsLeaf: true, Pane: newPane}}

	t.nodes[leafID] = nodeState{parent: parent, hasParent: hasParent, node: Node{
		Axis: axis, Ratio: 0.5, First: firstLeaf, Second: secondLeaf,
	}}

	t.paneNodes[pane] = firstLeaf
	t.paneNodes[newPane] = secondLeaf
	t.active = newPane

	return newPane, nil
}

// CloseActive removes the active pane, merging its sibling into its
// parent's slot and focusing the first leaf of that sibling subtree. It
// fails with ErrLastPane if only one pane remains.
func (t *Tree) CloseActive() (PaneID, error) {
	if t.PaneCount() <= 1 {
		return 0, ErrLastPane
	}

	closingPane := t.active
	closingLeaf, ok := t.paneNodes[closingPane]
	if !ok {
		return 0, ErrUnknownPane
	}
	parent, ok := t.nodeParent(closingLeaf)
	if !ok {
		return 0, ErrCorrupt
	}

	pnode, ok := t.Node(parent)
	if !ok || pnode.IsLeaf {
		return 0, ErrCorrupt
	}
	sibling := pnode.Second
	if pnode.First != closingLeaf {
		sibling = pnode.First
	}

	grandparent, hasGrandparent := t.nodeParent(parent)

	delete(t.nodes, closingLeaf)
	delete(t.paneNodes, closingPane)
	delete(t.nodes, parent)

	if hasGrandparent {
		gpState, ok := t.nodes[grandparent]
		if !ok || gpState.node.IsLeaf {
			return 0, ErrCorrupt
		}
		if gpState.node.First == parent {
			gpState.node.First = sibling
		} else if gpState.node.Second == parent {
			gpState.node.Second = sibling
		} else {
			return 0, ErrCorrupt
		}
		t.nodes[grandparent] = gpState
		t.setParent(sibling, grandparent, true)
	} else {
		t.root = sibling
		t.setParent(sibling, 0, false)
	}

	nextActive, ok := t.firstLeafPane(sibling)
	if !ok {
		return 0, ErrCorrupt
	}
	t.active = nextActive
	return nextActive, nil
}

// OnlyActive discards every pane but the active one.
func (t *Tree) OnlyActive() {
	active := t.active
	root := t.allocNodeID()
	t.nodes = map[NodeID]nodeState{root: {node: Node{IsLeaf: true, Pane: active}}}
	t.paneNodes = map[PaneID]NodeID{active: root}
	t.root = root
}

// RotateFocus moves focus to the next (or, if next is false, previous) pane
// in leaf order, returning false if there's only one pane.
func (t *Tree) RotateFocus(next bool) bool {
	panes := t.PaneOrder()
	if len(panes) <= 1 {
		return false
	}
	current := -1
	for i, p := range panes {
		if p == t.active {
			current = i
			break
		}
	}
	if current < 0 {
		return false
	}
	var nextIndex int
	if next {
		nextIndex = (current + 1) % len(panes)
	} else {
		nextIndex = (current + len(panes) - 1) % len(panes)
	}
	t.active = panes[nextIndex]
	return true
}

// JumpActive moves focus to the nearest pane in direction, by geometric
// proximity among the panes reachable through an ancestor split on the
// matching axis.
func (t *Tree) JumpActive(direction Direction) bool {
	target, ok := t.findPaneInDirection(t.active, direction)
	if !ok || target == t.active {
		return false
	}
	t.active = target
	return true
}

// SwapActive exchanges the active pane's position with the nearest pane in
// direction, keeping focus on the (now relocated) active pane.
func (t *Tree) SwapActive(direction Direction) bool {
	active := t.active
	target, ok := t.findPaneInDirection(active, direction)
	if !ok || target == active {
		return false
	}

	activeLeaf, ok := t.paneNodes[active]
	if !ok {
		return false
	}
	targetLeaf, ok := t.paneNodes[target]
	if !ok {
		return false
	}
	activePane, ok := t.leafPane(activeLeaf)
	if !ok {
		return false
	}
	targetPane, ok := t.leafPane(targetLeaf)
	if !ok {
		return false
	}

	as := t.nodes[activeLeaf]
	as.node.Pane = targetPane
	t.nodes[activeLeaf] = as

	ts := t.nodes[targetLeaf]
	ts.node.Pane = activePane
	t.nodes[targetLeaf] = ts

	t.paneNodes[activePane] = targetLeaf
	t.paneNodes[targetPane] = activeLeaf
	return true
}

// TransposeActiveBranch flips the axis of the active pane's parent branch.
func (t *Tree) TransposeActiveBranch() bool {
	leafID, ok := t.paneNodes[t.active]
	if !ok {
		return false
	}
	parent, ok := t.nodeParent(leafID)
	if !ok {
		return false
	}
	state, ok := t.nodes[parent]
	if !ok || state.node.IsLeaf {
		return false
	}
	state.node.Axis = state.node.Axis.Transpose()
	t.nodes[parent] = state
	return true
}

// ActiveParentAxis returns the axis of the active pane's parent branch, or
// false if the active pane is the sole root leaf.
func (t *Tree) ActiveParentAxis() (Axis, bool) {
	leafID, ok := t.paneNodes[t.active]
	if !ok {
		return 0, false
	}
	parent, ok := t.nodeParent(leafID)
	if !ok {
		return 0, false
	}
	node, ok := t.Node(parent)
	if !ok || node.IsLeaf {
		return 0, false
	}
	return node.Axis, true
}

// Layout computes each pane's screen rectangle within area, preserving leaf
// order.
func (t *Tree) Layout(area core.ScreenRect) []PaneRect {
	type frame struct {
		id   NodeID
		rect core.ScreenRect
	}
	panes := make([]PaneRect, 0, t.PaneCount())
	stack := []frame{{t.root, area}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := t.Node(f.id)
		if !ok {
			continue
		}
		if node.IsLeaf {
			panes = append(panes, PaneRect{Pane: node.Pane, Rect: f.rect})
			continue
		}
		first, second := splitRect(f.rect, node.Axis, node.Ratio)
		stack = append(stack, frame{node.Second, second}, frame{node.First, first})
	}
	return panes
}

// PaneRect pairs a pane with its laid-out screen rectangle.
type PaneRect struct {
	Pane PaneID
	Rect core.ScreenRect
}

// Validate walks the whole tree checking parent/child consistency, full
// reachability, and that pane_nodes agrees with the leaves actually present.
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return ErrEmptyTree
	}
	if _, ok := t.nodes[t.root]; !ok {
		return ErrMissingRoot
	}
	if _, hasParent := t.nodeParent(t.root); hasParent {
		return ErrRootHasParent
	}

	type visit struct {
		id             NodeID
		expectedParent NodeID
		hasParent      bool
	}
	visited := map[NodeID]bool{}
	seenPanes := map[PaneID]NodeID{}
	stack := []visit{{t.root, 0, false}}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[v.id] {
			return ErrDuplicateVisit
		}
		visited[v.id] = true

		state, ok := t.nodes[v.id]
		if !ok {
			return ErrMissingNode
		}
		if state.hasParent != v.hasParent || (v.hasParent && state.parent != v.expectedParent) {
			return ErrParentMismatch
		}

		if state.node.IsLeaf {
			seenPanes[state.node.Pane] = v.id
			continue
		}
		if _, ok := t.nodes[state.node.First]; !ok {
			return ErrUnknownChild
		}
		if _, ok := t.nodes[state.node.Second]; !ok {
			return ErrUnknownChild
		}
		stack = append(stack, visit{state.node.First, v.id, true}, visit{state.node.Second, v.id, true})
	}

	if len(visited) != len(t.nodes) {
		return ErrUnreachableNode
	}
	if len(seenPanes) != len(t.paneNodes) {
		return ErrPaneMismatch
	}
	for pane, node := range seenPanes {
		if t.paneNodes[pane] != node {
			return ErrPaneMismatch
		}
	}
	if _, ok := t.paneNodes[t.active]; !ok {
		return ErrMissingActive
	}
	return nil
}

func (t *Tree) allocNodeID() NodeID {
	id := t.nextNodeID
	t.nextNodeID++
	return id
}

func (t *Tree) allocPaneID() PaneID {
	id := t.nextPaneID
	t.nextPaneID++
	return id
}

func (t *Tree) leafOrder() []NodeID {
	order := make([]NodeID, 0, t.PaneCount())
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		state, ok := t.nodes[id]
		if !ok {
			continue
		}
		if state.node.IsLeaf {
			order = append(order, id)
			continue
		}
		stack = append(stack, state.node.Second, state.node.First)
	}
	return order
}

func (t *Tree) leafPane(leaf NodeID) (PaneID, bool) {
	state, ok := t.nodes[leaf]
	if !ok || !state.node.IsLeaf {
		return 0, false
	}
	return state.node.Pane, true
}

func (t *Tree) firstLeafPane(root NodeID) (PaneID, bool) {
	current := root
	for {
		state, ok := t.nodes[current]
		if !ok {
			return 0, false
		}
		if state.node.IsLeaf {
			return state.node.Pane, true
		}
		current = state.node.First
	}
}

func (t *Tree) nodeParent(id NodeID) (NodeID, bool) {
	state, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return state.parent, state.hasParent
}

func (t *Tree) setParent(child NodeID, parent NodeID, has bool) {
	state, ok := t.nodes[child]
	if !ok {
		return
	}
	state.parent = parent
	state.hasParent = has
	t.nodes[child] = state
}

func (t *Tree) findPaneInDirection(pane PaneID, direction Direction) (PaneID, bool) {
	startLeaf, ok := t.paneNodes[pane]
	if !ok {
		return 0, false
	}
	origins := t.nodeOrigins()
	origin, ok := origins[startLeaf]
	if !ok {
		return 0, false
	}
	targetLeaf, ok := t.findLeafInDirection(startLeaf, direction, origin)
	if !ok {
		return 0, false
	}
	return t.leafPane(targetLeaf)
}

type point struct{ x, y float32 }

func (t *Tree) findLeafInDirection(id NodeID, direction Direction, origin point) (NodeID, bool) {
	origins := t.nodeOrigins()
	return t.findLeafInDirectionWithOrigins(id, direction, origin, origins)
}

func (t *Tree) findLeafInDirectionWithOrigins(id NodeID, direction Direction, origin point, origins map[NodeID]point) (NodeID, bool) {
	parent, ok := t.nodeParent(id)
	if !ok {
		return 0, false
	}
	pnode, ok := t.Node(parent)
	if !ok || pnode.IsLeaf {
		return 0, false
	}
	if !directionPossibleInAxis(direction, pnode.Axis) {
		return t.findLeafInDirectionWithOrigins(parent, direction, origin, origins)
	}
	child, ok := findAdjacentChild(pnode, id, direction)
	if !ok {
		return t.findLeafInDirectionWithOrigins(parent, direction, origin, origins)
	}
	return t.descendNearestLeaf(child, origin, origins)
}

func directionPossibleInAxis(direction Direction, axis Axis) bool {
	switch axis {
	case Horizontal:
		return direction == Up || direction == Down
	default:
		return direction == Left || direction == Right
	}
}

func findAdjacentChild(node Node, child NodeID, direction Direction) (NodeID, bool) {
	switch direction {
	case Up, Left:
		if node.Second == child {
			return node.First, true
		}
		return 0, false
	default:
		if node.First == child {
			return node.Second, true
		}
		return 0, false
	}
}

func (t *Tree) descendNearestLeaf(start NodeID, origin point, origins map[NodeID]point) (NodeID, bool) {
	node := start
	for {
		n, ok := t.Node(node)
		if !ok {
			return 0, false
		}
		if n.IsLeaf {
			return node, true
		}
		firstOrigin, ok1 := origins[n.First]
		secondOrigin, ok2 := origins[n.Second]
		if !ok1 || !ok2 {
			return 0, false
		}
		var firstDelta, secondDelta float32
		if n.Axis == Vertical {
			firstDelta = absF32(origin.x - firstOrigin.x)
			secondDelta = absF32(origin.x - secondOrigin.x)
		} else {
			firstDelta = absF32(origin.y - firstOrigin.y)
			secondDelta = absF32(origin.y - secondOrigin.y)
		}
		if firstDelta <= secondDelta {
			node = n.First
		} else {
			node = n.Second
		}
	}
}

func absF32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func (t *Tree) nodeOrigins() map[NodeID]point {
	type frame struct {
		id            NodeID
		x, y          float32
		width, height float32
	}
	origins := make(map[NodeID]point, len(t.nodes))
	stack := []frame{{t.root, 0, 0, 1, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		origins[f.id] = point{f.x, f.y}
		node, ok := t.Node(f.id)
		if !ok || node.IsLeaf {
			continue
		}
		ratio := node.Ratio
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		if node.Axis == Vertical {
			firstWidth := f.width * ratio
			stack = append(stack,
				frame{node.Second, f.x + firstWidth, f.y, f.width - firstWidth, f.height},
				frame{node.First, f.x, f.y, firstWidth, f.height},
			)
		} else {
			firstHeight := f.height * ratio
			stack = append(stack,
				frame{node.Second, f.x, f.y + firstHeight, f.width, f.height - firstHeight},
				frame{node.First, f.x, f.y, f.width, firstHeight},
			)
		}
	}
	return origins
}

func splitRect(rect core.ScreenRect, axis Axis, ratio float32) (core.ScreenRect, core.ScreenRect) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	switch axis {
	case Vertical:
		total := rect.Width()
		if total <= 1 {
			return core.NewScreenRect(rect.Top, rect.Left, rect.Bottom, rect.Left+total),
				core.NewScreenRect(rect.Top, rect.Right, rect.Bottom, rect.Right)
		}
		firstWidth := clampInt(roundF32(float32(total)*ratio), 1, total-1)
		secondWidth := total - firstWidth
		first := core.NewScreenRect(rect.Top, rect.Left, rect.Bottom, rect.Left+firstWidth)
		second := core.NewScreenRect(rect.Top, rect.Left+firstWidth, rect.Bottom, rect.Left+firstWidth+secondWidth)
		return first, second
	default:
		total := rect.Height()
		if total <= 1 {
			return core.NewScreenRect(rect.Top, rect.Left, rect.Top+total, rect.Right),
				core.NewScreenRect(rect.Bottom, rect.Left, rect.Bottom, rect.Right)
		}
		firstHeight := clampInt(roundF32(float32(total)*ratio), 1, total-1)
		secondHeight := total - firstHeight
		first := core.NewScreenRect(rect.Top, rect.Left, rect.Top+firstHeight, rect.Right)
		second := core.NewScreenRect(rect.Top+firstHeight, rect.Left, rect.Top+firstHeight+secondHeight, rect.Right)
		return first, second
	}
}

func roundF32(f float32) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SortedPaneIDs returns every pane id in the tree in ascending order, for
// deterministic iteration (e.g. session persistence) independent of leaf
// layout order.
func (t *Tree) SortedPaneIDs() []PaneID {
	out := make([]PaneID, 0, len(t.paneNodes))
	for p := range t.paneNodes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
