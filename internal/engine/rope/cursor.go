package rope

import (
	"strings"
	"unicode/utf8"
)

// Cursor is a stateful position in a rope: a root-to-leaf path allowing
// O(log n) seeks by byte, char, or line, and O(1) amortized stepping.
type Cursor struct {
	rope     Rope
	path     []cursorFrame
	offset   ByteOffset
	point    Point
	pointSet bool

	leaf     *Node
	chunkIdx int
	chunkOff int
}

// cursorFrame records one descent step: which child was taken and the
// absolute byte/line position where that node starts.
type cursorFrame struct {
	node      *Node
	childIdx  int
	startByte ByteOffset
	startLine uint32
}

// NewCursor returns a cursor at the start of r.
func NewCursor(r Rope) *Cursor {
	c := &Cursor{rope: r, path: make([]cursorFrame, 0, 16)}
	c.rewind()
	return c
}

// rewind positions the cursor at the beginning.
func (c *Cursor) rewind() {
	c.path = c.path[:0]
	c.offset = 0
	c.point = Point{}
	c.pointSet = true

	if c.rope.root == nil {
		c.leaf = nil
		return
	}

	node := c.rope.root
	for !node.IsLeaf() {
		c.path = append(c.path, cursorFrame{node: node})
		node = node.children[0]
	}
	c.leaf = node
	c.chunkIdx = 0
	c.chunkOff = 0
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() ByteOffset {
	return c.offset
}

// Char returns the current char offset.
func (c *Cursor) Char() CharOffset {
	return c.rope.ByteToChar(c.offset)
}

// Point returns the current line/column, computing it lazily after a seek.
func (c *Cursor) Point() Point {
	if !c.pointSet {
		c.computePoint()
	}
	return c.point
}

func (c *Cursor) computePoint() {
	c.point = Point{}

	for _, frame := range c.path {
		for i := 0; i < frame.childIdx; i++ {
			c.point.Line += frame.node.childSummaries[i].Lines
		}
	}

	if c.leaf != nil {
		for i := 0; i < c.chunkIdx; i++ {
			c.point.Line += c.leaf.chunks[i].Summary().Lines
		}
		if c.chunkIdx < len(c.leaf.chunks) {
			head := c.leaf.chunks[c.chunkIdx].String()[:c.chunkOff]
			c.point.Line += uint32(strings.Count(head, "\n"))
		}
	}

	c.point.Column = uint32(c.offset - c.LineStartOffset())
	c.pointSet = true
}

// LineStartOffset returns the byte offset where the current line begins,
// scanning backward for the nearest newline: first the current chunk, then
// earlier chunks in the leaf, then byte-at-a-time across leaves.
func (c *Cursor) LineStartOffset() ByteOffset {
	if c.offset == 0 {
		return 0
	}

	if c.leaf != nil && c.chunkIdx < len(c.leaf.chunks) {
		chunkStart := c.offset - ByteOffset(c.chunkOff)

		head := c.leaf.chunks[c.chunkIdx].String()[:c.chunkOff]
		if i := strings.LastIndexByte(head, '\n'); i >= 0 {
			return chunkStart + ByteOffset(i) + 1
		}

		for i := c.chunkIdx - 1; i >= 0; i-- {
			prev := c.leaf.chunks[i]
			chunkStart -= ByteOffset(prev.Len())
			if j := strings.LastIndexByte(prev.String(), '\n'); j >= 0 {
				return chunkStart + ByteOffset(j) + 1
			}
		}

		for at := chunkStart; at > 0; at-- {
			b, ok := c.rope.ByteAt(at - 1)
			if !ok {
				break
			}
			if b == '\n' {
				return at
			}
		}
	}

	return 0
}

// SeekChar moves the cursor to the given char offset.
func (c *Cursor) SeekChar(at CharOffset) bool {
	if at > c.rope.LenChars() {
		return false
	}
	return c.SeekOffset(c.rope.CharToByte(at))
}

// SeekOffset moves the cursor to the given byte offset, snapping backward
// to a rune boundary if the offset lands mid-rune.
func (c *Cursor) SeekOffset(at ByteOffset) bool {
	if c.rope.root == nil {
		return at == 0
	}
	total := c.rope.Len()
	if at > total {
		return false
	}

	c.path = c.path[:0]
	c.offset = at
	c.pointSet = false

	if at == total {
		return c.seekEnd()
	}

	node := c.rope.root
	var nodeByte ByteOffset
	var nodeLine uint32

	for !node.IsLeaf() {
		childByte := nodeByte
		childLine := nodeLine
		descended := false

		for i, s := range node.childSummaries {
			if childByte+s.Bytes > at {
				c.path = append(c.path, cursorFrame{
					node:      node,
					childIdx:  i,
					startByte: childByte,
					startLine: childLine,
				})
				node = node.children[i]
				nodeByte = childByte
				nodeLine = childLine
				descended = true
				break
			}
			childByte += s.Bytes
			childLine += s.Lines
		}
		if !descended {
			return false
		}
	}

	c.leaf = node
	chunkByte := nodeByte

	for i, chunk := range node.chunks {
		size := ByteOffset(chunk.Len())
		if chunkByte+size > at {
			c.chunkIdx = i
			c.chunkOff = int(at - chunkByte)

			text := chunk.String()
			for c.chunkOff > 0 && c.chunkOff < len(text) && !isRuneStart(text[c.chunkOff]) {
				c.chunkOff--
				c.offset--
			}
			return true
		}
		chunkByte += size
	}

	c.chunkIdx = len(node.chunks) - 1
	if c.chunkIdx >= 0 {
		c.chunkOff = node.chunks[c.chunkIdx].Len()
	} else {
		c.chunkOff = 0
	}
	return true
}

func (c *Cursor) seekEnd() bool {
	c.path = c.path[:0]
	c.offset = c.rope.Len()
	c.pointSet = false

	if c.rope.root == nil {
		c.leaf = nil
		return true
	}

	node := c.rope.root
	var nodeByte ByteOffset
	var nodeLine uint32

	for !node.IsLeaf() {
		last := len(node.children) - 1
		for i := 0; i < last; i++ {
			nodeByte += node.childSummaries[i].Bytes
			nodeLine += node.childSummaries[i].Lines
		}
		c.path = append(c.path, cursorFrame{
			node:      node,
			childIdx:  last,
			startByte: nodeByte,
			startLine: nodeLine,
		})
		node = node.children[last]
	}

	c.leaf = node
	if len(node.chunks) > 0 {
		c.chunkIdx = len(node.chunks) - 1
		c.chunkOff = node.chunks[c.chunkIdx].Len()
	} else {
		c.chunkIdx = 0
		c.chunkOff = 0
	}
	return true
}

// SeekLine moves the cursor to the start of the given 0-indexed line.
func (c *Cursor) SeekLine(line uint32) bool {
	if c.rope.root == nil {
		return line == 0
	}
	if line == 0 {
		c.rewind()
		return true
	}
	if line >= c.rope.LineCount() {
		return false
	}

	c.path = c.path[:0]
	c.pointSet = false

	node := c.rope.root
	var nodeByte ByteOffset
	var nodeLine uint32

	for !node.IsLeaf() {
		descended := false
		for i, s := range node.childSummaries {
			if nodeLine+s.Lines >= line {
				c.path = append(c.path, cursorFrame{
					node:      node,
					childIdx:  i,
					startByte: nodeByte,
					startLine: nodeLine,
				})
				node = node.children[i]
				descended = true
				break
			}
			nodeByte += s.Bytes
			nodeLine += s.Lines
		}
		if !descended {
			return false
		}
	}

	c.leaf = node
	remaining := line - nodeLine

	for i, chunk := range node.chunks {
		s := chunk.Summary()
		if s.Lines >= remaining {
			pos := FindNthNewline(chunk.String(), remaining)
			if pos < 0 {
				return false
			}
			c.chunkIdx = i
			c.chunkOff = pos + 1
			c.offset = nodeByte + ByteOffset(c.chunkOff)
			c.point = Point{Line: line}
			c.pointSet = true
			return true
		}
		remaining -= s.Lines
		nodeByte += ByteOffset(chunk.Len())
	}
	return false
}

// Rune returns the rune at the current position, or (0, 0) at the end.
func (c *Cursor) Rune() (rune, int) {
	if c.leaf == nil || c.chunkIdx >= len(c.leaf.chunks) {
		return 0, 0
	}
	chunk := c.leaf.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(chunk.String()[c.chunkOff:])
}

// Byte returns the byte at the current position, or false at the end.
func (c *Cursor) Byte() (byte, bool) {
	if c.leaf == nil || c.chunkIdx >= len(c.leaf.chunks) {
		return 0, false
	}
	chunk := c.leaf.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, false
	}
	return chunk.String()[c.chunkOff], true
}

// Next advances by one rune; false when already at the end.
func (c *Cursor) Next() bool {
	if c.offset >= c.rope.Len() {
		return false
	}

	r, size := c.Rune()
	if size == 0 {
		return false
	}

	c.offset += ByteOffset(size)
	c.chunkOff += size

	if c.pointSet {
		if r == '\n' {
			c.point.Line++
			c.point.Column = 0
		} else {
			c.point.Column += uint32(size)
		}
	}

	if c.leaf != nil && c.chunkIdx < len(c.leaf.chunks) &&
		c.chunkOff >= c.leaf.chunks[c.chunkIdx].Len() {
		c.nextChunk()
	}
	return true
}

func (c *Cursor) nextChunk() {
	c.chunkIdx++
	c.chunkOff = 0
	if c.chunkIdx >= len(c.leaf.chunks) {
		c.nextLeaf()
	}
}

// nextLeaf ascends until a right sibling exists, then descends to its
// leftmost leaf, keeping every frame's absolute start positions current.
func (c *Cursor) nextLeaf() {
	for len(c.path) > 0 {
		frame := c.path[len(c.path)-1]
		c.path = c.path[:len(c.path)-1]

		next := frame.childIdx + 1
		if next >= len(frame.node.children) {
			continue
		}

		taken := frame.node.childSummaries[frame.childIdx]
		startByte := frame.startByte + taken.Bytes
		startLine := frame.startLine + taken.Lines

		c.path = append(c.path, cursorFrame{
			node:      frame.node,
			childIdx:  next,
			startByte: startByte,
			startLine: startLine,
		})

		node := frame.node.children[next]
		for !node.IsLeaf() {
			c.path = append(c.path, cursorFrame{
				node:      node,
				startByte: startByte,
				startLine: startLine,
			})
			node = node.children[0]
		}

		c.leaf = node
		c.chunkIdx = 0
		c.chunkOff = 0
		return
	}

	c.leaf = nil
	c.chunkIdx = 0
	c.chunkOff = 0
}

// Prev moves back by one rune; false when already at the start.
func (c *Cursor) Prev() bool {
	if c.offset == 0 {
		return false
	}

	prev := c.offset - 1
	for prev > 0 {
		b, ok := c.rope.ByteAt(prev)
		if !ok || isRuneStart(b) {
			break
		}
		prev--
	}

	c.SeekOffset(prev)
	return true
}

// AtEnd reports whether the cursor is past the last rune.
func (c *Cursor) AtEnd() bool {
	return c.offset >= c.rope.Len()
}

// AtStart reports whether the cursor is at offset 0.
func (c *Cursor) AtStart() bool {
	return c.offset == 0
}

// Clone returns an independent cursor at the same position.
func (c *Cursor) Clone() *Cursor {
	out := &Cursor{
		rope:     c.rope,
		path:     make([]cursorFrame, len(c.path)),
		offset:   c.offset,
		point:    c.point,
		pointSet: c.pointSet,
		leaf:     c.leaf,
		chunkIdx: c.chunkIdx,
		chunkOff: c.chunkOff,
	}
	copy(out.path, c.path)
	return out
}
