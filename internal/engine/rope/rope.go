package rope

import "strings"

// Rope is the immutable text store. Operations return new Rope values; the
// original is never modified, which makes snapshots for rendering and undo
// free. The public editing surface is char-indexed; byte offsets exist for
// the cursor, iterators, and I/O.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf()}
}

// FromString creates a rope over s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return fromChunks(chunkify(s))
}

// fromChunks packs an ordered chunk list into leaves and assembles the
// tree bottom-up.
func fromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}

	var nodes []*Node
	for i := 0; i < len(chunks); i += maxLeafChunks {
		end := i + maxLeafChunks
		if end > len(chunks) {
			end = len(chunks)
		}
		leafChunks := make([]Chunk, end-i)
		copy(leafChunks, chunks[i:end])
		nodes = append(nodes, leafOf(leafChunks))
	}

	return Rope{root: assemble(nodes)}
}

// LenChars returns the number of Unicode scalar values in the rope. This
// is the length every editing operation and selection endpoint is measured
// in.
func (r Rope) LenChars() CharOffset {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Chars
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// LineCount returns the number of lines. The count follows the
// phantom-newline model (newlines + 1): an empty rope is one line, and
// text ending in a newline still has a trailing empty line with a
// well-defined start.
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.LineCount()
}

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String materializes the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// CharToByte converts a char offset to its byte offset; offsets at or past
// the end map to Len().
func (r Rope) CharToByte(at CharOffset) ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.charToByte(at)
}

// ByteToChar converts a byte offset (on a rune boundary) to its char
// offset.
func (r Rope) ByteToChar(at ByteOffset) CharOffset {
	if r.root == nil {
		return 0
	}
	return r.root.byteToChar(at)
}

// SliceChars returns the text spanning the char range [start, end),
// extracted in a single tree walk.
func (r Rope) SliceChars(start, end CharOffset) string {
	if r.root == nil || start >= end {
		return ""
	}
	return r.root.textInCharRange(start, end)
}

// Slice returns the text spanning the byte range [start, end); both ends
// must be rune boundaries.
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil || start >= end {
		return ""
	}
	return r.root.textInByteRange(start, end)
}

// CharAt returns the rune at the given char offset, or false when the
// offset is at or past the end.
func (r Rope) CharAt(at CharOffset) (rune, bool) {
	if at >= r.LenChars() {
		return 0, false
	}
	for _, ru := range r.SliceChars(at, at+1) {
		return ru, true
	}
	return 0, false
}

// ByteAt returns the byte at the given offset, or false when out of range.
func (r Rope) ByteAt(at ByteOffset) (byte, bool) {
	if r.root == nil || at >= r.Len() {
		return 0, false
	}

	node := r.root
	for !node.IsLeaf() {
		idx, rem := node.childAtByte(at)
		node = node.children[idx]
		at = rem
	}
	for _, chunk := range node.chunks {
		size := ByteOffset(chunk.Len())
		if at < size {
			return chunk.String()[at], true
		}
		at -= size
	}
	return 0, false
}

// InsertChars inserts text before the char at the given offset; offsets at
// or past the end append.
func (r Rope) InsertChars(at CharOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil || r.LenChars() == 0 {
		return FromString(text)
	}
	if at == 0 {
		return FromString(text).Concat(r)
	}
	if at >= r.LenChars() {
		return r.Concat(FromString(text))
	}

	left, right := r.Split(at)
	return left.Concat(FromString(text)).Concat(right)
}

// DeleteChars removes the char range [start, end), clamped to the rope.
func (r Rope) DeleteChars(start, end CharOffset) Rope {
	if r.root == nil || start >= end {
		return r
	}
	total := r.LenChars()
	if start >= total {
		return r
	}
	if end > total {
		end = total
	}

	switch {
	case start == 0 && end >= total:
		return New()
	case start == 0:
		_, right := r.Split(end)
		return right
	case end >= total:
		left, _ := r.Split(start)
		return left
	}

	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// ReplaceChars substitutes the char range [start, end) with text.
func (r Rope) ReplaceChars(start, end CharOffset, text string) Rope {
	if start >= end {
		return r.InsertChars(start, text)
	}
	if len(text) == 0 {
		return r.DeleteChars(start, end)
	}
	return r.DeleteChars(start, end).InsertChars(start, text)
}

// Split divides the rope at a char offset: the left rope holds [0, at),
// the right holds [at, end).
func (r Rope) Split(at CharOffset) (Rope, Rope) {
	if r.root == nil || at == 0 {
		return New(), r
	}
	if at >= r.LenChars() {
		return r, New()
	}
	left, right := r.root.split(at)
	return Rope{root: left}, Rope{root: right}
}

// Concat joins two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Summary returns the aggregated metrics for the whole rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{Flags: FlagASCII}
	}
	return r.root.summary
}

// CharToLine converts a char offset to its 0-indexed line number.
func (r Rope) CharToLine(at CharOffset) uint32 {
	return r.OffsetToPoint(r.CharToByte(at)).Line
}

// LineToChar converts a 0-indexed line number to the char offset of the
// line's first character. Per the phantom-newline model every line in
// [0, LineCount()) has a start, including a trailing empty one.
func (r Rope) LineToChar(line uint32) CharOffset {
	return r.ByteToChar(r.LineStartOffset(line))
}

// LineStartOffset returns the byte offset where the 0-indexed line begins.
func (r Rope) LineStartOffset(line uint32) ByteOffset {
	if r.root == nil || line == 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}

	cursor := NewCursor(r)
	if cursor.SeekLine(line) {
		return cursor.Offset()
	}
	return r.Len()
}

// LineEndOffset returns the byte offset where the line's content ends,
// excluding its newline.
func (r Rope) LineEndOffset(line uint32) ByteOffset {
	if r.root == nil {
		return 0
	}
	count := r.LineCount()
	if line >= count {
		return r.Len()
	}
	if line == count-1 {
		return r.Len()
	}
	next := r.LineStartOffset(line + 1)
	if next > 0 {
		return next - 1
	}
	return 0
}

// LineText returns the line's text, excluding its newline.
func (r Rope) LineText(line uint32) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// OffsetToPoint converts a byte offset to a 0-indexed line/column.
func (r Rope) OffsetToPoint(at ByteOffset) Point {
	if r.root == nil || at == 0 {
		return Point{}
	}
	if at >= r.Len() {
		last := r.LineCount() - 1
		return Point{
			Line:   last,
			Column: uint32(r.Len() - r.LineStartOffset(last)),
		}
	}

	cursor := NewCursor(r)
	cursor.SeekOffset(at)
	return cursor.Point()
}

// PointToOffset converts a line/column to a byte offset, clamping the
// column to the line's end.
func (r Rope) PointToOffset(point Point) ByteOffset {
	if r.root == nil {
		return 0
	}
	start := r.LineStartOffset(point.Line)
	end := r.LineEndOffset(point.Line)
	if ByteOffset(point.Column) >= end-start {
		return end
	}
	return start + ByteOffset(point.Column)
}

// Height returns the tree height, for balance checks in tests.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// ChunkCount returns the total chunk count, for structure checks in tests.
func (r Rope) ChunkCount() int {
	if r.root == nil {
		return 0
	}
	var count func(*Node) int
	count = func(n *Node) int {
		if n.IsLeaf() {
			return len(n.chunks)
		}
		total := 0
		for _, child := range n.children {
			total += count(child)
		}
		return total
	}
	return count(r.root)
}

// Equals reports whether two ropes hold the same text, comparing content
// (not structure) chunk-run by chunk-run.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() || r.LenChars() != other.LenChars() {
		return false
	}

	a := r.Chunks()
	b := other.Chunks()
	var restA, restB string
	for {
		if restA == "" {
			if !a.Next() {
				break
			}
			restA = a.Chunk().String()
		}
		if restB == "" {
			if !b.Next() {
				return false
			}
			restB = b.Chunk().String()
		}
		n := len(restA)
		if len(restB) < n {
			n = len(restB)
		}
		if restA[:n] != restB[:n] {
			return false
		}
		restA = restA[n:]
		restB = restB[n:]
	}
	return restB == "" && !b.Next()
}
