package rope

import "strings"

// Tree shape. The rope is a B+ tree: leaves hold chunks, internal nodes
// hold children plus per-child summaries so any dimension (chars, bytes,
// lines) can be sought without touching text.
const (
	minFanout     = 4
	maxFanout     = 8
	maxLeafChunks = 4
)

// Node is one tree node. height 0 is a leaf carrying chunks; anything
// taller carries children with their summaries mirrored in childSummaries
// for seek loops.
type Node struct {
	height  uint8
	summary TextSummary

	children       []*Node
	childSummaries []TextSummary

	chunks []Chunk
}

func newLeaf() *Node {
	return &Node{chunks: make([]Chunk, 0, maxLeafChunks)}
}

func leafOf(chunks []Chunk) *Node {
	n := &Node{chunks: chunks}
	n.refreshSummary()
	return n
}

func internalOf(children []*Node) *Node {
	if len(children) == 0 {
		return newLeaf()
	}

	summaries := make([]TextSummary, len(children))
	var total TextSummary
	for i, child := range children {
		summaries[i] = child.summary
		total = total.Add(child.summary)
	}

	return &Node{
		height:         children[0].height + 1,
		summary:        total,
		children:       children,
		childSummaries: summaries,
	}
}

// IsLeaf reports whether this node carries chunks rather than children.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of the subtree.
func (n *Node) Len() ByteOffset {
	return n.summary.Bytes
}

// Chars returns the char count of the subtree.
func (n *Node) Chars() CharOffset {
	return n.summary.Chars
}

// LineCount returns the subtree's line count under the phantom-newline
// model: newlines + 1, so the text after the last newline is a line too.
func (n *Node) LineCount() uint32 {
	return n.summary.Lines + 1
}

func (n *Node) refreshSummary() {
	n.summary = TextSummary{Flags: FlagASCII}
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			n.summary = n.summary.Add(chunk.Summary())
		}
		return
	}
	n.childSummaries = make([]TextSummary, len(n.children))
	for i, child := range n.children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
}

// Seeking. Each childAt* scan answers "which child holds this position,
// and what is the position relative to that child". Offsets at or past the
// end resolve into the last child.

func (n *Node) childAtChar(at CharOffset) (int, CharOffset) {
	if n.IsLeaf() {
		return -1, 0
	}
	var passed CharOffset
	for i, s := range n.childSummaries {
		if passed+s.Chars > at {
			return i, at - passed
		}
		passed += s.Chars
	}
	last := len(n.children) - 1
	return last, at - (n.summary.Chars - n.childSummaries[last].Chars)
}

func (n *Node) childAtByte(at ByteOffset) (int, ByteOffset) {
	if n.IsLeaf() {
		return -1, 0
	}
	var passed ByteOffset
	for i, s := range n.childSummaries {
		if passed+s.Bytes > at {
			return i, at - passed
		}
		passed += s.Bytes
	}
	last := len(n.children) - 1
	return last, at - (n.summary.Bytes - n.childSummaries[last].Bytes)
}

func (n *Node) childAtLine(line uint32) (int, uint32) {
	if n.IsLeaf() {
		return -1, 0
	}
	var passed uint32
	for i, s := range n.childSummaries {
		if passed+s.Lines >= line {
			return i, line - passed
		}
		passed += s.Lines
	}
	last := len(n.children) - 1
	return last, line - (n.summary.Lines - n.childSummaries[last].Lines)
}

// charToByte converts a char offset within the subtree to a byte offset,
// descending by summaries and finishing inside one chunk.
func (n *Node) charToByte(at CharOffset) ByteOffset {
	if at >= n.summary.Chars {
		return n.summary.Bytes
	}

	if n.IsLeaf() {
		var bytes ByteOffset
		var chars CharOffset
		for _, chunk := range n.chunks {
			if chars+chunk.Chars() > at {
				return bytes + ByteOffset(chunk.byteForChar(at-chars))
			}
			chars += chunk.Chars()
			bytes += ByteOffset(chunk.Len())
		}
		return bytes
	}

	idx, rem := n.childAtChar(at)
	var base ByteOffset
	for i := 0; i < idx; i++ {
		base += n.childSummaries[i].Bytes
	}
	return base + n.children[idx].charToByte(rem)
}

// byteToChar is the inverse of charToByte; the byte offset must land on a
// rune boundary.
func (n *Node) byteToChar(at ByteOffset) CharOffset {
	if at >= n.summary.Bytes {
		return n.summary.Chars
	}

	if n.IsLeaf() {
		var bytes ByteOffset
		var chars CharOffset
		for _, chunk := range n.chunks {
			size := ByteOffset(chunk.Len())
			if bytes+size > at {
				return chars + chunk.charForByte(int(at-bytes))
			}
			chars += chunk.Chars()
			bytes += size
		}
		return chars
	}

	idx, rem := n.childAtByte(at)
	var base CharOffset
	for i := 0; i < idx; i++ {
		base += n.childSummaries[i].Chars
	}
	return base + n.children[idx].byteToChar(rem)
}

func (n *Node) clone() *Node {
	if n.IsLeaf() {
		chunks := make([]Chunk, len(n.chunks))
		copy(chunks, n.chunks)
		return &Node{summary: n.summary, chunks: chunks}
	}

	children := make([]*Node, len(n.children))
	copy(children, n.children)
	summaries := make([]TextSummary, len(n.childSummaries))
	copy(summaries, n.childSummaries)
	return &Node{
		height:         n.height,
		summary:        n.summary,
		children:       children,
		childSummaries: summaries,
	}
}

func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			sb.WriteString(chunk.String())
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// textInCharRange extracts the text spanning the char range [start, end) in
// one walk, without a separate char-to-byte conversion pass.
func (n *Node) textInCharRange(start, end CharOffset) string {
	if start >= end || start >= n.summary.Chars {
		return ""
	}
	if end > n.summary.Chars {
		end = n.summary.Chars
	}

	var sb strings.Builder
	n.appendCharRange(&sb, start, end)
	return sb.String()
}

func (n *Node) appendCharRange(sb *strings.Builder, start, end CharOffset) {
	if start >= end {
		return
	}

	if n.IsLeaf() {
		var passed CharOffset
		for _, chunk := range n.chunks {
			size := chunk.Chars()
			chunkEnd := passed + size
			if chunkEnd <= start {
				passed = chunkEnd
				continue
			}
			if passed >= end {
				break
			}

			from := 0
			if start > passed {
				from = chunk.byteForChar(start - passed)
			}
			to := chunk.Len()
			if end < chunkEnd {
				to = chunk.byteForChar(end - passed)
			}
			sb.WriteString(chunk.String()[from:to])
			passed = chunkEnd
		}
		return
	}

	var passed CharOffset
	for i, child := range n.children {
		size := n.childSummaries[i].Chars
		childEnd := passed + size
		if childEnd <= start {
			passed = childEnd
			continue
		}
		if passed >= end {
			break
		}

		from := CharOffset(0)
		if start > passed {
			from = start - passed
		}
		to := size
		if end < childEnd {
			to = end - passed
		}
		child.appendCharRange(sb, from, to)
		passed = childEnd
	}
}

// textInByteRange extracts text spanning the byte range [start, end); both
// ends must be rune boundaries. Kept for the byte-oriented cursor and
// iterators.
func (n *Node) textInByteRange(start, end ByteOffset) string {
	if start >= end || start >= n.Len() {
		return ""
	}
	if end > n.Len() {
		end = n.Len()
	}

	var sb strings.Builder
	sb.Grow(int(end - start))
	n.appendByteRange(&sb, start, end)
	return sb.String()
}

func (n *Node) appendByteRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.IsLeaf() {
		var passed ByteOffset
		for _, chunk := range n.chunks {
			size := ByteOffset(chunk.Len())
			chunkEnd := passed + size
			if chunkEnd <= start {
				passed = chunkEnd
				continue
			}
			if passed >= end {
				break
			}

			from := 0
			if start > passed {
				from = int(start - passed)
			}
			to := chunk.Len()
			if end < chunkEnd {
				to = int(end - passed)
			}
			sb.WriteString(chunk.String()[from:to])
			passed = chunkEnd
		}
		return
	}

	var passed ByteOffset
	for i, child := range n.children {
		size := n.childSummaries[i].Bytes
		childEnd := passed + size
		if childEnd <= start {
			passed = childEnd
			continue
		}
		if passed >= end {
			break
		}

		from := ByteOffset(0)
		if start > passed {
			from = start - passed
		}
		to := size
		if end < childEnd {
			to = end - passed
		}
		child.appendByteRange(sb, from, to)
		passed = childEnd
	}
}

// split divides the subtree at a char offset: left holds [0, at), right
// holds [at, end). Chunks at the cut are split on the rune boundary.
func (n *Node) split(at CharOffset) (*Node, *Node) {
	if at <= 0 {
		return newLeaf(), n.clone()
	}
	if at >= n.summary.Chars {
		return n.clone(), newLeaf()
	}
	if n.IsLeaf() {
		return n.splitLeaf(at)
	}
	return n.splitInternal(at)
}

func (n *Node) splitLeaf(at CharOffset) (*Node, *Node) {
	var left, right []Chunk
	var passed CharOffset

	for _, chunk := range n.chunks {
		size := chunk.Chars()
		switch {
		case passed+size <= at:
			left = append(left, chunk)
		case passed >= at:
			right = append(right, chunk)
		default:
			l, r := chunk.SplitChars(at - passed)
			if !l.IsEmpty() {
				left = append(left, l)
			}
			if !r.IsEmpty() {
				right = append(right, r)
			}
		}
		passed += size
	}

	return leafOf(left), leafOf(right)
}

func (n *Node) splitInternal(at CharOffset) (*Node, *Node) {
	var left, right []*Node
	var passed CharOffset

	for i, child := range n.children {
		size := n.childSummaries[i].Chars
		switch {
		case passed+size <= at:
			left = append(left, child)
		case passed >= at:
			right = append(right, child)
		default:
			l, r := child.split(at - passed)
			if l.Chars() > 0 {
				left = append(left, l)
			}
			if r.Chars() > 0 {
				right = append(right, r)
			}
		}
		passed += size
	}

	return assemble(left), assemble(right)
}

// assemble builds a balanced tree over an ordered child list, adding
// levels as the fanout limit requires.
func assemble(children []*Node) *Node {
	switch {
	case len(children) == 0:
		return newLeaf()
	case len(children) == 1:
		return children[0]
	case len(children) <= maxFanout:
		return internalOf(children)
	}

	var parents []*Node
	for i := 0; i < len(children); i += maxFanout {
		end := i + maxFanout
		if end > len(children) {
			end = len(children)
		}
		parents = append(parents, internalOf(children[i:end]))
	}
	return assemble(parents)
}

// concat joins two subtrees, equalizing heights and re-packing where the
// fanout allows.
func concat(left, right *Node) *Node {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeaf()
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}

	if left.IsLeaf() && right.IsLeaf() {
		return concatLeaves(left, right)
	}

	for left.height < right.height {
		left = internalOf([]*Node{left})
	}
	for right.height < left.height {
		right = internalOf([]*Node{right})
	}

	if left.IsLeaf() {
		return concatLeaves(left, right)
	}

	merged := make([]*Node, 0, len(left.children)+len(right.children))
	merged = append(merged, left.children...)
	merged = append(merged, right.children...)
	if len(merged) <= maxFanout {
		return internalOf(merged)
	}
	return assemble(merged)
}

func concatLeaves(left, right *Node) *Node {
	total := len(left.chunks) + len(right.chunks)
	if total <= maxLeafChunks {
		chunks := make([]Chunk, 0, total)
		chunks = append(chunks, left.chunks...)
		chunks = append(chunks, right.chunks...)
		return leafOf(chunks)
	}
	return internalOf([]*Node{left.clone(), right.clone()})
}
