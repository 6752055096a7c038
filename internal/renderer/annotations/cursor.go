package annotations

import "sort"

// TextAnnotationsCursor walks a TextAnnotations set alongside a document
// traversal (the DocumentFormatter). All indices advance monotonically with
// increasing charIdx; callers must not query out of order within a single
// traversal.
type TextAnnotationsCursor struct {
	ta         *TextAnnotations
	inlineIdx  []int
	overlayIdx []int
	lineAnchor []int
}

// Cursor returns a cursor positioned at charIdx.
func (t *TextAnnotations) Cursor(charIdx int) *TextAnnotationsCursor {
	c := &TextAnnotationsCursor{
		ta:         t,
		inlineIdx:  make([]int, len(t.inlineLayers)),
		overlayIdx: make([]int, len(t.overlayLayers)),
		lineAnchor: make([]int, len(t.lineAnns)),
	}
	c.ResetPos(charIdx)
	return c
}

// ResetPos seeks every layer's index to charIdx; used by motions that jump
// the traversal position.
func (c *TextAnnotationsCursor) ResetPos(charIdx int) {
	for i, layer := range c.ta.inlineLayers {
		c.inlineIdx[i] = sort.Search(len(layer.anns), func(k int) bool {
			return layer.anns[k].CharIdx >= charIdx
		})
	}
	for i, layer := range c.ta.overlayLayers {
		c.overlayIdx[i] = sort.Search(len(layer.anns), func(k int) bool {
			return layer.anns[k].CharIdx >= charIdx
		})
	}
	for i, la := range c.ta.lineAnns {
		c.lineAnchor[i] = la.ResetPos(charIdx)
	}
}

// NextInlineAnnotationAt pops the next inline annotation (across all layers,
// in registration order) whose CharIdx equals charIdx. Callers loop until ok
// is false to drain every annotation registered at this position.
func (c *TextAnnotationsCursor) NextInlineAnnotationAt(charIdx int) (InlineAnnotation, bool) {
	for i := range c.ta.inlineLayers {
		layer := c.ta.inlineLayers[i].anns
		if c.inlineIdx[i] < len(layer) && layer[c.inlineIdx[i]].CharIdx == charIdx {
			ann := layer[c.inlineIdx[i]]
			c.inlineIdx[i]++
			return ann, true
		}
	}
	return InlineAnnotation{}, false
}

// OverlayAt returns the overlay replacing the grapheme at charIdx, if any.
// When multiple layers register an overlay at the same position, the
// last-registered layer's overlay wins.
func (c *TextAnnotationsCursor) OverlayAt(charIdx int) (Overlay, bool) {
	var found Overlay
	ok := false
	for i := range c.ta.overlayLayers {
		layer := c.ta.overlayLayers[i].anns
		for c.overlayIdx[i] < len(layer) && layer[c.overlayIdx[i]].CharIdx < charIdx {
			c.overlayIdx[i]++
		}
		if c.overlayIdx[i] < len(layer) && layer[c.overlayIdx[i]].CharIdx == charIdx {
			found = layer[c.overlayIdx[i]]
			ok = true
			c.overlayIdx[i]++
		}
	}
	return found, ok
}

// ProcessVirtualTextAnchors advances every line annotation's anchor state
// past charIdx, invoking ProcessAnchor/SkipConcealedAnchors as needed.
func (c *TextAnnotationsCursor) ProcessVirtualTextAnchors(charIdx int, graphemeText string) {
	for i, la := range c.ta.lineAnns {
		for c.lineAnchor[i] != NoFurtherInterest && c.lineAnchor[i] <= charIdx {
			if c.lineAnchor[i] < charIdx {
				c.lineAnchor[i] = la.SkipConcealedAnchors(charIdx)
				continue
			}
			c.lineAnchor[i] = la.ProcessAnchor(graphemeText)
		}
	}
}

// VirtualLinesAt sums the extra visual rows every line annotation wants to
// insert after the line ending at lineEndChar.
func (c *TextAnnotationsCursor) VirtualLinesAt(lineEndChar int, lineEndVisualPos Position, docLine uint32) int {
	total := 0
	for _, la := range c.ta.lineAnns {
		total += la.InsertVirtualLines(lineEndChar, lineEndVisualPos, docLine)
	}
	return total
}
