// Package plan builds backend-agnostic RenderPlans: the visual-row/column
// spans, cursor rects, and selection rects a terminal or GUI frontend draws
// for a given viewport, computed by walking a format.DocumentFormatter once
// per frame.
package plan

import (
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/format"
)

// VisualPosAtChar walks the formatter from the document start and returns
// the visual position of the grapheme beginning at charIdx. ok is false if
// charIdx is beyond the document's EOF position.
func VisualPosAtChar(text rope.Rope, tf format.TextFormat, anns *annotations.TextAnnotations, charIdx int) (annotations.Position, bool) {
	f := format.NewAtPrevCheckpoint(text, tf, anns, 0)
	var last annotations.Position
	for {
		g, ok := f.Next()
		if !ok {
			return last, false
		}
		if g.CharIdx >= charIdx || g.IsEOF() {
			return g.VisualPos, true
		}
		last = g.VisualPos
	}
}

// CharAtVisualPos returns the char index of the grapheme occupying pos,
// scanning forward from the document start. ok is false if pos falls past
// the end of the formatted document.
func CharAtVisualPos(text rope.Rope, tf format.TextFormat, anns *annotations.TextAnnotations, pos annotations.Position) (int, bool) {
	f := format.NewAtPrevCheckpoint(text, tf, anns, 0)
	best, found := 0, false
	for {
		g, ok := f.Next()
		if !ok {
			return 0, false
		}
		p := g.VisualPos
		if p.Row > pos.Row || (p.Row == pos.Row && p.Col > pos.Col) {
			return best, found
		}
		if g.IsEOF() {
			if p.Row < pos.Row {
				return 0, false
			}
			return g.CharIdx, true
		}
		best, found = g.CharIdx, true
	}
}

// PrevCheckpoint returns the char index of the block boundary at or before
// charIdx: the char index a DocumentFormatter restarting a traversal near
// charIdx should seek to, and the line that boundary starts.
func PrevCheckpoint(text rope.Rope, charIdx int) (int, uint32) {
	if charIdx > int(text.LenChars()) {
		charIdx = int(text.LenChars())
	}
	if charIdx < 0 {
		charIdx = 0
	}
	line := text.CharToLine(rope.CharOffset(charIdx))
	return int(text.LineToChar(line)), line
}
