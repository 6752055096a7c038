package plan

import (
	"sort"
	"strings"

	"github.com/dshills/keystorm/internal/engine/document"
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/format"
	"github.com/dshills/keystorm/internal/renderer/highlight"
)

// CursorKind distinguishes how a cursor should be drawn.
type CursorKind uint8

const (
	CursorBlock CursorKind = iota
	CursorBar
	CursorUnderline
)

// RenderSpan is a run of same-style text at a fixed screen row.
type RenderSpan struct {
	Col       int
	Cols      int
	Text      string
	Highlight highlight.Highlight
	HasHi     bool
	IsVirtual bool
}

func (s RenderSpan) endCol() int { return s.Col + s.Cols }

// RenderLine is one screen row's spans, coalesced left to right.
type RenderLine struct {
	Row   int
	Spans []RenderSpan
}

func newRenderLine(row int) RenderLine { return RenderLine{Row: row} }

func (l *RenderLine) pushSpan(span RenderSpan) {
	if n := len(l.Spans); n > 0 {
		last := &l.Spans[n-1]
		if last.IsVirtual == span.IsVirtual && last.Highlight == span.Highlight &&
			last.HasHi == span.HasHi && last.endCol() == span.Col {
			last.Text += span.Text
			last.Cols += span.Cols
			return
		}
	}
	l.Spans = append(l.Spans, span)
}

// RenderCursor is a single cursor's screen position and style.
type RenderCursor struct {
	ID    selection.CursorID
	Pos   core.ScreenPos
	Kind  CursorKind
	Style core.Style
}

// RenderSelection is one screen-row rectangle of a multi-row selection.
type RenderSelection struct {
	Rect  core.ScreenRect
	Style core.Style
}

// RenderStyles supplies the styles the plan builder stamps onto cursors and
// selection rects; span-level highlighting comes from the HighlightProvider
// instead.
type RenderStyles struct {
	Selection    core.Style
	Cursor       core.Style
	ActiveCursor core.Style
}

// RenderPlan is the complete backend-agnostic description of one frame.
type RenderPlan struct {
	Viewport   core.ScreenRect
	Scroll     core.ScreenPos
	Lines      []RenderLine
	Cursors    []RenderCursor
	Selections []RenderSelection
}

func emptyPlan(viewport core.ScreenRect, scroll core.ScreenPos) RenderPlan {
	return RenderPlan{Viewport: viewport, Scroll: scroll}
}

// View describes the viewport and scroll offset a plan is built for, plus
// which cursor (if any) is the active one (drawn with ActiveCursor style).
type View struct {
	Viewport     core.ScreenRect
	Scroll       core.ScreenPos
	ActiveCursor selection.CursorID
	HasActive    bool
}

// origin is a cached (charIdx -> visual position) correspondence the
// DocumentFormatter traversal can restart from, avoiding a full rescan from
// char 0 on every frame once the cache is warm.
type origin struct {
	charIdx int
	pos     annotations.Position
}

// Cache remembers the document version, annotation generation, and
// char/position correspondences from the last build, invalidating itself
// whenever either changes.
type Cache struct {
	textVersion   uint64
	hasVersion    bool
	annGeneration int
	origins       []origin
}

// NewCache returns an empty render cache.
func NewCache() *Cache { return &Cache{} }

func (c *Cache) resetIfStale(textVersion uint64, annGeneration int) {
	stale := !c.hasVersion || c.textVersion != textVersion || c.annGeneration != annGeneration
	if stale {
		c.textVersion = textVersion
		c.hasVersion = true
		c.annGeneration = annGeneration
		c.origins = nil
	}
}

func (c *Cache) insertOrigin(charIdx int, pos annotations.Position) {
	for i, o := range c.origins {
		if o.charIdx == charIdx {
			c.origins[i].pos = pos
			return
		}
	}
	c.origins = append(c.origins, origin{charIdx: charIdx, pos: pos})
	sort.Slice(c.origins, func(i, j int) bool { return c.origins[i].charIdx < c.origins[j].charIdx })
}

// nearestOrigin returns the cached origin whose screen position is at or
// before target, scanning by row then column. Each Build adds at most one
// entry (its starting checkpoint), so a linear scan stays cheap.
func (c *Cache) nearestOrigin(target annotations.Position) (origin, bool) {
	best := origin{}
	found := false
	for _, o := range c.origins {
		if o.pos.Row > target.Row || (o.pos.Row == target.Row && o.pos.Col > target.Col) {
			continue
		}
		if !found || o.pos.Row > best.pos.Row || (o.pos.Row == best.pos.Row && o.pos.Col > best.pos.Col) {
			best = o
			found = true
		}
	}
	return best, found
}

// Build renders doc's visible region into a RenderPlan using hl to resolve
// per-character highlight ids (nil disables syntax highlighting entirely).
func Build(doc *document.Document, view View, tf format.TextFormat, anns *annotations.TextAnnotations, hl highlight.CharHighlighter, cache *Cache, styles RenderStyles) RenderPlan {
	text := doc.Text()
	p := emptyPlan(view.Viewport, view.Scroll)

	cache.resetIfStale(doc.Version(), anns.Generation())

	rowStart := view.Scroll.Row
	rowEnd := rowStart + view.Viewport.Height()
	colStart := view.Scroll.Col
	colWidth := view.Viewport.Width()

	blockCharIdx, org := startingPoint(text, tf, anns, view.Scroll, cache)
	cache.insertOrigin(blockCharIdx, org)

	f := format.NewAtPrevCheckpoint(text, tf, anns, blockCharIdx)

	var currentRow int
	haveRow := false
	currentLine := newRenderLine(0)

	flush := func() {
		if haveRow && currentRow >= rowStart && currentRow < rowEnd {
			p.Lines = append(p.Lines, currentLine)
		}
	}

	for {
		g, ok := f.Next()
		if !ok || g.IsEOF() {
			break
		}

		relPos := g.VisualPos
		absRow := org.Row + relPos.Row
		var absCol int
		if relPos.Row == 0 {
			absCol = org.Col + relPos.Col
		} else {
			absCol = relPos.Col
		}

		if g.Raw.Text == "\n" {
			flush()
			haveRow = false
			currentLine = newRenderLine(0)
			continue
		}

		if absRow < rowStart {
			continue
		}
		if absRow >= rowEnd {
			break
		}
		if absCol < colStart {
			continue
		}
		col := absCol - colStart
		if col >= colWidth {
			continue
		}

		row := absRow - rowStart
		if !haveRow || currentRow != absRow {
			flush()
			haveRow = true
			currentRow = absRow
			currentLine = newRenderLine(row)
		}

		text, cols := graphemeText(g, tf.TabWidth)
		if text != "" || cols > 0 {
			var h highlight.Highlight
			hasHi := false
			if g.Source.IsVirtual() {
				h, hasHi = g.Source.Highlight, g.Source.HasHi
			} else if hl != nil {
				h, hasHi = hl.HighlightAt(g.CharIdx)
			}
			currentLine.pushSpan(RenderSpan{
				Col: col, Cols: cols, Text: text,
				Highlight: h, HasHi: hasHi, IsVirtual: g.Source.IsVirtual(),
			})
		}
	}
	flush()

	addSelectionsAndCursors(&p, doc, tf, anns, view, styles)

	return p
}

func startingPoint(text rope.Rope, tf format.TextFormat, anns *annotations.TextAnnotations, scroll core.ScreenPos, cache *Cache) (int, annotations.Position) {
	useFastStart := !tf.SoftWrap
	if useFastStart {
		target := annotations.Position{Row: scroll.Row, Col: scroll.Col}
		startChar, ok := CharAtVisualPos(text, tf, anns, target)
		if !ok {
			startChar = 0
		}
		blockCharIdx, _ := PrevCheckpoint(text, startChar)
		var org annotations.Position
		if startChar != 0 {
			if pos, ok := VisualPosAtChar(text, tf, anns, blockCharIdx); ok {
				org = pos
			}
		}
		return blockCharIdx, org
	}
	if o, ok := cache.nearestOrigin(annotations.Position{Row: scroll.Row, Col: scroll.Col}); ok {
		return o.charIdx, o.pos
	}
	return 0, annotations.Position{}
}

func graphemeText(g format.FormattedGrapheme, tabWidth int) (string, int) {
	switch g.Raw.Text {
	case "\n":
		return "", 0
	case "\t":
		width := g.Raw.Width(g.VisualPos.Col, tabWidth)
		return strings.Repeat(" ", width), width
	default:
		return g.Raw.Text, g.Raw.Width(g.VisualPos.Col, tabWidth)
	}
}

func addSelectionsAndCursors(p *RenderPlan, doc *document.Document, tf format.TextFormat, anns *annotations.TextAnnotations, view View, styles RenderStyles) {
	sel := doc.Selection()
	text := doc.Text()

	for i := 0; i < sel.Len(); i++ {
		rng := sel.At(i)
		id := sel.IDAt(i)

		if rng.From() != rng.To() {
			start, okS := VisualPosAtChar(text, tf, anns, rng.From())
			end, okE := VisualPosAtChar(text, tf, anns, rng.To())
			if okS && okE {
				pushSelectionRects(p, start, end, styles.Selection)
			}
		}

		cursorPos := rng.Cursor(text)
		if pos, ok := VisualPosAtChar(text, tf, anns, cursorPos); ok {
			if screenPos, ok := clampPosition(*p, pos); ok {
				style := styles.Cursor
				if view.HasActive && view.ActiveCursor == id {
					style = styles.ActiveCursor
				}
				p.Cursors = append(p.Cursors, RenderCursor{ID: id, Pos: screenPos, Kind: CursorBlock, Style: style})
			}
		}
	}
}

func clampPosition(p RenderPlan, pos annotations.Position) (core.ScreenPos, bool) {
	rowStart := p.Scroll.Row
	rowEnd := rowStart + p.Viewport.Height()
	colStart := p.Scroll.Col
	colEnd := colStart + p.Viewport.Width()

	if pos.Row < rowStart || pos.Row >= rowEnd {
		return core.ScreenPos{}, false
	}
	if pos.Col < colStart || pos.Col >= colEnd {
		return core.ScreenPos{}, false
	}
	return core.ScreenPos{Row: pos.Row - rowStart, Col: pos.Col - colStart}, true
}

func pushSelectionRects(p *RenderPlan, start, end annotations.Position, style core.Style) {
	rowStart := p.Scroll.Row
	rowEnd := rowStart + p.Viewport.Height()
	colStart := p.Scroll.Col
	colEnd := colStart + p.Viewport.Width()

	if start.Row == end.Row {
		row := start.Row
		if row < rowStart || row >= rowEnd {
			return
		}
		from, to := start.Col, end.Col
		if from > to {
			from, to = to, from
		}
		if from < colStart {
			from = colStart
		}
		if to > colEnd {
			to = colEnd
		}
		if to <= from {
			return
		}
		p.Selections = append(p.Selections, RenderSelection{
			Rect:  core.NewScreenRect(row-rowStart, from-colStart, row-rowStart+1, to-colStart),
			Style: style,
		})
		return
	}

	for row := start.Row; row <= end.Row; row++ {
		if row < rowStart || row >= rowEnd {
			continue
		}
		var from, to int
		switch row {
		case start.Row:
			from, to = start.Col, colEnd
		case end.Row:
			from, to = colStart, end.Col
		default:
			from, to = colStart, colEnd
		}
		if from < colStart {
			from = colStart
		}
		if to > colEnd {
			to = colEnd
		}
		if to <= from {
			continue
		}
		p.Selections = append(p.Selections, RenderSelection{
			Rect:  core.NewScreenRect(row-rowStart, from-colStart, row-rowStart+1, to-colStart),
			Style: style,
		})
	}
}
