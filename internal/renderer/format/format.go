// Package format implements DocumentFormatter: a deterministic,
// allocation-light grapheme-stream traversal that turns a document rope plus
// a TextFormat and a TextAnnotations set into visually-positioned graphemes,
// handling tab expansion, soft wrap, and virtual-text interleaving in one
// pass over rope.GraphemeIterator (UAX#29 segmentation, rivo/uniseg width)
// and an annotations.TextAnnotationsCursor.
package format

import (
	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/highlight"
)

// maxBlockChars bounds how far back a checkpoint-based traversal restart
// scans on a single very long line, avoiding pathological reflow costs.
const maxBlockChars = 4096

// TextFormat configures tab expansion and soft wrap for a DocumentFormatter.
type TextFormat struct {
	TabWidth int

	SoftWrap            bool
	SoftWrapAtTextWidth bool
	ViewportWidth       uint16
	MaxWrap             uint16
	MaxIndentRetain     uint16

	WrapIndicator          string
	WrapIndicatorHighlight highlight.Highlight
	HasWrapIndicatorHi     bool
}

// DefaultTextFormat returns a TextFormat with no wrapping and a 4-column tab
// stop, matching an editor's unconfigured baseline.
func DefaultTextFormat() TextFormat {
	return TextFormat{TabWidth: 4}
}

// SourceKind classifies a FormattedGrapheme's origin.
type SourceKind uint8

const (
	// SourceDocument is a grapheme read directly from the document rope.
	SourceDocument SourceKind = iota
	// SourceVirtualText is synthesized: an inline annotation or a soft-wrap
	// indicator.
	SourceVirtualText
)

// GraphemeSource tags where a FormattedGrapheme came from.
type GraphemeSource struct {
	Kind       SourceKind
	Codepoints int
	Highlight  highlight.Highlight
	HasHi      bool
}

// IsVirtual reports whether this grapheme does not correspond to document
// text (and so should not advance the document char/line position).
func (s GraphemeSource) IsVirtual() bool { return s.Kind == SourceVirtualText }

// IsEOF reports whether this is the synthetic end-of-file grapheme, always
// emitted once so cursors positioned at the document's end remain visible.
func (s GraphemeSource) IsEOF() bool { return s.Kind == SourceDocument && s.Codepoints == 0 }

// DocChars returns how many document chars this grapheme consumed: 0 for
// virtual-text and EOF graphemes.
func (s GraphemeSource) DocChars() int {
	if s.Kind == SourceVirtualText {
		return 0
	}
	return s.Codepoints
}

// FormattedGrapheme is one unit of the DocumentFormatter's output stream.
type FormattedGrapheme struct {
	Raw       rope.Grapheme
	Source    GraphemeSource
	VisualPos annotations.Position
	LineIdx   uint32
	CharIdx   int
}

// IsVirtual reports whether Raw came from virtual text rather than the
// document.
func (g FormattedGrapheme) IsVirtual() bool { return g.Source.IsVirtual() }

// IsEOF reports whether this is the synthetic end-of-file grapheme.
func (g FormattedGrapheme) IsEOF() bool { return g.Source.IsEOF() }

// Width returns the grapheme's display width at its visual column.
func (g FormattedGrapheme) Width(tabWidth int) int {
	return g.Raw.Width(g.VisualPos.Col, tabWidth)
}

type graphemeWithSource struct {
	text     string
	charLen  int
	visualX  int
	source   GraphemeSource
	newline  bool
	eof      bool
	boundary bool
	ws       bool
	width    int
}

func (g graphemeWithSource) docChars() int { return g.source.DocChars() }

func placeholderGrapheme() graphemeWithSource {
	return graphemeWithSource{text: " ", source: GraphemeSource{Kind: SourceDocument, Codepoints: 0}, eof: true, ws: true, width: 1}
}

// DocumentFormatter streams FormattedGraphemes across a rope, starting at
// the last block checkpoint at or before a requested char index.
type DocumentFormatter struct {
	text   rope.Rope
	fmt    TextFormat
	cursor *annotations.TextAnnotationsCursor

	wrapIndicatorGraphemes []string

	visualPos annotations.Position
	graphemes *rope.GraphemeIterator
	charPos   int
	linePos   uint32
	exhausted bool

	inlineBuf []string
	inlineIdx int
	inlineHi  highlight.Highlight
	hasHi     bool

	indentLevel    int
	hasIndentLevel bool
	peeked         *graphemeWithSource
	wordBuf        []graphemeWithSource
	wordI          int
}

// NewAtPrevCheckpoint creates a formatter at the last block boundary at or
// before charIdx: ordinarily the start of charIdx's line, but for lines
// longer than maxBlockChars, the nearest multiple-of-maxBlockChars offset
// within that line, so reflowing a huge single-line file never rescans the
// whole line from its start.
func NewAtPrevCheckpoint(text rope.Rope, tf TextFormat, anns *annotations.TextAnnotations, charIdx int) *DocumentFormatter {
	if charIdx > int(text.LenChars()) {
		charIdx = int(text.LenChars())
	}
	if charIdx < 0 {
		charIdx = 0
	}
	blockLine := text.CharToLine(rope.CharOffset(charIdx))
	lineStart := int(text.LineToChar(blockLine))
	lineLen := lineLenChars(text, blockLine)

	blockCharIdx := lineStart
	if lineLen > maxBlockChars {
		inLine := charIdx - lineStart
		if inLine < 0 {
			inLine = 0
		}
		blockOffset := (inLine / maxBlockChars) * maxBlockChars
		blockCharIdx = lineStart + blockOffset
	}

	indicatorGraphemes := splitGraphemes(tf.WrapIndicator)

	f := &DocumentFormatter{
		text:                   text,
		fmt:                    tf,
		cursor:                 anns.Cursor(blockCharIdx),
		wrapIndicatorGraphemes: indicatorGraphemes,
		graphemes:              rope.GraphemesAt(text, rope.CharOffset(blockCharIdx)),
		charPos:                blockCharIdx,
		linePos:                blockLine,
		wordBuf:                make([]graphemeWithSource, 0, 64),
	}
	return f
}

func lineLenChars(text rope.Rope, line uint32) int {
	start := int(text.LineToChar(line))
	var end int
	if line+1 < text.LineCount() {
		end = int(text.LineToChar(line + 1))
	} else {
		end = int(text.LenChars())
	}
	if end < start {
		end = start
	}
	return end - start
}

func splitGraphemes(s string) []string {
	if s == "" {
		return nil
	}
	it := rope.GraphemesAt(rope.FromString(s), 0)
	var out []string
	for {
		g, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, g.Text)
	}
	return out
}

// NextCharPos returns the document char index immediately after the last
// yielded grapheme.
func (f *DocumentFormatter) NextCharPos() int { return f.charPos }

func (f *DocumentFormatter) nextInlineAnnotationGrapheme(charPos int) (string, highlight.Highlight, bool, bool) {
	for {
		if f.inlineIdx < len(f.inlineBuf) {
			g := f.inlineBuf[f.inlineIdx]
			f.inlineIdx++
			return g, f.inlineHi, f.hasHi, true
		}
		f.hasHi = false
		f.inlineBuf = nil
		f.inlineIdx = 0
		ann, ok := f.cursor.NextInlineAnnotationAt(charPos)
		if !ok {
			return "", highlight.Highlight(0), false, false
		}
		f.inlineHi = ann.Highlight
		f.hasHi = ann.HasHi
		f.inlineBuf = splitGraphemes(ann.Text)
	}
}

func (f *DocumentFormatter) advanceGrapheme(col, charPos int) *graphemeWithSource {
	if text, hi, hasHi, ok := f.nextInlineAnnotationGrapheme(charPos); ok {
		g := makeGrapheme(text, col, f.fmt.TabWidth, GraphemeSource{Kind: SourceVirtualText, Highlight: hi, HasHi: hasHi})
		return &g
	}

	if gr, ok := f.graphemes.Next(); ok {
		codepoints := int(gr.CharLen)
		text := gr.Text
		if ov, ok := f.cursor.OverlayAt(charPos); ok {
			text = ov.Grapheme
		}
		src := GraphemeSource{Kind: SourceDocument, Codepoints: codepoints}
		g := makeGrapheme(text, col, f.fmt.TabWidth, src)
		return &g
	}

	if f.exhausted {
		return nil
	}
	f.exhausted = true
	g := placeholderGrapheme()
	return &g
}

func makeGrapheme(text string, col, tabWidth int, source GraphemeSource) graphemeWithSource {
	rg := rope.Grapheme{Text: text}
	width := rg.Width(col, tabWidth)
	return graphemeWithSource{
		text:     text,
		charLen:  len([]rune(text)),
		visualX:  col,
		source:   source,
		newline:  text == "\n",
		eof:      source.IsEOF(),
		boundary: isWordBoundary(text),
		ws:       rg.IsWhitespace(),
		width:    width,
	}
}

func isWordBoundary(text string) bool {
	r := firstRune(text)
	return r == ' ' || r == '\t' || r == '\n' || isPunct(r)
}

func firstRune(text string) rune {
	for _, r := range text {
		return r
	}
	return ' '
}

func isPunct(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return false
	default:
		return true
	}
}

func (f *DocumentFormatter) peekGrapheme(col, charPos int) *graphemeWithSource {
	if f.peeked == nil {
		f.peeked = f.advanceGrapheme(col, charPos)
	}
	return f.peeked
}

func (f *DocumentFormatter) takeGrapheme(col, charPos int) *graphemeWithSource {
	g := f.peekGrapheme(col, charPos)
	f.peeked = nil
	return g
}

func (f *DocumentFormatter) allowExactFit(col, charPos int) bool {
	if !f.fmt.SoftWrapAtTextWidth {
		return false
	}
	g := f.peekGrapheme(col, charPos)
	return g != nil && (g.newline || g.eof)
}

func (f *DocumentFormatter) hardWrapLimitExceeded(wordWidth int) bool {
	return wordWidth > int(f.fmt.MaxWrap)
}

func (f *DocumentFormatter) wrapWord() int {
	indentCarryOver := 0
	if f.hasIndentLevel {
		if f.indentLevel <= int(f.fmt.MaxIndentRetain) {
			indentCarryOver = f.indentLevel
		}
	} else {
		f.hasIndentLevel = true
		f.indentLevel = 0
	}

	virtualLines := f.cursor.VirtualLinesAt(f.charPos, f.visualPos, f.linePos)
	f.visualPos.Col = indentCarryOver
	f.visualPos.Row += 1 + virtualLines

	wordWidth := 0
	indicator := make([]graphemeWithSource, 0, len(f.wrapIndicatorGraphemes))
	for _, g := range f.wrapIndicatorGraphemes {
		gr := makeGrapheme(g, f.visualPos.Col+wordWidth, f.fmt.TabWidth, GraphemeSource{
			Kind: SourceVirtualText, Highlight: f.fmt.WrapIndicatorHighlight, HasHi: f.fmt.HasWrapIndicatorHi,
		})
		wordWidth += gr.width
		indicator = append(indicator, gr)
	}
	f.wordBuf = append(indicator, f.wordBuf...)

	for i := len(indicator); i < len(f.wordBuf); i++ {
		visualX := f.visualPos.Col + wordWidth
		f.wordBuf[i] = repositionGrapheme(f.wordBuf[i], visualX, f.fmt.TabWidth)
		wordWidth += f.wordBuf[i].width
	}
	if f.peeked != nil {
		visualX := f.visualPos.Col + wordWidth
		repositioned := repositionGrapheme(*f.peeked, visualX, f.fmt.TabWidth)
		f.peeked = &repositioned
	}
	return wordWidth
}

func repositionGrapheme(g graphemeWithSource, col, tabWidth int) graphemeWithSource {
	g.visualX = col
	rg := rope.Grapheme{Text: g.text}
	g.width = rg.Width(col, tabWidth)
	return g
}

func (f *DocumentFormatter) advanceToNextWord() {
	f.wordBuf = f.wordBuf[:0]
	wordWidth := 0
	wordChars := 0

	if f.exhausted {
		return
	}

	for {
		col := f.visualPos.Col + wordWidth
		charPos := f.charPos + wordChars
		viewport := int(f.fmt.ViewportWidth)

		switch {
		case col == viewport && f.allowExactFit(col, charPos):
			// fits exactly and is followed by newline/eof: no wrap needed.
		case col == viewport && f.hardWrapLimitExceeded(wordWidth):
			return
		case col > viewport && f.hardWrapLimitExceeded(wordWidth):
			f.peeked = popLast(&f.wordBuf)
			return
		case col >= viewport:
			wordWidth = f.wrapWord()
		}

		g := f.takeGrapheme(f.visualPos.Col+wordWidth, charPos)
		if g == nil {
			return
		}
		wordChars += g.docChars()

		if !g.ws && !f.hasIndentLevel {
			f.indentLevel = f.visualPos.Col
			f.hasIndentLevel = true
		} else if g.newline {
			f.hasIndentLevel = false
		}

		isBoundary := g.boundary
		wordWidth += g.width
		f.wordBuf = append(f.wordBuf, *g)

		if isBoundary {
			return
		}
	}
}

func popLast(buf *[]graphemeWithSource) *graphemeWithSource {
	n := len(*buf)
	if n == 0 {
		return nil
	}
	g := (*buf)[n-1]
	*buf = (*buf)[:n-1]
	return &g
}

// Next returns the next FormattedGrapheme, or false once the stream is
// fully exhausted (after the synthetic EOF grapheme has been returned).
func (f *DocumentFormatter) Next() (FormattedGrapheme, bool) {
	var g graphemeWithSource
	if f.fmt.SoftWrap {
		if f.wordI >= len(f.wordBuf) {
			f.advanceToNextWord()
			f.wordI = 0
		}
		if f.wordI >= len(f.wordBuf) {
			return FormattedGrapheme{}, false
		}
		g = f.wordBuf[f.wordI]
		f.wordI++
	} else {
		got := f.advanceGrapheme(f.visualPos.Col, f.charPos)
		if got == nil {
			return FormattedGrapheme{}, false
		}
		g = *got
	}

	out := FormattedGrapheme{
		Raw:       rope.Grapheme{Text: g.text, CharLen: rope.CharOffset(g.charLen)},
		Source:    g.source,
		VisualPos: f.visualPos,
		LineIdx:   f.linePos,
		CharIdx:   f.charPos,
	}

	f.charPos += g.docChars()
	if !g.source.IsVirtual() {
		f.cursor.ProcessVirtualTextAnchors(out.CharIdx, g.text)
	}

	if g.newline {
		f.visualPos.Col++
		virtualLines := f.cursor.VirtualLinesAt(f.charPos, f.visualPos, f.linePos)
		f.visualPos.Row += 1 + virtualLines
		f.visualPos.Col = 0
		if !g.source.IsVirtual() {
			f.linePos++
		}
	} else {
		f.visualPos.Col += g.width
	}

	return out, true
}
