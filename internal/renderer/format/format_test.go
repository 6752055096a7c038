package format

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/renderer/annotations"
)

func collect(f *DocumentFormatter) []FormattedGrapheme {
	var out []FormattedGrapheme
	for {
		g, ok := f.Next()
		if !ok {
			break
		}
		out = append(out, g)
	}
	return out
}

func TestFormatterEmitsDocCharsInOrderWithEOFSentinel(t *testing.T) {
	r := rope.FromString("abc")
	f := NewAtPrevCheckpoint(r, DefaultTextFormat(), annotations.New(), 0)
	gs := collect(f)

	if len(gs) != 4 {
		t.Fatalf("got %d graphemes, want 4 (a, b, c, EOF)", len(gs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if gs[i].Raw.Text != want {
			t.Fatalf("grapheme[%d] = %q want %q", i, gs[i].Raw.Text, want)
		}
		if gs[i].CharIdx != i {
			t.Fatalf("grapheme[%d].CharIdx = %d want %d", i, gs[i].CharIdx, i)
		}
	}
	last := gs[3]
	if !last.IsEOF() {
		t.Fatalf("final grapheme should be the EOF sentinel: %+v", last)
	}
	if last.Source.DocChars() != 0 {
		t.Fatalf("EOF sentinel must consume 0 doc chars")
	}
}

func TestFormatterTabWidthAtColumn(t *testing.T) {
	r := rope.FromString("a\tb")
	tf := DefaultTextFormat()
	tf.TabWidth = 4
	f := NewAtPrevCheckpoint(r, tf, annotations.New(), 0)
	gs := collect(f)

	// 'a' at col 0 width 1, tab at col 1 -> width 3 (4 - 1%4), 'b' at col 4.
	if gs[0].VisualPos.Col != 0 {
		t.Fatalf("'a' visual col = %d want 0", gs[0].VisualPos.Col)
	}
	if gs[1].VisualPos.Col != 1 {
		t.Fatalf("tab visual col = %d want 1", gs[1].VisualPos.Col)
	}
	if w := gs[1].Width(tf.TabWidth); w != 3 {
		t.Fatalf("tab width = %d want 3", w)
	}
	if gs[2].VisualPos.Col != 4 {
		t.Fatalf("'b' visual col = %d want 4", gs[2].VisualPos.Col)
	}
}

func TestFormatterNewlineAdvancesRow(t *testing.T) {
	r := rope.FromString("a\nb")
	f := NewAtPrevCheckpoint(r, DefaultTextFormat(), annotations.New(), 0)
	gs := collect(f)

	if gs[0].VisualPos.Row != 0 || gs[0].VisualPos.Col != 0 {
		t.Fatalf("'a' pos = %+v want (0,0)", gs[0].VisualPos)
	}
	if gs[1].Raw.Text != "\n" || gs[1].VisualPos.Row != 0 {
		t.Fatalf("newline pos = %+v want row 0", gs[1].VisualPos)
	}
	if gs[2].Raw.Text != "b" || gs[2].VisualPos.Row != 1 || gs[2].VisualPos.Col != 0 {
		t.Fatalf("'b' pos = %+v want row 1 col 0", gs[2].VisualPos)
	}
}

func TestFormatterInlineAnnotationPrecedesGrapheme(t *testing.T) {
	r := rope.FromString("ab")
	anns := annotations.New().AddInlineLayer([]annotations.InlineAnnotation{
		{CharIdx: 1, Text: ">>"},
	})
	f := NewAtPrevCheckpoint(r, DefaultTextFormat(), anns, 0)
	gs := collect(f)

	// expect: 'a', '>', '>', 'b', EOF
	if gs[0].Raw.Text != "a" {
		t.Fatalf("gs[0] = %q want 'a'", gs[0].Raw.Text)
	}
	if gs[1].Raw.Text != ">" || !gs[1].IsVirtual() {
		t.Fatalf("gs[1] = %+v want virtual '>'", gs[1])
	}
	if gs[1].CharIdx != 1 {
		t.Fatalf("inline annotation CharIdx = %d want 1 (shares doc position)", gs[1].CharIdx)
	}
	if gs[2].Raw.Text != ">" || !gs[2].IsVirtual() {
		t.Fatalf("gs[2] = %+v want virtual '>'", gs[2])
	}
	if gs[3].Raw.Text != "b" || gs[3].IsVirtual() {
		t.Fatalf("gs[3] = %+v want document 'b'", gs[3])
	}
}

func TestFormatterOverlayReplacesGraphemeBytes(t *testing.T) {
	r := rope.FromString("abc")
	anns := annotations.New().AddOverlayLayer([]annotations.Overlay{
		{CharIdx: 1, Grapheme: "*"},
	})
	f := NewAtPrevCheckpoint(r, DefaultTextFormat(), anns, 0)
	gs := collect(f)

	if gs[1].Raw.Text != "*" {
		t.Fatalf("overlay grapheme = %q want '*'", gs[1].Raw.Text)
	}
	if gs[1].CharIdx != 1 {
		t.Fatalf("overlay CharIdx = %d want 1 (preserved)", gs[1].CharIdx)
	}
	if gs[1].IsVirtual() {
		t.Fatalf("overlay grapheme must still count as a document grapheme")
	}
}

func TestFormatterSoftWrapWithIndicator(t *testing.T) {
	// Variant of S5 with a viewport wide enough to hold "hello " on the
	// first row and wrap only before "world": viewport_width=8,
	// wrap_indicator="↪", rope "hello world".
	r := rope.FromString("hello world")
	tf := TextFormat{
		TabWidth:      4,
		SoftWrap:      true,
		ViewportWidth: 8,
		MaxWrap:       10,
		WrapIndicator: "↪",
	}
	f := NewAtPrevCheckpoint(r, tf, annotations.New(), 0)
	gs := collect(f)

	var sawIndicator bool
	var indicatorRow int
	for _, g := range gs {
		if g.IsVirtual() && g.Raw.Text == tf.WrapIndicator {
			sawIndicator = true
			indicatorRow = g.VisualPos.Row
			if g.VisualPos.Col != 0 {
				t.Fatalf("wrap indicator col = %d want 0 (start of continuation row)", g.VisualPos.Col)
			}
		}
	}
	if !sawIndicator {
		t.Fatalf("expected a wrap indicator grapheme, got none: %+v", gs)
	}
	if indicatorRow != 1 {
		t.Fatalf("expected the single wrap to land on row 1, got row %d", indicatorRow)
	}

	// "world" should appear on the indicator's row, after the indicator, and
	// "hello" (char indices 0-4) must stay entirely on row 0.
	for _, g := range gs {
		if g.IsVirtual() {
			continue
		}
		switch {
		case g.CharIdx < 5:
			if g.VisualPos.Row != 0 {
				t.Fatalf("char %d (%q) expected on row 0, got row %d", g.CharIdx, g.Raw.Text, g.VisualPos.Row)
			}
		case g.CharIdx >= 6 && g.CharIdx < 11:
			if g.VisualPos.Row != indicatorRow {
				t.Fatalf("char %d (%q) expected on wrap row %d, got row %d", g.CharIdx, g.Raw.Text, indicatorRow, g.VisualPos.Row)
			}
		}
	}
}

func TestFormatterNoHardSplitWithinMaxWrap(t *testing.T) {
	// If max_wrap >= len(indicator)+1, no word of width
	// <= max_wrap is ever hard-split mid-word.
	r := rope.FromString("hello world")
	tf := TextFormat{
		TabWidth:      4,
		SoftWrap:      true,
		ViewportWidth: 3,
		MaxWrap:       5,
		WrapIndicator: "-",
	}
	f := NewAtPrevCheckpoint(r, tf, annotations.New(), 0)
	gs := collect(f)

	// "hello" must appear as one contiguous run of 5 document chars with no
	// other document char interleaved mid-word (only the wrap indicator may
	// appear between words).
	var helloChars []rune
	for _, g := range gs {
		if g.IsVirtual() {
			continue
		}
		if g.Raw.Text == " " || g.Raw.Text == "\n" {
			break
		}
		for _, r := range g.Raw.Text {
			helloChars = append(helloChars, r)
		}
	}
	if string(helloChars) != "hello" {
		t.Fatalf("'hello' was split across a hard wrap: got %q", string(helloChars))
	}
}

func TestFormatterCheckpointOnLongLine(t *testing.T) {
	long := make([]byte, maxBlockChars*2+10)
	for i := range long {
		long[i] = 'x'
	}
	r := rope.FromString(string(long))
	mid := maxBlockChars + 5
	f := NewAtPrevCheckpoint(r, DefaultTextFormat(), annotations.New(), mid)
	if f.NextCharPos() > mid {
		t.Fatalf("checkpoint start %d is after requested index %d", f.NextCharPos(), mid)
	}
	if f.NextCharPos()%maxBlockChars != 0 {
		t.Fatalf("checkpoint start %d is not a multiple of maxBlockChars", f.NextCharPos())
	}
}
