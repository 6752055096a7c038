package plan

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/document"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/format"
)

func viewportOf(w, h int) View {
	return View{Viewport: core.NewScreenRect(0, 0, h, w), Scroll: core.ScreenPos{}}
}

func TestVisualPosAtCharRoundTrip(t *testing.T) {
	// Round trip: char_at_visual_pos(visual_pos_at_char(i)) == i
	// when no line annotations inject virtual rows.
	text := "hello\nworld"
	r := document.New(text).Text()
	tf := format.DefaultTextFormat()
	anns := annotations.New()

	for i := 0; i <= len(text); i++ {
		pos, ok := VisualPosAtChar(r, tf, anns, i)
		if !ok {
			t.Fatalf("VisualPosAtChar(%d) not ok", i)
		}
		got, ok := CharAtVisualPos(r, tf, anns, pos)
		if !ok {
			t.Fatalf("CharAtVisualPos(%+v) not ok for char %d", pos, i)
		}
		if got != i {
			t.Fatalf("round trip for char %d: got %d via pos %+v", i, got, pos)
		}
	}
}

func TestBuildEmitsLineForEachRow(t *testing.T) {
	doc := document.New("abc\ndef")
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()
	styles := RenderStyles{}

	p := Build(doc, viewportOf(10, 5), tf, anns, nil, cache, styles)

	if len(p.Lines) != 2 {
		t.Fatalf("got %d lines want 2", len(p.Lines))
	}
	if p.Lines[0].Row != 0 || p.Lines[1].Row != 1 {
		t.Fatalf("unexpected rows: %+v", p.Lines)
	}
	if got := p.Lines[0].Spans[0].Text; got != "abc" {
		t.Fatalf("row 0 text = %q want 'abc'", got)
	}
	if got := p.Lines[1].Spans[0].Text; got != "def" {
		t.Fatalf("row 1 text = %q want 'def'", got)
	}
}

func TestBuildClipsColumnsOutsideViewport(t *testing.T) {
	doc := document.New("abcdefghij")
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()

	p := Build(doc, viewportOf(4, 3), tf, anns, nil, cache, RenderStyles{})

	if len(p.Lines) != 1 {
		t.Fatalf("got %d lines want 1", len(p.Lines))
	}
	if got := p.Lines[0].Spans[0].Text; got != "abcd" {
		t.Fatalf("clipped row text = %q want 'abcd' (viewport width 4)", got)
	}
}

func TestBuildEmitsCursorPosition(t *testing.T) {
	doc := document.New("abc")
	if err := doc.SetSelection(selection.PointSelection(1)); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()

	p := Build(doc, viewportOf(10, 3), tf, anns, nil, cache, RenderStyles{})

	if len(p.Cursors) != 1 {
		t.Fatalf("got %d cursors want 1", len(p.Cursors))
	}
	if p.Cursors[0].Pos.Col != 1 || p.Cursors[0].Pos.Row != 0 {
		t.Fatalf("cursor pos = %+v want (0,1)", p.Cursors[0].Pos)
	}
}

func TestBuildOmitsCursorOutsideViewport(t *testing.T) {
	doc := document.New("abcdefghij")
	if err := doc.SetSelection(selection.PointSelection(9)); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()

	p := Build(doc, viewportOf(3, 3), tf, anns, nil, cache, RenderStyles{})

	if len(p.Cursors) != 0 {
		t.Fatalf("expected cursor outside the 3-wide viewport to be omitted, got %+v", p.Cursors)
	}
}

func TestBuildProducesOneSelectionRectPerRow(t *testing.T) {
	doc := document.New("abc\ndef\nghi")
	sel, err := selection.New([]selection.Range{selection.NewRange(1, 9)}, 0)
	if err != nil {
		t.Fatalf("build selection: %v", err)
	}
	if err := doc.SetSelection(sel); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()

	p := Build(doc, viewportOf(10, 5), tf, anns, nil, cache, RenderStyles{})

	if len(p.Selections) != 3 {
		t.Fatalf("got %d selection rects want 3 (one per spanned row)", len(p.Selections))
	}
}

func TestCacheResetsOnVersionChange(t *testing.T) {
	doc := document.New("abc")
	tf := format.DefaultTextFormat()
	anns := annotations.New()
	cache := NewCache()

	_ = Build(doc, viewportOf(10, 3), tf, anns, nil, cache, RenderStyles{})
	v1 := cache.textVersion

	tx := transaction.InsertAt(doc.Text(), []int{0}, "X")
	if err := doc.Apply(tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	_ = Build(doc, viewportOf(10, 3), tf, anns, nil, cache, RenderStyles{})
	if cache.textVersion == v1 {
		t.Fatalf("cache did not refresh after document version changed")
	}
	if cache.textVersion != doc.Version() {
		t.Fatalf("cache version = %d want doc version %d", cache.textVersion, doc.Version())
	}
}
