package terminal

import (
	"strings"
	"testing"
)

func writeString(s *Screen, text string) {
	for _, r := range text {
		switch r {
		case '\n':
			s.CarriageReturn()
			s.LineFeed()
		default:
			s.WriteRune(r)
		}
	}
}

func TestScreenWriteAndCursorAdvance(t *testing.T) {
	s := NewScreen(10, 3)
	writeString(s, "hi")

	if got := s.Cell(0, 0).Rune; got != 'h' {
		t.Errorf("cell(0,0) = %q", got)
	}
	if x, y := s.CursorPos(); x != 2 || y != 0 {
		t.Errorf("cursor = (%d,%d)", x, y)
	}
}

func TestScreenWideRuneOccupiesTwoColumns(t *testing.T) {
	s := NewScreen(10, 2)
	writeString(s, "a世b")

	if got := s.Cell(1, 0); got.Rune != '世' || got.Width != 2 {
		t.Fatalf("wide cell = %+v", got)
	}
	if got := s.Cell(2, 0); got.Width != 0 {
		t.Errorf("spacer cell = %+v", got)
	}
	if got := s.Cell(3, 0).Rune; got != 'b' {
		t.Errorf("cell after wide rune = %q", got)
	}
	if x, _ := s.CursorPos(); x != 4 {
		t.Errorf("cursor after wide rune = %d", x)
	}
}

func TestScreenWideRuneWrapsWhole(t *testing.T) {
	s := NewScreen(3, 2)
	writeString(s, "ab世")

	// 世 does not fit in the last column of row 0 and wraps whole.
	if got := s.Cell(0, 1); got.Rune != '世' || got.Width != 2 {
		t.Errorf("wrapped wide cell = %+v", got)
	}
	if got := s.Cell(2, 0).Rune; got != ' ' {
		t.Errorf("row 0 last column = %q", got)
	}
}

func TestScreenAutoWrapAndLineFeedScroll(t *testing.T) {
	s := NewScreen(3, 2)
	writeString(s, "abcdef")
	if got := rowText(s, 0); got != "abc" {
		t.Errorf("row 0 = %q", got)
	}
	if got := rowText(s, 1); got != "def" {
		t.Errorf("row 1 = %q", got)
	}

	// The next wrapped rune scrolls the grid; "abc" moves into history.
	writeString(s, "g")
	if got := rowText(s, 0); got != "def" {
		t.Errorf("after scroll row 0 = %q", got)
	}
	if s.HistoryLen() != 1 {
		t.Errorf("HistoryLen = %d", s.HistoryLen())
	}
}

func TestScreenScrollRegionDoesNotFeedHistory(t *testing.T) {
	s := NewScreen(5, 4)
	writeString(s, "a\nb\nc\nd")
	s.SetScrollRegion(1, 2)
	s.MoveCursor(0, 2)
	s.LineFeed()

	if got := rowText(s, 0); got != "a" {
		t.Errorf("row outside region = %q", got)
	}
	if got := rowText(s, 1); got != "c" {
		t.Errorf("region scrolled row = %q", got)
	}
	if got := rowText(s, 3); got != "d" {
		t.Errorf("row below region = %q", got)
	}
	if s.HistoryLen() != 0 {
		t.Errorf("region scroll fed history: %d", s.HistoryLen())
	}
}

func TestScreenInsertDeleteLines(t *testing.T) {
	s := NewScreen(5, 3)
	writeString(s, "a\nb\nc")

	s.MoveCursor(0, 1)
	s.InsertLines(1)
	if rowText(s, 0) != "a" || rowText(s, 1) != "" || rowText(s, 2) != "b" {
		t.Errorf("after IL: %q %q %q", rowText(s, 0), rowText(s, 1), rowText(s, 2))
	}

	s.DeleteLines(1)
	if rowText(s, 0) != "a" || rowText(s, 1) != "b" {
		t.Errorf("after DL: %q %q", rowText(s, 0), rowText(s, 1))
	}
}

func TestScreenClearVariants(t *testing.T) {
	s := NewScreen(5, 3)
	writeString(s, "aaaaa\nbbbbb\nccccc")

	s.MoveCursor(2, 1)
	s.ClearLineRight()
	if got := rowText(s, 1); got != "bb" {
		t.Errorf("ClearLineRight = %q", got)
	}

	s.ClearScreenBelow()
	if got := rowText(s, 2); got != "" {
		t.Errorf("ClearScreenBelow left %q", got)
	}
	if got := rowText(s, 0); got != "aaaaa" {
		t.Errorf("ClearScreenBelow touched row 0: %q", got)
	}

	s.ClearScreen()
	for y := 0; y < 3; y++ {
		if got := rowText(s, y); got != "" {
			t.Errorf("ClearScreen left row %d = %q", y, got)
		}
	}
}

func TestScreenSaveRestoreCursorAndAttributes(t *testing.T) {
	s := NewScreen(10, 5)
	s.SetForeground(ColorRed)
	s.MoveCursor(3, 2)
	s.SaveCursor()

	s.SetForeground(ColorGreen)
	s.MoveCursor(0, 0)
	s.RestoreCursor()

	if x, y := s.CursorPos(); x != 3 || y != 2 {
		t.Errorf("restored cursor = (%d,%d)", x, y)
	}
	s.WriteRune('x')
	if got := s.Cell(3, 2).Foreground; got != ColorRed {
		t.Errorf("restored attributes = %+v", got)
	}
}

func TestScreenResizePreservesContentAndClamps(t *testing.T) {
	s := NewScreen(10, 3)
	writeString(s, "hello")
	s.MoveCursor(9, 2)

	s.Resize(5, 2)
	if s.Width() != 5 || s.Height() != 2 {
		t.Fatalf("size = %dx%d", s.Width(), s.Height())
	}
	if got := rowText(s, 0); got != "hello" {
		t.Errorf("content after shrink = %q", got)
	}
	if x, y := s.CursorPos(); x != 4 || y != 1 {
		t.Errorf("clamped cursor = (%d,%d)", x, y)
	}
}

func TestScreenOriginMode(t *testing.T) {
	s := NewScreen(10, 6)
	s.SetScrollRegion(2, 4)
	s.SetOriginMode(true)

	// With origin mode on, row 0 addresses the scroll region's top and
	// moves clamp inside the region.
	s.MoveCursor(0, 0)
	if _, y := s.CursorPos(); y != 2 {
		t.Errorf("origin-mode home row = %d", y)
	}
	s.MoveCursor(0, 99)
	if _, y := s.CursorPos(); y != 4 {
		t.Errorf("origin-mode clamped row = %d", y)
	}
}

func TestScreenGetTextAndRange(t *testing.T) {
	s := NewScreen(5, 2)
	writeString(s, "abc\nde")

	text := s.GetText()
	if !strings.HasPrefix(text, "abc") || !strings.Contains(text, "de") {
		t.Errorf("GetText = %q", text)
	}
	if got := s.GetTextRange(1, 0, 2, 0); got != "bc" {
		t.Errorf("GetTextRange = %q", got)
	}
}

func TestScreenAltScreenRoundTrip(t *testing.T) {
	s := NewScreen(20, 5)
	writeString(s, "main text")

	s.EnterAltScreen(true)
	if !s.AltScreenActive() {
		t.Fatal("EnterAltScreen did not activate")
	}
	if got := s.Cell(0, 0).Rune; got != ' ' {
		t.Errorf("alt screen should start blank, got %q", got)
	}
	writeString(s, "alt")

	// Re-entering is a no-op, not a double-park of the main grid.
	s.EnterAltScreen(true)
	if got := s.Cell(0, 0).Rune; got != 'a' {
		t.Errorf("re-enter cleared alt content: %q", got)
	}

	s.ExitAltScreen(true)
	if s.AltScreenActive() {
		t.Fatal("ExitAltScreen did not deactivate")
	}
	if got := rowText(s, 0); got != "main text" {
		t.Errorf("main grid lost: %q", got)
	}
	if x, _ := s.CursorPos(); x != len("main text") {
		t.Errorf("cursor not restored: %d", x)
	}
}

func TestScreenAltScreenSurvivesResize(t *testing.T) {
	s := NewScreen(10, 3)
	writeString(s, "keep")
	s.EnterAltScreen(false)
	s.Resize(8, 3)
	s.ExitAltScreen(false)

	if s.Width() != 8 {
		t.Fatalf("width = %d", s.Width())
	}
	// The main grid is rebuilt at the new size rather than dropped.
	if s.AltScreenActive() {
		t.Error("still on alt screen")
	}
}

func TestScreenModeQueries(t *testing.T) {
	s := NewScreen(10, 3)
	if s.BracketedPaste() || s.AppCursorKeys() {
		t.Fatal("modes should start off")
	}
	s.SetBracketedPaste(true)
	s.SetAppCursorKeys(true)
	if !s.BracketedPaste() || !s.AppCursorKeys() {
		t.Error("mode setters did not stick")
	}
	s.Reset()
	if s.BracketedPaste() || s.AppCursorKeys() || s.AltScreenActive() {
		t.Error("Reset should clear modes")
	}
}

func TestScreenDefaultColors(t *testing.T) {
	s := NewScreen(10, 2)
	fg := ColorFromRGB(1, 2, 3)
	bg := ColorFromRGB(4, 5, 6)
	s.SetDefaultColors(fg, bg)

	s.WriteRune('x')
	if got := s.Cell(0, 0).Foreground; got != fg {
		t.Errorf("default fg not applied: %+v", got)
	}

	s.SetForeground(ColorRed)
	s.ResetAttributes()
	s.WriteRune('y')
	if got := s.Cell(1, 0).Foreground; got != fg {
		t.Errorf("reset should return to configured default: %+v", got)
	}

	gotFg, gotBg := s.DefaultColors()
	if gotFg != fg || gotBg != bg {
		t.Errorf("DefaultColors = %+v, %+v", gotFg, gotBg)
	}
}

func TestScreenScrollbackViewport(t *testing.T) {
	s := NewScreen(10, 3)
	writeString(s, "one\ntwo\nthree\nfour\nfive")

	if !s.ViewportAtBottom() {
		t.Fatal("viewport should start at bottom")
	}
	if s.HistoryLen() != 2 {
		t.Fatalf("HistoryLen = %d", s.HistoryLen())
	}

	s.ScrollViewport(2)
	if s.ViewportAtBottom() {
		t.Fatal("viewport should be in scrollback")
	}
	if got := rowText(s, 0); got != "one" {
		t.Errorf("scrolled-back top row = %q", got)
	}
	if got := rowText(s, 2); got != "three" {
		t.Errorf("scrolled-back bottom row = %q", got)
	}

	// Over-scrolling clamps both ways; bottom restores the live grid.
	s.ScrollViewport(100)
	s.ScrollViewport(-100)
	if !s.ViewportAtBottom() {
		t.Error("negative overshoot should clamp to bottom")
	}
	s.ScrollViewport(1)
	s.ScrollViewportToBottom()
	if got := rowText(s, 0); got != "three" {
		t.Errorf("live top row = %q", got)
	}
}

func TestScreenAltScreenSuppressesViewportScroll(t *testing.T) {
	s := NewScreen(10, 3)
	writeString(s, "a\nb\nc\nd\ne")
	s.EnterAltScreen(false)
	s.ScrollViewport(2)
	if !s.ViewportAtBottom() {
		t.Error("alt screen must pin the viewport to the live grid")
	}
}

func TestScrollbackStoreCopiesLines(t *testing.T) {
	h := NewHistory(3)
	line := NewLine(4)
	line.Cells[0].Rune = 'x'
	h.Add(line)
	line.Cells[0].Rune = 'y'

	if got := h.Line(0).Cells[0].Rune; got != 'x' {
		t.Errorf("history shares line storage: %q", got)
	}

	// The cap evicts oldest-first.
	for _, r := range "abc" {
		l := NewLine(1)
		l.Cells[0].Rune = r
		h.Add(l)
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d", h.Len())
	}
	if got := h.Line(0).Cells[0].Rune; got != 'a' {
		t.Errorf("oldest retained = %q", got)
	}
	if h.Line(5) != nil {
		t.Error("out-of-range Line should be nil")
	}

	h.Clear()
	if h.Len() != 0 {
		t.Error("Clear left rows behind")
	}
}
