package highlight

import (
	"testing"

	"github.com/dshills/keystorm/internal/renderer/core"
)

func TestThemeGetFallback(t *testing.T) {
	th := &Theme{
		Foreground: core.ColorWhite,
		Styles: map[string]core.Style{
			"ui":        core.DefaultStyle().WithForeground(core.ColorGray),
			"ui.linenr": core.DefaultStyle().WithForeground(core.ColorBlue),
		},
	}

	if got := th.Get("ui.linenr"); got.Foreground != core.ColorBlue {
		t.Errorf("exact lookup = %+v", got)
	}
	// "ui.linenr.selected" is absent and falls back to "ui.linenr".
	if got := th.Get("ui.linenr.selected"); got.Foreground != core.ColorBlue {
		t.Errorf("one-level fallback = %+v", got)
	}
	// "ui.statusline" falls back to "ui".
	if got := th.Get("ui.statusline"); got.Foreground != core.ColorGray {
		t.Errorf("prefix fallback = %+v", got)
	}
	// Unknown root falls back to the theme default foreground.
	if got := th.Get("keyword.control"); got.Foreground != core.ColorWhite {
		t.Errorf("default fallback = %+v", got)
	}

	if !th.Has("ui.linenr.selected") || th.Has("keyword") {
		t.Error("Has fallback reporting wrong")
	}
}

func TestDefaultThemeIsStable(t *testing.T) {
	if DefaultTheme() != DefaultTheme() {
		t.Error("DefaultTheme should return the same instance")
	}
	if DefaultTheme().Get("ui.cursor.primary").IsDefault() {
		t.Error("built-in theme should style the primary cursor")
	}
}

func TestStyleForHighlightRGBAndRainbow(t *testing.T) {
	th := DefaultTheme()

	h := RGBHighlight(10, 20, 30)
	style := th.StyleForHighlight(h, nil)
	if style.Foreground != core.ColorFromRGB(10, 20, 30) {
		t.Errorf("RGB highlight style = %+v", style.Foreground)
	}

	if !RainbowHighlight(3).IsRainbow() {
		t.Error("rainbow id not recognized")
	}
	if RainbowHighlight(2) != RainbowHighlight(2+16) {
		t.Error("rainbow ids should cycle")
	}

	reg := NewHighlightRegistry()
	id := reg.Intern("keyword")
	if got := th.StyleForHighlight(id, reg); got != th.Get("keyword") {
		t.Errorf("scope highlight style = %+v", got)
	}
}
