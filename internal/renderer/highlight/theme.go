package highlight

import (
	"strings"
	"sync"

	"github.com/dshills/keystorm/internal/renderer/core"
)

// Theme maps dotted scope paths ("keyword.control", "ui.linenr.selected")
// to styles. Lookup falls back along the path: "ui.linenr.selected" is
// tried, then "ui.linenr", then "ui", and finally the theme default.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Foreground and Background are the editor-wide defaults.
	Foreground core.Color
	Background core.Color

	// Styles maps dotted scope paths to styles.
	Styles map[string]core.Style
}

// Get resolves a dotted scope path, falling back to progressively shorter
// prefixes. An unknown path returns the theme's default style.
func (t *Theme) Get(scopePath string) core.Style {
	scope := scopePath
	for scope != "" {
		if style, ok := t.Styles[scope]; ok {
			return style
		}
		idx := strings.LastIndex(scope, ".")
		if idx < 0 {
			break
		}
		scope = scope[:idx]
	}
	return t.defaultStyle()
}

// Has reports whether scopePath resolves to a style without falling back to
// the theme default.
func (t *Theme) Has(scopePath string) bool {
	scope := scopePath
	for scope != "" {
		if _, ok := t.Styles[scope]; ok {
			return true
		}
		idx := strings.LastIndex(scope, ".")
		if idx < 0 {
			return false
		}
		scope = scope[:idx]
	}
	return false
}

func (t *Theme) defaultStyle() core.Style {
	return core.Style{
		Foreground:     t.Foreground,
		Background:     core.ColorDefault,
		UnderlineColor: core.ColorDefault,
	}
}

var defaultThemeOnce = sync.OnceValue(func() *Theme {
	return &Theme{
		Name:       "keystorm-dark",
		Foreground: core.ColorFromRGB(0xd8, 0xd8, 0xd8),
		Background: core.ColorFromRGB(0x18, 0x18, 0x18),
		Styles: map[string]core.Style{
			"keyword":            core.DefaultStyle().WithForeground(core.ColorFromRGB(0xba, 0x8b, 0xaf)).Bold(),
			"keyword.control":    core.DefaultStyle().WithForeground(core.ColorFromRGB(0xba, 0x8b, 0xaf)).Italic(),
			"string":             core.DefaultStyle().WithForeground(core.ColorFromRGB(0xa1, 0xb5, 0x6c)),
			"comment":            core.DefaultStyle().WithForeground(core.ColorFromRGB(0x58, 0x58, 0x58)).Italic(),
			"constant":           core.DefaultStyle().WithForeground(core.ColorFromRGB(0xd2, 0x84, 0x45)),
			"function":           core.DefaultStyle().WithForeground(core.ColorFromRGB(0x7c, 0xaf, 0xc2)),
			"type":               core.DefaultStyle().WithForeground(core.ColorFromRGB(0xf7, 0xca, 0x88)),
			"variable":           core.DefaultStyle().WithForeground(core.ColorFromRGB(0xd8, 0xd8, 0xd8)),
			"diagnostic.error":   core.DefaultStyle().WithUnderline(core.UnderlineCurly, core.ColorRed),
			"diagnostic.warning": core.DefaultStyle().WithUnderline(core.UnderlineCurly, core.ColorYellow),
			"ui":                 core.DefaultStyle(),
			"ui.linenr":          core.DefaultStyle().WithForeground(core.ColorGray),
			"ui.linenr.selected": core.DefaultStyle().WithForeground(core.ColorFromRGB(0xd8, 0xd8, 0xd8)).Bold(),
			"ui.selection":       core.DefaultStyle().WithBackground(core.ColorFromRGB(0x38, 0x38, 0x38)),
			"ui.cursor":          core.DefaultStyle().Reverse(),
			"ui.cursor.primary":  core.DefaultStyle().Reverse().Bold(),
			"ui.statusline":      core.DefaultStyle().WithBackground(core.ColorFromRGB(0x28, 0x28, 0x28)),
			"ui.virtual":         core.DefaultStyle().WithForeground(core.ColorFromRGB(0x58, 0x58, 0x58)),
		},
	}
})

// DefaultTheme returns the built-in theme, constructed once per process.
func DefaultTheme() *Theme {
	return defaultThemeOnce()
}
