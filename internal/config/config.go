// Package config loads and watches the editor's TOML configuration:
// editing defaults (tab width, soft wrap), the theme name, terminal-pane
// settings, and language-server budgets.
package config

import (
	"fmt"

	"github.com/dshills/keystorm/internal/renderer/format"
)

// Config is the full configuration tree.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Theme    ThemeConfig    `toml:"theme"`
	Terminal TerminalConfig `toml:"terminal"`
	LSP      LSPConfig      `toml:"lsp"`
}

// EditorConfig holds per-view text formatting defaults.
type EditorConfig struct {
	// TabWidth is the column width of a tab stop.
	TabWidth int `toml:"tab_width"`

	// SoftWrap enables visual line wrapping at the viewport edge.
	SoftWrap bool `toml:"soft_wrap"`

	// MaxWrap is the minimum characters kept together before a word is
	// hard-split during soft wrap.
	MaxWrap int `toml:"max_wrap"`

	// MaxIndentRetain caps the indentation carried onto wrapped
	// continuation rows.
	MaxIndentRetain int `toml:"max_indent_retain"`

	// WrapIndicator is prepended as virtual text on continuation rows.
	WrapIndicator string `toml:"wrap_indicator"`

	// ScrollOff is how many rows to keep visible around the cursor when
	// scrolling.
	ScrollOff int `toml:"scroll_off"`
}

// ThemeConfig selects the color theme.
type ThemeConfig struct {
	Name string `toml:"name"`
}

// TerminalConfig configures embedded terminal panes.
type TerminalConfig struct {
	// Shell overrides $SHELL for new terminal panes.
	Shell string `toml:"shell"`

	// Scrollback is the per-pane scrollback line count.
	Scrollback int `toml:"scrollback"`
}

// LSPConfig holds language-server budgets.
type LSPConfig struct {
	// RequestTimeoutMS bounds each request, in milliseconds.
	RequestTimeoutMS int `toml:"request_timeout_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			TabWidth:        4,
			SoftWrap:        false,
			MaxWrap:         20,
			MaxIndentRetain: 40,
			WrapIndicator:   "↪",
			ScrollOff:       3,
		},
		Theme: ThemeConfig{Name: "keystorm-dark"},
		Terminal: TerminalConfig{
			Scrollback: 10000,
		},
		LSP: LSPConfig{RequestTimeoutMS: 1000},
	}
}

// Validate checks value ranges, returning the first violation.
func (c *Config) Validate() error {
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("%w: editor.tab_width %d not in [1, 16]", ErrInvalidValue, c.Editor.TabWidth)
	}
	if c.Editor.MaxWrap < 0 || c.Editor.MaxWrap > 255 {
		return fmt.Errorf("%w: editor.max_wrap %d not in [0, 255]", ErrInvalidValue, c.Editor.MaxWrap)
	}
	if c.Editor.MaxIndentRetain < 0 || c.Editor.MaxIndentRetain > 255 {
		return fmt.Errorf("%w: editor.max_indent_retain %d not in [0, 255]", ErrInvalidValue, c.Editor.MaxIndentRetain)
	}
	if c.Editor.ScrollOff < 0 {
		return fmt.Errorf("%w: editor.scroll_off must not be negative", ErrInvalidValue)
	}
	if c.Terminal.Scrollback < 0 {
		return fmt.Errorf("%w: terminal.scrollback must not be negative", ErrInvalidValue)
	}
	if c.LSP.RequestTimeoutMS < 1 {
		return fmt.Errorf("%w: lsp.request_timeout_ms must be positive", ErrInvalidValue)
	}
	return nil
}

// TextFormat converts the editor section into a formatter configuration.
func (c *Config) TextFormat() format.TextFormat {
	return format.TextFormat{
		TabWidth:        c.Editor.TabWidth,
		SoftWrap:        c.Editor.SoftWrap,
		MaxWrap:         uint16(c.Editor.MaxWrap),
		MaxIndentRetain: uint16(c.Editor.MaxIndentRetain),
		WrapIndicator:   c.Editor.WrapIndicator,
	}
}
