package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[editor]
tab_width = 8
soft_wrap = true

[theme]
name = "light"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Editor.TabWidth != 8 || !cfg.Editor.SoftWrap {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Theme.Name != "light" {
		t.Errorf("theme = %+v", cfg.Theme)
	}
	// Untouched sections keep their defaults.
	if cfg.Editor.WrapIndicator != Default().Editor.WrapIndicator {
		t.Errorf("wrap indicator default lost: %q", cfg.Editor.WrapIndicator)
	}
	if cfg.LSP.RequestTimeoutMS != 1000 {
		t.Errorf("lsp default lost: %+v", cfg.LSP)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	if _, err := Parse([]byte("[editor]\ntab_width = 0\n")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("tab_width 0 err = %v", err)
	}
	if _, err := Parse([]byte("[lsp]\nrequest_timeout_ms = 0\n")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("timeout 0 err = %v", err)
	}
	if _, err := Parse([]byte("editor = not toml")); !errors.Is(err, ErrParse) {
		t.Errorf("malformed err = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file should yield defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[terminal]\nscrollback = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal.Scrollback != 500 {
		t.Errorf("scrollback = %d", cfg.Terminal.Scrollback)
	}
}

func TestTextFormatBridge(t *testing.T) {
	cfg := Default()
	cfg.Editor.SoftWrap = true
	cfg.Editor.TabWidth = 2
	tf := cfg.TextFormat()
	if !tf.SoftWrap || tf.TabWidth != 2 {
		t.Errorf("TextFormat = %+v", tf)
	}
	if tf.WrapIndicator != cfg.Editor.WrapIndicator {
		t.Errorf("wrap indicator = %q", tf.WrapIndicator)
	}
}
