package highlight

import (
	"github.com/dshills/keystorm/internal/renderer/core"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Highlight is an opaque numeric id assigned to a highlighted span. Its
// numeric range is partitioned:
//
//   - [0, rainbowCount) is reserved for bracket-depth "rainbow" cycling, so
//     a highlighter never needs theme/registry lookup just to color nested
//     delimiters.
//   - The RGB flag bit, when set, means the remaining bits directly encode
//     an (r, g, b) triple rather than indexing anything.
//   - Everything else is a registry-interned scope id, resolved to a style
//     via Theme.Get's dotted-path fallback.
type Highlight int32

const (
	rainbowCount = 16
	rgbFlag      = Highlight(1) << 30
)

// RainbowHighlight returns the id for bracket-nesting depth, cycling through
// rainbowCount colors.
func RainbowHighlight(depth int) Highlight {
	if depth < 0 {
		depth = 0
	}
	return Highlight(depth % rainbowCount)
}

// IsRainbow reports whether h was produced by RainbowHighlight.
func (h Highlight) IsRainbow() bool { return h >= 0 && int(h) < rainbowCount }

// RGBHighlight encodes a direct color triple, bypassing theme lookup.
func RGBHighlight(r, g, b uint8) Highlight {
	return rgbFlag | Highlight(r)<<16 | Highlight(g)<<8 | Highlight(b)
}

// RGB decodes h as a direct color triple; ok is false unless h was built
// with RGBHighlight.
func (h Highlight) RGB() (r, g, b uint8, ok bool) {
	if h&rgbFlag == 0 {
		return 0, 0, 0, false
	}
	v := h &^ rgbFlag
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// Registry interns highlight scopes (e.g. "keyword.control") as stable
// Highlight ids above the rainbow prefix, for highlighters that want to
// defer style resolution to a Theme rather than computing a Style directly.
type Registry struct {
	scopes []string
	byName map[string]Highlight
}

// NewHighlightRegistry returns an empty scope registry.
func NewHighlightRegistry() *Registry {
	return &Registry{byName: make(map[string]Highlight)}
}

// Intern returns scope's Highlight id, assigning a new one if this is the
// first time scope has been seen.
func (r *Registry) Intern(scope string) Highlight {
	if id, ok := r.byName[scope]; ok {
		return id
	}
	id := Highlight(rainbowCount + len(r.scopes))
	r.scopes = append(r.scopes, scope)
	r.byName[scope] = id
	return id
}

// Scope returns the scope string h was interned with.
func (r *Registry) Scope(h Highlight) (string, bool) {
	idx := int(h) - rainbowCount
	if idx < 0 || idx >= len(r.scopes) {
		return "", false
	}
	return r.scopes[idx], true
}

// CharHighlighter is the contract the render pipeline consumes: a
// monotonically-queryable (in increasing charIdx) source of highlight ids.
type CharHighlighter interface {
	HighlightAt(charIdx int) (Highlight, bool)
}

// StyleForHighlight resolves a Highlight id to a concrete Style: RGB ids
// decode directly, rainbow ids cycle an HSV wheel, and everything else is
// resolved through reg (if non-nil) and the theme's scope lookup.
func (t *Theme) StyleForHighlight(h Highlight, reg *Registry) core.Style {
	if r, g, b, ok := h.RGB(); ok {
		return core.DefaultStyle().WithForeground(core.ColorFromRGB(r, g, b))
	}
	if h.IsRainbow() {
		return core.DefaultStyle().WithForeground(rainbowColor(int(h)))
	}
	if reg != nil {
		if scope, ok := reg.Scope(h); ok {
			return t.Get(scope)
		}
	}
	return core.DefaultStyle()
}

func rainbowColor(depth int) core.Color {
	hue := float64(depth%rainbowCount) * (360.0 / float64(rainbowCount))
	c := colorful.Hsv(hue, 0.55, 0.92)
	r, g, b := c.RGB255()
	return core.ColorFromRGB(r, g, b)
}
