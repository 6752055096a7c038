package core

// Attribute is a bit set of text modifiers.
type Attribute uint8

const (
	AttrNone Attribute = 0

	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrReverse
	AttrStrikethrough
	AttrBlink
)

// Has reports whether all bits in attr are set.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr == attr
}

// UnderlineStyle selects how an underline is drawn.
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// Style is the visual style of a text run: foreground, background, an
// underline with its own color, and modifier attributes.
type Style struct {
	Foreground     Color
	Background     Color
	UnderlineColor Color
	Underline      UnderlineStyle
	Attributes     Attribute
}

// DefaultStyle returns the terminal's default style.
func DefaultStyle() Style {
	return Style{
		Foreground:     ColorDefault,
		Background:     ColorDefault,
		UnderlineColor: ColorDefault,
	}
}

// WithForeground returns s with the foreground replaced.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns s with the background replaced.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// WithUnderline returns s underlined in the given style and color.
func (s Style) WithUnderline(us UnderlineStyle, color Color) Style {
	s.Underline = us
	s.UnderlineColor = color
	return s
}

// WithAttributes returns s with attrs added to the existing set.
func (s Style) WithAttributes(attrs Attribute) Style {
	s.Attributes |= attrs
	return s
}

// Bold returns s with the bold attribute set.
func (s Style) Bold() Style { return s.WithAttributes(AttrBold) }

// Italic returns s with the italic attribute set.
func (s Style) Italic() Style { return s.WithAttributes(AttrItalic) }

// Reverse returns s with the reverse-video attribute set.
func (s Style) Reverse() Style { return s.WithAttributes(AttrReverse) }

// Merge overlays other onto s: other's non-default colors and underline win,
// and attribute sets are unioned.
func (s Style) Merge(other Style) Style {
	if !other.Foreground.IsDefault() {
		s.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		s.Background = other.Background
	}
	if other.Underline != UnderlineNone {
		s.Underline = other.Underline
		s.UnderlineColor = other.UnderlineColor
	}
	s.Attributes |= other.Attributes
	return s
}

// IsDefault reports whether s equals the default style.
func (s Style) IsDefault() bool {
	return s == DefaultStyle()
}

// Cell is one terminal cell: a rune, its style, and the column width the
// rune occupies (2 for wide East Asian characters, 0 for the trailing half
// of a wide rune).
type Cell struct {
	Rune  rune
	Style Style
	Width int
}

// EmptyCell returns a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Style: DefaultStyle(), Width: 1}
}

// NewStyledCell returns a width-1 cell holding r in style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Style: style, Width: 1}
}
