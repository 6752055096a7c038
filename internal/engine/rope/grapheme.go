package rope

import (
	"github.com/rivo/uniseg"
)

// Grapheme is a single Unicode extended grapheme cluster drawn from a rope,
// tagged with its kind for layout and motion purposes.
type Grapheme struct {
	// Text is the cluster's raw bytes.
	Text string

	// CharStart is the char offset of the cluster's first rune.
	CharStart CharOffset

	// CharLen is the number of runes the cluster spans.
	CharLen CharOffset
}

// Kind classifies a grapheme for width/motion purposes.
type Kind uint8

const (
	// KindOther is any grapheme that is not a newline or tab.
	KindOther Kind = iota
	// KindNewline is the line terminator grapheme.
	KindNewline
	// KindTab is a horizontal tab grapheme; its width depends on the
	// current visual column.
	KindTab
)

// Kind classifies this grapheme.
func (g Grapheme) Kind() Kind {
	switch g.Text {
	case "\n":
		return KindNewline
	case "\t":
		return KindTab
	default:
		return KindOther
	}
}

// IsWhitespace reports whether the grapheme is whitespace other than a
// newline (which has its own Kind).
func (g Grapheme) IsWhitespace() bool {
	if g.Text == "" {
		return false
	}
	for _, r := range g.Text {
		if r != ' ' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}

// Width returns the display width of the grapheme at visual column col,
// given the document's configured tab width. Control characters other
// than newline/tab render as width-1 replacement glyphs.
func (g Grapheme) Width(col int, tabWidth int) int {
	switch g.Kind() {
	case KindNewline:
		return 1
	case KindTab:
		if tabWidth <= 0 {
			tabWidth = 1
		}
		w := tabWidth - (col % tabWidth)
		if w <= 0 {
			w = tabWidth
		}
		return w
	default:
		for _, r := range g.Text {
			if r < 0x20 || r == 0x7F {
				return 1
			}
		}
		return uniseg.StringWidth(g.Text)
	}
}

// GraphemeIterator walks a rope's text as extended grapheme clusters
// (UAX#29), starting at a given char offset.
type GraphemeIterator struct {
	state      *uniseg.Graphemes
	charOffset CharOffset
}

// GraphemesAt returns an iterator over the rope's grapheme clusters
// starting at charOffset.
func GraphemesAt(r Rope, charOffset CharOffset) *GraphemeIterator {
	s := r.SliceChars(charOffset, r.LenChars())
	return &GraphemeIterator{
		state:      uniseg.NewGraphemes(s),
		charOffset: charOffset,
	}
}

// Next advances to the next grapheme cluster, returning false at EOF.
func (it *GraphemeIterator) Next() (Grapheme, bool) {
	if !it.state.Next() {
		return Grapheme{}, false
	}
	text := it.state.Str()
	start := it.charOffset
	var n CharOffset
	for range text {
		n++
	}
	it.charOffset += n
	return Grapheme{Text: text, CharStart: start, CharLen: n}, true
}

// WordClass classifies a grapheme for word-motion purposes.
type WordClass uint8

const (
	// ClassWhitespace is any whitespace grapheme, including newline.
	ClassWhitespace WordClass = iota
	// ClassWord is an alphanumeric-or-underscore grapheme.
	ClassWord
	// ClassPunctuation is anything else.
	ClassPunctuation
)

// Classify returns the WordClass of a grapheme's first rune.
func Classify(g Grapheme) WordClass {
	if g.Kind() == KindNewline || g.IsWhitespace() {
		return ClassWhitespace
	}
	for _, r := range g.Text {
		if r == '_' || isAlnum(r) {
			return ClassWord
		}
		break
	}
	return ClassPunctuation
}

// ClassifyBig classifies under BigWord rules, which collapse Word and
// Punctuation into a single non-whitespace class.
func ClassifyBig(g Grapheme) WordClass {
	if Classify(g) == ClassWhitespace {
		return ClassWhitespace
	}
	return ClassWord
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		r > 127 // treat other scripts' letters as word chars
}

// IsSubwordBoundary reports whether a boundary exists between prev and
// cur under sub-word motion rules: an underscore, or a lowercase→
// uppercase transition, is a directional boundary in addition to the
// ordinary word-class boundaries.
func IsSubwordBoundary(prev, cur rune) bool {
	if prev == '_' || cur == '_' {
		return true
	}
	return isLower(prev) && isUpper(cur)
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
