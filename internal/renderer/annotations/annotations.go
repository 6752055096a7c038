// Package annotations implements TextAnnotations: the layered inline-text,
// grapheme-overlay, and virtual-line decorations the document formatter
// interleaves with real document graphemes. Traversal state lives in a
// TextAnnotationsCursor whose per-layer indices only advance.
package annotations

import "github.com/dshills/keystorm/internal/renderer/highlight"

// InlineAnnotation is virtual text shown before the document grapheme at
// CharIdx. Text must not contain a line terminator.
type InlineAnnotation struct {
	CharIdx   int
	Text      string
	Highlight highlight.Highlight
	HasHi     bool
}

// Overlay substitutes a single grapheme at a document position. Grapheme
// must be exactly one grapheme cluster.
type Overlay struct {
	CharIdx   int
	Grapheme  string
	Highlight highlight.Highlight
	HasHi     bool
}

// LineAnnotation injects virtual rows at line boundaries (e.g. diagnostics,
// blame, diff gutters). Implementations carry their own traversal state;
// returning math.MaxInt ("no further interest") from ResetPos or
// SkipConcealedAnchors lets the cursor stop querying them.
type LineAnnotation interface {
	// ResetPos seeks to char and returns the next anchor char index this
	// annotation cares about.
	ResetPos(char int) int
	// SkipConcealedAnchors advances past anchors hidden by concealment,
	// returning the next visible anchor.
	SkipConcealedAnchors(char int) int
	// ProcessAnchor is called when the formatter reaches an anchor this
	// annotation registered interest in; it returns the next anchor.
	ProcessAnchor(grapheme string) int
	// InsertVirtualLines is called at a line's end (char index lineEndChar,
	// visual position lineEndVisualPos, document line doc Line) and returns
	// how many extra visual rows to insert after it.
	InsertVirtualLines(lineEndChar int, lineEndVisualPos Position, docLine uint32) int
}

// Position is a (row, col) visual coordinate.
type Position struct {
	Row, Col int
}

// NoFurtherInterest is returned by LineAnnotation methods meaning "I have no
// more anchors in this traversal".
const NoFurtherInterest = int(^uint(0) >> 1)

// inlineLayer holds one registered layer of inline annotations, sorted by
// CharIdx.
type inlineLayer struct {
	anns []InlineAnnotation
}

type overlayLayer struct {
	anns []Overlay
}

// TextAnnotations is an immutable-once-registered set of decoration layers.
// Registration order matters: for inline annotations sharing a char_idx,
// the first-registered layer displays first; for overlays, the
// last-registered layer wins.
type TextAnnotations struct {
	inlineLayers  []inlineLayer
	overlayLayers []overlayLayer
	lineAnns      []LineAnnotation
	generation    int
}

// New returns an empty TextAnnotations set.
func New() *TextAnnotations {
	return &TextAnnotations{}
}

// Generation returns a counter bumped by every AddX call; render caches use
// it (alongside document version) to detect annotation-only invalidation.
func (t *TextAnnotations) Generation() int { return t.generation }

// AddInlineLayer registers a new inline-annotation layer, sorted by
// CharIdx. Annotations within a layer may share a CharIdx.
func (t *TextAnnotations) AddInlineLayer(anns []InlineAnnotation) *TextAnnotations {
	sorted := append([]InlineAnnotation(nil), anns...)
	stableSortInline(sorted)
	t.inlineLayers = append(t.inlineLayers, inlineLayer{anns: sorted})
	t.generation++
	return t
}

// AddOverlayLayer registers a new overlay layer, sorted by CharIdx. Later
// calls take precedence over earlier ones at the same CharIdx.
func (t *TextAnnotations) AddOverlayLayer(anns []Overlay) *TextAnnotations {
	sorted := append([]Overlay(nil), anns...)
	stableSortOverlay(sorted)
	t.overlayLayers = append(t.overlayLayers, overlayLayer{anns: sorted})
	t.generation++
	return t
}

// AddLineAnnotation registers a stateful line annotation.
func (t *TextAnnotations) AddLineAnnotation(a LineAnnotation) *TextAnnotations {
	t.lineAnns = append(t.lineAnns, a)
	t.generation++
	return t
}

func stableSortInline(a []InlineAnnotation) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j].CharIdx < a[j-1].CharIdx; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

func stableSortOverlay(a []Overlay) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j].CharIdx < a[j-1].CharIdx; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
