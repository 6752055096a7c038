package editing

import (
	"unicode"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
)

// Pair is a single (open, close) delimiter, e.g. {"(", ")"} or the
// multi-char {"\"\"\"", "\"\"\""} for Python triple-quotes.
type Pair struct {
	Open  string
	Close string
}

// Same reports whether open and close are identical (e.g. quote pairs).
func (p Pair) Same() bool { return p.Open == p.Close }

func (p Pair) openRunes() []rune  { return []rune(p.Open) }
func (p Pair) closeRunes() []rune { return []rune(p.Close) }

// OpenLen returns the number of runes in Open.
func (p Pair) OpenLen() int { return len(p.openRunes()) }

// CloseLen returns the number of runes in Close.
func (p Pair) CloseLen() int { return len(p.closeRunes()) }

// OpenLastChar returns the final rune of Open, or (0, false) if Open is empty.
func (p Pair) OpenLastChar() (rune, bool) {
	rs := p.openRunes()
	if len(rs) == 0 {
		return 0, false
	}
	return rs[len(rs)-1], true
}

// CloseFirstChar returns the first rune of Close, or (0, false) if Close is
// empty.
func (p Pair) CloseFirstChar() (rune, bool) {
	rs := p.closeRunes()
	if len(rs) == 0 {
		return 0, false
	}
	return rs[0], true
}

func nextIsNotAlpha(doc rope.Rope, r selection.Range) bool {
	cursor := r.Cursor(doc)
	ch, ok := doc.CharAt(rope.CharOffset(cursor))
	if !ok {
		return true
	}
	return !unicode.IsLetter(ch) && !unicode.IsDigit(ch)
}

func prevIsNotAlpha(doc rope.Rope, r selection.Range) bool {
	cursor := r.Cursor(doc)
	if cursor == 0 {
		return true
	}
	ch, ok := doc.CharAt(rope.CharOffset(cursor - 1))
	if !ok {
		return true
	}
	return !unicode.IsLetter(ch) && !unicode.IsDigit(ch)
}

// ShouldClose reports whether p should be auto-closed for an insertion at
// r: the character after the cursor must not be alphanumeric, and for
// same-character pairs the character before it must not be alphanumeric
// either (so `don't` typing `'` does not pair).
func (p Pair) ShouldClose(doc rope.Rope, r selection.Range) bool {
	if !nextIsNotAlpha(doc, r) {
		return false
	}
	if p.Same() {
		return prevIsNotAlpha(doc, r)
	}
	return true
}

// DefaultPairs mirrors common editor bracket/quote pairing.
var DefaultPairs = []Pair{
	{Open: "(", Close: ")"},
	{Open: "{", Close: "}"},
	{Open: "[", Close: "]"},
	{Open: "'", Close: "'"},
	{Open: "\"", Close: "\""},
	{Open: "`", Close: "`"},
}

// AutoPairs is an ordered set of Pairs; order only matters as a tie-break
// (longest-match always wins regardless of position).
type AutoPairs struct {
	pairs []Pair
}

// NewAutoPairs builds an AutoPairs set from pairs.
func NewAutoPairs(pairs []Pair) AutoPairs {
	return AutoPairs{pairs: append([]Pair(nil), pairs...)}
}

// NewDefaultAutoPairs returns an AutoPairs set loaded with DefaultPairs.
func NewDefaultAutoPairs() AutoPairs {
	return NewAutoPairs(DefaultPairs)
}

// Pairs returns the configured pairs.
func (a AutoPairs) Pairs() []Pair { return a.pairs }

// MatchesChar reports whether ch is the closing char of some pair's Open or
// the opening char of some pair's Close.
func (a AutoPairs) MatchesChar(ch rune) bool {
	for _, p := range a.pairs {
		if last, ok := p.OpenLastChar(); ok && last == ch {
			return true
		}
		if first, ok := p.CloseFirstChar(); ok && first == ch {
			return true
		}
	}
	return false
}

// Hook computes the transaction produced by typing ch with pairs active, or
// nil if ch does not participate in any configured pair (the caller should
// fall back to a plain single-character insertion in that case).
func Hook(doc rope.Rope, sel *selection.Selection, ch rune, pairs AutoPairs) *transaction.Transaction {
	if !pairs.MatchesChar(ch) {
		return nil
	}
	return buildPairTransaction(doc, sel, func(r selection.Range) changeOutcome {
		return changeForRange(doc, r, ch, pairs)
	})
}

// DeleteHook computes the transaction produced by a backspace when every
// cursor sits directly between a matching open/close pair with nothing in
// between, deleting both sides at once. It returns nil if any cursor is
// non-empty or is not between such a pair.
func DeleteHook(doc rope.Rope, sel *selection.Selection, pairs AutoPairs) *transaction.Transaction {
	var deletions [][2]int
	for _, r := range sel.Ranges() {
		if !r.IsEmpty() {
			return nil
		}
		from, to, ok := deletePairRange(doc, r.Cursor(doc), pairs)
		if !ok {
			return nil
		}
		deletions = append(deletions, [2]int{from, to})
	}
	if len(deletions) == 0 {
		return nil
	}

	b := transaction.NewBuilder(int(doc.LenChars()))
	prev := 0
	sortDeletions(deletions)
	for _, d := range deletions {
		b.Retain(d[0] - prev)
		b.Delete(d[1] - d[0])
		prev = d[1]
	}
	tx := transaction.New(b.Build())
	newSel := sel.Map(tx.Changes())
	return tx.WithSelection(newSel)
}

func sortDeletions(d [][2]int) {
	for i := 1; i < len(d); i++ {
		j := i
		for j > 0 && d[j][0] < d[j-1][0] {
			d[j], d[j-1] = d[j-1], d[j]
			j--
		}
	}
}

// changeOutcome describes the effect of handling one range's insertion.
type changeOutcome struct {
	from, to   int    // char span replaced at cursor (from==to for pure insert/skip)
	insertText string // "" for a pure skip
	insertedLen int   // rune count of insertText
	selLen      int    // 0 = collapse to point (skip); >=1 = chars typed this op
	advance     int    // grapheme count to skip over (skip-close only)
}

func changeForRange(doc rope.Rope, r selection.Range, ch rune, pairs AutoPairs) changeOutcome {
	cursor := r.Cursor(doc)

	if p, ok := matchClosePair(doc, cursor, ch, pairs); ok {
		return changeOutcome{from: cursor, to: cursor, advance: p.CloseLen()}
	}

	if p, ok := matchOpenPair(doc, cursor, ch, pairs); ok {
		selLen := 1
		if p.ShouldClose(doc, r) {
			selLen = 2
		}
		text := string(ch)
		if selLen == 2 {
			text += p.Close
		}
		return changeOutcome{from: cursor, to: cursor, insertText: text, insertedLen: len([]rune(text)), selLen: selLen}
	}

	return changeOutcome{from: cursor, to: cursor, insertText: string(ch), insertedLen: 1, selLen: 1}
}

func matchOpenPair(doc rope.Rope, cursor int, ch rune, pairs AutoPairs) (Pair, bool) {
	var best Pair
	found := false
	for _, p := range pairs.pairs {
		last, ok := p.OpenLastChar()
		if !ok || last != ch {
			continue
		}
		if !matchesOpenPrefix(doc, cursor, p) {
			continue
		}
		if !found || p.OpenLen() > best.OpenLen() {
			best, found = p, true
		}
	}
	return best, found
}

func matchClosePair(doc rope.Rope, cursor int, ch rune, pairs AutoPairs) (Pair, bool) {
	var best Pair
	found := false
	for _, p := range pairs.pairs {
		first, ok := p.CloseFirstChar()
		if !ok || first != ch {
			continue
		}
		if !matchesCloseAt(doc, cursor, p) {
			continue
		}
		if !found || p.CloseLen() > best.CloseLen() {
			best, found = p, true
		}
	}
	return best, found
}

func matchesOpenPrefix(doc rope.Rope, cursor int, p Pair) bool {
	openLen := p.OpenLen()
	if openLen <= 1 {
		return true
	}
	prefixLen := openLen - 1
	start := cursor - prefixLen
	if start < 0 {
		return false
	}
	return matchesChars(doc, start, p.openRunes()[:prefixLen])
}

func matchesCloseAt(doc rope.Rope, cursor int, p Pair) bool {
	closeLen := p.CloseLen()
	if closeLen == 0 {
		return false
	}
	if cursor+closeLen > int(doc.LenChars()) {
		return false
	}
	return matchesChars(doc, cursor, p.closeRunes())
}

func matchesChars(doc rope.Rope, start int, expected []rune) bool {
	for i, want := range expected {
		got, ok := doc.CharAt(rope.CharOffset(start + i))
		if !ok || got != want {
			return false
		}
	}
	return true
}

// deletePairRange finds the widest matching open/close pair straddling
// cursor with nothing between, preferring the pair with the greatest total
// delimiter length.
func deletePairRange(doc rope.Rope, cursor int, pairs AutoPairs) (from, to int, ok bool) {
	bestLen := -1
	for _, p := range pairs.pairs {
		openLen, closeLen := p.OpenLen(), p.CloseLen()
		if openLen == 0 || closeLen == 0 {
			continue
		}
		if cursor < openLen {
			continue
		}
		f := cursor - openLen
		t := cursor + closeLen
		if t > int(doc.LenChars()) {
			continue
		}
		if matchesChars(doc, f, p.openRunes()) && matchesChars(doc, cursor, p.closeRunes()) {
			total := openLen + closeLen
			if total > bestLen {
				bestLen, from, to, ok = total, f, t, true
			}
		}
	}
	return from, to, ok
}

// advanceGraphemes moves pos forward by count grapheme boundaries.
func advanceGraphemes(doc rope.Rope, pos int, count int) int {
	for i := 0; i < count; i++ {
		pos = selection.NextGraphemeBoundary(doc, pos)
	}
	return pos
}

// nextRange computes the resulting range for one cursor after an
// auto-pair-aware insertion, mirroring the original's grapheme-careful
// anchor/head bookkeeping so CRLF and other multi-char graphemes don't
// split the cursor across a line terminator.
func nextRange(doc rope.Rope, start selection.Range, offset, selLen, advance int) selection.Range {
	docLen := int(doc.LenChars())

	if start.Head == docLen && start.Anchor == docLen {
		return selection.NewRange(start.Anchor+offset+1, start.Head+offset+1)
	}

	singleGrapheme := isSingleGrapheme(doc, start)

	if selLen == 0 {
		end := advanceGraphemes(doc, start.Head, advance) + offset
		return selection.NewRange(end, end)
	}

	if selLen == 1 {
		if start.Len() == 0 {
			end := start.Head + offset + 1
			return selection.NewRange(end, end)
		}
		endAnchor := start.Anchor + offset
		if singleGrapheme || start.Direction() == selection.DirBackward {
			endAnchor = start.Anchor + offset + 1
		}
		return selection.NewRange(endAnchor, start.Head+offset+1)
	}

	var endHead int
	if start.Head == 0 || start.Direction() == selection.DirBackward {
		endHead = start.Head + offset + 1
	} else {
		prevBound := selection.PrevGraphemeBoundary(doc, start.Head)
		endHead = prevBound + offset + selLen
	}

	var endAnchor int
	switch {
	case start.Len() == 0:
		endAnchor = endHead
	case start.Len() == 1 && start.Direction() == selection.DirForward:
		endAnchor = endHead - 1
	case start.Len() == 1 && start.Direction() == selection.DirBackward:
		endAnchor = endHead + 1
	case start.Direction() == selection.DirForward:
		if singleGrapheme {
			endAnchor = selection.PrevGraphemeBoundary(doc, start.Head) + 1
		} else {
			endAnchor = start.Anchor + offset
		}
	default: // multi-char, backward
		if singleGrapheme {
			endAnchor = selection.PrevGraphemeBoundary(doc, start.Anchor) + selLen + offset
		} else {
			endAnchor = start.Anchor + offset + selLen
		}
	}

	return selection.NewRange(endAnchor, endHead)
}

func isSingleGrapheme(doc rope.Rope, r selection.Range) bool {
	if r.IsEmpty() {
		return false
	}
	return selection.NextGraphemeBoundary(doc, r.From()) >= r.To()
}

func buildPairTransaction(doc rope.Rope, sel *selection.Selection, makeChange func(selection.Range) changeOutcome) *transaction.Transaction {
	ranges := sel.RangesSortedByPosition()

	b := transaction.NewBuilder(int(doc.LenChars()))
	prev := 0
	offset := 0
	endRanges := make([]selection.Range, 0, len(ranges))

	for _, r := range ranges {
		outcome := makeChange(r)
		next := nextRange(doc, r, offset, outcome.selLen, outcome.advance)
		endRanges = append(endRanges, next)

		pos := outcome.from
		b.Retain(pos - prev)
		if outcome.insertText != "" {
			b.Insert(outcome.insertText)
			prev = pos
		} else if outcome.to > outcome.from {
			b.Delete(outcome.to - outcome.from)
			prev = outcome.to
		} else {
			prev = pos
		}
		offset += outcome.insertedLen
	}

	tx := transaction.New(b.Build())

	primary := sel.PrimaryIndex()
	if primary >= len(endRanges) {
		primary = 0
	}
	newSel, err := selection.New(endRanges, primary)
	if err != nil {
		newSel, _ = selection.New(endRanges, 0)
	}
	return tx.WithSelection(newSel)
}
