package editing

import (
	"fmt"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
)

// ErrPairNotFound is returned when fewer than n enclosing pairs exist
// around a cursor.
var ErrPairNotFound = fmt.Errorf("surround: pair not found")

// ErrCursorOverlap is returned when two cursors in the same selection
// resolve to overlapping surround ranges.
var ErrCursorOverlap = fmt.Errorf("surround: cursor ranges overlap")

// CursorOnAmbiguousPairError is returned when a same-character delimiter
// (e.g. a quote) sits exactly under the cursor and it is not clear whether
// it opens or closes the enclosing pair.
type CursorOnAmbiguousPairError struct {
	Char rune
	Pos  int
}

func (e *CursorOnAmbiguousPairError) Error() string {
	return fmt.Sprintf("surround: cursor on ambiguous pair %q at %d", e.Char, e.Pos)
}

// bracketPairs are the bracket-style (distinct open/close) delimiters
// recognized when no explicit pair is supplied.
var bracketPairs = []Pair{
	{Open: "(", Close: ")"},
	{Open: "{", Close: "}"},
	{Open: "[", Close: "]"},
	{Open: "<", Close: ">"},
}

func openForClose(ch rune) (rune, bool) {
	for _, p := range bracketPairs {
		if r := []rune(p.Close); len(r) == 1 && r[0] == ch {
			return []rune(p.Open)[0], true
		}
	}
	return 0, false
}

func closeForOpen(ch rune) (rune, bool) {
	for _, p := range bracketPairs {
		if r := []rune(p.Open); len(r) == 1 && r[0] == ch {
			return []rune(p.Close)[0], true
		}
	}
	return 0, false
}

func isOpenBracket(ch rune) bool {
	_, ok := closeForOpen(ch)
	return ok
}

func isCloseBracket(ch rune) bool {
	_, ok := openForClose(ch)
	return ok
}

// PairPos is a pair of char offsets: the open delimiter's position and the
// close delimiter's position.
type PairPos struct {
	Open  int
	Close int
}

// FindNthOpenPair scans backward from pos (exclusive) for the nth
// enclosing occurrence of openCh/closeCh, treating nested closeCh/openCh
// pairs as a stack. n is 1-based: n=1 finds the innermost enclosing pair.
func FindNthOpenPair(doc rope.Rope, pos int, openCh, closeCh rune, n int) (int, error) {
	depth := n
	i := pos - 1
	for i >= 0 {
		ch, ok := doc.CharAt(rope.CharOffset(i))
		if !ok {
			break
		}
		switch {
		case ch == closeCh && !(openCh == closeCh):
			depth++
		case ch == openCh:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
		i--
	}
	return 0, ErrPairNotFound
}

// FindNthClosePair scans forward from pos (inclusive) for the nth enclosing
// occurrence of closeCh/openCh, treating nested openCh/closeCh as a stack.
func FindNthClosePair(doc rope.Rope, pos int, openCh, closeCh rune, n int) (int, error) {
	depth := n
	i := pos
	lenChars := int(doc.LenChars())
	for i < lenChars {
		ch, ok := doc.CharAt(rope.CharOffset(i))
		if !ok {
			break
		}
		switch {
		case ch == openCh && !(openCh == closeCh):
			depth++
		case ch == closeCh:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
		i++
	}
	return 0, ErrPairNotFound
}

// findNthPairsPosSame finds the nth enclosing (open, close) pair around pos
// for a same-character delimiter (e.g. quotes): it counts ch occurrences
// before and after pos, and returns a CursorOnAmbiguousPairError if pos
// itself sits on a ch (it is not clear which side it belongs to).
func findNthPairsPosSame(doc rope.Rope, pos int, ch rune, n int) (PairPos, error) {
	curChar, hasCur := doc.CharAt(rope.CharOffset(pos))
	if hasCur && curChar == ch {
		return PairPos{}, &CursorOnAmbiguousPairError{Char: ch, Pos: pos}
	}

	open, err := findNthOccurrenceBackward(doc, pos, ch, n)
	if err != nil {
		return PairPos{}, err
	}
	closePos, err := findNthOccurrenceForward(doc, pos, ch, n)
	if err != nil {
		return PairPos{}, err
	}
	return PairPos{Open: open, Close: closePos}, nil
}

func findNthOccurrenceBackward(doc rope.Rope, pos int, ch rune, n int) (int, error) {
	count := 0
	for i := pos - 1; i >= 0; i-- {
		c, ok := doc.CharAt(rope.CharOffset(i))
		if !ok {
			break
		}
		if c == ch {
			count++
			if count == n {
				return i, nil
			}
		}
	}
	return 0, ErrPairNotFound
}

func findNthOccurrenceForward(doc rope.Rope, pos int, ch rune, n int) (int, error) {
	count := 0
	lenChars := int(doc.LenChars())
	for i := pos; i < lenChars; i++ {
		c, ok := doc.CharAt(rope.CharOffset(i))
		if !ok {
			break
		}
		if c == ch {
			count++
			if count == n {
				return i, nil
			}
		}
	}
	return 0, ErrPairNotFound
}

// FindNthPairsPos finds the nth enclosing delimiter pair around pos. If the
// char at pos is itself an open or close bracket, that occurrence is used
// directly for n=1 (and as the starting point for n>1); otherwise open and
// close are searched for independently as for a same-character pair.
func FindNthPairsPos(doc rope.Rope, pos int, open, closeCh rune, n int) (PairPos, error) {
	if open == closeCh {
		return findNthPairsPosSame(doc, pos, open, n)
	}

	if ch, ok := doc.CharAt(rope.CharOffset(pos)); ok {
		if ch == open && n == 1 {
			closePos, err := FindNthClosePair(doc, pos+1, open, closeCh, 1)
			if err != nil {
				return PairPos{}, err
			}
			return PairPos{Open: pos, Close: closePos}, nil
		}
		if ch == closeCh && n == 1 {
			openPos, err := FindNthOpenPair(doc, pos, open, closeCh, 1)
			if err != nil {
				return PairPos{}, err
			}
			return PairPos{Open: openPos, Close: pos}, nil
		}
	}

	openPos, err := FindNthOpenPair(doc, pos, open, closeCh, n)
	if err != nil {
		return PairPos{}, err
	}
	closePos, err := FindNthClosePair(doc, pos, open, closeCh, n)
	if err != nil {
		return PairPos{}, err
	}
	return PairPos{Open: openPos, Close: closePos}, nil
}

// FindNthClosestPairsPos is the plaintext entry point. When the char at pos
// is a bracket it dispatches to FindNthPairsPos for that bracket; otherwise
// it tries each bracket kind in bracketPairs order, then the quotes ", '
// and ` in that order, and returns the first kind that yields a pair (not
// necessarily the nearest one). There is no syntax-tree-aware variant in this
// module; every call uses the plain bracket/quote scan.
func FindNthClosestPairsPos(doc rope.Rope, pos int, n int) (PairPos, error) {
	if ch, ok := doc.CharAt(rope.CharOffset(pos)); ok {
		if isOpenBracket(ch) {
			closeCh, _ := closeForOpen(ch)
			return FindNthPairsPos(doc, pos, ch, closeCh, n)
		}
		if isCloseBracket(ch) {
			openCh, _ := openForClose(ch)
			return FindNthPairsPos(doc, pos, openCh, ch, n)
		}
	}

	for _, p := range bracketPairs {
		openCh, closeCh := []rune(p.Open)[0], []rune(p.Close)[0]
		if pp, err := FindNthPairsPos(doc, pos, openCh, closeCh, n); err == nil {
			return pp, nil
		}
	}

	for _, q := range []rune{'"', '\'', '`'} {
		if pp, err := findNthPairsPosSame(doc, pos, q, n); err == nil {
			return pp, nil
		}
	}

	return PairPos{}, ErrPairNotFound
}

// GetSurroundPos resolves the nth enclosing pair for every range in sel,
// returning one selection.Range per cursor covering [open, close]
// inclusive, sorted by position. It returns ErrCursorOverlap if two
// cursors resolve to overlapping ranges.
func GetSurroundPos(doc rope.Rope, sel *selection.Selection, n int) ([]selection.Range, error) {
	ranges := sel.RangesSortedByPosition()
	out := make([]selection.Range, 0, len(ranges))
	seen := make([]selection.Range, 0, len(ranges))

	for _, r := range ranges {
		pp, err := FindNthClosestPairsPos(doc, r.Cursor(doc), n)
		if err != nil {
			return nil, err
		}
		res := selection.NewRange(pp.Open, pp.Close+1)
		for _, s := range seen {
			if res.Overlaps(s) {
				return nil, ErrCursorOverlap
			}
		}
		seen = append(seen, res)
		out = append(out, res)
	}
	return out, nil
}
