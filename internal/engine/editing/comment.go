package editing

import (
	"strings"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
)

// DefaultCommentToken is the line-comment token used when none is supplied.
const DefaultCommentToken = "#"

// BlockCommentToken is a (start, end) pair of delimiters for block comments,
// e.g. {"/*", "*/"}.
type BlockCommentToken struct {
	Start string
	End   string
}

// DefaultBlockCommentToken is the block-comment token used when none is
// configured for the current language.
func DefaultBlockCommentToken() BlockCommentToken {
	return BlockCommentToken{Start: "/*", End: "*/"}
}

// GetCommentToken returns the longest of tokens that prefixes line's first
// non-whitespace content, or ("", false) if none match (including the case
// where the line is blank).
func GetCommentToken(text rope.Rope, tokens []string, line uint32) (string, bool) {
	start, ok := firstNonWhitespaceCol(text, line)
	if !ok {
		return "", false
	}
	restStr := string(lineRunes(text, line)[start:])

	best := ""
	for _, tok := range tokens {
		if strings.HasPrefix(restStr, tok) && len(tok) > len(best) {
			best = tok
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// lineRunes returns the full content of line, including its terminator (if
// any), as runes.
func lineRunes(text rope.Rope, line uint32) []rune {
	start := text.LineToChar(line)
	end := text.LineToChar(line + 1)
	if end <= start {
		end = text.LenChars()
	}
	return []rune(text.SliceChars(start, end))
}

// firstNonWhitespaceCol returns the column, within line, of the first
// non-blank character (treating the line terminator as blank). ok is false
// for an entirely blank line.
func firstNonWhitespaceCol(text rope.Rope, line uint32) (int, bool) {
	runes := lineRunes(text, line)
	for i, r := range runes {
		if !isLineWhitespace(r) {
			return i, true
		}
	}
	return 0, false
}

func isLineWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// findLineComment inspects lines and reports:
//   - commented: whether every non-blank line already starts with token
//   - toChange: the subset of lines to edit (blank lines skipped)
//   - col: the column of the existing (or to-be-inserted) token
//   - margin: 1 if a space should separate the token from the code, 0 if an
//     existing token in the selection has no trailing space
func findLineComment(token string, text rope.Rope, lines []uint32) (commented bool, toChange []uint32, col int, margin int) {
	commented = true
	sawNonBlank := false
	col = -1
	margin = 1
	tokenLen := len([]rune(token))

	for _, line := range lines {
		pos, ok := firstNonWhitespaceCol(text, line)
		if !ok {
			continue
		}
		sawNonBlank = true
		if col == -1 || pos < col {
			col = pos
		}

		runes := lineRunes(text, line)
		rest := string(runes[pos:])
		hasToken := strings.HasPrefix(rest, token)
		if !hasToken {
			commented = false
		} else {
			afterIdx := pos + tokenLen
			if afterIdx >= len(runes) || runes[afterIdx] != ' ' {
				margin = 0
			}
		}
		toChange = append(toChange, line)
	}

	if !sawNonBlank {
		commented = false
		col = 0
		margin = 1
	}
	return commented, toChange, col, margin
}

// ToggleLineComments computes the transaction that toggles token as a line
// comment over every line spanned by selection's ranges. If commented, the
// token (plus a following space, when present) is removed from each line;
// otherwise it is inserted at the minimum indentation column shared by the
// selected lines.
func ToggleLineComments(doc rope.Rope, sel *selection.Selection, token string) *transaction.Transaction {
	if token == "" {
		token = DefaultCommentToken
	}

	var lines []uint32
	minNextLine := uint32(0)
	for _, r := range sel.RangesSortedByPosition() {
		start, end := r.LineRange(doc)
		if start < minNextLine {
			start = minNextLine
		}
		lastLine := doc.LineCount() - 1
		if start > lastLine {
			start = lastLine
		}
		endExclusive := end + 1
		if endExclusive > doc.LineCount() {
			endExclusive = doc.LineCount()
		}
		for l := start; l < endExclusive; l++ {
			lines = append(lines, l)
		}
		minNextLine = endExclusive
	}

	commented, toChange, col, margin := findLineComment(token, doc, lines)

	comment := token
	if margin != 0 {
		comment = token + " "
	}
	tokenLen := len([]rune(token))

	b := transaction.NewBuilder(int(doc.LenChars()))
	prev := 0
	for _, line := range toChange {
		pos := int(doc.LineToChar(line)) + col
		if commented {
			b.Retain(pos - prev)
			b.Delete(tokenLen + margin)
			prev = pos + tokenLen + margin
		} else {
			b.Retain(pos - prev)
			b.Insert(comment)
			prev = pos
		}
	}
	return transaction.New(b.Build())
}

// CommentChange classifies a single range in a block-comment toggle.
type CommentChange struct {
	Range       selection.Range
	StartPos    int // char offset, relative to range.From(), of first non-ws char
	EndPos      int // char offset, relative to range.From(), of last non-ws char
	StartMargin bool
	EndMargin   bool
	StartToken  string
	EndToken    string
	Commented   bool // true = Commented variant, false = Uncommented
	Whitespace  bool // true = range is entirely whitespace; ignore other fields
}

// FindBlockComments inspects selection's ranges against tokens (tried
// longest-start-first) and reports whether the whole selection should be
// considered already block-commented, plus a per-range CommentChange.
func FindBlockComments(tokens []BlockCommentToken, doc rope.Rope, sel *selection.Selection) (commented bool, changes []CommentChange) {
	if len(tokens) == 0 {
		tokens = []BlockCommentToken{DefaultBlockCommentToken()}
	}
	prepared := append([]BlockCommentToken(nil), tokens...)
	sortBlockTokens(prepared)

	commented = true
	onlyWhitespace := true
	def := prepared[0]

	for _, r := range sel.RangesSortedByPosition() {
		runes := []rune(doc.SliceChars(rope.CharOffset(r.From()), rope.CharOffset(r.To())))
		startPos, sok := firstNonWhitespaceRune(runes)
		endPos, eok := lastNonWhitespaceRune(runes)
		if !sok || !eok {
			changes = append(changes, CommentChange{Range: r, Whitespace: true})
			continue
		}

		lineCommented := false
		var startToken, endToken string
		var startMargin, endMargin bool
		for _, tok := range prepared {
			startLen := len([]rune(tok.Start))
			endLen := len([]rune(tok.End))
			n := (endPos + 1) - startPos
			if n < startLen+endLen {
				continue
			}
			afterStart := startPos + startLen
			beforeEnd := endPos - endLen
			if beforeEnd < 0 {
				beforeEnd = 0
			}
			startFrag := string(runes[startPos:afterStart])
			endFrag := string(runes[beforeEnd+1 : endPos+1])
			if startFrag == tok.Start && endFrag == tok.End {
				startToken, endToken = tok.Start, tok.End
				lineCommented = true
				startMargin = afterStart < len(runes) && runes[afterStart] == ' '
				endMargin = afterStart != beforeEnd && beforeEnd >= 0 && beforeEnd < len(runes) && runes[beforeEnd] == ' '
				break
			}
		}

		if !lineCommented {
			changes = append(changes, CommentChange{
				Range:      r,
				StartPos:   startPos,
				EndPos:     endPos,
				StartToken: def.Start,
				EndToken:   def.End,
				Commented:  false,
			})
			commented = false
		} else {
			changes = append(changes, CommentChange{
				Range:       r,
				StartPos:    startPos,
				EndPos:      endPos,
				StartMargin: startMargin,
				EndMargin:   endMargin,
				StartToken:  startToken,
				EndToken:    endToken,
				Commented:   true,
			})
		}
		onlyWhitespace = false
	}

	if onlyWhitespace {
		commented = false
	}
	return commented, changes
}

func sortBlockTokens(tokens []BlockCommentToken) {
	// longest Start first, ties broken by longest End first.
	for i := 1; i < len(tokens); i++ {
		j := i
		for j > 0 && lessToken(tokens[j], tokens[j-1]) {
			tokens[j], tokens[j-1] = tokens[j-1], tokens[j]
			j--
		}
	}
}

func lessToken(a, b BlockCommentToken) bool {
	al, bl := len([]rune(a.Start)), len([]rune(b.Start))
	if al != bl {
		return al > bl
	}
	return len([]rune(a.End)) > len([]rune(b.End))
}

func firstNonWhitespaceRune(runes []rune) (int, bool) {
	for i, r := range runes {
		if !isLineWhitespace(r) {
			return i, true
		}
	}
	return 0, false
}

func lastNonWhitespaceRune(runes []rune) (int, bool) {
	for i := len(runes) - 1; i >= 0; i-- {
		if !isLineWhitespace(runes[i]) {
			return i, true
		}
	}
	return 0, false
}

// CreateBlockCommentTransaction builds the transaction (and, when
// commenting, the post-image selection covering the inserted tokens) for
// the CommentChanges FindBlockComments produced.
func CreateBlockCommentTransaction(doc rope.Rope, sel *selection.Selection, commented bool, changes []CommentChange) (*transaction.Transaction, []selection.Range) {
	type edit struct {
		from, to int
		insert   string // "" means delete-only
	}
	var edits []edit
	var ranges []selection.Range
	offs := 0

	for _, c := range changes {
		from := c.Range.From()
		if commented {
			if !c.Commented {
				ranges = append(ranges, selection.NewRange(c.Range.Anchor+offs, c.Range.Head+offs))
				continue
			}
			startLen := len([]rune(c.StartToken))
			endLen := len([]rune(c.EndToken))
			startMargin, endMargin := 0, 0
			if c.StartMargin {
				startMargin = 1
			}
			if c.EndMargin {
				endMargin = 1
			}
			edits = append(edits, edit{from: from + c.StartPos, to: from + c.StartPos + startLen + startMargin})
			edits = append(edits, edit{from: from + c.EndPos - endLen - endMargin + 1, to: from + c.EndPos + 1})
		} else {
			if c.Whitespace || c.Commented {
				ranges = append(ranges, selection.NewRange(c.Range.From()+offs, c.Range.To()+offs))
				continue
			}
			startLen := len([]rune(c.StartToken))
			endLen := len([]rune(c.EndToken))
			edits = append(edits, edit{from: from + c.StartPos, to: from + c.StartPos, insert: c.StartToken + " "})
			edits = append(edits, edit{from: from + c.EndPos + 1, to: from + c.EndPos + 1, insert: " " + c.EndToken})

			offset := startLen + endLen + 2
			dir := selection.DirForward
			if c.Range.Direction() == selection.DirBackward {
				dir = selection.DirBackward
			}
			r := selection.NewRange(from+offs, from+offs+c.EndPos+1+offset)
			if dir == selection.DirBackward {
				r = r.Flip()
			}
			ranges = append(ranges, r)
			offs += offset
		}
	}

	b := transaction.NewBuilder(int(doc.LenChars()))
	prev := 0
	for _, e := range edits {
		b.Retain(e.from - prev)
		if e.insert != "" {
			b.Insert(e.insert)
			prev = e.from
		} else {
			b.Delete(e.to - e.from)
			prev = e.to
		}
	}
	return transaction.New(b.Build()), ranges
}

// ToggleBlockComments toggles tokens as block comments over selection.
func ToggleBlockComments(doc rope.Rope, sel *selection.Selection, tokens []BlockCommentToken) *transaction.Transaction {
	commented, changes := FindBlockComments(tokens, doc, sel)
	tx, ranges := CreateBlockCommentTransaction(doc, sel, commented, changes)
	if !commented && len(ranges) > 0 {
		if newSel, err := selection.New(ranges, sel.PrimaryIndex()); err == nil {
			tx = tx.WithSelection(newSel)
		}
	}
	return tx
}

// SplitLinesOfSelection expands every range in sel into one range per line
// it spans, used to feed per-line editing commands.
func SplitLinesOfSelection(doc rope.Rope, sel *selection.Selection) *selection.Selection {
	var ranges []selection.Range
	for _, r := range sel.Ranges() {
		lineStart, lineEnd := r.LineRange(doc)
		pos := int(doc.LineToChar(lineStart))
		end := int(doc.LineToChar(lineEnd + 1))
		if end <= pos {
			end = int(doc.LenChars())
		}
		for pos < end {
			lineNum := doc.CharToLine(rope.CharOffset(pos))
			lineLen := int(doc.LineToChar(lineNum+1)) - pos
			if lineLen <= 0 {
				lineLen = int(doc.LenChars()) - pos
			}
			next := pos + lineLen
			if next > end {
				next = end
			}
			ranges = append(ranges, selection.NewRange(pos, next))
			pos = next
		}
	}
	if len(ranges) == 0 {
		return sel
	}
	if ns, err := selection.New(ranges, 0); err == nil {
		return ns
	}
	return sel
}
