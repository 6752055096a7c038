package editing

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
	"github.com/dshills/keystorm/internal/engine/selection"
)

func TestGetCommentTokenLongestMatch(t *testing.T) {
	r := rope.FromString("// hello\n")
	tok, ok := GetCommentToken(r, []string{"/", "//"}, 0)
	if !ok {
		t.Fatalf("expected a token match")
	}
	if tok != "//" {
		t.Fatalf("token = %q want %q (longest match)", tok, "//")
	}
}

func TestGetCommentTokenNoMatch(t *testing.T) {
	r := rope.FromString("hello\n")
	if _, ok := GetCommentToken(r, []string{"#"}, 0); ok {
		t.Fatalf("expected no match")
	}
}

// Toggling a line comment on an uncommented line inserts the token and
// a trailing space; toggling again removes both.
func TestToggleLineCommentsIsIdempotent(t *testing.T) {
	r := rope.FromString("hello\nworld\n")
	sel := selection.Single(selection.NewRange(0, 5))

	tx := ToggleLineComments(r, sel, DefaultCommentToken)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	after, err := tx.Apply(&r, sel)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "# hello\nworld\n"; got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}

	tx2 := ToggleLineComments(r, after, DefaultCommentToken)
	if tx2 == nil {
		t.Fatalf("expected a second transaction")
	}
	if _, err := tx2.Apply(&r, after); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "hello\nworld\n"; got != want {
		t.Fatalf("rope after uncomment = %q want %q", got, want)
	}
}

func TestToggleLineCommentsMultilineUsesSharedToken(t *testing.T) {
	r := rope.FromString("  a\n  b\n")
	sel := selection.Single(selection.NewRange(0, int(r.LenChars())))

	tx := ToggleLineComments(r, sel, DefaultCommentToken)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	if _, err := tx.Apply(&r, sel); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := "  # a\n  # b\n"
	if got := r.String(); got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}
}

// S2 analogue for block comments: wrap the whole buffer then unwrap it.
func TestToggleBlockCommentsRoundTrips(t *testing.T) {
	r := rope.FromString("1\n2\n3")
	sel := selection.Single(selection.NewRange(0, int(r.LenChars())))
	tokens := []BlockCommentToken{DefaultBlockCommentToken()}

	tx := ToggleBlockComments(r, sel, tokens)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	after, err := tx.Apply(&r, sel)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), "/* 1\n2\n3 */"; got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}

	tx2 := ToggleBlockComments(r, after, tokens)
	if tx2 == nil {
		t.Fatalf("expected a second transaction")
	}
	after2, err := tx2.Apply(&r, after)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	_ = after2
	if got, want := r.String(), "1\n2\n3"; got != want {
		t.Fatalf("rope after uncomment = %q want %q", got, want)
	}
}

func TestToggleBlockCommentsSpaceOnlyBody(t *testing.T) {
	r := rope.FromString("/* */")
	sel := selection.Single(selection.NewRange(0, int(r.LenChars())))
	tokens := []BlockCommentToken{DefaultBlockCommentToken()}

	tx := ToggleBlockComments(r, sel, tokens)
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	if _, err := tx.Apply(&r, sel); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := r.String(), ""; got != want {
		t.Fatalf("rope = %q want %q", got, want)
	}
}

func TestSplitLinesOfSelectionCoversEachLine(t *testing.T) {
	r := rope.FromString("aa\nbb\ncc")
	sel := selection.Single(selection.NewRange(0, int(r.LenChars())))

	split := SplitLinesOfSelection(r, sel)
	if got, want := len(split.Ranges()), 3; got != want {
		t.Fatalf("len(ranges) = %d want %d", got, want)
	}
}
