package rope

import (
	"testing"
	"unicode/utf8"
)

// The fuzz targets check the rope against the obvious []rune reference
// model: every edit sequence must leave the rope's char-indexed view
// identical to the same edits applied to a rune slice.

func FuzzInsertDeleteMatchesRuneModel(f *testing.F) {
	f.Add("hello\nworld", uint16(3), "héllo", uint16(2), uint16(6))
	f.Add("", uint16(0), "世界", uint16(0), uint16(1))
	f.Add("aaaa\nbbbb\ncccc", uint16(9), "\n", uint16(0), uint16(14))

	f.Fuzz(func(t *testing.T, base string, insAt uint16, ins string, delFrom, delTo uint16) {
		if !utf8.ValidString(base) || !utf8.ValidString(ins) {
			t.Skip()
		}
		if len(base) > 1<<14 || len(ins) > 1<<10 {
			t.Skip()
		}

		model := []rune(base)
		r := FromString(base)

		// Insert, clamping the same way InsertChars clamps.
		at := CharOffset(insAt)
		if at > CharOffset(len(model)) {
			at = CharOffset(len(model))
		}
		model = append(model[:at:at], append([]rune(ins), model[at:]...)...)
		r = r.InsertChars(CharOffset(insAt), ins)

		if got, want := r.LenChars(), CharOffset(len(model)); got != want {
			t.Fatalf("LenChars after insert = %d, want %d", got, want)
		}
		if r.String() != string(model) {
			t.Fatalf("text after insert diverged")
		}

		// Delete an ordered, clamped range.
		from, to := CharOffset(delFrom), CharOffset(delTo)
		if from > to {
			from, to = to, from
		}
		if from > CharOffset(len(model)) {
			from = CharOffset(len(model))
		}
		if to > CharOffset(len(model)) {
			to = CharOffset(len(model))
		}
		model = append(model[:from:from], model[to:]...)
		r = r.DeleteChars(from, to)

		if r.String() != string(model) {
			t.Fatalf("text after delete diverged")
		}
		if got, want := r.LenChars(), CharOffset(len(model)); got != want {
			t.Fatalf("LenChars after delete = %d, want %d", got, want)
		}
	})
}

func FuzzCharByteRoundTrip(f *testing.F) {
	f.Add("plain ascii text", uint16(5))
	f.Add("mixé 世界 𝄞 text\nwith\nlines", uint16(11))

	f.Fuzz(func(t *testing.T, text string, probe uint16) {
		if !utf8.ValidString(text) || len(text) > 1<<14 {
			t.Skip()
		}

		r := FromString(text)
		runes := []rune(text)

		if r.LenChars() != CharOffset(len(runes)) {
			t.Fatalf("LenChars = %d, want %d", r.LenChars(), len(runes))
		}

		at := CharOffset(probe) % (CharOffset(len(runes)) + 1)
		b := r.CharToByte(at)
		if want := ByteOffset(len(string(runes[:at]))); b != want {
			t.Fatalf("CharToByte(%d) = %d, want %d", at, b, want)
		}
		if back := r.ByteToChar(b); back != at {
			t.Fatalf("round trip at %d came back %d", at, back)
		}

		if at < CharOffset(len(runes)) {
			ru, ok := r.CharAt(at)
			if !ok || ru != runes[at] {
				t.Fatalf("CharAt(%d) = %q, %v, want %q", at, ru, ok, runes[at])
			}
		}
	})
}

func FuzzSliceCharsMatchesRuneModel(f *testing.F) {
	f.Add("line one\nliné two\nline three", uint16(4), uint16(17))
	f.Add("短い", uint16(0), uint16(2))

	f.Fuzz(func(t *testing.T, text string, a, b uint16) {
		if !utf8.ValidString(text) || len(text) > 1<<14 {
			t.Skip()
		}

		r := FromString(text)
		runes := []rune(text)

		from, to := CharOffset(a), CharOffset(b)
		if from > to {
			from, to = to, from
		}
		if from > CharOffset(len(runes)) {
			from = CharOffset(len(runes))
		}
		if to > CharOffset(len(runes)) {
			to = CharOffset(len(runes))
		}

		if got, want := r.SliceChars(from, to), string(runes[from:to]); got != want {
			t.Fatalf("SliceChars(%d, %d) = %q, want %q", from, to, got, want)
		}
	})
}

func FuzzLineStartsArePhantomConsistent(f *testing.F) {
	f.Add("a\nb\nc")
	f.Add("no newline at all")
	f.Add("trailing\n")

	f.Fuzz(func(t *testing.T, text string) {
		if !utf8.ValidString(text) || len(text) > 1<<14 {
			t.Skip()
		}

		r := FromString(text)

		newlines := uint32(0)
		for _, ru := range text {
			if ru == '\n' {
				newlines++
			}
		}
		if got := r.LineCount(); got != newlines+1 {
			t.Fatalf("LineCount = %d, want %d", got, newlines+1)
		}

		// Each line start is either 0 or one past a newline, and starts are
		// strictly increasing.
		var prev CharOffset
		for line := uint32(0); line < r.LineCount(); line++ {
			start := r.LineToChar(line)
			if line == 0 {
				if start != 0 {
					t.Fatalf("line 0 starts at %d", start)
				}
				continue
			}
			if start <= prev {
				t.Fatalf("line %d start %d not after previous %d", line, start, prev)
			}
			if ru, ok := r.CharAt(start - 1); !ok || ru != '\n' {
				t.Fatalf("char before line %d start is %q, want newline", line, ru)
			}
			prev = start
		}
	})
}
