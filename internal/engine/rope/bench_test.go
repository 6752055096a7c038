package rope

import (
	"strings"
	"testing"
)

func benchRope(lines int) Rope {
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		sb.WriteString("the quick brown 狐 jumps over the lazy 犬 #")
		sb.WriteByte(byte('0' + i%10))
		sb.WriteByte('\n')
	}
	return FromString(sb.String())
}

func BenchmarkCharToByte(b *testing.B) {
	r := benchRope(2000)
	total := r.LenChars()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.CharToByte(CharOffset(i) % total)
	}
}

func BenchmarkByteToChar(b *testing.B) {
	r := benchRope(2000)
	// Probe line starts so every offset is a rune boundary.
	lines := r.LineCount()
	starts := make([]ByteOffset, lines)
	for i := uint32(0); i < lines; i++ {
		starts[i] = r.LineStartOffset(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.ByteToChar(starts[i%len(starts)])
	}
}

func BenchmarkInsertCharsMiddle(b *testing.B) {
	r := benchRope(2000)
	mid := r.LenChars() / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.InsertChars(mid, "x")
	}
}

func BenchmarkDeleteCharsMiddle(b *testing.B) {
	r := benchRope(2000)
	mid := r.LenChars() / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.DeleteChars(mid, mid+10)
	}
}

func BenchmarkSliceChars(b *testing.B) {
	r := benchRope(2000)
	total := r.LenChars()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := CharOffset(i*37) % (total - 100)
		_ = r.SliceChars(start, start+80)
	}
}

func BenchmarkLineToChar(b *testing.B) {
	r := benchRope(2000)
	lines := r.LineCount()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.LineToChar(uint32(i) % lines)
	}
}

func BenchmarkCursorSeekChar(b *testing.B) {
	r := benchRope(2000)
	total := r.LenChars()
	c := NewCursor(r)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SeekChar(CharOffset(i*97) % total)
	}
}

func BenchmarkGraphemeScan(b *testing.B) {
	r := benchRope(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := GraphemesAt(r, 0)
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	}
}

func BenchmarkBuilderBuild(b *testing.B) {
	line := "the quick brown 狐 jumps over the lazy 犬\n"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder := NewBuilder()
		for j := 0; j < 500; j++ {
			builder.WriteString(line)
		}
		_ = builder.Build()
	}
}
