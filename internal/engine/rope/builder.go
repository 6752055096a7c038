package rope

import (
	"io"
	"strings"
)

// Builder assembles a rope incrementally. Writes accumulate into a small
// buffer that is cut into chunks as it fills, so building a large rope
// never re-chunks what is already placed.
type Builder struct {
	chunks []Chunk
	buffer strings.Builder
	total  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{chunks: make([]Chunk, 0, 64)}
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}
	b.total += len(s)
	b.buffer.WriteString(s)
	if b.buffer.Len() >= maxChunkBytes*2 {
		b.cut()
	}
}

// WriteRune appends a single rune.
func (b *Builder) WriteRune(r rune) (int, error) {
	n, err := b.buffer.WriteRune(r)
	b.total += n
	return n, err
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.total++
	return b.buffer.WriteByte(c)
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// ReadFrom implements io.ReaderFrom, streaming r into the builder.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// cut converts the pending buffer into placed chunks.
func (b *Builder) cut() {
	if b.buffer.Len() == 0 {
		return
	}
	s := b.buffer.String()
	b.buffer.Reset()
	b.chunks = append(b.chunks, chunkify(s)...)
}

// Len returns the total number of bytes written so far.
func (b *Builder) Len() int {
	return b.total
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = b.chunks[:0]
	b.buffer.Reset()
	b.total = 0
}

// Build assembles the rope from everything written and resets the builder.
func (b *Builder) Build() Rope {
	b.cut()
	if len(b.chunks) == 0 {
		b.Reset()
		return New()
	}
	chunks := b.chunks
	b.Reset()
	return fromChunks(chunks)
}
