// Package rope implements the editor's text storage: an immutable,
// persistent rope over a balanced tree of small chunks, with char, byte,
// and line indexing kept in every subtree summary.
//
// # Coordinate spaces
//
// The tree's summaries carry byte length, rune (char) count, UTF-16 length,
// and newline count simultaneously, so conversions are O(log n):
//
//	chars := r.LenChars()
//	b := r.CharToByte(10)
//	c := r.ByteToChar(b)
//	line := r.CharToLine(c)
//
// The editing engine works in char offsets (CharOffset); byte offsets
// (ByteOffset) exist for I/O and for the cursor and chunk iterators.
//
// A rope is treated as ending at a line boundary: LineCount counts the
// final line even when the text has no trailing newline, so every line has
// a well-defined start.
//
// # Editing
//
// All mutating operations return a new Rope and leave the receiver intact:
//
//	r2 := r.InsertChars(3, "abc")
//	r3 := r2.DeleteChars(0, 3)
//
// Structural sharing keeps copies cheap; a Builder assembles large ropes in
// one pass without intermediate rebalancing.
//
// # Traversal
//
// GraphemesAt iterates UAX#29 extended grapheme clusters from a char
// offset, with per-grapheme width (East Asian Width plus tab expansion and
// control-glyph rules) and word/whitespace classification for motions.
// Chunks, Lines, and Runes iterate at coarser granularities, and Cursor
// supports stateful O(log n) seeking by offset or line.
package rope
