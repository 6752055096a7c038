// Package editing implements selection-driven structural edits: line and
// block comment toggling, auto-closing bracket/quote pairs, and surround
// pair lookup. Every operation is a pure function from (rope, selection)
// to a transaction; nothing here mutates a document.
package editing
