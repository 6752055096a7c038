// Package selection implements multi-cursor selections over char-indexed
// ranges: a single Range (anchor/head pair), and a Selection (an ordered,
// non-overlapping set of Ranges with a designated primary and stable
// per-range CursorIDs that survive position mapping across edits).
package selection
