// Package transaction implements composable text edits over a rope.
//
// A ChangeSet is a sequence of Retain/Delete/Insert operations that, applied
// in order, consume exactly LenBefore source chars and produce some number
// of result chars. ChangeSets compose and invert, and can map arbitrary char
// positions (and, transitively, Selections) from the pre-image to the
// post-image coordinate space. A Transaction pairs a ChangeSet with an
// optional post-image Selection. Undo is built on Invert rather than on a
// separately recorded inverse edit.
package transaction
