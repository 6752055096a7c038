package events

import "github.com/dshills/keystorm/internal/event/topic"

// Editor event topics, published by internal/editor's Document/View arena as
// it opens, edits, and closes the rope-backed documents and their render
// state.
const (
	// TopicEditorDocumentOpened is published when a document is added to the
	// editor's document arena.
	TopicEditorDocumentOpened topic.Topic = "editor.document.opened"

	// TopicEditorDocumentChanged is published whenever a document's Apply,
	// Undo, or Redo succeeds.
	TopicEditorDocumentChanged topic.Topic = "editor.document.changed"

	// TopicEditorDocumentClosed is published when a document is removed from
	// the arena.
	TopicEditorDocumentClosed topic.Topic = "editor.document.closed"

	// TopicEditorAnnotationsChanged is published when a view's annotation
	// layers are added to or replaced.
	TopicEditorAnnotationsChanged topic.Topic = "editor.annotations.changed"

	// TopicEditorViewOpened is published when a view onto a document is
	// created.
	TopicEditorViewOpened topic.Topic = "editor.view.opened"

	// TopicEditorViewClosed is published when a view is closed.
	TopicEditorViewClosed topic.Topic = "editor.view.closed"
)

// EditorDocumentOpened is published when DocumentID is assigned to a newly
// opened document.
type EditorDocumentOpened struct {
	// DocumentID is the arena-assigned identity of the opened document.
	DocumentID uint64

	// Path is the backing file path, or "" for a scratch buffer.
	Path string
}

// EditorDocumentChanged is published after a document mutation.
type EditorDocumentChanged struct {
	// DocumentID identifies the document that changed.
	DocumentID uint64

	// Version is the document's version counter after the change.
	Version uint64
}

// EditorDocumentClosed is published when a document leaves the arena.
type EditorDocumentClosed struct {
	// DocumentID identifies the closed document.
	DocumentID uint64
}

// EditorAnnotationsChanged is published after a view's annotation layers
// change.
type EditorAnnotationsChanged struct {
	// ViewID identifies the view whose annotations changed.
	ViewID uint64

	// DocumentID identifies the underlying document.
	DocumentID uint64

	// Generation is the TextAnnotations generation counter after the change.
	Generation int
}

// EditorViewOpened is published when a new view is created over a document.
type EditorViewOpened struct {
	// ViewID is the arena-assigned identity of the opened view.
	ViewID uint64

	// DocumentID identifies the underlying document.
	DocumentID uint64

	// PaneID identifies the split pane the view is attached to.
	PaneID uint64
}

// EditorViewClosed is published when a view leaves the arena.
type EditorViewClosed struct {
	// ViewID identifies the closed view.
	ViewID uint64
}
