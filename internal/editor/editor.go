// Package editor implements the Editor arena: the single owner of every
// open Document, the Views that render them, and the Panes that tile those
// views on screen. It is the seam the rest of the application reaches
// through to get at the rope/transaction/selection/annotation/format/plan
// engine packages, so commands and the render loop never touch a
// *document.Document directly.
//
// Documents, views, and panes live in id-keyed arenas; DocumentID, ViewID,
// and PaneID are allocated from monotonic counters and never reused within
// a process. A nil Bus is a valid, publish-is-a-no-op Editor for tests.
package editor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/keystorm/internal/engine/document"
	"github.com/dshills/keystorm/internal/engine/editing"
	"github.com/dshills/keystorm/internal/engine/selection"
	"github.com/dshills/keystorm/internal/engine/transaction"
	"github.com/dshills/keystorm/internal/event"
	"github.com/dshills/keystorm/internal/event/events"
	"github.com/dshills/keystorm/internal/event/topic"
	"github.com/dshills/keystorm/internal/integration/terminal"
	"github.com/dshills/keystorm/internal/renderer/annotations"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/format"
	"github.com/dshills/keystorm/internal/renderer/layout/split"
	"github.com/dshills/keystorm/internal/renderer/plan"
)

// DocumentID identifies a Document in the arena; it is document.ID, the
// counter internal/engine/document already allocates.
type DocumentID = document.ID

// PaneID identifies a tiled screen pane; it is split.PaneID, the counter
// internal/renderer/layout/split already allocates.
type PaneID = split.PaneID

// ViewID identifies a View: one document rendered into one pane, with its
// own scroll offset and render cache. Never reused within a process.
type ViewID uint64

var viewIDCounter uint64

func nextViewID() ViewID {
	return ViewID(atomic.AddUint64(&viewIDCounter, 1))
}

// Error is the Editor's error taxonomy.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownDocument Error = "editor: unknown document"
	ErrUnknownView     Error = "editor: unknown view"
	ErrDocumentInUse   Error = "editor: document still has open views"
)

// View pairs a Document with the pane it is displayed in plus the
// rendering state (soft-wrap format and the plan/incremental render cache)
// private to that pane.
type View struct {
	ID       ViewID
	Document DocumentID
	Pane     PaneID

	Format format.TextFormat

	mu     sync.Mutex
	scroll core.ScreenPos
	cache  *plan.Cache
}

// Scroll returns the view's current scroll offset.
func (v *View) Scroll() core.ScreenPos {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll
}

// SetScroll repositions the view's scroll offset.
func (v *View) SetScroll(pos core.ScreenPos) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll = pos
}

// Editor owns every open Document and View and the Pane tree tiling them.
// All cross-cutting operations (opening a file, applying an edit, toggling
// a comment, rendering a frame) go through the Editor rather than reaching
// into a Document directly, so DocumentChanged/AnnotationsChanged can be
// published consistently.
type Editor struct {
	mu sync.Mutex

	bus event.Bus

	documents map[DocumentID]*document.Document
	views     map[ViewID]*View
	panes     *split.Tree
	paneView  map[PaneID]ViewID
	terminals map[PaneID]*terminal.Adapter

	pairs editing.AutoPairs
}

// New returns an empty Editor. bus may be nil, in which case event
// publishing is a no-op (useful in tests and for callers that have not
// started their bus yet).
func New(bus event.Bus) *Editor {
	return &Editor{
		bus:       bus,
		documents: make(map[DocumentID]*document.Document),
		views:     make(map[ViewID]*View),
		panes:     split.New(),
		paneView:  make(map[PaneID]ViewID),
		terminals: make(map[PaneID]*terminal.Adapter),
		pairs:     editing.NewDefaultAutoPairs(),
	}
}

// OpenTerminalPane splits the active pane and attaches a fresh VT100 screen
// of the given size to it, for an embedded shell pane alongside document
// views. The returned Adapter lets the render loop diff the shell's screen
// the same way Render diffs a document's plan.
func (e *Editor) OpenTerminalPane(width, height int) (PaneID, *terminal.Adapter) {
	a := terminal.NewAdapter(terminal.NewScreen(width, height))
	return e.AttachTerminalPane(a), a
}

// AttachTerminalPane attaches an existing screen adapter (e.g. one wrapping
// a live shell's screen) to a new pane split off the active one.
func (e *Editor) AttachTerminalPane(a *terminal.Adapter) PaneID {
	e.mu.Lock()
	var pane PaneID
	if len(e.paneView) == 0 && len(e.terminals) == 0 {
		pane = e.panes.ActivePane()
	} else {
		pane = e.panes.SplitActive(split.Horizontal)
	}
	e.terminals[pane] = a
	e.mu.Unlock()
	return pane
}

// TerminalAdapter returns the Adapter attached to pane by OpenTerminalPane,
// if any.
func (e *Editor) TerminalAdapter(pane PaneID) (*terminal.Adapter, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.terminals[pane]
	return a, ok
}

// CloseTerminalPane closes the pane holding a terminal, releasing its
// Adapter.
func (e *Editor) CloseTerminalPane(pane PaneID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.terminals[pane]; !ok {
		return ErrUnknownView
	}
	if !e.panes.SetActivePane(pane) {
		return ErrUnknownView
	}
	if _, err := e.panes.CloseActive(); err != nil {
		return err
	}
	delete(e.terminals, pane)
	return nil
}

// OpenDocument creates a Document over content, opens a View onto it in a
// new pane (the tree's initial pane if this is the first document, a
// horizontal split of the active pane otherwise), and returns both ids.
func (e *Editor) OpenDocument(path, content string) (DocumentID, ViewID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := document.New(content)
	if path != "" {
		doc.SetPath(path)
	}
	e.documents[doc.ID()] = doc

	var pane PaneID
	if len(e.paneView) == 0 {
		pane = e.panes.ActivePane()
	} else {
		pane = e.panes.SplitActive(split.Horizontal)
	}

	v := &View{
		ID:       nextViewID(),
		Document: doc.ID(),
		Pane:     pane,
		Format:   format.DefaultTextFormat(),
		cache:    plan.NewCache(),
	}
	e.views[v.ID] = v
	e.paneView[pane] = v.ID

	e.publish(events.TopicEditorDocumentOpened, events.EditorDocumentOpened{
		DocumentID: uint64(doc.ID()),
		Path:       path,
	})
	e.publish(events.TopicEditorViewOpened, events.EditorViewOpened{
		ViewID:     uint64(v.ID),
		DocumentID: uint64(doc.ID()),
		PaneID:     uint64(pane),
	})

	return doc.ID(), v.ID
}

// OpenView opens an additional View onto an already-open document, in a new
// pane split off the active one along axis. The two views scroll and wrap
// independently; edits through either are visible in both.
func (e *Editor) OpenView(docID DocumentID, axis split.Axis) (ViewID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.documents[docID]; !ok {
		return 0, ErrUnknownDocument
	}

	pane := e.panes.SplitActive(axis)
	v := &View{
		ID:       nextViewID(),
		Document: docID,
		Pane:     pane,
		Format:   format.DefaultTextFormat(),
		cache:    plan.NewCache(),
	}
	e.views[v.ID] = v
	e.paneView[pane] = v.ID

	e.publish(events.TopicEditorViewOpened, events.EditorViewOpened{
		ViewID:     uint64(v.ID),
		DocumentID: uint64(docID),
		PaneID:     uint64(pane),
	})
	return v.ID, nil
}

// CloseView closes view and its pane, leaving the underlying document open
// (it may still have other views). Closing the last remaining view is
// rejected by the underlying split.Tree with split.ErrLastPane.
func (e *Editor) CloseView(id ViewID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.views[id]
	if !ok {
		return ErrUnknownView
	}

	if !e.panes.SetActivePane(v.Pane) {
		return ErrUnknownView
	}
	if _, err := e.panes.CloseActive(); err != nil {
		return err
	}

	delete(e.paneView, v.Pane)
	delete(e.views, id)

	e.publish(events.TopicEditorViewClosed, events.EditorViewClosed{ViewID: uint64(id)})
	return nil
}

// CloseDocument removes doc from the arena. It fails with ErrDocumentInUse
// if any View still refers to it; close those views first.
func (e *Editor) CloseDocument(id DocumentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.documents[id]; !ok {
		return ErrUnknownDocument
	}
	for _, v := range e.views {
		if v.Document == id {
			return ErrDocumentInUse
		}
	}
	delete(e.documents, id)
	e.publish(events.TopicEditorDocumentClosed, events.EditorDocumentClosed{DocumentID: uint64(id)})
	return nil
}

// Document returns the Document identified by id.
func (e *Editor) Document(id DocumentID) (*document.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, ok := e.documents[id]
	if !ok {
		return nil, ErrUnknownDocument
	}
	return doc, nil
}

// View returns the View identified by id.
func (e *Editor) View(id ViewID) (*View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.views[id]
	if !ok {
		return nil, ErrUnknownView
	}
	return v, nil
}

// Panes returns the pane tree every View is tiled in, for callers that
// need to lay out or navigate panes directly (splitting, jumping, closing).
func (e *Editor) Panes() *split.Tree {
	return e.panes
}

// Apply commits tx against the View's document and publishes
// EditorDocumentChanged on success.
func (e *Editor) Apply(viewID ViewID, tx *transaction.Transaction) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	if err := doc.Apply(tx); err != nil {
		return err
	}
	e.publish(events.TopicEditorDocumentChanged, events.EditorDocumentChanged{
		DocumentID: uint64(doc.ID()),
		Version:    doc.Version(),
	})
	return nil
}

// SetSelection replaces the View's document selection.
func (e *Editor) SetSelection(viewID ViewID, sel *selection.Selection) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	return doc.SetSelection(sel)
}

// Undo reverts the View's document to its prior history state and
// publishes EditorDocumentChanged.
func (e *Editor) Undo(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	if err := doc.Undo(); err != nil {
		return err
	}
	e.publish(events.TopicEditorDocumentChanged, events.EditorDocumentChanged{
		DocumentID: uint64(doc.ID()),
		Version:    doc.Version(),
	})
	return nil
}

// Redo re-applies the View's document's most recently undone edit and
// publishes EditorDocumentChanged.
func (e *Editor) Redo(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	if err := doc.Redo(); err != nil {
		return err
	}
	e.publish(events.TopicEditorDocumentChanged, events.EditorDocumentChanged{
		DocumentID: uint64(doc.ID()),
		Version:    doc.Version(),
	})
	return nil
}

// ToggleLineComment toggles line comments over the View's selection using
// token, committing the result through Apply.
func (e *Editor) ToggleLineComment(viewID ViewID, token string) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	tx := editing.ToggleLineComments(doc.Text(), doc.Selection(), token)
	if tx == nil {
		return nil
	}
	return e.Apply(viewID, tx)
}

// ToggleBlockComment toggles block comments over the View's selection using
// tokens, committing the result through Apply.
func (e *Editor) ToggleBlockComment(viewID ViewID, tokens []editing.BlockCommentToken) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	commented, changes := editing.FindBlockComments(tokens, doc.Text(), doc.Selection())
	tx, newSel := editing.CreateBlockCommentTransaction(doc.Text(), doc.Selection(), commented, changes)
	if tx == nil {
		return nil
	}
	if err := e.Apply(viewID, tx); err != nil {
		return err
	}
	if newSel != nil {
		sel, err := selection.New(newSel, 0)
		if err != nil {
			return nil
		}
		return e.SetSelection(viewID, sel)
	}
	return nil
}

// AutoPairInsert applies the auto-pairs insertion hook for ch over the
// View's selection, committing the result through Apply. It is a no-op
// (returns nil) when ch is not an auto-pair trigger.
func (e *Editor) AutoPairInsert(viewID ViewID, ch rune) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	tx := editing.Hook(doc.Text(), doc.Selection(), ch, e.pairs)
	if tx == nil {
		return nil
	}
	return e.Apply(viewID, tx)
}

// AutoPairDelete applies the auto-pairs delete hook (deleting a matching
// empty pair under the cursor as one unit) over the View's selection.
func (e *Editor) AutoPairDelete(viewID ViewID) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	tx := editing.DeleteHook(doc.Text(), doc.Selection(), e.pairs)
	if tx == nil {
		return nil
	}
	return e.Apply(viewID, tx)
}

// SurroundTargets returns the n'th enclosing bracket/quote pair positions
// around each range in the View's selection, for a caller to build a
// surround-insert or surround-delete transaction from.
func (e *Editor) SurroundTargets(viewID ViewID, n int) ([]selection.Range, error) {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return nil, err
	}
	return editing.GetSurroundPos(doc.Text(), doc.Selection(), n)
}

// AddInlineAnnotations registers a new inline-annotation layer on the
// View's document and publishes EditorAnnotationsChanged.
func (e *Editor) AddInlineAnnotations(viewID ViewID, anns []annotations.InlineAnnotation) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	doc.Annotations().AddInlineLayer(anns)
	e.publishAnnotationsChanged(viewID, doc)
	return nil
}

// AddOverlayAnnotations registers a new overlay layer on the View's
// document and publishes EditorAnnotationsChanged.
func (e *Editor) AddOverlayAnnotations(viewID ViewID, anns []annotations.Overlay) error {
	doc, err := e.documentForView(viewID)
	if err != nil {
		return err
	}
	doc.Annotations().AddOverlayLayer(anns)
	e.publishAnnotationsChanged(viewID, doc)
	return nil
}

// Render builds the RenderPlan for view over area, using the View's cached
// format/scroll/plan cache and the document's current annotations.
func (e *Editor) Render(viewID ViewID, area core.ScreenRect, styles plan.RenderStyles) (plan.RenderPlan, error) {
	v, err := e.View(viewID)
	if err != nil {
		return plan.RenderPlan{}, err
	}
	doc, err := e.Document(v.Document)
	if err != nil {
		return plan.RenderPlan{}, err
	}

	view := plan.View{Viewport: area, Scroll: v.Scroll()}
	return plan.Build(doc, view, v.Format, doc.Annotations(), nil, v.cache, styles), nil
}

func (e *Editor) documentForView(viewID ViewID) (*document.Document, error) {
	v, err := e.View(viewID)
	if err != nil {
		return nil, err
	}
	return e.Document(v.Document)
}

func (e *Editor) publishAnnotationsChanged(viewID ViewID, doc *document.Document) {
	e.publish(events.TopicEditorAnnotationsChanged, events.EditorAnnotationsChanged{
		ViewID:     uint64(viewID),
		DocumentID: uint64(doc.ID()),
		Generation: doc.Annotations().Generation(),
	})
}

// publish sends payload as a fresh event on t via the bus, synchronously.
// A nil bus (Editor used without a running application) makes this a no-op.
func (e *Editor) publish(t topic.Topic, payload any) {
	if e.bus == nil {
		return
	}
	_ = e.bus.PublishSync(context.Background(), event.NewEvent(t, payload, "editor"))
}
