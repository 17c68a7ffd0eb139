// Package editor owns live editing sessions. A Session serializes every
// operation on its document behind one mutex, so each tool, action batch,
// reflow, undo or image completion is an atomic step that observes and
// leaves a consistent document and history.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/classify"
	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/history"
	"github.com/adgenius/adgen/pkg/imageload"
	"github.com/adgenius/adgen/pkg/layout"
)

// ErrUnknownPreset is returned by SetPreset for ids not in layout.Presets.
var ErrUnknownPreset = errors.New("unknown preset")

const (
	publishTimeout = 5 * time.Second

	// eventBuffer bounds the events queued for delivery per session. Events
	// past it are dropped rather than blocking an edit.
	eventBuffer = 256
)

// ImageQueue schedules image loads. *imageload.Pool satisfies it.
type ImageQueue interface {
	Enqueue(job imageload.Job) bool
}

// Config configures a Session.
type Config struct {
	// ID identifies the session; empty generates one.
	ID string

	// Document is the initial document; nil starts from the default preset
	// with the responsive starter template.
	Document *canvas.Document

	HistoryCapacity          int
	DisableGestureCoalescing bool

	// Images resolves AddImage actions. Without it image actions fail
	// straight to a placeholder.
	Images ImageQueue

	Publisher eventstream.Publisher
	Logger    *slog.Logger
}

// Session is one open document with its history and clipboard.
type Session struct {
	id string

	mu         sync.Mutex
	doc        *canvas.Document
	history    *history.Manager
	clipboard  *canvas.Element
	projectID  string
	generation uint64
	revision   uint64
	pending    int
	disposed   bool

	applicator *actions.Applicator
	images     ImageQueue
	events     chan *eventstream.DocumentEvent
	logger     *slog.Logger
}

// NewSession creates a session from c.
func NewSession(c Config) (*Session, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	doc := c.Document
	if doc == nil {
		p, _ := layout.LookupPreset(layout.DefaultPresetID)
		starter, err := layout.Instantiate(layout.Starter(p.Width, p.Height), p.Width, p.Height)
		if err != nil {
			return nil, fmt.Errorf("creating starter document: %w", err)
		}
		doc = starter
	} else {
		doc = doc.Clone()
	}

	opts := []history.Option{history.WithGestureCoalescing(!c.DisableGestureCoalescing)}
	if c.HistoryCapacity > 0 {
		opts = append(opts, history.WithCapacity(c.HistoryCapacity))
	}

	logger := c.Logger.With("session_id", c.ID)
	s := &Session{
		id:         c.ID,
		doc:        doc,
		history:    history.NewManager(opts...),
		applicator: actions.NewApplicator(logger),
		images:     c.Images,
		logger:     logger,
	}
	if c.Publisher != nil {
		s.events = make(chan *eventstream.DocumentEvent, eventBuffer)
		go deliver(c.Publisher, s.events, logger)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Document returns a copy of the current document.
func (s *Session) Document() (*canvas.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, canvas.ErrDisposed
	}
	return s.doc.Clone(), nil
}

// Snapshot serializes the current document.
func (s *Session) Snapshot() (canvas.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, canvas.ErrDisposed
	}
	return s.doc.Marshal()
}

// Summary describes the document for the chat assistant and compliance.
func (s *Session) Summary() (classify.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return classify.Summary{}, canvas.ErrDisposed
	}
	return classify.Summarize(s.doc), nil
}

// History reports the undo and redo depth.
func (s *Session) History() (history.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return history.Status{}, canvas.ErrDisposed
	}
	return s.history.Status(), nil
}

// PendingImages returns the number of image loads not yet resolved.
func (s *Session) PendingImages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Revision increases with every committed change.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// ProjectID returns the project the session was last saved to or opened
// from.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Apply runs acts in order as one undoable step. Image actions are handed
// to the image queue; each completion is its own undoable step.
func (s *Session) Apply(_ context.Context, acts []actions.Action) (actions.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return actions.Result{}, canvas.ErrDisposed
	}

	out, res := s.applicator.Apply(s.doc, acts)
	if res.Changed() {
		if err := s.commit("apply", out); err != nil {
			return res, err
		}
	}

	for _, req := range res.Pending {
		s.scheduleImage(req)
	}
	return res, nil
}

// scheduleImage must be called with s.mu held.
func (s *Session) scheduleImage(req actions.ImageRequest) {
	s.pending++
	gen := s.generation

	if s.images == nil {
		s.pending--
		s.logger.Warn("no image loader configured, using placeholder", "url", req.URL)
		s.placeImage(req, imageload.Result{Err: errors.New("no image loader")})
		return
	}

	s.images.Enqueue(imageload.Job{
		URL: req.URL,
		Complete: func(r imageload.Result) {
			s.completeImage(gen, req, r)
		},
	})
}

func (s *Session) completeImage(gen uint64, req actions.ImageRequest, r imageload.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending--
	if s.disposed || gen != s.generation {
		s.logger.Debug("dropping stale image completion", "url", req.URL)
		return
	}
	s.placeImage(req, r)
}

// placeImage must be called with s.mu held.
func (s *Session) placeImage(req actions.ImageRequest, r imageload.Result) {
	out := s.doc.Clone()

	if r.Err != nil {
		s.logger.Warn("image failed to load, using placeholder", "url", req.URL, "error", r.Err)
		out.Add(actions.Placeholder(req))
	} else {
		key := out.Add(actions.ImageElement(req, r.Image.Width, r.Image.Height, out.Width))
		out.Select(key)
	}

	if err := s.commit("image", out); err != nil {
		s.logger.Error("placing image", "url", req.URL, "error", err)
	}
}

// Reflow resizes the canvas and repositions every element.
func (s *Session) Reflow(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}

	out, err := layout.Reflow(s.doc, width, height)
	if err != nil {
		return err
	}
	return s.commit("reflow", out)
}

// SetPreset reflows to the size of a named preset.
func (s *Session) SetPreset(id string) (layout.Preset, error) {
	p, ok := layout.LookupPreset(id)
	if !ok {
		return layout.Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return p, s.Reflow(p.Width, p.Height)
}

// Undo restores the previous state. Returns false when there is nothing to
// undo.
func (s *Session) Undo() (bool, error) {
	return s.travel("undo", s.history.Undo)
}

// Redo reapplies an undone state. Returns false when there is nothing to
// redo.
func (s *Session) Redo() (bool, error) {
	return s.travel("redo", s.history.Redo)
}

func (s *Session) travel(op string, step func(*canvas.Document) (*canvas.Document, bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false, canvas.ErrDisposed
	}

	doc, ok, err := step(s.doc)
	if err != nil || !ok {
		return false, err
	}
	s.doc = doc
	s.changed(op)
	return true, nil
}

// MarkSaved discards the redo stack after an explicit save.
func (s *Session) MarkSaved() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.history.ClearRedo()
	return nil
}

// BeginGesture opens a continuous edit such as a drag. While coalescing is
// enabled the whole gesture is a single undo step.
func (s *Session) BeginGesture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.history.BeginGesture()
	return nil
}

// EndGesture closes the current gesture.
func (s *Session) EndGesture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.history.EndGesture()
	return nil
}

// Load replaces the document wholesale, resets history and drops pending
// image loads.
func (s *Session) Load(doc *canvas.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return canvas.ErrDisposed
	}
	s.doc = doc.Clone()
	s.history.Reset()
	s.clipboard = nil
	s.generation++
	s.changed("load")
	return nil
}

// Dispose tears the session down. Every later call returns
// canvas.ErrDisposed and pending image loads are dropped.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.generation++
	s.doc.Dispose()
	s.history.Reset()
	s.clipboard = nil
	if s.events != nil {
		close(s.events)
	}
	s.logger.Debug("session disposed")
}

// Disposed reports whether Dispose was called.
func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// mutate runs fn against a copy of the document and commits the copy when
// fn reports a change.
func (s *Session) mutate(op string, fn func(doc *canvas.Document) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return false, canvas.ErrDisposed
	}

	out := s.doc.Clone()
	if !fn(out) {
		return false, nil
	}
	if err := s.commit(op, out); err != nil {
		return false, err
	}
	return true, nil
}

// commit records the current document in history and swaps in next. Must
// be called with s.mu held.
func (s *Session) commit(op string, next *canvas.Document) error {
	if err := s.history.RecordBeforeMutation(s.doc); err != nil {
		return err
	}
	s.doc = next
	s.changed(op)
	return nil
}

// changed must be called with s.mu held.
func (s *Session) changed(op string) {
	s.revision++
	s.logger.Debug("document changed", "operation", op, "revision", s.revision)
	s.publish(eventstream.EventTypeDocumentChanged, op)
}

// publish must be called with s.mu held. Events are queued in commit order
// and delivered off the session lock.
func (s *Session) publish(eventType, op string) {
	if s.events == nil {
		return
	}

	status := s.history.Status()
	ev := eventstream.NewDocumentEvent(eventType, s.id, op)
	ev.Revision = s.revision
	ev.ProjectID = s.projectID
	ev.Width = s.doc.Width
	ev.Height = s.doc.Height
	ev.ElementCount = s.doc.Len()
	ev.UndoDepth = status.UndoDepth
	ev.RedoDepth = status.RedoDepth

	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event queue full, dropping event", "event_type", eventType, "revision", ev.Revision)
	}
}

// deliver publishes queued events one at a time until events is closed.
func deliver(pub eventstream.Publisher, events <-chan *eventstream.DocumentEvent, logger *slog.Logger) {
	for ev := range events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := pub.Publish(ctx, ev); err != nil {
			logger.Warn("publishing document event", "event_type", ev.EventType, "error", err)
		}
		cancel()
	}
}
