package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/compliance"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/export"
	"github.com/adgenius/adgen/pkg/history"
	"github.com/adgenius/adgen/pkg/layout"
)

// CreateSessionRequest opens a session. Restore takes precedence, then
// Template at the size of Preset or Width/Height. An empty request starts
// from the default preset's starter layout.
type CreateSessionRequest struct {
	Preset   string `json:"preset,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Template string `json:"template,omitempty"`

	// Restore is the id of a previous session whose autosave is reopened.
	Restore string `json:"restore,omitempty"`
}

// SessionResponse is a session with its current document.
type SessionResponse struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id,omitempty"`
	Revision      uint64           `json:"revision"`
	PendingImages int              `json:"pending_images"`
	History       history.Status   `json:"history"`
	Document      *canvas.Document `json:"document"`
}

// ActionsResponse reports the outcome of an action batch.
type ActionsResponse struct {
	Applied       int              `json:"applied"`
	Ignored       int              `json:"ignored"`
	Added         []string         `json:"added,omitempty"`
	PendingImages int              `json:"pending_images"`
	Discarded     []string         `json:"discarded,omitempty"`
	Session       *SessionResponse `json:"session"`
}

// HistoryResponse reports an undo or redo.
type HistoryResponse struct {
	Changed bool             `json:"changed"`
	Session *SessionResponse `json:"session"`
}

// ReflowRequest resizes the canvas to a preset or to explicit dimensions.
type ReflowRequest struct {
	Preset string `json:"preset,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func describeSession(sess *editor.Session) (*SessionResponse, error) {
	doc, err := sess.Document()
	if err != nil {
		return nil, err
	}
	status, err := sess.History()
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		ID:            sess.ID(),
		ProjectID:     sess.ProjectID(),
		Revision:      sess.Revision(),
		PendingImages: sess.PendingImages(),
		History:       status,
		Document:      doc,
	}, nil
}

// respondSession writes the session's current state with status.
func (s *Server) respondSession(c *fiber.Ctx, status int, sess *editor.Session) error {
	resp, err := describeSession(sess)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(status).JSON(resp)
}

// handleListSessions returns the ids of every live session.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions := s.registry.Sessions()
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID())
	}
	return c.JSON(map[string]any{
		"count":    len(ids),
		"sessions": ids,
	})
}

// handleCreateSession opens a new editing session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return invalidBody(c)
	}

	doc, err := s.initialDocument(c, req)
	if err != nil {
		return s.fail(c, err)
	}

	sess, err := s.registry.Create(doc)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondSession(c, fiber.StatusCreated, sess)
}

// initialDocument resolves the document a new session starts from. A nil
// document means the default starter layout.
func (s *Server) initialDocument(c *fiber.Ctx, req CreateSessionRequest) (*canvas.Document, error) {
	if req.Restore != "" {
		data, err := s.storer.LoadAutosave(c.Context(), req.Restore)
		if err != nil {
			return nil, err
		}
		return canvas.Unmarshal(canvas.Snapshot(data))
	}

	width, height := req.Width, req.Height
	switch {
	case req.Preset != "":
		p, ok := layout.LookupPreset(req.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: %q", editor.ErrUnknownPreset, req.Preset)
		}
		width, height = p.Width, p.Height
	case width == 0 && height == 0:
		if req.Template == "" {
			return nil, nil
		}
		p, _ := layout.LookupPreset(layout.DefaultPresetID)
		width, height = p.Width, p.Height
	}

	t := layout.Starter(width, height)
	if req.Template != "" {
		var ok bool
		if t, ok = layout.LookupTemplate(req.Template); !ok {
			return nil, fmt.Errorf("%w: unknown template %q", errBadRequest, req.Template)
		}
	}
	return layout.Instantiate(t, width, height)
}

// handleGetSession returns a session and its document.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondSession(c, fiber.StatusOK, sess)
}

// handleDeleteSession disposes a session.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.registry.Remove(id); err != nil {
		return s.fail(c, err)
	}
	if s.limiter != nil {
		s.limiter.Forget(id)
	}
	if s.config.Events != nil {
		s.config.Events.CloseSession(id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleApplyActions applies a raw action list as one undoable step. The
// body is a JSON array or an {"actions": [...]} envelope; malformed entries
// are reported in Discarded and the rest still apply.
func (s *Server) handleApplyActions(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	acts, errs := actions.Parse(c.Body())
	if len(acts) == 0 && len(errs) > 0 {
		return errorJSON(c, fiber.StatusBadRequest, errors.Join(errs...).Error())
	}

	res, err := sess.Apply(c.Context(), acts)
	if err != nil {
		return s.fail(c, err)
	}

	resp, err := describeSession(sess)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(ActionsResponse{
		Applied:       res.Applied,
		Ignored:       res.Ignored,
		Added:         res.Added,
		PendingImages: len(res.Pending),
		Discarded:     errorStrings(errs),
		Session:       resp,
	})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// handleUndo steps one change back.
func (s *Server) handleUndo(c *fiber.Ctx) error {
	return s.travel(c, (*editor.Session).Undo)
}

// handleRedo steps one change forward.
func (s *Server) handleRedo(c *fiber.Ctx) error {
	return s.travel(c, (*editor.Session).Redo)
}

func (s *Server) travel(c *fiber.Ctx, step func(*editor.Session) (bool, error)) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	changed, err := step(sess)
	if err != nil {
		return s.fail(c, err)
	}

	resp, err := describeSession(sess)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(HistoryResponse{Changed: changed, Session: resp})
}

// handleReflow resizes the canvas.
func (s *Server) handleReflow(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req ReflowRequest
	if err := parseBody(c, &req); err != nil {
		return invalidBody(c)
	}

	if req.Preset != "" {
		_, err = sess.SetPreset(req.Preset)
	} else {
		err = sess.Reflow(req.Width, req.Height)
	}
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondSession(c, fiber.StatusOK, sess)
}

// handleBeginGesture opens a continuous edit; the changes until the
// matching end are undone together.
func (s *Server) handleBeginGesture(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if err := sess.BeginGesture(); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleEndGesture closes the open gesture.
func (s *Server) handleEndGesture(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if err := sess.EndGesture(); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleCompliance runs the brand quick check.
// Query parameters:
//   - brand (optional): the brand to check against
func (s *Server) handleCompliance(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	summary, err := sess.Summary()
	if err != nil {
		return s.fail(c, err)
	}

	brand := c.Query("brand", s.config.Brand)
	return c.JSON(compliance.Check(summary, brand))
}

// handleExportSVG renders the document as an SVG image.
func (s *Server) handleExportSVG(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	doc, err := sess.Document()
	if err != nil {
		return s.fail(c, err)
	}

	svg, err := export.SVG(doc)
	if err != nil {
		return s.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}
