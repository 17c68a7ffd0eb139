package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/storage"
)

// ProjectInfo describes a stored project without its document.
type ProjectInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AspectRatio string    `json:"aspect_ratio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func projectInfo(p *storage.Project) ProjectInfo {
	return ProjectInfo{
		ID:          p.ID,
		Name:        p.Name,
		AspectRatio: p.AspectRatio,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// SaveRequest names the project a session is saved as.
type SaveRequest struct {
	Name string `json:"name,omitempty"`
}

// handleSave stores the session's document as a project. The first save
// creates the project, later saves update it.
func (s *Server) handleSave(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req SaveRequest
	if err := parseBody(c, &req); err != nil {
		return invalidBody(c)
	}

	p, err := sess.Save(c.Context(), s.storer, req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(projectInfo(p))
}

// handleOpen replaces the session's document with a stored project. The
// session's history starts over.
func (s *Server) handleOpen(c *fiber.Ctx) error {
	sess, err := s.registry.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	if err := sess.Open(c.Context(), s.storer, c.Params("pid")); err != nil {
		return s.fail(c, err)
	}
	return s.respondSession(c, fiber.StatusOK, sess)
}

// handleListProjects returns every project, most recently updated first.
func (s *Server) handleListProjects(c *fiber.Ctx) error {
	projects, err := s.storer.ListProjects(c.Context())
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list projects")
	}

	infos := make([]ProjectInfo, 0, len(projects))
	for _, p := range projects {
		infos = append(infos, projectInfo(p))
	}

	return c.JSON(map[string]any{
		"count":    len(infos),
		"projects": infos,
	})
}

// handleGetProject returns a project including its document.
func (s *Server) handleGetProject(c *fiber.Ctx) error {
	p, err := s.storer.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(p)
}

// handleDeleteProject removes a project.
func (s *Server) handleDeleteProject(c *fiber.Ctx) error {
	if err := s.storer.DeleteProject(c.Context(), c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
