package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/compliance"
	"github.com/adgenius/adgen/pkg/export"
	"github.com/adgenius/adgen/pkg/layout"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handlePresets lists the canvas size presets in display order.
func (s *Server) handlePresets(c *fiber.Ctx) error {
	return c.JSON(layout.Presets)
}

// handleTemplates lists the starter templates.
func (s *Server) handleTemplates(c *fiber.Ctx) error {
	return c.JSON(layout.Templates)
}

// handleExports builds per-platform delivery URLs for an uploaded creative.
// Query parameters:
//   - url (required): the Cloudinary delivery URL of the creative
//   - platform (optional): comma-separated platform ids, default all
func (s *Server) handleExports(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return errorJSON(c, fiber.StatusBadRequest, "url parameter is required")
	}

	var platforms []string
	for p := range strings.SplitSeq(c.Query("platform"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			platforms = append(platforms, p)
		}
	}

	return c.JSON(export.All(url, platforms...))
}

// CopyRequest is the body of POST /copy/validate.
type CopyRequest struct {
	Text  string `json:"text"`
	Brand string `json:"brand,omitempty"`
}

// handleValidateCopy checks a piece of ad copy against a brand's voice.
// The brand defaults to the server's configured brand.
func (s *Server) handleValidateCopy(c *fiber.Ctx) error {
	var req CopyRequest
	if err := parseBody(c, &req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "text is required")
	}

	brand := req.Brand
	if brand == "" {
		brand = s.config.Brand
	}
	return c.JSON(compliance.ValidateCopy(req.Text, brand))
}
