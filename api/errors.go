package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/export"
	"github.com/adgenius/adgen/pkg/storage"
)

// errBadRequest marks request errors without a domain sentinel.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound), storage.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, canvas.ErrDisposed):
		return fiber.StatusGone
	case errors.Is(err, canvas.ErrInvalidSize),
		errors.Is(err, editor.ErrUnknownPreset),
		errors.Is(err, export.ErrUnknownPlatform),
		errors.Is(err, errBadRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Unexpected errors are logged.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return errorJSON(c, status, err.Error())
}

// parseBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(v)
}

func invalidBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
}
