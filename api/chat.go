package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/chat"
)

// chatFailedMessage is all the user sees when the model round trip fails.
const chatFailedMessage = "Sorry, I couldn't complete that change."

// ChatRequest is one message to the design assistant.
type ChatRequest struct {
	Message  string      `json:"message"`
	Brand    string      `json:"brand,omitempty"`
	Platform string      `json:"platform,omitempty"`
	History  []chat.Turn `json:"history,omitempty"`

	// DryRun returns the suggested actions without applying them.
	DryRun bool `json:"dry_run,omitempty"`
}

// ChatResponse is the assistant's answer and what it changed.
type ChatResponse struct {
	Reply     string           `json:"reply"`
	Actions   []actions.Wire   `json:"actions,omitempty"`
	Applied   int              `json:"applied"`
	Ignored   int              `json:"ignored"`
	Discarded []string         `json:"discarded,omitempty"`
	Session   *SessionResponse `json:"session"`
}

// handleChat sends a message about the session's design to the model and,
// unless DryRun is set, applies the actions in its reply as one step.
func (s *Server) handleChat(c *fiber.Ctx) error {
	if s.config.Chat == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "chat is not configured")
	}

	id := c.Params("id")
	sess, err := s.registry.Get(id)
	if err != nil {
		return s.fail(c, err)
	}

	if s.limiter != nil {
		res := s.limiter.Allow(id)
		c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(res.RetryAfter.Seconds())))
			return errorJSON(c, fiber.StatusTooManyRequests, "too many chat requests, slow down")
		}
	}

	var req ChatRequest
	if err := parseBody(c, &req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Message) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "message is required")
	}

	summary, err := sess.Summary()
	if err != nil {
		return s.fail(c, err)
	}

	reply, err := s.config.Chat.Chat(c.Context(), chat.Request{
		Message:  req.Message,
		Summary:  summary,
		Brand:    req.Brand,
		Platform: req.Platform,
		History:  req.History,
	})
	if err != nil {
		s.logger.Warn("chat failed", "session_id", id, "error", err)
		return errorJSON(c, fiber.StatusBadGateway, chatFailedMessage)
	}

	wires, err := actions.EncodeAll(reply.Actions)
	if err != nil {
		return s.fail(c, err)
	}
	resp := ChatResponse{
		Reply:     reply.Text,
		Actions:   wires,
		Discarded: errorStrings(reply.Discarded),
	}

	if !req.DryRun && len(reply.Actions) > 0 {
		res, err := sess.Apply(c.Context(), reply.Actions)
		if err != nil {
			return s.fail(c, err)
		}
		resp.Applied = res.Applied
		resp.Ignored = res.Ignored
	}

	if resp.Session, err = describeSession(sess); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(resp)
}
