package api

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/sse"
)

// keepAliveInterval spaces the comments sent on an idle event stream.
const keepAliveInterval = 15 * time.Second

// handleEvents streams a session's document events as Server-Sent Events
// until the client goes away, the session is deleted or the server shuts
// down.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	if s.config.Events == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "event stream is not enabled")
	}

	id := c.Params("id")
	if _, err := s.registry.Get(id); err != nil {
		return s.fail(c, err)
	}

	events, cancel := s.config.Events.Subscribe(id)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe gives per-event flushing; fasthttp's stream writer would
	// buffer events in memory.
	pr, pw := io.Pipe()
	go s.streamEvents(pw, events, cancel)
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) streamEvents(pw *io.PipeWriter, events <-chan *eventstream.DocumentEvent, cancel func()) {
	defer pw.Close()
	defer cancel()

	if err := sse.Comment(pw, "connected"); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("encoding document event", "event_id", ev.EventID, "error", err)
				continue
			}
			if err := sse.Write(pw, sse.Event{ID: ev.EventID, Type: ev.EventType, Data: string(data)}); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.Comment(pw, "ping"); err != nil {
				return
			}
		}
	}
}
