// Package nop provides the publisher used when no external event stream is
// configured. Events are counted and, at debug level, logged, then dropped.
package nop

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/adgenius/adgen/pkg/eventstream"
)

// Publisher discards document events.
type Publisher struct {
	discarded atomic.Uint64
	logger    *slog.Logger
}

// NewPublisher returns a Publisher. A nil logger logs nothing.
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{logger: logger}
}

// Publish drops event after validating it.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.DocumentEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.discarded.Add(1)
	p.logger.DebugContext(ctx, "document event discarded",
		"event_type", event.EventType,
		"session_id", event.SessionID,
		"operation", event.Operation,
	)
	return nil
}

// Discarded returns how many events Publish has dropped.
func (p *Publisher) Discarded() uint64 {
	return p.discarded.Load()
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
