// Package broker fans document events out to in-process subscribers, one
// set per session. It backs the API's live event stream.
package broker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adgenius/adgen/pkg/eventstream"
)

// BufferSize is how many undelivered events a subscriber may fall behind
// before further events are dropped for it.
const BufferSize = 16

type subscriber struct {
	ch     chan *eventstream.DocumentEvent
	closed bool
}

// Broker is an eventstream.Publisher that delivers to subscribers instead
// of an external backend.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	closed      bool
	logger      *slog.Logger
}

// New creates a Broker.
func New(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Broker{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for sessionID. The channel is closed by
// the returned cancel func, by CloseSession or by Close.
func (b *Broker) Subscribe(sessionID string) (<-chan *eventstream.DocumentEvent, func()) {
	sub := &subscriber{ch: make(chan *eventstream.DocumentEvent, BufferSize)}

	b.mu.Lock()
	if b.closed {
		sub.closed = true
		close(sub.ch)
		b.mu.Unlock()
		return sub.ch, func() {}
	}
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	b.subscribers[sessionID][sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if subs, ok := b.subscribers[sessionID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(b.subscribers, sessionID)
			}
		}
		b.closeSub(sub)
	}
	return sub.ch, cancel
}

// Subscribers returns the number of listeners on sessionID.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID])
}

// Publish delivers event to every subscriber of its session without
// blocking. Slow subscribers miss events.
func (b *Broker) Publish(_ context.Context, event *eventstream.DocumentEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers[event.SessionID] {
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"session_id", event.SessionID,
				"event_id", event.EventID,
			)
		}
	}
	return nil
}

// CloseSession ends every subscription to sessionID.
func (b *Broker) CloseSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers[sessionID] {
		b.closeSub(sub)
	}
	delete(b.subscribers, sessionID)
}

// Close ends every subscription. Later subscriptions are closed at once.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, subs := range b.subscribers {
		for sub := range subs {
			b.closeSub(sub)
		}
		delete(b.subscribers, id)
	}
	return nil
}

// closeSub must be called with b.mu held.
func (b *Broker) closeSub(sub *subscriber) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
