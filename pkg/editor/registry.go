package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/eventstream"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// RegistryConfig holds the settings every session of a registry shares.
type RegistryConfig struct {
	HistoryCapacity          int
	DisableGestureCoalescing bool
	Images                   ImageQueue
	Publisher                eventstream.Publisher
	Logger                   *slog.Logger
}

// Registry maps session ids to live sessions.
type Registry struct {
	config RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry(c RegistryConfig) *Registry {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		config:   c,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session on doc; nil starts from the default starter
// document.
func (r *Registry) Create(doc *canvas.Document) (*Session, error) {
	s, err := NewSession(Config{
		Document:                 doc,
		HistoryCapacity:          r.config.HistoryCapacity,
		DisableGestureCoalescing: r.config.DisableGestureCoalescing,
		Images:                   r.config.Images,
		Publisher:                r.config.Publisher,
		Logger:                   r.config.Logger,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	r.config.Logger.Info("session created", "session_id", s.ID())
	return s, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Remove disposes the session and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Dispose()
	r.config.Logger.Info("session removed", "session_id", id)
	return nil
}

// Sessions returns the live sessions ordered by id.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(r.sessions))
	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.sessions[id])
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close disposes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Dispose()
	}
}
