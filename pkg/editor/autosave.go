package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/storage"
)

// DefaultAutosaveInterval is how often live sessions are written to their
// autosave slot.
const DefaultAutosaveInterval = 3 * time.Second

// Autosaver periodically writes every changed session to storage.
type Autosaver struct {
	registry *Registry
	driver   storage.Driver
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	saved map[string]uint64
}

// NewAutosaver returns an autosaver; a zero interval uses
// DefaultAutosaveInterval.
func NewAutosaver(r *Registry, driver storage.Driver, interval time.Duration, logger *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Autosaver{
		registry: r,
		driver:   driver,
		interval: interval,
		logger:   logger,
		saved:    make(map[string]uint64),
	}
}

// Run saves on every tick until ctx is done, then saves once more.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush on a fresh context; ctx is already cancelled.
			flushCtx, cancel := context.WithTimeout(context.Background(), a.interval)
			a.SaveAll(flushCtx)
			cancel()
			return
		case <-ticker.C:
			a.SaveAll(ctx)
		}
	}
}

// SaveAll writes each session whose revision moved since its last autosave
// and returns how many were written.
func (a *Autosaver) SaveAll(ctx context.Context) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	live := make(map[string]struct{})
	for _, s := range a.registry.Sessions() {
		live[s.ID()] = struct{}{}

		snap, rev, err := s.autosnapshot()
		if err != nil {
			continue
		}
		if last, ok := a.saved[s.ID()]; ok && last == rev {
			continue
		}

		if err := a.driver.SaveAutosave(ctx, s.ID(), snap); err != nil {
			a.logger.Warn("autosave failed", "session_id", s.ID(), "error", err)
			continue
		}
		a.saved[s.ID()] = rev
		n++
	}

	for id := range a.saved {
		if _, ok := live[id]; !ok {
			delete(a.saved, id)
		}
	}

	if n > 0 {
		a.logger.Debug("autosaved sessions", "count", n)
	}
	return n
}

// autosnapshot returns the document and its revision read under one lock.
func (s *Session) autosnapshot() ([]byte, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, 0, canvas.ErrDisposed
	}
	snap, err := s.doc.Marshal()
	return snap, s.revision, err
}
