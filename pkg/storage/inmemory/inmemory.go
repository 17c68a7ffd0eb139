// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adgenius/adgen/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	mu sync.RWMutex

	projects  map[string]*storage.Project
	autosaves map[string][]byte

	// revisions orders saves that share a timestamp.
	revisions map[string]uint64
	revision  uint64

	now func() time.Time
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		projects:  make(map[string]*storage.Project),
		autosaves: make(map[string][]byte),
		revisions: make(map[string]uint64),
		now:       time.Now,
	}
}

// SaveProject stores a copy of p.
func (s *Driver) SaveProject(_ context.Context, p *storage.Project) error {
	if p == nil {
		return errors.New("cannot store nil project")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if existing, ok := s.projects[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	s.revision++
	s.revisions[p.ID] = s.revision
	s.projects[p.ID] = copyProject(p)
	return nil
}

// GetProject retrieves a project by id.
func (s *Driver) GetProject(_ context.Context, id string) (*storage.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "project", ID: id}
	}
	return copyProject(p), nil
}

// ListProjects returns every project, most recently updated first.
func (s *Driver) ListProjects(_ context.Context) ([]*storage.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, copyProject(p))
	}
	slices.SortFunc(out, func(a, b *storage.Project) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(s.revisions[b.ID], s.revisions[a.ID])
	})
	return out, nil
}

// DeleteProject removes a project.
func (s *Driver) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return storage.NotFoundError{Kind: "project", ID: id}
	}
	delete(s.projects, id)
	delete(s.revisions, id)
	return nil
}

// SaveAutosave overwrites the session's autosave slot.
func (s *Driver) SaveAutosave(_ context.Context, sessionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosaves[sessionID] = slices.Clone(data)
	return nil
}

// LoadAutosave returns the session's autosave.
func (s *Driver) LoadAutosave(_ context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.autosaves[sessionID]
	if !ok {
		return nil, storage.NotFoundError{Kind: "autosave", ID: sessionID}
	}
	return slices.Clone(data), nil
}

// Close is a no-op.
func (s *Driver) Close() error {
	return nil
}

func copyProject(p *storage.Project) *storage.Project {
	out := *p
	out.Data = slices.Clone(p.Data)
	return &out
}
