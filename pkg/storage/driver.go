// Package storage defines project persistence for adgen.
package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Project is a saved document.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AspectRatio string `json:"aspect_ratio,omitempty"`

	// Data is the serialized document snapshot.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Driver defines the interface for persisting projects and per-session
// autosaves in a storage backend.
type Driver interface {
	// SaveProject inserts or replaces a project. An empty ID is assigned a
	// fresh one; CreatedAt is kept across updates and UpdatedAt is stamped.
	SaveProject(ctx context.Context, p *Project) error

	// GetProject retrieves a project by id.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjects returns all projects, most recently updated first.
	ListProjects(ctx context.Context) ([]*Project, error)

	// DeleteProject removes a project. Deleting a missing project returns
	// NotFoundError.
	DeleteProject(ctx context.Context, id string) error

	// SaveAutosave overwrites the autosave slot of a session.
	SaveAutosave(ctx context.Context, sessionID string, data []byte) error

	// LoadAutosave returns the last autosave of a session.
	LoadAutosave(ctx context.Context, sessionID string) ([]byte, error)

	// Close closes the store and releases any resources.
	Close() error
}
