package editor

import (
	"context"
	"fmt"

	"github.com/adgenius/adgen/pkg/canvas"
	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/layout"
	"github.com/adgenius/adgen/pkg/storage"
)

// Save stores the document as a project and clears the redo stack. The
// first save creates a project; later saves update it.
func (s *Session) Save(ctx context.Context, driver storage.Driver, name string) (*storage.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, canvas.ErrDisposed
	}

	snap, err := s.doc.Marshal()
	if err != nil {
		return nil, err
	}

	aspect := ""
	if p, ok := layout.PresetFor(s.doc.Width, s.doc.Height); ok {
		aspect = p.ID
	}

	p := &storage.Project{
		ID:          s.projectID,
		Name:        name,
		AspectRatio: aspect,
		Data:        []byte(snap),
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	if err := driver.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", s.id, err)
	}

	s.projectID = p.ID
	s.history.ClearRedo()
	s.logger.Info("project saved", "project_id", p.ID)
	s.publish(eventstream.EventTypeProjectSaved, "save")
	return p, nil
}

// Open replaces the document with a stored project.
func (s *Session) Open(ctx context.Context, driver storage.Driver, projectID string) error {
	p, err := driver.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	doc, err := canvas.Unmarshal(canvas.Snapshot(p.Data))
	if err != nil {
		return fmt.Errorf("opening project %s: %w", projectID, err)
	}

	if err := s.Load(doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.projectID = p.ID
	s.mu.Unlock()
	return nil
}
