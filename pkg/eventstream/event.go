package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentChanged is emitted after an editing session commits a
	// mutation.
	EventTypeDocumentChanged = "adgen.document.changed"

	// EventTypeProjectSaved is emitted after a session is saved as a project.
	EventTypeProjectSaved = "adgen.project.saved"
)

// DocumentEvent is a transport-neutral event payload describing a change to
// an editing session's document.
type DocumentEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id"`

	// Operation names the session operation that committed the change,
	// e.g. "apply", "reflow", "undo".
	Operation string `json:"operation"`

	// Revision is the session revision after the change. Consumers can use
	// it to discard stale events.
	Revision uint64 `json:"revision"`

	ProjectID    string `json:"project_id,omitempty"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ElementCount int    `json:"element_count"`
	UndoDepth    int    `json:"undo_depth"`
	RedoDepth    int    `json:"redo_depth"`
}

// NewDocumentEvent returns an event of the given type stamped with a fresh id
// and the current time.
func NewDocumentEvent(eventType, sessionID, operation string) *DocumentEvent {
	return &DocumentEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
		Operation:     operation,
	}
}
