// Package history is the bounded undo/redo stack of one editing session.
// Entries are serialized document snapshots, so restoring never aliases a
// live document.
package history

import (
	"fmt"

	"github.com/adgenius/adgen/pkg/canvas"
)

// DefaultCapacity is the number of undo entries kept before the oldest is
// evicted.
const DefaultCapacity = 20

// Option configures a Manager created with NewManager.
type Option func(*Manager)

// WithCapacity sets the undo stack bound. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithGestureCoalescing toggles collapsing every mutation between
// BeginGesture and EndGesture into a single undo entry.
func WithGestureCoalescing(enabled bool) Option {
	return func(m *Manager) {
		m.coalesce = enabled
	}
}

// Status reports what undo and redo would do.
type Status struct {
	CanUndo   bool `json:"canUndo"`
	CanRedo   bool `json:"canRedo"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

// Manager owns the undo and redo stacks. It is not safe for concurrent use;
// the owning session serializes access.
type Manager struct {
	undo     []canvas.Snapshot
	redo     []canvas.Snapshot
	capacity int
	coalesce bool

	// inGesture is set between BeginGesture and EndGesture; recorded marks
	// that the gesture already produced its entry. Undo and Redo clear
	// recorded so the next change inside the gesture records again.
	inGesture bool
	recorded  bool
}

// NewManager returns an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		capacity: DefaultCapacity,
		coalesce: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordBeforeMutation snapshots doc onto the undo stack ahead of a change
// and discards the redo stack. Inside a coalesced gesture only the first
// call records; later ones still discard redo.
func (m *Manager) RecordBeforeMutation(doc *canvas.Document) error {
	if m.coalesce && m.inGesture && m.recorded {
		m.redo = nil
		return nil
	}

	snap, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}

	m.push(snap)
	m.redo = nil
	if m.inGesture {
		m.recorded = true
	}
	return nil
}

func (m *Manager) push(snap canvas.Snapshot) {
	m.undo = append(m.undo, snap)
	if over := len(m.undo) - m.capacity; over > 0 {
		m.undo = append(m.undo[:0:0], m.undo[over:]...)
	}
}

// Undo returns the previous document and pushes current onto the redo
// stack. With nothing to undo it returns ok == false and changes nothing.
func (m *Manager) Undo(current *canvas.Document) (*canvas.Document, bool, error) {
	if len(m.undo) == 0 {
		return nil, false, nil
	}

	prev, err := canvas.Unmarshal(m.undo[len(m.undo)-1])
	if err != nil {
		return nil, false, fmt.Errorf("undo: %w", err)
	}
	snap, err := current.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("undo: %w", err)
	}

	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, snap)
	m.recorded = false
	return prev, true, nil
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current *canvas.Document) (*canvas.Document, bool, error) {
	if len(m.redo) == 0 {
		return nil, false, nil
	}

	next, err := canvas.Unmarshal(m.redo[len(m.redo)-1])
	if err != nil {
		return nil, false, fmt.Errorf("redo: %w", err)
	}
	snap, err := current.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("redo: %w", err)
	}

	m.redo = m.redo[:len(m.redo)-1]
	m.push(snap)
	m.recorded = false
	return next, true, nil
}

// ClearRedo empties the redo stack, leaving undo untouched.
func (m *Manager) ClearRedo() {
	m.redo = nil
}

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
	m.inGesture = false
	m.recorded = false
}

// BeginGesture opens a continuous gesture such as a drag. Nothing is
// recorded until the first mutation inside it, so a gesture that changes
// nothing leaves both stacks alone. Calls while a gesture is already open
// are ignored.
func (m *Manager) BeginGesture() {
	if m.inGesture {
		return
	}
	m.inGesture = true
	m.recorded = false
}

// EndGesture closes the current gesture.
func (m *Manager) EndGesture() {
	m.inGesture = false
	m.recorded = false
}

// InGesture reports whether a gesture is open.
func (m *Manager) InGesture() bool {
	return m.inGesture
}

// Status returns the current stack depths.
func (m *Manager) Status() Status {
	return Status{
		CanUndo:   len(m.undo) > 0,
		CanRedo:   len(m.redo) > 0,
		UndoDepth: len(m.undo),
		RedoDepth: len(m.redo),
	}
}

// Entries returns the undo stack most recent first.
func (m *Manager) Entries() []canvas.Snapshot {
	out := make([]canvas.Snapshot, len(m.undo))
	for i, s := range m.undo {
		out[len(m.undo)-1-i] = s
	}
	return out
}
