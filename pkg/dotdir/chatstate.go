package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	chatStateFile = "chat.json"
)

// ChatState is the persisted state of the "adgen chat" client: the editing
// session it talks to and the conversation so far.
type ChatState struct {
	// SessionID is the id of the editing session on the server.
	SessionID string `json:"session_id"`

	// APITarget is the server the session lives on.
	APITarget string `json:"api_target,omitempty"`

	Brand    string `json:"brand,omitempty"`
	Platform string `json:"platform,omitempty"`

	// Messages is the conversation history in chronological order.
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is a single turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadChatState loads the chat state from a target .adgen/chat.json.
// Returns nil, nil if no chat state exists.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadChatState(overrideDir string) (*ChatState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, chatStateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chat state: %w", err)
	}

	state := &ChatState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing chat state: %w", err)
	}

	return state, nil
}

// SaveChatState persists the chat state to a target .adgen/chat.json.
func (m *Manager) SaveChatState(state *ChatState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil chat state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chat state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, chatStateFile), data, 0o600); err != nil {
		return fmt.Errorf("writing chat state: %w", err)
	}

	return nil
}

// ClearChatState removes the chat state file so the next chat starts a new
// session. Returns nil if the file doesn't exist.
func (m *Manager) ClearChatState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, chatStateFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing chat state: %w", err)
	}

	return nil
}
