// Package chat is the AI collaborator. It builds a prompt from the user's
// message and a summary of the current document, calls a language model, and
// splits the reply into display text and document actions.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/classify"
)

// MaxHistoryTurns is how many previous turns are replayed to the model.
const MaxHistoryTurns = 10

const (
	defaultBrand    = "Tesco"
	defaultPlatform = "Instagram"
)

// Roles of a Turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one chat message with the context it was sent in.
type Request struct {
	Message  string
	Summary  classify.Summary
	Brand    string
	Platform string
	History  []Turn
}

// Reply is the model's answer. Text never contains the actions block.
// Discarded lists actions in the block that failed to parse or validate.
type Reply struct {
	Text      string
	Actions   []actions.Action
	Discarded []error
}

// Service talks to the model.
type Service struct {
	call   Caller
	logger *slog.Logger
}

// NewService returns a Service using call.
func NewService(call Caller, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{call: call, logger: logger}
}

// Chat sends req to the model. A failed call is returned as an error; the
// document is never touched here.
func (s *Service) Chat(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Reply{}, errors.New("empty message")
	}

	raw, err := s.call(ctx, BuildPrompt(req))
	if err != nil {
		s.logger.Error("chat call failed", "error", err)
		return Reply{}, fmt.Errorf("calling model: %w", err)
	}

	text, acts, errs := actions.ExtractFromReply(raw)
	for _, e := range errs {
		s.logger.Warn("discarding action from reply", "error", e)
	}
	s.logger.Debug("chat reply", "actions", len(acts), "discarded", len(errs))

	return Reply{Text: text, Actions: acts, Discarded: errs}, nil
}

// BuildPrompt renders the prompt sent for req.
func BuildPrompt(req Request) string {
	brand := req.Brand
	if brand == "" {
		brand = defaultBrand
	}
	platform := req.Platform
	if platform == "" {
		platform = defaultPlatform
	}

	var b strings.Builder
	b.WriteString(`You are AdGenius, a creative AI assistant for retail ad design. Be concise and helpful.

RULES:
- Keep responses SHORT (2-3 sentences)
- Use bullet points for lists
- Be friendly but brief

`)
	fmt.Fprintf(&b, "CONTEXT: %s ad for %s.\n\n", brand, platform)

	b.WriteString("CURRENT DESIGN:\n")
	b.WriteString(req.Summary.String())
	b.WriteString("\n")

	history := req.History
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Previous:\n")
		for _, t := range history {
			speaker := "AdGenius"
			if t.Role == RoleUser {
				speaker = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n\n", speaker, t.Content)
		}
	}

	fmt.Fprintf(&b, "User: %s\n\n", req.Message)
	b.WriteString(`WHEN USER WANTS DESIGN CHANGES, add this at the end:
[ACTIONS]{"actions":[{"type":"layout","target":"logo","changes":{"scale":1.5}}]}[/ACTIONS]

Examples:
- "Make logo bigger" -> type:"layout", target:"logo", changes:{scale:1.5}
- "Change headline" -> type:"copy", target:"headline", changes:{text:"New Text"}
- "Use warmer colors" -> type:"color", target:"palette", changes:{primary:"#FF6B35"}
- "Pink background" -> type:"color", target:"palette", changes:{background:"#FFB6C1"}
- "Center the product" -> type:"layout", target:"packshot", changes:{x:0.5,y:0.5}
- "Add a tagline" -> type:"addText", changes:{text:"Fresh every day"}
- "Add this photo" -> type:"addImage", url:"https://..."

Respond:`)
	return b.String()
}
