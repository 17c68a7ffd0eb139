package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adgenius/adgen/pkg/actions"
	"github.com/adgenius/adgen/pkg/classify"
	"github.com/adgenius/adgen/pkg/compliance"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/history"
)

var (
	getDocumentToolName    = "get_document"
	getDocumentDescription = "Describe the current ad design of an editing session: canvas size, palette and every element with its role (logo, headline, cta, packshot, ...) and relative position."

	applyActionsToolName    = "apply_actions"
	applyActionsDescription = `Apply design actions to a session as one undoable step. Each action is an object with a "type" of layout, color, copy, addText or addImage, an optional "target" (element id, role or kind) and "changes".`

	reflowToolName    = "reflow"
	reflowDescription = "Resize the canvas of a session, either to a named preset such as 9:16 or to an explicit width and height, repositioning every element."

	undoToolName    = "undo"
	undoDescription = "Undo the last change in a session."

	redoToolName    = "redo"
	redoDescription = "Redo the last undone change in a session."

	checkComplianceToolName    = "check_compliance"
	checkComplianceDescription = "Score a session's design against a brand's guidelines: logo placement, palette, call-to-action and headline."
)

// SessionInput names the session a tool operates on.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the editing session id"`
}

// DocumentOutput describes a session's document.
type DocumentOutput struct {
	SessionID string           `json:"session_id"`
	Revision  uint64           `json:"revision"`
	History   history.Status   `json:"history"`
	Summary   classify.Summary `json:"summary"`
}

// ApplyActionsInput carries raw actions for apply_actions.
type ApplyActionsInput struct {
	SessionID string           `json:"session_id" jsonschema:"the editing session id"`
	Actions   []map[string]any `json:"actions" jsonschema:"the actions to apply in order"`
}

// ApplyActionsOutput reports what apply_actions did.
type ApplyActionsOutput struct {
	Applied       int      `json:"applied"`
	Ignored       int      `json:"ignored"`
	Discarded     []string `json:"discarded,omitempty"`
	PendingImages int      `json:"pending_images"`
}

// ReflowInput resizes a session's canvas.
type ReflowInput struct {
	SessionID string `json:"session_id" jsonschema:"the editing session id"`
	Preset    string `json:"preset,omitempty" jsonschema:"a preset id such as 1:1, 4:5 or 9:16"`
	Width     int    `json:"width,omitempty" jsonschema:"the new canvas width when no preset is given"`
	Height    int    `json:"height,omitempty" jsonschema:"the new canvas height when no preset is given"`
}

// HistoryOutput reports the outcome of undo and redo.
type HistoryOutput struct {
	Changed bool           `json:"changed"`
	History history.Status `json:"history"`
}

// ComplianceInput names a session and optionally a brand.
type ComplianceInput struct {
	SessionID string `json:"session_id" jsonschema:"the editing session id"`
	Brand     string `json:"brand,omitempty" jsonschema:"the brand to check against (default: Tesco)"`
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// structured returns out serialized as JSON in a TextContent block, the
// way clients without structured content support read tool results.
func structured(out any) *mcp.CallToolResult {
	data, err := json.Marshal(out)
	if err != nil {
		return toolError("Failed to serialize result: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}

func (s *Server) session(id string) (*editor.Session, *mcp.CallToolResult) {
	if id == "" {
		return nil, toolError("session_id is required")
	}
	sess, err := s.config.Registry.Get(id)
	if err != nil {
		return nil, toolError("Session %s not found", id)
	}
	return sess, nil
}

func (s *Server) handleGetDocument(_ context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, DocumentOutput, error) {
	sess, errResult := s.session(input.SessionID)
	if errResult != nil {
		return errResult, DocumentOutput{}, nil
	}

	out, err := describe(sess)
	if err != nil {
		return toolError("Failed to read document: %v", err), DocumentOutput{}, nil
	}
	return structured(out), out, nil
}

func describe(sess *editor.Session) (DocumentOutput, error) {
	summary, err := sess.Summary()
	if err != nil {
		return DocumentOutput{}, err
	}
	status, err := sess.History()
	if err != nil {
		return DocumentOutput{}, err
	}
	return DocumentOutput{
		SessionID: sess.ID(),
		Revision:  sess.Revision(),
		History:   status,
		Summary:   summary,
	}, nil
}

func (s *Server) handleApplyActions(ctx context.Context, _ *mcp.CallToolRequest, input ApplyActionsInput) (*mcp.CallToolResult, ApplyActionsOutput, error) {
	sess, errResult := s.session(input.SessionID)
	if errResult != nil {
		return errResult, ApplyActionsOutput{}, nil
	}

	raw, err := json.Marshal(input.Actions)
	if err != nil {
		return toolError("Failed to read actions: %v", err), ApplyActionsOutput{}, nil
	}

	acts, errs := actions.Parse(raw)
	out := ApplyActionsOutput{}
	for _, e := range errs {
		out.Discarded = append(out.Discarded, e.Error())
	}

	s.config.Logger.Debug("MCP apply_actions request",
		"session_id", input.SessionID,
		"actions", len(acts),
		"discarded", len(errs),
	)

	res, err := sess.Apply(ctx, acts)
	if err != nil {
		return toolError("Failed to apply actions: %v", err), ApplyActionsOutput{}, nil
	}
	out.Applied = res.Applied
	out.Ignored = res.Ignored
	out.PendingImages = len(res.Pending)

	return structured(out), out, nil
}

func (s *Server) handleReflow(_ context.Context, _ *mcp.CallToolRequest, input ReflowInput) (*mcp.CallToolResult, DocumentOutput, error) {
	sess, errResult := s.session(input.SessionID)
	if errResult != nil {
		return errResult, DocumentOutput{}, nil
	}

	var err error
	if input.Preset != "" {
		_, err = sess.SetPreset(input.Preset)
	} else {
		err = sess.Reflow(input.Width, input.Height)
	}
	if err != nil {
		return toolError("Failed to reflow: %v", err), DocumentOutput{}, nil
	}

	out, err := describe(sess)
	if err != nil {
		return toolError("Failed to read document: %v", err), DocumentOutput{}, nil
	}
	return structured(out), out, nil
}

func (s *Server) handleUndo(_ context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, HistoryOutput, error) {
	return s.travel(input.SessionID, (*editor.Session).Undo)
}

func (s *Server) handleRedo(_ context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, HistoryOutput, error) {
	return s.travel(input.SessionID, (*editor.Session).Redo)
}

func (s *Server) travel(id string, step func(*editor.Session) (bool, error)) (*mcp.CallToolResult, HistoryOutput, error) {
	sess, errResult := s.session(id)
	if errResult != nil {
		return errResult, HistoryOutput{}, nil
	}

	changed, err := step(sess)
	if err != nil {
		return toolError("Failed to update history: %v", err), HistoryOutput{}, nil
	}
	status, err := sess.History()
	if err != nil {
		return toolError("Failed to read history: %v", err), HistoryOutput{}, nil
	}

	out := HistoryOutput{Changed: changed, History: status}
	return structured(out), out, nil
}

func (s *Server) handleCheckCompliance(_ context.Context, _ *mcp.CallToolRequest, input ComplianceInput) (*mcp.CallToolResult, compliance.Result, error) {
	sess, errResult := s.session(input.SessionID)
	if errResult != nil {
		return errResult, compliance.Result{}, nil
	}

	brand := input.Brand
	if brand == "" {
		brand = s.config.Brand
	}

	summary, err := sess.Summary()
	if err != nil {
		return toolError("Failed to read document: %v", err), compliance.Result{}, nil
	}

	out := compliance.Check(summary, brand)
	return structured(out), out, nil
}
