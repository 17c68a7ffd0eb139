// Package mcp provides an MCP (Model Context Protocol) server exposing live
// adgen editing sessions as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/utils"
)

type Config struct {
	// Registry holds the sessions the tools operate on
	Registry *editor.Registry

	// Brand is used by check_compliance when the caller names none
	Brand string

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the editing tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "adgen",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Registry == nil {
			return nil, errors.New("session registry is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        getDocumentToolName,
			Description: getDocumentDescription,
		}, s.handleGetDocument)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        applyActionsToolName,
			Description: applyActionsDescription,
		}, s.handleApplyActions)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        reflowToolName,
			Description: reflowDescription,
		}, s.handleReflow)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        undoToolName,
			Description: undoDescription,
		}, s.handleUndo)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        redoToolName,
			Description: redoDescription,
		}, s.handleRedo)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        checkComplianceToolName,
			Description: checkComplianceDescription,
		}, s.handleCheckCompliance)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
