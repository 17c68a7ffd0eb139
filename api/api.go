package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	apimcp "github.com/adgenius/adgen/api/mcp"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/ratelimit"
	"github.com/adgenius/adgen/pkg/storage"
)

// Server is the API server for editing sessions and stored projects.
type Server struct {
	config   Config
	registry *editor.Registry
	storer   storage.Driver
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server.
// The registry and storer are injected so the autosaver and the MCP tools
// share the same sessions and store.
func NewServer(config Config, registry *editor.Registry, storer storage.Driver, logger *slog.Logger) (*Server, error) {
	if registry == nil {
		return nil, errors.New("session registry is required")
	}
	if storer == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Registry: registry,
		Brand:    config.Brand,
		Noop:     config.MCPNoop,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		registry: registry,
		storer:   storer,
		logger:   logger,
		app:      app,
	}
	if config.ChatPerMinute > 0 {
		s.limiter = ratelimit.PerMinute(config.ChatPerMinute)
	}

	app.Get("/ping", s.handlePing)
	app.Get("/presets", s.handlePresets)
	app.Get("/templates", s.handleTemplates)
	app.Get("/exports", s.handleExports)
	app.Post("/copy/validate", s.handleValidateCopy)

	app.Get("/sessions", s.handleListSessions)
	app.Post("/sessions", s.handleCreateSession)
	app.Get("/sessions/:id", s.handleGetSession)
	app.Delete("/sessions/:id", s.handleDeleteSession)
	app.Post("/sessions/:id/actions", s.handleApplyActions)
	app.Post("/sessions/:id/undo", s.handleUndo)
	app.Post("/sessions/:id/redo", s.handleRedo)
	app.Post("/sessions/:id/reflow", s.handleReflow)
	app.Post("/sessions/:id/gesture/begin", s.handleBeginGesture)
	app.Post("/sessions/:id/gesture/end", s.handleEndGesture)
	app.Post("/sessions/:id/chat", s.handleChat)
	app.Get("/sessions/:id/events", s.handleEvents)
	app.Get("/sessions/:id/compliance", s.handleCompliance)
	app.Get("/sessions/:id/export.svg", s.handleExportSVG)
	app.Post("/sessions/:id/save", s.handleSave)
	app.Post("/sessions/:id/open/:pid", s.handleOpen)

	app.Get("/projects", s.handleListProjects)
	app.Get("/projects/:id", s.handleGetProject)
	app.Delete("/projects/:id", s.handleDeleteProject)

	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server. Open event streams are
// ended first so they don't hold the shutdown open.
func (s *Server) Shutdown() error {
	if s.config.Events != nil {
		_ = s.config.Events.Close()
	}
	if s.limiter != nil {
		s.limiter.Close()
	}
	return s.app.Shutdown()
}
