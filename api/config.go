// Package api provides the HTTP API for live ad editing sessions, saved
// projects and the AI design assistant.
package api

import (
	"github.com/adgenius/adgen/pkg/chat"
	"github.com/adgenius/adgen/pkg/eventstream/broker"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Chat answers chat messages; nil disables the chat endpoint.
	Chat *chat.Service

	// ChatPerMinute bounds chat requests per session. Zero disables the
	// limit.
	ChatPerMinute int

	// Brand is checked by compliance requests that name none.
	Brand string

	// Events feeds GET /sessions/:id/events. It must also be among the
	// publishers the registry's sessions publish to. Nil disables the
	// endpoint.
	Events *broker.Broker

	// MCPNoop serves an MCP endpoint without tools.
	MCPNoop bool
}
