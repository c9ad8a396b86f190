// Package server provides the MCP server exposing the geocoding and viewport
// tools over stdio.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/geoviewport/pkg/tools"
	"github.com/NERVsystems/geoviewport/pkg/tools/prompts"
	"github.com/NERVsystems/geoviewport/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = "geoviewport-mcp-server"

// Server encapsulates the MCP server with the map tools.
type Server struct {
	srv      *server.MCPServer
	registry *tools.Registry
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(registry *tools.Registry, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	registry.RegisterTools(srv)
	prompts.RegisterPrompts(srv)

	return &Server{srv: srv, registry: registry}, nil
}

// Tools lists the names of the registered tools.
func (s *Server) Tools() []string {
	defs := s.registry.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// Run starts the MCP server using stdin/stdout for communication.
func (s *Server) Run() error {
	return server.ServeStdio(s.srv)
}
