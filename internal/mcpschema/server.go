// Copyright (c) 2025 Neomantra Corp

// Package mcpschema exposes a parsed FlatBuffers Registry over the
// Model Context Protocol, letting an LLM client browse declared types
// without reading the schema source itself.
package mcpschema

import (
	"log/slog"

	"github.com/flatgo-project/flatgo"
)

// Server holds the shared state behind every registered tool: the
// schema registry to answer questions against, and a logger.
type Server struct {
	Registry *fbs.Registry
	Logger   *slog.Logger
}

// NewServer wraps reg for MCP tool handlers.
func NewServer(reg *fbs.Registry, logger *slog.Logger) *Server {
	return &Server{Registry: reg, Logger: logger}
}
