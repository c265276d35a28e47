// Copyright (c) 2025 Neomantra Corp

// Package mcpbuffer exposes buffer encode/decode operations over the
// Model Context Protocol: decode_buffer reads a local buffer file and
// renders it as native JSON; encode_value does the reverse.
package mcpbuffer

import (
	"log/slog"

	"github.com/flatgo-project/flatgo"
)

// Server holds the shared state behind every registered tool.
type Server struct {
	Registry *fbs.Registry
	Logger   *slog.Logger
}

// NewServer wraps reg for MCP tool handlers.
func NewServer(reg *fbs.Registry, logger *slog.Logger) *Server {
	return &Server{Registry: reg, Logger: logger}
}
