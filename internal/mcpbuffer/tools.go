// Copyright (c) 2025 Neomantra Corp

package mcpbuffer

import (
	mcp_server "github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/mcp-go/mcp"
)

// RegisterBufferTools registers every tool this package exposes on
// mcpServer.
func (s *Server) RegisterBufferTools(mcpServer *mcp_server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("decode_buffer",
			mcp.WithDescription("Decodes a local FlatBuffers buffer file and returns its native JSON representation"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the buffer file")),
			mcp.WithString("type", mcp.Description("Root type name; omit to resolve from the buffer's file identifier")),
		),
		s.decodeBufferHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("encode_value",
			mcp.WithDescription("Encodes a native JSON value as a FlatBuffers buffer, returned base64-encoded"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Root type name")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Native value as a JSON object")),
		),
		s.encodeValueHandler,
	)
}
