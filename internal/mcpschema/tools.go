// Copyright (c) 2025 Neomantra Corp

package mcpschema

import (
	mcp_server "github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/mcp-go/mcp"
)

// RegisterSchemaTools registers every tool this package exposes on
// mcpServer.
func (s *Server) RegisterSchemaTools(mcpServer *mcp_server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_types",
			mcp.WithDescription("Lists every declared type (enum, union, struct, table) in the loaded schema"),
		),
		s.listTypesHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("describe_type",
			mcp.WithDescription("Describes one declared type's fields, enum members, or union members"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Declared type name")),
		),
		s.describeTypeHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_attributes",
			mcp.WithDescription("Lists the custom attribute names declared in the schema"),
		),
		s.listAttributesHandler,
	)
}
