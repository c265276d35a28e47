// Copyright (c) 2025 Neomantra Corp

package mcpschema

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/segmentio/encoding/json"
)

func (s *Server) listTypesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := listTypes(s.Registry.Schema())
	jbytes, err := json.Marshal(summaries)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal results: %s", err), nil
	}
	s.Logger.Info("list_types", "count", len(summaries))
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) describeTypeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name must be set"), nil
	}
	decl, ok := s.Registry.LookupType(name)
	if !ok {
		return mcp.NewToolResultErrorf("unknown type %q", name), nil
	}

	jbytes, err := json.Marshal(describeType(decl))
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}
	s.Logger.Info("describe_type", "name", name)
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) listAttributesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema := s.Registry.Schema()
	names := make([]string, 0, len(schema.Attributes))
	for name := range schema.Attributes {
		names = append(names, name)
	}
	jbytes, err := json.Marshal(names)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}
	s.Logger.Info("list_attributes", "count", len(names))
	return mcp.NewToolResultText(string(jbytes)), nil
}
