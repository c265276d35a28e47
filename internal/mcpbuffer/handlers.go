// Copyright (c) 2025 Neomantra Corp

package mcpbuffer

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/flatgo-project/flatgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/segmentio/encoding/json"
)

func (s *Server) decodeBufferHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path must be set"), nil
	}
	typeName := request.GetString("type", "")

	buf, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to read %s: %s", path, err), nil
	}

	root, err := fbs.DecodeRoot(buf, s.Registry, typeName)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to decode %s: %s", path, err), nil
	}

	om, err := fbs.ToNative(root)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to convert %s: %s", path, err), nil
	}
	jbytes, err := om.MarshalJSON()
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}

	s.Logger.Info("decode_buffer", "path", path, "type", typeName)
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) encodeValueHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeName, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type must be set"), nil
	}
	valueJSON, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value must be set"), nil
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return mcp.NewToolResultErrorf("value is not a JSON object: %s", err), nil
	}

	buf, err := fbs.Encode(s.Registry, typeName, value)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to encode: %s", err), nil
	}

	s.Logger.Info("encode_value", "type", typeName, "bytes", len(buf))
	return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(buf)), nil
}
