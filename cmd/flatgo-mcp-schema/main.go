// Copyright (c) 2025 Neomantra Corp

// flatgo-mcp-schema is a schema-only Model Context Protocol (MCP)
// server: it bridges LLMs and a loaded FlatBuffers schema's declared
// types. No buffer decode/encode tools are available here; use
// flatgo-mcp-buffer for that.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/flatgo-project/flatgo/internal/cliutil"
	"github.com/flatgo-project/flatgo/internal/mcpschema"
	mcp_server "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
)

const (
	mcpServerVersion = "0.0.1"

	defaultSSEHostPort = ":8890"

	serverInstructions = `flatgo-mcp-schema provides read-only access to a loaded FlatBuffers schema's declared types. No buffer tools are available -- use flatgo-mcp-buffer for decode_buffer and encode_value.

Recommended workflow:
1. Use list_types to discover every declared enum, union, struct, and table.
2. Use describe_type to inspect one type's fields, enum members, or union members.
3. Use list_attributes to see custom schema attributes.`
)

type config struct {
	SchemaPath string

	LogJSON bool

	UseSSE      bool
	SSEHostPort string

	Verbose bool
}

var cfg config
var logger *slog.Logger

func main() {
	var showHelp bool
	var logFilename string

	pflag.StringVarP(&cfg.SchemaPath, "schema", "s", "", "FlatBuffers schema file (required)")
	pflag.StringVarP(&logFilename, "log-file", "l", "", "Log file destination (or MCP_LOG_FILE envvar). Default is stderr")
	pflag.BoolVarP(&cfg.LogJSON, "log-json", "j", false, "Log in JSON (default is plaintext)")
	pflag.StringVarP(&cfg.SSEHostPort, "port", "p", "", "host:port to listen to SSE connections")
	pflag.BoolVarP(&cfg.UseSSE, "sse", "", false, "Use SSE Transport (default is STDIO transport)")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -s <schema.fbs> [opts]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}
	if cfg.SchemaPath == "" {
		fmt.Fprintf(os.Stderr, "missing schema file, use -s/--schema\n")
		os.Exit(1)
	}
	if cfg.SSEHostPort == "" {
		cfg.SSEHostPort = defaultSSEHostPort
	}

	logWriter := os.Stderr
	if logFilename == "" {
		logFilename = os.Getenv("MCP_LOG_FILE")
	}
	if logFilename != "" {
		logFile, err := os.OpenFile(logFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %s\n", err.Error())
			os.Exit(1)
		}
		logWriter = logFile
		defer logFile.Close()
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	if cfg.LogJSON {
		logger = slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))
	} else {
		logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))
	}

	if err := run(); err != nil {
		logger.Error("run loop error", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	reg, err := cliutil.LoadRegistry(cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	mcpServer := mcp_server.NewMCPServer("flatgo-mcp-schema", mcpServerVersion,
		mcp_server.WithRecovery(),
		mcp_server.WithInstructions(serverInstructions),
	)

	srv := mcpschema.NewServer(reg, logger)
	srv.RegisterSchemaTools(mcpServer)

	if cfg.UseSSE {
		sseServer := mcp_server.NewSSEServer(mcpServer)
		logger.Info("MCP SSE server started", "hostPort", cfg.SSEHostPort)
		if err := sseServer.Start(cfg.SSEHostPort); err != nil {
			return fmt.Errorf("MCP SSE server error: %w", err)
		}
	} else {
		logger.Info("MCP STDIO server started")
		if err := mcp_server.ServeStdio(mcpServer); err != nil {
			return fmt.Errorf("MCP STDIO server error: %w", err)
		}
	}
	return nil
}
