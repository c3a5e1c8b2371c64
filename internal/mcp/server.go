// ABOUTME: MCP server initialization and configuration for feedkit.
// ABOUTME: Sets up server with feed and chart tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/feedkit/internal/feed"
	"github.com/2389-research/feedkit/internal/store"
)

// Server wraps the MCP server with the feed engine and its store.
type Server struct {
	mcp    *gomcp.Server
	engine *feed.Engine
	store  store.Store
}

// NewServer creates an MCP server exposing feed and chart capabilities.
func NewServer(engine *feed.Engine, st store.Store) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("feed engine is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "feedkit",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		engine: engine,
		store:  st,
	}

	s.registerFeedTools()
	s.registerChartTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
