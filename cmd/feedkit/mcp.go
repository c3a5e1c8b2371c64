// ABOUTME: MCP server command implementation for feedkit.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/feedkit/internal/feed"
	mcppkg "github.com/2389-research/feedkit/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents like Claude
to interact with the feed and task charts through a standardized protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := feed.New(globalStore, currentUserID())
	defer engine.Close()

	// Prefer live subscriptions; fall back to a one-shot read when the
	// store has no watch endpoint available.
	if err := engine.Start(ctx); err != nil {
		if err := engine.Refresh(ctx); err != nil {
			return err
		}
	}

	server, err := mcppkg.NewServer(engine, globalStore)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
