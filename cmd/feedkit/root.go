// ABOUTME: Root Cobra command and global flags for feedkit CLI.
// ABOUTME: Sets up lifecycle hooks for config loading and store initialization.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/feedkit/internal/config"
	"github.com/2389-research/feedkit/internal/store"
)

var globalConfig *config.Config
var globalStore store.Store
var localMode bool

var rootCmd = &cobra.Command{
	Use:   "feedkit",
	Short: "Live forum feed and task charts for humans and agents",
	Long: `
███████╗███████╗███████╗██████╗ ██╗  ██╗██╗████████╗
██╔════╝██╔════╝██╔════╝██╔══██╗██║ ██╔╝██║╚══██╔══╝
█████╗  █████╗  █████╗  ██║  ██║█████╔╝ ██║   ██║
██╔══╝  ██╔══╝  ██╔══╝  ██║  ██║██╔═██╗ ██║   ██║
██║     ███████╗███████╗██████╔╝██║  ██╗██║   ██║
╚═╝     ╚══════╝╚══════╝╚═════╝ ╚═╝  ╚═╝╚═╝   ╚═╝

Browse the team forum feed, react, comment, and chart task activity.
Backed by a remote document store, or run with --local demo data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		if localMode {
			mem := store.NewMemoryStore()
			seedDemoData(mem)
			globalStore = mem
			return nil
		}

		if !cfg.HasRemote() {
			return fmt.Errorf("no remote store configured: run 'feedkit setup' or pass --local for demo data")
		}
		globalStore = store.NewRemoteStore(cfg.API.URL, cfg.API.Key, cfg.API.TeamID)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "use an in-memory store seeded with demo data")
}

// currentUserID returns the configured session user, or "demo-user" in
// local mode so writes work out of the box.
func currentUserID() string {
	if globalConfig != nil && globalConfig.Session.UserID != "" {
		return globalConfig.Session.UserID
	}
	if localMode {
		return "demo-user"
	}
	return ""
}
