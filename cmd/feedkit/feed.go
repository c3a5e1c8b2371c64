// ABOUTME: Cobra commands for the forum feed: browse, list, like, comment.
// ABOUTME: Browse runs the live TUI; the rest are one-shot operations.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/feedkit/internal/feed"
	"github.com/2389-research/feedkit/internal/tui"
)

var feedSearch string
var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse and interact with the forum feed",
}

var feedBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive live feed browser",
	RunE:  runFeedBrowse,
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the feed, newest first",
	RunE:  runFeedList,
}

var feedLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedLike,
}

var feedCommentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Add a comment to a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runFeedComment,
}

func init() {
	feedListCmd.Flags().StringVar(&feedSearch, "search", "", "filter posts by keyword (title, body, author)")
	feedListCmd.Flags().IntVar(&feedLimit, "limit", 20, "maximum number of posts to print")

	feedCmd.AddCommand(feedBrowseCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedLikeCmd)
	feedCmd.AddCommand(feedCommentCmd)
	rootCmd.AddCommand(feedCmd)
}

func runFeedBrowse(cmd *cobra.Command, args []string) error {
	engine := feed.New(globalStore, currentUserID())
	defer engine.Close()

	if err := engine.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start feed engine: %w", err)
	}

	model := tui.NewFeedModel(engine)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runFeedList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	engine := feed.New(globalStore, currentUserID())
	defer engine.Close()

	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	records := engine.Query(feedSearch)
	if len(records) > feedLimit {
		records = records[:feedLimit]
	}
	if len(records) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	for _, rec := range records {
		liked := ""
		if rec.HasLiked {
			liked = " ♥"
		}
		fmt.Printf("%s  %s — %s (%d likes%s)\n", rec.Post.ID, rec.Post.Title, rec.AuthorName, rec.LikeCount, liked)
		fmt.Printf("    %s\n", rec.Post.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runFeedLike(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	engine := feed.New(globalStore, currentUserID())
	defer engine.Close()

	if err := engine.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	if err := engine.ToggleLike(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to toggle like: %w", err)
	}

	state := "Liked"
	if !engine.HasLiked(args[0]) {
		state = "Unliked"
	}
	fmt.Printf("%s post %s (%d likes)\n", state, args[0], engine.LikeCount(args[0]))
	return nil
}

func runFeedComment(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	engine := feed.New(globalStore, currentUserID())
	defer engine.Close()

	text := strings.Join(args[1:], " ")
	if err := engine.AddComment(ctx, args[0], text); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	fmt.Println("Comment added.")
	return nil
}
