// ABOUTME: MCP tool implementations for forum feed operations.
// ABOUTME: Registers read_feed, read_comments, toggle_like, and add_comment tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/feedkit/internal/feed"
	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

func (s *Server) registerFeedTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_feed",
		Description: "Read the forum feed, newest first, with optional keyword search over titles, bodies, and author names.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"search": {"type": "string", "description": "Case-insensitive search term (optional)"},
				"limit": {"type": "number", "description": "Maximum number of posts to return (default 10)"}
			}
		}`),
	}, s.handleReadFeed)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_comments",
		Description: "Read a post's comment thread, newest first.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"post_id": {"type": "string", "description": "ID of the post", "minLength": 1}
			},
			"required": ["post_id"]
		}`),
	}, s.handleReadComments)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "toggle_like",
		Description: "Toggle the current user's like on a post. Liking an already-liked post removes the like.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"post_id": {"type": "string", "description": "ID of the post", "minLength": 1}
			},
			"required": ["post_id"]
		}`),
	}, s.handleToggleLike)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_comment",
		Description: "Add a comment to a post. The creation timestamp is assigned by the server.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"post_id": {"type": "string", "description": "ID of the post", "minLength": 1},
				"text": {"type": "string", "description": "Comment text", "minLength": 1}
			},
			"required": ["post_id", "text"]
		}`),
	}, s.handleAddComment)
}

func (s *Server) handleReadFeed(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Search string `json:"search"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Limit <= 0 {
		args.Limit = 10
	}

	records := s.engine.Query(args.Search)
	if len(records) > args.Limit {
		records = records[:args.Limit]
	}

	if len(records) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No posts found."}},
		}, nil
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("---\n%s — %s [%s]\n", rec.Post.Title, rec.AuthorName, rec.Post.CreatedAt.Format("2006-01-02 15:04:05")))
		sb.WriteString(fmt.Sprintf("%s\n", rec.Post.Content))
		liked := ""
		if rec.HasLiked {
			liked = ", liked by you"
		}
		sb.WriteString(fmt.Sprintf("(%d likes%s, id: %s)\n", rec.LikeCount, liked, rec.Post.ID))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleReadComments(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.PostID == "" {
		return toolError("post_id is required"), nil
	}

	docs, err := s.store.GetCollectionOnce(ctx, models.CommentsCollection(args.PostID), nil)
	if err != nil {
		return toolError("failed to read comments: %v", err), nil
	}

	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comment, err := models.CommentFromDocument(args.PostID, doc)
		if err != nil {
			continue
		}
		comments = append(comments, comment)
	}
	feed.SortComments(comments)

	if len(comments) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No comments yet."}},
		}, nil
	}

	users := s.userNames(ctx)
	var sb strings.Builder
	for _, comment := range comments {
		name := users[comment.UserID]
		if name == "" {
			name = feed.AnonymousName
		}
		sb.WriteString(fmt.Sprintf("---\n%s [%s]\n%s\n", name, comment.CreatedAt.Format("2006-01-02 15:04:05"), comment.Text))
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: sb.String()}},
	}, nil
}

func (s *Server) handleToggleLike(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.PostID == "" {
		return toolError("post_id is required"), nil
	}

	if err := s.engine.ToggleLike(ctx, args.PostID); err != nil {
		return toolError("failed to toggle like: %v", err), nil
	}

	state := "liked"
	if !s.engine.HasLiked(args.PostID) {
		state = "unliked"
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Post %s %s (%d likes)", args.PostID, state, s.engine.LikeCount(args.PostID)),
		}},
	}, nil
}

func (s *Server) handleAddComment(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		PostID string `json:"post_id"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.PostID == "" {
		return toolError("post_id is required"), nil
	}

	if err := s.engine.AddComment(ctx, args.PostID, args.Text); err != nil {
		if store.IsValidation(err) {
			return toolError("invalid comment: %v", err), nil
		}
		return toolError("failed to add comment: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: "Comment added."}},
	}, nil
}

// userNames returns a best-effort id→display-name mapping for rendering.
func (s *Server) userNames(ctx context.Context) map[string]string {
	names := make(map[string]string)
	docs, err := s.store.GetCollectionOnce(ctx, models.CollectionUsers, nil)
	if err != nil {
		return names
	}
	for _, doc := range docs {
		user, err := models.UserFromDocument(doc)
		if err != nil {
			continue
		}
		names[user.ID] = user.FullName
	}
	return names
}
