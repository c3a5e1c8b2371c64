// ABOUTME: Tests for document-to-model decoding.
// ABOUTME: Covers timestamp encodings, reaction maps, and legacy field fallbacks.
package models

import (
	"testing"
	"time"

	"github.com/2389-research/feedkit/internal/store"
)

func TestPostFromDocument(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := store.Document{
		"id":        "post-1",
		"title":     "Hello",
		"content":   "body",
		"imageUrl":  "https://example.com/pic.png",
		"userId":    "u1",
		"createdAt": created,
		"reactions": map[string]any{"u2": "like"},
	}

	post, err := PostFromDocument(doc)
	if err != nil {
		t.Fatalf("PostFromDocument error: %v", err)
	}
	if post.ID != "post-1" || post.Title != "Hello" || post.UserID != "u1" {
		t.Errorf("unexpected post: %+v", post)
	}
	if !post.CreatedAt.Equal(created) {
		t.Errorf("expected createdAt %v, got %v", created, post.CreatedAt)
	}
	if post.Reactions["u2"] != "like" {
		t.Errorf("unexpected reactions: %v", post.Reactions)
	}
}

func TestPostFromDocumentMissingID(t *testing.T) {
	if _, err := PostFromDocument(store.Document{"title": "no id"}); err == nil {
		t.Error("expected error for document without id")
	}
}

func TestPostFromDocumentMissingReactions(t *testing.T) {
	post, err := PostFromDocument(store.Document{"id": "p"})
	if err != nil {
		t.Fatalf("PostFromDocument error: %v", err)
	}
	if post.Reactions == nil {
		t.Error("expected non-nil empty reactions map")
	}
	if len(post.Reactions) != 0 {
		t.Errorf("expected empty reactions, got %v", post.Reactions)
	}
}

func TestTimeFieldEncodings(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"native time", want},
		{"rfc3339 string", "2024-06-01T12:00:00Z"},
		{"unix millis float", float64(want.UnixMilli())},
		{"unix millis int", want.UnixMilli()},
		{"firestore map", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := PostFromDocument(store.Document{"id": "p", "createdAt": tt.value})
			if err != nil {
				t.Fatalf("PostFromDocument error: %v", err)
			}
			if !post.CreatedAt.Equal(want) {
				t.Errorf("expected %v, got %v", want, post.CreatedAt)
			}
		})
	}
}

func TestTimeFieldUnparseable(t *testing.T) {
	post, err := PostFromDocument(store.Document{"id": "p", "createdAt": "not a date"})
	if err != nil {
		t.Fatalf("PostFromDocument error: %v", err)
	}
	if !post.CreatedAt.IsZero() {
		t.Errorf("expected zero time for unparseable value, got %v", post.CreatedAt)
	}
}

func TestCommentFromDocumentTextFallback(t *testing.T) {
	comment, err := CommentFromDocument("post-1", store.Document{
		"id":      "c1",
		"userId":  "u1",
		"content": "legacy field",
	})
	if err != nil {
		t.Fatalf("CommentFromDocument error: %v", err)
	}
	if comment.Text != "legacy field" {
		t.Errorf("expected legacy content fallback, got %q", comment.Text)
	}
	if comment.PostID != "post-1" {
		t.Errorf("expected post id carried through, got %q", comment.PostID)
	}
}

func TestCommentFromDocumentPrefersText(t *testing.T) {
	comment, err := CommentFromDocument("post-1", store.Document{
		"id":      "c1",
		"text":    "current",
		"content": "legacy",
	})
	if err != nil {
		t.Fatalf("CommentFromDocument error: %v", err)
	}
	if comment.Text != "current" {
		t.Errorf("expected text field to win, got %q", comment.Text)
	}
}

func TestTaskFromDocumentOpenTask(t *testing.T) {
	task, err := TaskFromDocument(store.Document{"id": "t1", "title": "Eventos"})
	if err != nil {
		t.Fatalf("TaskFromDocument error: %v", err)
	}
	if !task.ClosedAt.IsZero() {
		t.Errorf("expected zero ClosedAt for open task, got %v", task.ClosedAt)
	}
}

func TestCommentsCollectionPath(t *testing.T) {
	if got := CommentsCollection("post-1"); got != "forums/post-1/comments" {
		t.Errorf("unexpected comments path: %s", got)
	}
}
