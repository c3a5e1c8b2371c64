// ABOUTME: Core data models for forum posts, users, comments, and tasks.
// ABOUTME: Decodes untyped store documents into typed records with shape validation.
package models

import (
	"fmt"
	"time"

	"github.com/2389-research/feedkit/internal/store"
)

// Collection names in the hosted store.
const (
	CollectionForums = "forums"
	CollectionUsers  = "users"
	CollectionTasks  = "tasks"
)

// ReactionLike is the only reaction kind currently in use.
const ReactionLike = "like"

// CommentsCollection returns the path of a post's comment subcollection.
func CommentsCollection(postID string) string {
	return CollectionForums + "/" + postID + "/comments"
}

// Post is a forum post. Reactions maps user id to reaction kind; a user
// has at most one entry per post, so the like count is the map size.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	UserID    string
	CreatedAt time.Time
	Reactions map[string]string
}

// User is the read-only profile projection joined into the feed.
type User struct {
	ID       string
	FullName string
	PhotoURL string
}

// Comment is one entry in a post's comment thread. Append-only; ordering
// key is CreatedAt with ties broken by store-assigned id.
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// Task is an entry in the tasks collection used by the chart pipeline.
// ClosedAt is zero when the task has not been closed.
type Task struct {
	ID       string
	Title    string
	ClosedAt time.Time
}

// PostFromDocument decodes a post from an untyped store document.
func PostFromDocument(doc store.Document) (Post, error) {
	id := doc.ID()
	if id == "" {
		return Post{}, fmt.Errorf("post document missing id")
	}
	return Post{
		ID:        id,
		Title:     stringField(doc, "title"),
		Content:   stringField(doc, "content"),
		ImageURL:  stringField(doc, "imageUrl"),
		UserID:    stringField(doc, "userId"),
		CreatedAt: timeField(doc, "createdAt"),
		Reactions: reactionsField(doc),
	}, nil
}

// UserFromDocument decodes a user profile from an untyped store document.
func UserFromDocument(doc store.Document) (User, error) {
	id := doc.ID()
	if id == "" {
		return User{}, fmt.Errorf("user document missing id")
	}
	return User{
		ID:       id,
		FullName: stringField(doc, "fullName"),
		PhotoURL: stringField(doc, "photoURL"),
	}, nil
}

// CommentFromDocument decodes a comment from an untyped store document.
// Accepts both "text" and the legacy "content" field spelling.
func CommentFromDocument(postID string, doc store.Document) (Comment, error) {
	id := doc.ID()
	if id == "" {
		return Comment{}, fmt.Errorf("comment document missing id")
	}
	text := stringField(doc, "text")
	if text == "" {
		text = stringField(doc, "content")
	}
	return Comment{
		ID:        id,
		PostID:    postID,
		UserID:    stringField(doc, "userId"),
		Text:      text,
		CreatedAt: timeField(doc, "createdAt"),
	}, nil
}

// TaskFromDocument decodes a task from an untyped store document.
func TaskFromDocument(doc store.Document) (Task, error) {
	id := doc.ID()
	if id == "" {
		return Task{}, fmt.Errorf("task document missing id")
	}
	return Task{
		ID:       id,
		Title:    stringField(doc, "title"),
		ClosedAt: timeField(doc, "closedAt"),
	}, nil
}

func stringField(doc store.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

// timeField decodes the timestamp encodings the store delivers: native
// time.Time (in-process store), RFC3339 strings, unix milliseconds, and
// Firestore-style {_seconds,_nanoseconds} maps.
func timeField(doc store.Document, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	case float64:
		return time.UnixMilli(int64(v))
	case int64:
		return time.UnixMilli(v)
	case map[string]any:
		seconds, okSec := numberValue(v["_seconds"])
		if !okSec {
			seconds, okSec = numberValue(v["seconds"])
		}
		if okSec {
			nanos, _ := numberValue(v["_nanoseconds"])
			return time.Unix(seconds, nanos)
		}
	}
	return time.Time{}
}

func numberValue(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func reactionsField(doc store.Document) map[string]string {
	raw, ok := doc["reactions"].(map[string]any)
	if !ok {
		if typed, ok := doc["reactions"].(map[string]string); ok {
			out := make(map[string]string, len(typed))
			for k, v := range typed {
				out[k] = v
			}
			return out
		}
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for userID, kind := range raw {
		if s, ok := kind.(string); ok {
			out[userID] = s
		}
	}
	return out
}
