// ABOUTME: Tests for the live feed engine against the in-process store.
// ABOUTME: Covers startup, search, reactions, comment threads, and drafts.
package feed

import (
	"context"
	"testing"
	"time"

	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

var engineBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seedForum(st *store.MemoryStore) {
	st.Seed("users", "u1", map[string]any{"fullName": "Ana Souza"})
	st.Seed("forums", "post-1", map[string]any{
		"title":     "Hello",
		"content":   "first post",
		"userId":    "u1",
		"createdAt": engineBase,
		"reactions": map[string]string{},
	})
}

func startEngine(t *testing.T, st *store.MemoryStore, userID string) *Engine {
	t.Helper()
	engine := New(st, userID)
	t.Cleanup(engine.Close)
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	return engine
}

// waitFor polls until the predicate holds or the deadline passes.
func waitFor(t *testing.T, what string, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEngineStartLoadsFeed(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := startEngine(t, st, "u1")

	waitFor(t, "initial load", func() bool { return !engine.Loading() })
	waitFor(t, "joined view", func() bool {
		records := engine.View()
		return len(records) == 1 && records[0].AuthorName == "Ana Souza"
	})
}

func TestEnginePicksUpNewPosts(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := startEngine(t, st, "u1")
	waitFor(t, "initial load", func() bool { return !engine.Loading() })

	st.Seed("forums", "post-2", map[string]any{
		"title":     "Second",
		"userId":    "u1",
		"createdAt": engineBase.Add(time.Hour),
	})

	waitFor(t, "new post in view", func() bool {
		records := engine.View()
		return len(records) == 2 && records[0].Post.ID == "post-2"
	})
}

func TestEngineSearchTerm(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)
	st.Seed("forums", "post-2", map[string]any{
		"title":     "Survey Results",
		"userId":    "u1",
		"createdAt": engineBase.Add(time.Hour),
	})

	engine := startEngine(t, st, "u1")
	waitFor(t, "both posts", func() bool { return len(engine.View()) == 2 })

	engine.SetSearchTerm("survey")
	records := engine.View()
	if len(records) != 1 || records[0].Post.ID != "post-2" {
		t.Errorf("expected filtered view, got %v", records)
	}

	engine.SetSearchTerm("")
	if len(engine.View()) != 2 {
		t.Error("expected clearing the term to restore the full view")
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := startEngine(t, st, "u1")
	waitFor(t, "initial load", func() bool { return !engine.Loading() })

	ctx := context.Background()
	if err := engine.ToggleLike(ctx, "post-1"); err != nil {
		t.Fatalf("ToggleLike error: %v", err)
	}

	doc, _ := st.GetDocumentOnce(ctx, "forums", "post-1")
	post, _ := models.PostFromDocument(doc)
	if post.Reactions["u1"] != models.ReactionLike {
		t.Errorf("expected like in store, got %v", post.Reactions)
	}
	waitFor(t, "liked state in cache", func() bool { return engine.HasLiked("post-1") })

	if err := engine.ToggleLike(ctx, "post-1"); err != nil {
		t.Fatalf("second ToggleLike error: %v", err)
	}
	doc, _ = st.GetDocumentOnce(ctx, "forums", "post-1")
	post, _ = models.PostFromDocument(doc)
	if len(post.Reactions) != 0 {
		t.Errorf("expected like removed, got %v", post.Reactions)
	}
}

func TestToggleLikePreservesOtherReactions(t *testing.T) {
	st := store.NewMemoryStore()
	st.Seed("forums", "post-1", map[string]any{
		"title":     "Hello",
		"createdAt": engineBase,
		"reactions": map[string]string{"u2": "like"},
	})

	engine := New(st, "u1")
	defer engine.Close()

	if err := engine.ToggleLike(context.Background(), "post-1"); err != nil {
		t.Fatalf("ToggleLike error: %v", err)
	}

	doc, _ := st.GetDocumentOnce(context.Background(), "forums", "post-1")
	post, _ := models.PostFromDocument(doc)
	if post.Reactions["u2"] != "like" || post.Reactions["u1"] != "like" {
		t.Errorf("expected both reactions, got %v", post.Reactions)
	}
}

func TestToggleLikeAnonymousRejected(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "")
	defer engine.Close()

	err := engine.ToggleLike(context.Background(), "post-1")
	if !store.IsValidation(err) {
		t.Errorf("expected validation error for anonymous toggle, got %v", err)
	}
}

func TestExpandCollapseComments(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)
	st.Seed("forums/post-1/comments", "c1", map[string]any{
		"userId": "u1", "text": "first", "createdAt": engineBase,
	})
	st.Seed("forums/post-1/comments", "c2", map[string]any{
		"userId": "u1", "text": "second", "createdAt": engineBase.Add(time.Minute),
	})

	engine := startEngine(t, st, "u1")
	waitFor(t, "initial load", func() bool { return !engine.Loading() })

	if err := engine.ExpandComments("post-1"); err != nil {
		t.Fatalf("ExpandComments error: %v", err)
	}
	if !engine.Expanded("post-1") {
		t.Error("expected post to report expanded")
	}

	waitFor(t, "comment thread", func() bool {
		comments := engine.Comments("post-1")
		return len(comments) == 2 && comments[0].Text == "second"
	})

	// Live append while expanded.
	st.Seed("forums/post-1/comments", "c3", map[string]any{
		"userId": "u1", "text": "third", "createdAt": engineBase.Add(2 * time.Minute),
	})
	waitFor(t, "live comment", func() bool {
		comments := engine.Comments("post-1")
		return len(comments) == 3 && comments[0].Text == "third"
	})

	engine.CollapseComments("post-1")
	if engine.Expanded("post-1") {
		t.Error("expected post to report collapsed")
	}
	if len(engine.Comments("post-1")) != 0 {
		t.Error("expected thread dropped from cache after collapse")
	}
}

func TestExpandCommentsTwiceIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := startEngine(t, st, "u1")
	if err := engine.ExpandComments("post-1"); err != nil {
		t.Fatalf("first ExpandComments error: %v", err)
	}
	if err := engine.ExpandComments("post-1"); err != nil {
		t.Fatalf("second ExpandComments error: %v", err)
	}
	engine.CollapseComments("post-1")
}

func TestAddCommentServerTimestamp(t *testing.T) {
	st := store.NewMemoryStore()
	fixed := engineBase.Add(3 * time.Hour)
	st.SetClock(func() time.Time { return fixed })
	seedForum(st)

	engine := startEngine(t, st, "u1")
	if err := engine.AddComment(context.Background(), "post-1", "nice"); err != nil {
		t.Fatalf("AddComment error: %v", err)
	}

	docs, _ := st.GetCollectionOnce(context.Background(), "forums/post-1/comments", nil)
	if len(docs) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(docs))
	}
	comment, _ := models.CommentFromDocument("post-1", docs[0])
	if comment.Text != "nice" || comment.UserID != "u1" {
		t.Errorf("unexpected comment: %+v", comment)
	}
	if !comment.CreatedAt.Equal(fixed) {
		t.Errorf("expected server-assigned timestamp %v, got %v", fixed, comment.CreatedAt)
	}
}

func TestAddCommentRejectsBlank(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "u1")
	defer engine.Close()

	err := engine.AddComment(context.Background(), "post-1", "   ")
	if !store.IsValidation(err) {
		t.Errorf("expected validation error for blank comment, got %v", err)
	}

	docs, _ := st.GetCollectionOnce(context.Background(), "forums/post-1/comments", nil)
	if len(docs) != 0 {
		t.Error("blank comment must not reach the store")
	}
}

func TestAddCommentAnonymousRejected(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "")
	defer engine.Close()

	if err := engine.AddComment(context.Background(), "post-1", "hi"); !store.IsValidation(err) {
		t.Errorf("expected validation error for anonymous comment, got %v", err)
	}
}

func TestAddCommentClearsDraft(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "u1")
	defer engine.Close()

	engine.SetDraft("post-1", "work in progress")
	if engine.Draft("post-1") != "work in progress" {
		t.Fatal("draft not stored")
	}

	if err := engine.AddComment(context.Background(), "post-1", "done"); err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if engine.Draft("post-1") != "" {
		t.Error("expected draft cleared after successful comment")
	}
}

func TestDraftSurvivesFailedComment(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "u1")
	defer engine.Close()

	engine.SetDraft("post-1", "   ")
	engine.SetDraft("post-1", "keep me")
	_ = engine.AddComment(context.Background(), "post-1", "")
	if engine.Draft("post-1") != "keep me" {
		t.Error("expected draft kept after validation failure")
	}
}

func TestRefreshWithoutStart(t *testing.T) {
	st := store.NewMemoryStore()
	seedForum(st)

	engine := New(st, "u1")
	defer engine.Close()

	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	records := engine.Query("")
	if len(records) != 1 || records[0].AuthorName == "" {
		t.Errorf("expected one joined record after refresh, got %v", records)
	}
	if engine.Loading() {
		t.Error("expected Loading false after refresh")
	}
}

func TestSortCommentsTieBreak(t *testing.T) {
	comments := []models.Comment{
		{ID: "c1", CreatedAt: engineBase},
		{ID: "c3", CreatedAt: engineBase},
		{ID: "c2", CreatedAt: engineBase},
	}
	SortComments(comments)
	got := []string{comments[0].ID, comments[1].ID, comments[2].ID}
	want := []string{"c3", "c2", "c1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSortCommentsNewestFirst(t *testing.T) {
	comments := []models.Comment{
		{ID: "a", CreatedAt: engineBase},
		{ID: "b", CreatedAt: engineBase.Add(time.Minute)},
	}
	SortComments(comments)
	if comments[0].ID != "b" {
		t.Errorf("expected newest comment first, got %s", comments[0].ID)
	}
}
