// ABOUTME: Unit tests for the feed browser bubbletea model.
// ABOUTME: Uses synthetic key messages against an in-memory store.
package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/feedkit/internal/feed"
	"github.com/2389-research/feedkit/internal/store"
)

var feedTestBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func makeFeedModel(t *testing.T) (FeedModel, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	st.Seed("users", "u1", map[string]any{"fullName": "Ana Souza"})
	st.Seed("forums", "post-1", map[string]any{
		"title":     "Older post",
		"content":   "first",
		"userId":    "u1",
		"createdAt": feedTestBase,
		"reactions": map[string]string{},
	})
	st.Seed("forums", "post-2", map[string]any{
		"title":     "Newer post",
		"content":   "second",
		"userId":    "u1",
		"createdAt": feedTestBase.Add(time.Hour),
		"reactions": map[string]string{},
	})

	engine := feed.New(st, "u1")
	t.Cleanup(engine.Close)
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	return NewFeedModel(engine), st
}

func TestFeedModel_InitialRecords(t *testing.T) {
	m, _ := makeFeedModel(t)
	if len(m.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(m.records))
	}
	if m.records[0].Post.ID != "post-2" {
		t.Errorf("expected newest post first, got %s", m.records[0].Post.ID)
	}
}

func TestFeedModel_Navigation(t *testing.T) {
	m, _ := makeFeedModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(FeedModel)
	if m.cursor != 1 {
		t.Errorf("expected cursor 1 after j, got %d", m.cursor)
	}

	// j at the bottom stays put.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(FeedModel)
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped at 1, got %d", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(FeedModel)
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after k, got %d", m.cursor)
	}
}

func TestFeedModel_SearchMode(t *testing.T) {
	m, _ := makeFeedModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(FeedModel)
	if m.mode != modeSearch {
		t.Fatalf("expected search mode, got %d", m.mode)
	}

	for _, r := range "newer" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(FeedModel)
	}
	if len(m.records) != 1 || m.records[0].Post.ID != "post-2" {
		t.Errorf("expected live-filtered records, got %v", len(m.records))
	}

	// Escape clears the filter.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(FeedModel)
	if m.mode != modeBrowse {
		t.Errorf("expected browse mode after escape, got %d", m.mode)
	}
	if len(m.records) != 2 {
		t.Errorf("expected full view restored, got %d records", len(m.records))
	}
}

func TestFeedModel_ToggleLikeCommand(t *testing.T) {
	m, _ := makeFeedModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = updated.(FeedModel)
	if cmd == nil {
		t.Fatal("expected a command from the like key")
	}

	msg := cmd()
	result, ok := msg.(actionResultMsg)
	if !ok {
		t.Fatalf("expected actionResultMsg, got %T", msg)
	}
	if result.err != nil {
		t.Fatalf("toggle like failed: %v", result.err)
	}

	updated, _ = m.Update(result)
	m = updated.(FeedModel)
	if !m.records[0].HasLiked {
		t.Error("expected HasLiked after toggle")
	}
}

func TestFeedModel_ExpandAndCollapse(t *testing.T) {
	m, st := makeFeedModel(t)
	st.Seed("forums/post-2/comments", "c1", map[string]any{
		"userId": "u1", "text": "hello", "createdAt": feedTestBase,
	})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(FeedModel)
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}

	msg := cmd()
	updated, _ = m.Update(msg)
	m = updated.(FeedModel)

	// Subscription applies asynchronously; re-read until the thread shows.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.reload()
		if m.records[0].Expanded && len(m.records[0].Comments) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !m.records[0].Expanded || len(m.records[0].Comments) != 1 {
		t.Fatalf("expected expanded thread with one comment, got %+v", m.records[0])
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(FeedModel)
	if m.records[0].Expanded {
		t.Error("expected collapse on second enter")
	}
}

func TestFeedModel_ComposeSavesDraftOnEscape(t *testing.T) {
	m, _ := makeFeedModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = updated.(FeedModel)
	if m.mode != modeCompose {
		t.Fatalf("expected compose mode, got %d", m.mode)
	}

	for _, r := range "wip" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(FeedModel)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = updated.(FeedModel)

	if m.engine.Draft("post-2") != "wip" {
		t.Errorf("expected draft saved, got %q", m.engine.Draft("post-2"))
	}
}

func TestFeedModel_ViewShowsPosts(t *testing.T) {
	m, _ := makeFeedModel(t)
	view := m.View()
	if !strings.Contains(view, "Newer post") || !strings.Contains(view, "Older post") {
		t.Errorf("expected both posts in view, got: %s", view)
	}
	if !strings.Contains(view, "Ana Souza") {
		t.Errorf("expected author name in view, got: %s", view)
	}
}

func TestFeedModel_QuitKeys(t *testing.T) {
	m, _ := makeFeedModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(FeedModel)
	if cmd == nil || !m.quitting {
		t.Error("expected quit on q")
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "just now"},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeAge(tt.t, now); got != tt.want {
				t.Errorf("relativeAge() = %q, want %q", got, tt.want)
			}
		})
	}
}
