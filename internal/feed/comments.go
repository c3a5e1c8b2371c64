// ABOUTME: Comment thread manager: lazy per-post subscriptions and appends.
// ABOUTME: Deterministic newest-first ordering with id tie-breaks, draft buffers.
package feed

import (
	"context"
	"sort"
	"strings"

	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

// threadHandle owns one post's live comment subscription. Its lifetime is
// bounded by the post's expand/collapse state.
type threadHandle struct {
	sub  *store.Subscription
	stop chan struct{}
}

func (h *threadHandle) release() {
	h.sub.Cancel()
	close(h.stop)
}

// ExpandComments opens the live comment subscription for a post. A
// second expand while already subscribed is a no-op. The subscription
// outlives the call: it runs until CollapseComments or Close, so it is
// bound to the engine's context, never a per-action one.
func (e *Engine) ExpandComments(postID string) error {
	e.mu.Lock()
	if _, open := e.threads[postID]; open {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	subCtx := e.ctx
	if subCtx == nil {
		subCtx = context.Background()
	}
	sub, err := e.store.SubscribeCollection(subCtx, models.CommentsCollection(postID), &store.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		return err
	}

	handle := &threadHandle{sub: sub, stop: make(chan struct{})}

	e.mu.Lock()
	if _, open := e.threads[postID]; open {
		e.mu.Unlock()
		sub.Cancel()
		return nil
	}
	e.threads[postID] = handle
	e.mu.Unlock()

	go e.forward(sub, handle.stop, func(docs []store.Document) {
		e.applyComments(postID, docs)
	})
	e.notify()
	return nil
}

// CollapseComments releases a post's comment subscription and drops its
// thread from the cache. No further updates arrive until re-expanded.
func (e *Engine) CollapseComments(postID string) {
	e.mu.Lock()
	handle, open := e.threads[postID]
	if open {
		delete(e.threads, postID)
	}
	e.mu.Unlock()

	if !open {
		return
	}
	handle.release()
	e.cache.DropComments(postID)
	e.notify()
}

// Expanded reports whether a post's comment thread is currently live.
func (e *Engine) Expanded(postID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, open := e.threads[postID]
	return open
}

// Comments returns the cached thread for a post, already ordered.
func (e *Engine) Comments(postID string) []models.Comment {
	return e.cache.Comments(postID)
}

// AddComment appends a comment to a post's thread. The creation timestamp
// is server-assigned so ordering holds across users with skewed clocks.
// There is no optimistic local insert: the comment becomes visible when
// the live subscription delivers it, so the displayed order always
// matches server timestamps. The post's draft buffer is cleared on
// success.
func (e *Engine) AddComment(ctx context.Context, postID, text string) error {
	if strings.TrimSpace(text) == "" {
		return &store.ValidationError{Reason: "comment text must not be empty"}
	}
	if e.currentUser == "" {
		return &store.ValidationError{Reason: "sign in to comment"}
	}

	_, err := e.store.AppendDocument(ctx, models.CommentsCollection(postID), map[string]any{
		"userId":    e.currentUser,
		"text":      text,
		"createdAt": store.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.drafts, postID)
	e.mu.Unlock()
	e.notify()
	return nil
}

// SetDraft stores the in-progress comment text for a post.
func (e *Engine) SetDraft(postID, text string) {
	e.mu.Lock()
	if text == "" {
		delete(e.drafts, postID)
	} else {
		e.drafts[postID] = text
	}
	e.mu.Unlock()
}

// Draft returns the in-progress comment text for a post.
func (e *Engine) Draft(postID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drafts[postID]
}

func (e *Engine) applyComments(postID string, docs []store.Document) {
	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comment, err := models.CommentFromDocument(postID, doc)
		if err != nil {
			continue
		}
		comments = append(comments, comment)
	}
	SortComments(comments)
	e.cache.ReplaceComments(postID, comments)
	e.notify()
}

// SortComments orders a thread newest first. Equal timestamps fall back
// to the store-assigned id, descending, the full reverse of the ascending
// order, so every client renders the same sequence.
func SortComments(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
