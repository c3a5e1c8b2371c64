// ABOUTME: Reaction engine: toggle-like against the authoritative remote copy.
// ABOUTME: Read-only accessors for like counts and the current user's reaction.
package feed

import (
	"context"

	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

// ToggleLike flips the current user's like on a post. The reaction map is
// re-read from the store first (not the local cache) because concurrent
// clients may have changed it since the last snapshot, then written back
// whole as a single partial update. On success the result is mirrored
// into the cache so the UI reflects it before the subscription
// round-trips; on failure the cache is left untouched.
//
// Known limitation: the read-modify-write carries no version token, so
// two concurrent toggles by the same user from different sessions resolve
// last-writer-wins.
func (e *Engine) ToggleLike(ctx context.Context, postID string) error {
	if e.currentUser == "" {
		return &store.ValidationError{Reason: "sign in to react to posts"}
	}

	doc, err := e.store.GetDocumentOnce(ctx, models.CollectionForums, postID)
	if err != nil {
		return err
	}
	post, err := models.PostFromDocument(doc)
	if err != nil {
		return &store.FetchError{Collection: models.CollectionForums, Err: err}
	}

	reactions := make(map[string]string, len(post.Reactions)+1)
	for userID, kind := range post.Reactions {
		reactions[userID] = kind
	}
	if _, liked := reactions[e.currentUser]; liked {
		delete(reactions, e.currentUser)
	} else {
		reactions[e.currentUser] = models.ReactionLike
	}

	if err := e.store.ApplyPartialUpdate(ctx, models.CollectionForums, postID, map[string]any{"reactions": reactions}); err != nil {
		return err
	}

	if cached, ok := e.cache.Post(postID); ok {
		cached.Reactions = reactions
		e.cache.SetPost(cached)
		e.notify()
	}
	return nil
}

// LikeCount returns the size of a post's reaction map.
func (e *Engine) LikeCount(postID string) int {
	post, ok := e.cache.Post(postID)
	if !ok {
		return 0
	}
	return len(post.Reactions)
}

// HasLiked reports whether the current user has a reaction entry on the
// post.
func (e *Engine) HasLiked(postID string) bool {
	if e.currentUser == "" {
		return false
	}
	post, ok := e.cache.Post(postID)
	if !ok {
		return false
	}
	_, liked := post.Reactions[e.currentUser]
	return liked
}
