// ABOUTME: In-memory entity cache for posts, users, and per-post comment threads.
// ABOUTME: Updated by subscription snapshots with full-replace semantics.
package feed

import (
	"sync"

	"github.com/2389-research/feedkit/internal/models"
)

// Cache holds the three entity mappings the view is built from. Each
// snapshot replaces the whole mapping for its collection: latest snapshot
// wins, never incremental patching. Mutation happens only through the
// engine's snapshot application and the explicit optimistic reaction
// mirror.
type Cache struct {
	mu       sync.RWMutex
	posts    map[string]models.Post
	users    map[string]models.User
	comments map[string][]models.Comment
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		posts:    make(map[string]models.Post),
		users:    make(map[string]models.User),
		comments: make(map[string][]models.Comment),
	}
}

// ReplacePosts replaces the post mapping with a new snapshot.
func (c *Cache) ReplacePosts(posts []models.Post) {
	next := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		next[p.ID] = p
	}
	c.mu.Lock()
	c.posts = next
	c.mu.Unlock()
}

// ReplaceUsers replaces the user mapping with a new snapshot.
func (c *Cache) ReplaceUsers(users []models.User) {
	next := make(map[string]models.User, len(users))
	for _, u := range users {
		next[u.ID] = u
	}
	c.mu.Lock()
	c.users = next
	c.mu.Unlock()
}

// ReplaceComments replaces one post's comment thread with a new snapshot.
func (c *Cache) ReplaceComments(postID string, comments []models.Comment) {
	c.mu.Lock()
	c.comments[postID] = append([]models.Comment(nil), comments...)
	c.mu.Unlock()
}

// DropComments removes one post's comment thread from the cache.
func (c *Cache) DropComments(postID string) {
	c.mu.Lock()
	delete(c.comments, postID)
	c.mu.Unlock()
}

// SetPost mirrors a single post into the cache. Used only for the
// optimistic reaction update between a successful write and the
// subscription round-trip.
func (c *Cache) SetPost(post models.Post) {
	c.mu.Lock()
	c.posts[post.ID] = post
	c.mu.Unlock()
}

// Post returns one cached post.
func (c *Cache) Post(id string) (models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[id]
	return p, ok
}

// Posts returns a copy of all cached posts.
func (c *Cache) Posts() []models.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Post, 0, len(c.posts))
	for _, p := range c.posts {
		out = append(out, p)
	}
	return out
}

// Users returns a copy of the user mapping.
func (c *Cache) Users() map[string]models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.User, len(c.users))
	for id, u := range c.users {
		out[id] = u
	}
	return out
}

// Comments returns a copy of one post's cached thread.
func (c *Cache) Comments(postID string) []models.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Comment(nil), c.comments[postID]...)
}
