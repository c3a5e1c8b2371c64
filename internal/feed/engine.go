// ABOUTME: Live feed engine wiring store subscriptions into the entity cache.
// ABOUTME: Owns subscription lifecycles, search state, and change notification.
package feed

import (
	"context"
	"sync"

	"github.com/2389-research/feedkit/internal/models"
	"github.com/2389-research/feedkit/internal/store"
)

// Engine merges the live posts, users, and per-post comment collections
// into one consistent view and applies mutations through the store. All
// cache updates flow through subscription snapshots; writes rely on the
// subscription round-trip to reconcile, except the explicit optimistic
// reaction mirror in ToggleLike.
type Engine struct {
	store       store.Store
	cache       *Cache
	currentUser string

	mu         sync.Mutex
	searchTerm string
	drafts     map[string]string
	threads    map[string]*threadHandle
	onChange   func()
	onError    func(error)
	loaded     bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an engine for the given store and current user id. The user
// id may be empty for an anonymous, read-only session.
func New(st store.Store, currentUserID string) *Engine {
	return &Engine{
		store:       st,
		cache:       NewCache(),
		currentUser: currentUserID,
		drafts:      make(map[string]string),
		threads:     make(map[string]*threadHandle),
	}
}

// CurrentUserID returns the session's user id ("" when anonymous).
func (e *Engine) CurrentUserID() string { return e.currentUser }

// OnChange registers the callback invoked after every cache update.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// OnError registers the callback invoked for recoverable subscription
// errors. Existing cached data is kept when a fetch fails.
func (e *Engine) OnError(fn func(error)) {
	e.mu.Lock()
	e.onError = fn
	e.mu.Unlock()
}

// Start opens the posts and users subscriptions. The engine runs until
// Close is called or ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	postsSub, err := e.store.SubscribeCollection(e.ctx, models.CollectionForums, &store.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		return err
	}
	usersSub, err := e.store.SubscribeCollection(e.ctx, models.CollectionUsers, nil)
	if err != nil {
		postsSub.Cancel()
		return err
	}

	go e.forward(postsSub, nil, e.applyPosts)
	go e.forward(usersSub, nil, e.applyUsers)
	return nil
}

// Close releases every live subscription held by the engine.
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Lock()
	for postID, handle := range e.threads {
		handle.release()
		delete(e.threads, postID)
	}
	e.mu.Unlock()
}

// SetSearchTerm updates the feed filter.
func (e *Engine) SetSearchTerm(term string) {
	e.mu.Lock()
	e.searchTerm = term
	e.mu.Unlock()
	e.notify()
}

// SearchTerm returns the current feed filter.
func (e *Engine) SearchTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchTerm
}

// Loading reports whether the first posts snapshot is still pending.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.loaded
}

// View builds the current feed: sorted, filtered, joined records with
// comment threads attached for expanded posts.
func (e *Engine) View() []ViewRecord {
	e.mu.Lock()
	term := e.searchTerm
	expanded := make(map[string]bool, len(e.threads))
	for postID := range e.threads {
		expanded[postID] = true
	}
	e.mu.Unlock()

	records := BuildView(e.cache.Posts(), e.cache.Users(), e.currentUser, term)
	for i := range records {
		if expanded[records[i].Post.ID] {
			records[i].Expanded = true
			records[i].Comments = e.cache.Comments(records[i].Post.ID)
		}
	}
	return records
}

// Query builds the feed with a caller-supplied search term instead of
// the engine's own, without touching expand state. Used by one-shot
// consumers like the MCP tools.
func (e *Engine) Query(term string) []ViewRecord {
	return BuildView(e.cache.Posts(), e.cache.Users(), e.currentUser, term)
}

// Refresh forces a one-shot re-read of the posts and users collections,
// applied through the same full-replace path as a subscription snapshot.
func (e *Engine) Refresh(ctx context.Context) error {
	postDocs, err := e.store.GetCollectionOnce(ctx, models.CollectionForums, nil)
	if err != nil {
		return err
	}
	userDocs, err := e.store.GetCollectionOnce(ctx, models.CollectionUsers, nil)
	if err != nil {
		return err
	}
	e.applyPosts(postDocs)
	e.applyUsers(userDocs)
	return nil
}

// forward pumps one subscription into its snapshot handler until the
// engine shuts down, stop closes, or the subscription's channels close.
func (e *Engine) forward(sub *store.Subscription, stop <-chan struct{}, apply func([]store.Document)) {
	defer sub.Cancel()
	var done <-chan struct{}
	if e.ctx != nil {
		done = e.ctx.Done()
	}
	for {
		select {
		case <-done:
			return
		case <-stop:
			return
		case snap, ok := <-sub.Snapshots:
			if !ok {
				return
			}
			apply(snap)
		case err, ok := <-sub.Errs:
			if !ok {
				return
			}
			if err != nil {
				e.reportError(err)
			}
		}
	}
}

func (e *Engine) applyPosts(docs []store.Document) {
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := models.PostFromDocument(doc)
		if err != nil {
			continue
		}
		posts = append(posts, post)
	}
	e.cache.ReplacePosts(posts)

	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) applyUsers(docs []store.Document) {
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		user, err := models.UserFromDocument(doc)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	e.cache.ReplaceUsers(users)
	e.notify()
}

func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (e *Engine) reportError(err error) {
	e.mu.Lock()
	fn := e.onError
	e.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
