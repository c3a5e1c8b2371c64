// ABOUTME: Contract for the document store the feed engine runs against.
// ABOUTME: Defines untyped documents, live subscriptions, and the five store operations.
package store

import (
	"context"
)

// Document is an untyped field mapping as delivered by the store. The
// store injects the document id under the "id" key; callers are
// responsible for all shape validation beyond that.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the store-assigned document id, or "" if absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// OrderBy requests server-side ordering for a collection read.
type OrderBy struct {
	Field string
	Desc  bool
}

// Filter restricts a one-shot collection read to documents whose field
// equals the given value.
type Filter struct {
	Field  string
	Equals any
}

// serverTimestamp is the sentinel type for ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp marks a field whose value the store assigns at write
// time. Clients must not substitute a local clock for cross-user ordering.
var ServerTimestamp = serverTimestamp{}

// Subscription is a live view of one collection. Every delivery on
// Snapshots is the complete current result set, replacing the previous
// one. No new deliveries occur after Cancel; implementations may or may
// not close the channels, so consumers must also watch their own stop
// signal.
type Subscription struct {
	Snapshots <-chan []Document
	Errs      <-chan error

	cancel func()
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Store is the remote document store the engine depends on. Collection
// names may be slash-separated paths for subcollections, e.g.
// "forums/<id>/comments". Implementations return only the error kinds
// declared in this package.
type Store interface {
	// SubscribeCollection opens a live subscription delivering full
	// snapshots of the named collection. The subscription ends when
	// Cancel is called or ctx is done.
	SubscribeCollection(ctx context.Context, name string, order *OrderBy) (*Subscription, error)

	// GetDocumentOnce performs a fresh point read of a single document.
	GetDocumentOnce(ctx context.Context, collection, id string) (Document, error)

	// GetCollectionOnce performs a one-shot read of a collection.
	GetCollectionOnce(ctx context.Context, collection string, filter *Filter) ([]Document, error)

	// ApplyPartialUpdate merges the given fields into an existing
	// document as a single atomic update.
	ApplyPartialUpdate(ctx context.Context, collection, id string, fields map[string]any) error

	// AppendDocument creates a new document with a store-assigned id and
	// returns that id. ServerTimestamp field values are resolved by the
	// store at write time.
	AppendDocument(ctx context.Context, collection string, fields map[string]any) (string, error)
}
