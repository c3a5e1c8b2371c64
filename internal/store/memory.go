// ABOUTME: In-process Store implementation with live snapshot fan-out.
// ABOUTME: Backs tests and local demo mode; assigns ids and server timestamps.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process document store. Every mutation re-delivers
// a full snapshot to each subscriber of the affected collection, matching
// the push model of the hosted store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	subs        map[string][]*memorySub
	now         func() time.Time
}

type memorySub struct {
	collection string
	order      *OrderBy
	ch         chan []Document
	errs       chan error
	done       chan struct{}
	once       sync.Once
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		subs:        make(map[string][]*memorySub),
		now:         time.Now,
	}
}

// SetClock overrides the server clock. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Seed inserts or replaces a document under a fixed id without notifying
// a server clock. Intended for test fixtures and demo data.
func (s *MemoryStore) Seed(collection, id string, fields map[string]any) {
	s.mu.Lock()
	doc := s.resolveFields(fields)
	doc["id"] = id
	s.ensureCollection(collection)[id] = doc
	subs := s.subscribers(collection)
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliverAll(subs, snap)
}

// SubscribeCollection opens a live subscription on the named collection.
// The current snapshot is delivered immediately.
func (s *MemoryStore) SubscribeCollection(ctx context.Context, name string, order *OrderBy) (*Subscription, error) {
	sub := &memorySub{
		collection: name,
		order:      order,
		ch:         make(chan []Document, 1),
		errs:       make(chan error, 1),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	s.subs[name] = append(s.subs[name], sub)
	snap := s.snapshotLocked(name)
	s.mu.Unlock()

	sub.deliver(snap)

	cancel := func() {
		sub.once.Do(func() {
			s.mu.Lock()
			list := s.subs[name]
			for i, candidate := range list {
				if candidate == sub {
					s.subs[name] = append(list[:i], list[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
			// Channels stay open: any mutator goroutine may be mid-delivery.
			// done gates further sends.
			close(sub.done)
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-sub.done:
			}
		}()
	}

	return &Subscription{Snapshots: sub.ch, Errs: sub.errs, cancel: cancel}, nil
}

// GetDocumentOnce performs a point read.
func (s *MemoryStore) GetDocumentOnce(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	return doc.Clone(), nil
}

// GetCollectionOnce returns the current contents of a collection.
func (s *MemoryStore) GetCollectionOnce(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.snapshotLocked(collection)
	if filter == nil {
		return docs, nil
	}
	filtered := docs[:0]
	for _, doc := range docs {
		if doc[filter.Field] == filter.Equals {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// ApplyPartialUpdate merges fields into an existing document.
func (s *MemoryStore) ApplyPartialUpdate(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{Collection: collection, ID: id}
	}
	updated := doc.Clone()
	for k, v := range s.resolveFields(fields) {
		updated[k] = v
	}
	s.collections[collection][id] = updated
	subs := s.subscribers(collection)
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliverAll(subs, snap)
	return nil
}

// AppendDocument creates a document with a store-assigned id.
func (s *MemoryStore) AppendDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	id := uuid.NewString()
	doc := s.resolveFields(fields)
	doc["id"] = id
	s.ensureCollection(collection)[id] = doc
	subs := s.subscribers(collection)
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	deliverAll(subs, snap)
	return id, nil
}

func (s *MemoryStore) ensureCollection(name string) map[string]Document {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string]Document)
		s.collections[name] = col
	}
	return col
}

// resolveFields copies fields, substituting server-assigned values for
// ServerTimestamp sentinels.
func (s *MemoryStore) resolveFields(fields map[string]any) Document {
	doc := make(Document, len(fields)+1)
	for k, v := range fields {
		if _, isSentinel := v.(serverTimestamp); isSentinel {
			doc[k] = s.now()
			continue
		}
		doc[k] = v
	}
	return doc
}

func (s *MemoryStore) subscribers(collection string) []*memorySub {
	return append([]*memorySub(nil), s.subs[collection]...)
}

func (s *MemoryStore) snapshotLocked(collection string) []Document {
	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for _, doc := range col {
		docs = append(docs, doc.Clone())
	}
	// Deterministic base order; per-sub OrderBy re-sorts on delivery.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs
}

func deliverAll(subs []*memorySub, snap []Document) {
	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// deliver pushes a snapshot with latest-wins coalescing: if the
// subscriber has not drained the previous snapshot it is replaced.
func (sub *memorySub) deliver(snap []Document) {
	select {
	case <-sub.done:
		return
	default:
	}

	ordered := orderDocuments(snap, sub.order)
	select {
	case sub.ch <- ordered:
	default:
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ordered:
		case <-sub.done:
		}
	}
}

// orderDocuments sorts a snapshot by the requested field, ties broken by
// document id so ordering is deterministic across deliveries.
func orderDocuments(docs []Document, order *OrderBy) []Document {
	out := append([]Document(nil), docs...)
	if order == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][order.Field], out[j][order.Field]
		cmp := compareValues(a, b)
		if cmp == 0 {
			cmp = compareValues(out[i].ID(), out[j].ID())
		}
		if order.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0
		}
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case int64:
		bv, ok := b.(int64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}
