// ABOUTME: HTTP + WebSocket client implementing the Store contract against the hosted API.
// ABOUTME: One-shot reads and writes go over HTTP; live subscriptions stream full snapshots over WS.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// RemoteStore talks to the hosted document store API.
type RemoteStore struct {
	apiURL string
	apiKey string
	teamID string
	client *http.Client
	dialer *websocket.Dialer
}

// NewRemoteStore creates a remote store client with the given credentials.
func NewRemoteStore(apiURL, apiKey, teamID string) *RemoteStore {
	apiURL = strings.TrimRight(apiURL, "/")
	apiURL = strings.TrimSuffix(apiURL, "/v1")
	return &RemoteStore{
		apiURL: apiURL,
		apiKey: apiKey,
		teamID: teamID,
		client: &http.Client{Timeout: 30 * time.Second},
		dialer: websocket.DefaultDialer,
	}
}

// remoteListResponse is the envelope for collection reads.
type remoteListResponse struct {
	Documents  []Document `json:"documents"`
	TotalCount int        `json:"totalCount"`
}

// remoteAppendResponse is the envelope for document creation.
type remoteAppendResponse struct {
	ID string `json:"id"`
}

// remoteSnapshotFrame is one WS message: the complete current result set.
type remoteSnapshotFrame struct {
	Documents []Document `json:"documents"`
}

func (r *RemoteStore) collectionURL(collection string) string {
	return r.apiURL + "/teams/" + r.teamID + "/collections/" + collection + "/documents"
}

// GetDocumentOnce performs a fresh point read of a single document.
func (r *RemoteStore) GetDocumentOnce(ctx context.Context, collection, id string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.collectionURL(collection)+"/"+id, nil)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	req.Header.Set("x-api-key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	if resp.StatusCode >= 400 {
		return nil, &FetchError{Collection: collection, Err: statusError(resp)}
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &FetchError{Collection: collection, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if doc.ID() == "" {
		doc["id"] = id
	}
	return doc, nil
}

// GetCollectionOnce performs a one-shot read of a collection.
func (r *RemoteStore) GetCollectionOnce(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.collectionURL(collection), nil)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	req.Header.Set("x-api-key", r.apiKey)

	if filter != nil {
		q := req.URL.Query()
		q.Set("field", filter.Field)
		q.Set("equals", fmt.Sprintf("%v", filter.Equals))
		req.URL.RawQuery = q.Encode()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{Collection: collection, Err: statusError(resp)}
	}

	var listResp remoteListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, &FetchError{Collection: collection, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return listResp.Documents, nil
}

// ApplyPartialUpdate merges fields into an existing document as a single
// atomic update.
func (r *RemoteStore) ApplyPartialUpdate(ctx context.Context, collection, id string, fields map[string]any) error {
	body, err := json.Marshal(map[string]any{"fields": encodeFields(fields)})
	if err != nil {
		return &WriteError{Collection: collection, ID: id, Err: fmt.Errorf("failed to marshal fields: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "PATCH", r.collectionURL(collection)+"/"+id, bytes.NewReader(body))
	if err != nil {
		return &WriteError{Collection: collection, ID: id, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return &WriteError{Collection: collection, ID: id, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Collection: collection, ID: id}
	}
	if resp.StatusCode >= 400 {
		return &WriteError{Collection: collection, ID: id, Err: statusError(resp)}
	}
	return nil
}

// AppendDocument creates a new document and returns its store-assigned id.
func (r *RemoteStore) AppendDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{"fields": encodeFields(fields)})
	if err != nil {
		return "", &WriteError{Collection: collection, Err: fmt.Errorf("failed to marshal fields: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.collectionURL(collection), bytes.NewReader(body))
	if err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &WriteError{Collection: collection, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", &WriteError{Collection: collection, Err: statusError(resp)}
	}

	var appendResp remoteAppendResponse
	if err := json.NewDecoder(resp.Body).Decode(&appendResp); err != nil {
		return "", &WriteError{Collection: collection, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return appendResp.ID, nil
}

// SubscribeCollection opens a WebSocket watch on the named collection.
// Each frame carries the complete current result set.
func (r *RemoteStore) SubscribeCollection(ctx context.Context, name string, order *OrderBy) (*Subscription, error) {
	wsURL, err := r.watchURL(name, order)
	if err != nil {
		return nil, &FetchError{Collection: name, Err: err}
	}

	header := http.Header{}
	header.Set("x-api-key", r.apiKey)

	conn, resp, err := r.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, &FetchError{Collection: name, Err: fmt.Errorf("watch returned %d: %w", resp.StatusCode, err)}
		}
		return nil, &FetchError{Collection: name, Err: err}
	}

	snapshots := make(chan []Document, 1)
	errs := make(chan error, 1)
	done := make(chan struct{})

	cancel := func() {
		select {
		case <-done:
		default:
			close(done)
			_ = conn.Close()
		}
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-done:
			}
		}()
	}

	// Single reader goroutine owns the channels.
	go func() {
		defer close(snapshots)
		defer close(errs)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-done:
					// Cancelled; read error is expected.
				default:
					select {
					case errs <- &FetchError{Collection: name, Err: err}:
					default:
					}
					cancel()
				}
				return
			}

			var frame remoteSnapshotFrame
			if err := json.Unmarshal(payload, &frame); err != nil {
				select {
				case errs <- &FetchError{Collection: name, Err: fmt.Errorf("failed to decode snapshot: %w", err)}:
				default:
				}
				continue
			}

			// Latest snapshot wins when the consumer lags.
			select {
			case snapshots <- frame.Documents:
			default:
				select {
				case <-snapshots:
				default:
				}
				snapshots <- frame.Documents
			}
		}
	}()

	return &Subscription{Snapshots: snapshots, Errs: errs, cancel: cancel}, nil
}

func (r *RemoteStore) watchURL(collection string, order *OrderBy) (string, error) {
	u, err := url.Parse(r.apiURL + "/teams/" + r.teamID + "/watch")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("collection", collection)
	if order != nil {
		q.Set("orderBy", order.Field)
		if order.Desc {
			q.Set("desc", "true")
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// encodeFields converts ServerTimestamp sentinels to the wire marker the
// API resolves server-side.
func encodeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, isSentinel := v.(serverTimestamp); isSentinel {
			out[k] = map[string]bool{"__serverTimestamp": true}
			continue
		}
		out[k] = v
	}
	return out
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return fmt.Errorf("remote API returned %d: %s", resp.StatusCode, string(body))
}
