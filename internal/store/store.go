// Package store defines the contract between the application state and the
// hosted document database that is the system of record.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/muttaqilab/studio/internal/feed"
)

var (
	ErrUnavailable = errors.New("remote store unavailable")
	ErrNotFound    = errors.New("document not found")
)

// Query selects a live view. With Doc set it watches a single document;
// otherwise it watches the whole collection, optionally ordered.
type Query struct {
	Collection string
	Doc        string
	OrderBy    string
	Desc       bool
}

// Document is one stored record: its id plus a decoder for its fields.
type Document struct {
	ID     string
	decode func(v any) error
}

func NewDocument(id string, decode func(v any) error) Document {
	return Document{ID: id, decode: decode}
}

// JSONDocument wraps a JSON-encoded record.
func JSONDocument(id string, raw []byte) Document {
	return Document{ID: id, decode: func(v any) error { return json.Unmarshal(raw, v) }}
}

// DataTo decodes the document fields into v.
func (d Document) DataTo(v any) error {
	if d.decode == nil {
		return ErrNotFound
	}
	return d.decode(v)
}

// Snapshot is the full current content of a query. A document query
// yields zero documents when the document is absent.
type Snapshot []Document

// Subscription is a live query. Every snapshot replaces the previous one.
type Subscription = feed.Feed[Snapshot]

// Remote is a hosted document database.
type Remote interface {
	Subscribe(ctx context.Context, q Query) (*Subscription, error)
	// Create stores record under a new id and returns that id.
	Create(ctx context.Context, collection string, record any) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// SetDoc overwrites a document wholesale, creating it if needed.
	SetDoc(ctx context.Context, collection, id string, record any) error
	Close() error
}

// Decode converts every document of a snapshot into T, assigning ids
// through setID.
func Decode[T any](snap Snapshot, setID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(snap))
	for _, d := range snap {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, err
		}
		setID(&v, d.ID)
		out = append(out, v)
	}
	return out, nil
}

// NewFeed starts a subscription driven by p.
func NewFeed(ctx context.Context, p feed.Producer[Snapshot]) *Subscription {
	return feed.Start(ctx, p)
}
