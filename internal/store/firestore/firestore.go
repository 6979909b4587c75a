package firestore

import (
	"context"
	"errors"
	"fmt"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/muttaqilab/studio/internal/store"
)

// Store adapts a Cloud Firestore client to store.Remote. Live queries use
// Firestore's own snapshot listeners, so ordering is applied server side.
type Store struct {
	client *gfs.Client
}

func New(client *gfs.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Subscribe(ctx context.Context, q store.Query) (*store.Subscription, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("firestore: collection required")
	}
	if q.Doc != "" {
		return store.NewFeed(ctx, s.watchDoc(q)), nil
	}
	return store.NewFeed(ctx, s.watchQuery(q)), nil
}

func (s *Store) watchQuery(q store.Query) func(context.Context, func(store.Snapshot) bool) error {
	query := s.client.Collection(q.Collection).Query
	if q.OrderBy != "" {
		dir := gfs.Asc
		if q.Desc {
			dir = gfs.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}

	return func(ctx context.Context, emit func(store.Snapshot) bool) error {
		it := query.Snapshots(ctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				return watchErr(ctx, q, err)
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				return watchErr(ctx, q, err)
			}

			snap := make(store.Snapshot, 0, len(docs))
			for _, d := range docs {
				snap = append(snap, document(d))
			}
			if !emit(snap) {
				return nil
			}
		}
	}
}

func (s *Store) watchDoc(q store.Query) func(context.Context, func(store.Snapshot) bool) error {
	ref := s.client.Collection(q.Collection).Doc(q.Doc)

	return func(ctx context.Context, emit func(store.Snapshot) bool) error {
		it := ref.Snapshots(ctx)
		defer it.Stop()

		for {
			ds, err := it.Next()
			// A missing document is reported as a snapshot that does not exist.
			if ds != nil && !ds.Exists() {
				if !emit(store.Snapshot{}) {
					return nil
				}
				continue
			}
			if err != nil {
				return watchErr(ctx, q, err)
			}
			if !emit(store.Snapshot{document(ds)}) {
				return nil
			}
		}
	}
}

func document(ds *gfs.DocumentSnapshot) store.Document {
	return store.NewDocument(ds.Ref.ID, ds.DataTo)
}

func watchErr(ctx context.Context, q store.Query, err error) error {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) {
		return nil
	}
	return fmt.Errorf("%w: watch %s: %v", store.ErrUnavailable, q.Collection, err)
}

func (s *Store) Create(ctx context.Context, collection string, record any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]gfs.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, gfs.Update{Path: k, Value: v})
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Store) SetDoc(ctx context.Context, collection, id string, record any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
