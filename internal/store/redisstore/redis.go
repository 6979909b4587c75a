package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/muttaqilab/studio/internal/store"
)

const (
	docKeyPrefix       = "studio:doc:"    // Document JSON: studio:doc:{collection}:{id}
	collectionPrefix   = "studio:coll:"   // Set of document IDs: studio:coll:{collection}
	eventChannelPrefix = "studio:events:" // Pub/Sub channel per collection: studio:events:{collection}
)

// Store keeps documents as JSON values in Redis and announces every write
// on a per-collection Pub/Sub channel. Subscribers re-read the collection
// on each announcement, so every snapshot is complete.
type Store struct {
	client *redis.Client
}

// New creates a Store on an existing client. The client is closed by Close.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Subscribe(ctx context.Context, q store.Query) (*store.Subscription, error) {
	pubsub := s.client.Subscribe(ctx, s.eventChannel(q.Collection))

	// Wait for the subscription to be confirmed so that no write issued
	// after Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe %s: %v", store.ErrUnavailable, q.Collection, err)
	}

	return store.NewFeed(ctx, func(ctx context.Context, emit func(store.Snapshot) bool) error {
		defer pubsub.Close()
		messages := pubsub.Channel()

		for {
			snap, err := s.load(ctx, q)
			if err != nil {
				return err
			}
			if !emit(snap) {
				return nil
			}

			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-messages:
				if !ok {
					return store.ErrUnavailable
				}
			}
		}
	}), nil
}

func (s *Store) load(ctx context.Context, q store.Query) (store.Snapshot, error) {
	if q.Doc != "" {
		data, err := s.client.Get(ctx, s.docKey(q.Collection, q.Doc)).Bytes()
		if err == redis.Nil {
			return store.Snapshot{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
		return store.Snapshot{store.JSONDocument(q.Doc, data)}, nil
	}

	ids, err := s.client.SMembers(ctx, s.collectionKey(q.Collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	if len(ids) == 0 {
		return store.Snapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(q.Collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	records := make([]store.Record, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// deleted between SMEMBERS and MGET
			continue
		}
		records = append(records, store.Record{ID: ids[i], Data: []byte(str)})
	}
	store.SortRecords(records, q.OrderBy, q.Desc)
	return store.RecordsSnapshot(records), nil
}

func (s *Store) Create(ctx context.Context, collection string, record any) (string, error) {
	id := uuid.New().String()
	if err := s.write(ctx, collection, id, record); err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := s.client.Get(ctx, s.docKey(collection, id)).Bytes()
	if err == redis.Nil {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	merged, err := store.MergeFields(data, fields)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.docKey(collection, id), merged, 0).Err(); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return s.publish(ctx, collection, id)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.docKey(collection, id))
	pipe.SRem(ctx, s.collectionKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return s.publish(ctx, collection, id)
}

func (s *Store) SetDoc(ctx context.Context, collection, id string, record any) error {
	if err := s.write(ctx, collection, id, record); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, collection, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(collection, id), data, 0)
	pipe.SAdd(ctx, s.collectionKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.publish(ctx, collection, id)
}

func (s *Store) publish(ctx context.Context, collection, id string) error {
	if err := s.client.Publish(ctx, s.eventChannel(collection), id).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

// Helper methods for key generation
func (s *Store) docKey(collection, id string) string {
	return fmt.Sprintf("%s%s:%s", docKeyPrefix, collection, id)
}

func (s *Store) collectionKey(collection string) string {
	return fmt.Sprintf("%s%s", collectionPrefix, collection)
}

func (s *Store) eventChannel(collection string) string {
	return fmt.Sprintf("%s%s", eventChannelPrefix, collection)
}
