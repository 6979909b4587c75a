package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/muttaqilab/studio/internal/store"
)

// NotifyChannel carries the collection name of every committed write.
const NotifyChannel = "studio_documents"

const schema = `
create table if not exists documents (
	collection text not null,
	id         text not null,
	data       jsonb not null,
	updated_at timestamptz not null default now(),
	primary key (collection, id)
);
`

// Store keeps every document as a JSONB row and uses LISTEN/NOTIFY as its
// change feed. Reads and writes go through the pgx pool; each live
// subscription owns a lib/pq listener connection.
type Store struct {
	db  *pgxpool.Pool
	dsn string
}

func New(db *pgxpool.Pool, dsn string) *Store {
	return &Store{db: db, dsn: dsn}
}

// Migrate creates the documents table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, q store.Query) (*store.Subscription, error) {
	listener := pq.NewListener(s.dsn, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("%w: listen: %v", store.ErrUnavailable, err)
	}

	return store.NewFeed(ctx, func(ctx context.Context, emit func(store.Snapshot) bool) error {
		defer listener.Close()

		for {
			snap, err := s.load(ctx, q)
			if err != nil {
				return err
			}
			if !emit(snap) {
				return nil
			}

			if err := waitForChange(ctx, listener, q.Collection); err != nil {
				return err
			}
		}
	}), nil
}

// waitForChange blocks until a write to collection is announced. A nil
// notification means the listener reconnected and may have missed events,
// which also counts as a change.
func waitForChange(ctx context.Context, l *pq.Listener, collection string) error {
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-l.Notify:
			if !ok {
				return store.ErrUnavailable
			}
			if n == nil || n.Extra == collection {
				return nil
			}
		case <-ping.C:
			go l.Ping()
		}
	}
}

func (s *Store) load(ctx context.Context, q store.Query) (store.Snapshot, error) {
	if q.Doc != "" {
		var data string
		err := s.db.QueryRow(ctx,
			`select data::text from documents where collection = $1 and id = $2`,
			q.Collection, q.Doc).Scan(&data)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Snapshot{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
		return store.Snapshot{store.JSONDocument(q.Doc, []byte(data))}, nil
	}

	sql, args := listQuery(q)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	defer rows.Close()

	records := make([]store.Record, 0, 16)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		records = append(records, store.Record{ID: id, Data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.RecordsSnapshot(records), nil
}

func listQuery(q store.Query) (string, []any) {
	sql := `select id, data::text from documents where collection = $1`
	args := []any{q.Collection}
	if q.OrderBy == "" {
		return sql + ` order by id`, args
	}

	dir := "asc"
	if q.Desc {
		dir = "desc"
	}
	args = append(args, q.OrderBy)
	return sql + ` order by data -> $2 ` + dir + ` nulls last, id`, args
}

func (s *Store) Create(ctx context.Context, collection string, record any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	id := uuid.New().String()
	err = s.inTx(ctx, collection, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`insert into documents (collection, id, data) values ($1, $2, $3::jsonb)`,
			collection, id, string(data))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	err = s.inTx(ctx, collection, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`update documents set data = data || $3::jsonb, updated_at = now()
			 where collection = $1 and id = $2`,
			collection, id, string(patch))
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	err := s.inTx(ctx, collection, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `delete from documents where collection = $1 and id = $2`, collection, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Store) SetDoc(ctx context.Context, collection, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	err = s.inTx(ctx, collection, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`insert into documents (collection, id, data) values ($1, $2, $3::jsonb)
			 on conflict (collection, id) do update set data = excluded.data, updated_at = now()`,
			collection, id, string(data))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// inTx runs fn and announces the change; the notification is delivered
// only if the transaction commits.
func (s *Store) inTx(ctx context.Context, collection string, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `select pg_notify($1, $2)`, NotifyChannel, collection)
		return err
	})
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}
