package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muttaqilab/studio/internal/auth"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
	"github.com/muttaqilab/studio/internal/store"
)

// fakeRemote hands out subscriptions whose snapshots the test pushes by
// hand, and records every write it receives.
type fakeRemote struct {
	mu       sync.Mutex
	subs     map[string]chan store.Snapshot
	feeds    []*store.Subscription
	queries  []store.Query
	writes   []string
	created  []any
	writeErr error
	nextID   int
	// subscribeErr fails Subscribe for the named collection.
	subscribeErr map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{subs: make(map[string]chan store.Snapshot)}
}

func (f *fakeRemote) Subscribe(ctx context.Context, q store.Query) (*store.Subscription, error) {
	f.mu.Lock()
	err := f.subscribeErr[q.Collection]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ch := make(chan store.Snapshot)
	sub := store.NewFeed(ctx, func(ctx context.Context, emit func(store.Snapshot) bool) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-ch:
				if !emit(snap) {
					return nil
				}
			}
		}
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[q.Collection] = ch
	f.feeds = append(f.feeds, sub)
	f.queries = append(f.queries, q)
	return sub, nil
}

func (f *fakeRemote) push(t *testing.T, collection string, snap store.Snapshot) {
	t.Helper()
	f.mu.Lock()
	ch := f.subs[collection]
	f.mu.Unlock()
	require.NotNil(t, ch, "no subscription for %s", collection)

	select {
	case ch <- snap:
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription for %s not reading", collection)
	}
}

func (f *fakeRemote) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, op)
	return f.writeErr
}

func (f *fakeRemote) Create(_ context.Context, collection string, record any) (string, error) {
	if err := f.record("create " + collection); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, record)
	f.nextID++
	return fmt.Sprintf("%s-%d", collection, f.nextID), nil
}

func (f *fakeRemote) Update(_ context.Context, collection, id string, fields map[string]any) error {
	return f.record("update " + collection + "/" + id)
}

func (f *fakeRemote) Delete(_ context.Context, collection, id string) error {
	return f.record("delete " + collection + "/" + id)
}

func (f *fakeRemote) SetDoc(_ context.Context, collection, id string, record any) error {
	return f.record("set " + collection + "/" + id)
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// fakeAuth accepts one password and publishes through a real hub, so
// notification timing matches the real providers.
type fakeAuth struct {
	password string
	hub      *auth.Hub
	// hold delays the notification until released.
	hold chan struct{}
}

func newFakeAuth(password string) *fakeAuth {
	return &fakeAuth{password: password, hub: auth.NewHub()}
}

func (a *fakeAuth) SignIn(_ context.Context, session, email, password string) error {
	if password != a.password {
		return auth.ErrInvalidCredentials
	}
	ev := auth.Event{Session: session, User: &content.User{UID: "u-" + email, Email: email}}
	if a.hold != nil {
		go func() {
			<-a.hold
			a.hub.Publish(ev)
		}()
		return nil
	}
	a.hub.Publish(ev)
	return nil
}

func (a *fakeAuth) SignOut(_ context.Context, session string) error {
	a.hub.Publish(auth.Event{Session: session})
	return nil
}

func (a *fakeAuth) Watch(ctx context.Context) (*feed.Feed[auth.Event], error) {
	return a.hub.Watch(ctx), nil
}

func doc(t *testing.T, id string, v any) store.Document {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return store.JSONDocument(id, raw)
}

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func testSite(t *testing.T) *content.Site {
	t.Helper()
	site, err := content.Defaults(fixedNow())
	require.NoError(t, err)
	return site
}
