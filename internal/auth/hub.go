package auth

import (
	"context"
	"sync"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
)

// Hub fans events out to every watcher. It remembers which sessions are
// signed in so a new watcher first receives the current state.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]content.User
	watchers map[*watcher]struct{}
}

type watcher struct {
	mu     sync.Mutex
	queue  []Event
	signal chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]content.User),
		watchers: make(map[*watcher]struct{}),
	}
}

// Publish records ev and queues it for every watcher. It never blocks.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.User != nil {
		h.sessions[ev.Session] = *ev.User
	} else {
		delete(h.sessions, ev.Session)
	}
	for w := range h.watchers {
		w.push(ev)
	}
}

// Current returns the signed-in user of a session.
func (h *Hub) Current(session string) (content.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.sessions[session]
	return u, ok
}

func (h *Hub) Watch(ctx context.Context) *feed.Feed[Event] {
	w := &watcher{signal: make(chan struct{}, 1)}

	h.mu.Lock()
	for sid, u := range h.sessions {
		w.push(Event{Session: sid, User: &u})
	}
	h.watchers[w] = struct{}{}
	h.mu.Unlock()

	return feed.Start(ctx, func(ctx context.Context, emit func(Event) bool) error {
		defer func() {
			h.mu.Lock()
			delete(h.watchers, w)
			h.mu.Unlock()
		}()

		for {
			for _, ev := range w.drain() {
				if !emit(ev) {
					return nil
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.signal:
			}
		}
	})
}

func (w *watcher) push(ev Event) {
	w.mu.Lock()
	w.queue = append(w.queue, ev)
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *watcher) drain() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queue
	w.queue = nil
	return q
}
