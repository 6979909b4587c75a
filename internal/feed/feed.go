// Package feed provides a cancellable, goroutine-backed stream of values.
// Every live subscription in the service (remote collections, the settings
// document, auth changes) is a Feed, so that each one has exactly one
// cancel handle.
package feed

import (
	"context"
	"sync"
)

// Producer pushes values through emit until ctx is done or it fails.
// emit returns false once the consumer has gone away; the producer must
// return promptly after that.
type Producer[T any] func(ctx context.Context, emit func(T) bool) error

// Feed is a live stream of values with a single cancel handle.
type Feed[T any] struct {
	C <-chan T

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Start runs p in its own goroutine. C is closed when the producer returns.
func Start[T any](ctx context.Context, p Producer[T]) *Feed[T] {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan T)
	f := &Feed[T]{
		C:      ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	emit := func(v T) bool {
		select {
		case ch <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(f.done)
		defer close(ch)
		err := p(ctx, emit)
		if err != nil && ctx.Err() == nil {
			f.mu.Lock()
			f.err = err
			f.mu.Unlock()
		}
	}()

	return f
}

// Cancel stops the producer and waits for its goroutine to exit.
// It is safe to call more than once.
func (f *Feed[T]) Cancel() {
	f.cancel()
	<-f.done
}

// Done is closed once the producer has returned.
func (f *Feed[T]) Done() <-chan struct{} {
	return f.done
}

// Err reports why the producer stopped, if it stopped on its own with an
// error. Cancellation is not an error.
func (f *Feed[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
