// Package queue provides the bounded multi-producer/multi-consumer queue that
// sits between loader submitters and workers.
package queue

import (
	"context"
	"errors"
)

// ErrStopped is returned by Push when the stop channel closes before space frees up.
var ErrStopped = errors.New("queue: stopped")

// Bounded is a fixed-capacity FIFO safe for any number of concurrent producers
// and consumers. Admission order is preserved; there is no priority.
//
// The queue is never closed: producers and consumers coordinate shutdown
// through the stop channel passed to Push, so a racing producer can never
// panic on a closed channel.
type Bounded[T any] struct {
	ch chan T
}

// NewBounded creates a queue holding at most capacity items.
// A non-positive capacity is treated as 1.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bounded[T]{ch: make(chan T, capacity)}
}

// Push enqueues v, blocking while the queue is full.
// It returns ctx.Err() if ctx is done first, or ErrStopped if stop closes first.
func (q *Bounded[T]) Push(ctx context.Context, v T, stop <-chan struct{}) error {
	// Fast path keeps an uncontended push free of the three-way select.
	select {
	case q.ch <- v:
		return nil
	default:
	}

	select {
	case q.ch <- v:
		return nil
	case <-stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues v only if there is space, without blocking.
func (q *Bounded[T]) TryPush(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// TryPop dequeues the oldest item without blocking.
func (q *Bounded[T]) TryPop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of queued items. The value is a snapshot.
func (q *Bounded[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return cap(q.ch)
}
