// Package async provides deferred invocation of caller-supplied behavior on a
// bounded worker pool, with completion signaled through a one-shot handle.
package async

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyCompleted is returned when a handle is completed more than once.
// The first completion wins; later attempts never change the observed outcome.
var ErrAlreadyCompleted = errors.New("handle is already completed")

// Handle is a one-shot completion capability. It is completed exactly once,
// with either a value or an error, typically by behavior executing on a worker
// while the creator waits (or polls) elsewhere.
//
// A Handle must be created with NewHandle. All methods are safe for concurrent use.
type Handle[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	completed bool
	value     T
	err       error
}

// NewHandle creates an uncompleted handle.
func NewHandle[T any]() *Handle[T] {
	return &Handle[T]{
		done: make(chan struct{}),
	}
}

// Complete completes the handle with a value.
// Returns ErrAlreadyCompleted if the handle was completed before.
func (h *Handle[T]) Complete(value T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return ErrAlreadyCompleted
	}

	h.completed = true
	h.value = value
	close(h.done)

	return nil
}

// Fail completes the handle with an error.
// Returns ErrAlreadyCompleted if the handle was completed before.
func (h *Handle[T]) Fail(err error) error {
	if err == nil {
		err = errors.New("handle failed without an error")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return ErrAlreadyCompleted
	}

	h.completed = true
	h.err = err
	close(h.done)

	return nil
}

// Wait blocks until the handle is completed or the context is cancelled.
// On completion it returns the value or error the handle was completed with.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return *new(T), ctx.Err()
	}
}

// Done returns a channel that is closed when the handle is completed.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Completed reports whether the handle has been completed.
func (h *Handle[T]) Completed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.completed
}
