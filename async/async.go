package async

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotCompleted is the failure recorded on a handle whose behavior returned
// without completing it. Waiters are never left hanging on a forgotten handle.
var ErrNotCompleted = errors.New("behavior returned without completing the handle")

// Submit schedules a behavior on the pool and returns its handle immediately.
// The behavior runs on a worker at some later time and is responsible for
// completing the handle. Two misuses are guarded against:
//
//   - a behavior that panics fails the handle with the recovered value;
//   - a behavior that returns without completing the handle fails it with
//     ErrNotCompleted.
//
// The returned error concerns scheduling only (nil behavior, pool saturation);
// execution failures surface through the handle.
func Submit[T any](ctx context.Context, pool *Pool, behavior Behavior[T]) (*Handle[T], error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}

	if behavior == nil {
		return nil, errors.New("behavior cannot be nil")
	}

	h := NewHandle[T]()

	task := func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				_ = h.Fail(fmt.Errorf("behavior panicked: %v", r))
				return
			}

			if !h.Completed() {
				_ = h.Fail(ErrNotCompleted)
			}
		}()

		behavior(ctx, h)
	}

	if err := pool.Submit(ctx, task); err != nil {
		return nil, err
	}

	return h, nil
}

// SubmitWithInput is Submit for behaviors taking one input value.
func SubmitWithInput[T, I any](ctx context.Context, pool *Pool, input I, behavior BehaviorWithInput[T, I]) (*Handle[T], error) {
	if behavior == nil {
		return nil, errors.New("behavior cannot be nil")
	}

	return Submit(ctx, pool, func(ctx context.Context, h *Handle[T]) {
		behavior(ctx, h, input)
	})
}
