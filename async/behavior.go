package async

import "context"

// Behavior is a unit of caller-supplied logic executed on a worker.
// The behavior owns the handle for the duration of the call and must complete
// it (exactly once) before returning. Submit adds a guard rail for behaviors
// that fail to do so.
type Behavior[T any] func(ctx context.Context, h *Handle[T])

// BehaviorWithInput is a Behavior that additionally receives one input value.
type BehaviorWithInput[T, I any] func(ctx context.Context, h *Handle[T], input I)
