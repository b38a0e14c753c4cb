package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownJobType is returned when a job names a type no handler is registered for.
var ErrUnknownJobType = errors.New("unknown job type")

// HandlerFunc executes one job. The input is passed through from the
// submission verbatim; the returned output becomes the job result.
type HandlerFunc func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Registry maps job type names to their handlers.
// Register everything before the dispatcher starts; lookups are concurrent.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler for the given job type.
// Registering the same type twice, or a nil handler, is an error.
func (r *Registry) Register(jobType string, handler HandlerFunc) error {
	if jobType == "" {
		return errors.New("job type cannot be empty")
	}

	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[jobType]; ok {
		return fmt.Errorf("handler for job type %s is already registered", jobType)
	}

	r.handlers[jobType] = handler

	return nil
}

// Handler returns the handler registered for the given job type.
func (r *Registry) Handler(jobType string) (HandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	return handler, nil
}

// Types returns the registered job type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))

	for jobType := range r.handlers {
		types = append(types, jobType)
	}

	return types
}
