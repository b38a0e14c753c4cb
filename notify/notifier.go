// Package notify delivers operational notifications about job outcomes.
package notify

import (
	"context"

	"github.com/peteraglen/task-dispatch/models"
)

// Notifier is told about jobs that reached the FAILED status.
// Implementations must not block the calling worker for long; delivery is
// best-effort and failures to notify are logged, never propagated.
type Notifier interface {
	NotifyJobFailure(ctx context.Context, job *models.Job, failure string)
}

// NoopNotifier is a Notifier that does nothing.
type NoopNotifier struct{}

func (n *NoopNotifier) NotifyJobFailure(ctx context.Context, job *models.Job, failure string) {}
