package async

import (
	"context"
	"errors"
	"fmt"

	common "github.com/peteraglen/task-dispatch/common"
	"github.com/peteraglen/task-dispatch/config"
	"github.com/peteraglen/task-dispatch/internal"
	"golang.org/x/sync/errgroup"
)

// ErrPoolSaturated is returned by Submit when the submission queue is full
// and the saturation policy does not allow (further) waiting.
var ErrPoolSaturated = errors.New("pool submission queue is full")

// Metric names registered by a pool.
const (
	MetricTasksSubmitted = "pool_tasks_submitted_total"
	MetricTasksRejected  = "pool_tasks_rejected_total"
	MetricTaskPanics     = "pool_task_panics_total"
)

// Task is a unit of work executed by a pool worker.
type Task func(ctx context.Context)

// Pool executes submitted tasks on a fixed number of workers, drawing from a
// bounded submission queue. Pools are constructed and owned explicitly; there
// is no package level pool.
//
// Submission never waits for a task to execute. Depending on the configured
// saturation policy, it either fails immediately when the queue is full, or
// waits a bounded time for queue space.
type Pool struct {
	cfg     *config.PoolConfig
	taskCh  chan Task
	logger  common.Logger
	metrics common.Metrics
}

// NewPool creates a pool with the given configuration.
// A nil cfg uses defaults; nil logger and metrics are replaced with no-ops.
// The pool executes nothing until Run is called.
func NewPool(cfg *config.PoolConfig, logger common.Logger, metrics common.Metrics) *Pool {
	if cfg == nil {
		cfg = config.NewDefaultPoolConfig()
	}

	if logger == nil {
		logger = &common.NoopLogger{}
	}

	if metrics == nil {
		metrics = &common.NoopMetrics{}
	}

	metrics.RegisterCounter(MetricTasksSubmitted, "Total number of tasks submitted to the pool.")
	metrics.RegisterCounter(MetricTasksRejected, "Total number of task submissions rejected due to saturation.")
	metrics.RegisterCounter(MetricTaskPanics, "Total number of panics recovered from submitted tasks.")

	return &Pool{
		cfg:     cfg,
		taskCh:  make(chan Task, cfg.QueueSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Run starts the workers and blocks until the context is cancelled.
// Tasks still queued at cancellation time are dropped.
func (p *Pool) Run(ctx context.Context) error {
	if err := p.cfg.Validate(); err != nil {
		return fmt.Errorf("failed to validate pool configuration: %w", err)
	}

	p.logger.Debugf("pool started with %d workers", p.cfg.Workers)
	defer p.logger.Debug("pool exited")

	errg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < p.cfg.Workers; i++ {
		workerID := i

		errg.Go(func() error {
			return p.worker(ctx, workerID)
		})
	}

	return errg.Wait()
}

// Submit enqueues a task and returns without waiting for it to execute.
// When the queue is full, the reject policy fails immediately with
// ErrPoolSaturated; the wait policy blocks up to MaxSubmitWaitTime first.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	select {
	case p.taskCh <- task:
		p.metrics.AddToCounter(MetricTasksSubmitted, 1)
		return nil
	default:
	}

	if p.cfg.Saturation == config.SaturationReject {
		p.metrics.AddToCounter(MetricTasksRejected, 1)
		return ErrPoolSaturated
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.MaxSubmitWaitTime)
	defer cancel()

	if err := internal.TrySend(waitCtx, task, p.taskCh); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.metrics.AddToCounter(MetricTasksRejected, 1)
		return ErrPoolSaturated
	}

	p.metrics.AddToCounter(MetricTasksSubmitted, 1)

	return nil
}

// QueueDepth returns the number of tasks currently waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.taskCh)
}

func (p *Pool) worker(ctx context.Context, id int) error {
	logger := p.logger.WithField("worker", id)

	logger.Debug("worker started")
	defer logger.Debug("worker exited")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-p.taskCh:
			p.runTask(ctx, task, logger)
		}
	}
}

// runTask executes a single task, recovering panics so a misbehaving task
// never takes a worker down.
func (p *Pool) runTask(ctx context.Context, task Task, logger common.Logger) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.AddToCounter(MetricTaskPanics, 1)
			logger.Errorf("Recovered panic from submitted task: %v", r)
		}
	}()

	task(ctx)
}
