// Package dispatcher executes registered job handlers on a bounded worker
// pool and records their outcomes in a TTL'd result store.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/peteraglen/task-dispatch/async"
	common "github.com/peteraglen/task-dispatch/common"
	"github.com/peteraglen/task-dispatch/config"
	"github.com/peteraglen/task-dispatch/internal"
	"github.com/peteraglen/task-dispatch/models"
	"github.com/peteraglen/task-dispatch/notify"
)

// ErrInvalidJob is returned by Submit when the job fails validation.
var ErrInvalidJob = errors.New("invalid job")

// Metric names registered by a dispatcher.
const (
	MetricJobsAccepted  = "dispatch_jobs_accepted_total"
	MetricJobsCompleted = "dispatch_jobs_completed_total"
)

// lockReleaseTimeout bounds execution lock release. Release uses a background
// context because releasing is a commitment, not a cancellable request.
const lockReleaseTimeout = 2 * time.Second

type Dispatcher struct {
	registry *Registry
	pool     *async.Pool
	results  *internal.Cache[string]
	locker   Locker
	notifier notify.Notifier
	logger   common.Logger
	metrics  common.Metrics
	cfg      *config.DispatcherConfig
}

// New creates a dispatcher executing the registry's handlers.
// A nil cacheStore defaults to an in-process store; use NewRedisResultStore
// when instances share results. Nil logger, metrics and cfg get safe defaults.
func New(registry *Registry, cacheStore store.StoreInterface, logger common.Logger, metrics common.Metrics, cfg *config.DispatcherConfig) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}

	if cfg == nil {
		cfg = config.NewDefaultDispatcherConfig()
	}

	if logger == nil {
		logger = &common.NoopLogger{}
	}

	if metrics == nil {
		metrics = &common.NoopMetrics{}
	}

	if cacheStore == nil {
		gocacheClient := gocache.New(cfg.ResultTTL, time.Minute)
		cacheStore = gocache_store.NewGoCache(gocacheClient)
	}

	metrics.RegisterCounter(MetricJobsAccepted, "Total number of jobs accepted for execution.", "type")
	metrics.RegisterCounter(MetricJobsCompleted, "Total number of jobs that reached a terminal status.", "type", "status")

	return &Dispatcher{
		registry: registry,
		pool:     async.NewPool(cfg.Pool, logger, metrics),
		results:  internal.NewCache[string](cacheStore, cfg.CacheKeyPrefix, logger),
		locker:   &NoopLocker{},
		notifier: &notify.NoopNotifier{},
		logger:   logger,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// WithLocker sets the execution locker used for jobs with a dedup key.
func (d *Dispatcher) WithLocker(locker Locker) *Dispatcher {
	if locker != nil {
		d.locker = locker
	}

	return d
}

// WithNotifier sets the notifier told about failed jobs.
func (d *Dispatcher) WithNotifier(notifier notify.Notifier) *Dispatcher {
	if notifier != nil {
		d.notifier = notifier
	}

	return d
}

// Run starts the worker pool and blocks until the context is cancelled.
// Cancellation is a clean shutdown, not an error.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Debug("dispatcher.Run started")
	defer d.logger.Debug("dispatcher.Run exited")

	if err := d.cfg.Validate(); err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	if err := d.pool.Run(ctx); err != nil && !internal.IsCtxCanceledErr(err) {
		return err
	}

	return nil
}

// Submit accepts a job for deferred execution and returns its handle
// immediately; the job executes on a worker at some later time. The terminal
// outcome is also recorded in the result store under the job ID.
//
// A scheduling failure (unknown type, invalid job, saturated pool) is returned
// synchronously; execution failures surface through the handle and the store.
func (d *Dispatcher) Submit(ctx context.Context, job *models.Job) (*async.Handle[json.RawMessage], error) {
	if job == nil {
		return nil, errors.New("job cannot be nil")
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJob, err)
	}

	handler, err := d.registry.Handler(job.Type)
	if err != nil {
		return nil, err
	}

	result := models.NewPendingResult(job)
	d.storeResult(ctx, result)

	handle, err := async.SubmitWithInput(ctx, d.pool, job, func(ctx context.Context, h *async.Handle[json.RawMessage], job *models.Job) {
		d.execute(ctx, job, handler, h)
	})
	if err != nil {
		result.Fail(err)
		d.storeResult(ctx, result)

		return nil, err
	}

	d.metrics.AddToCounter(MetricJobsAccepted, 1, job.Type)

	return handle, nil
}

// Result returns the stored result for a job ID, if still retained.
func (d *Dispatcher) Result(ctx context.Context, jobID string) (*models.JobResult, bool) {
	body, ok := d.results.Get(ctx, resultKey(jobID))
	if !ok {
		return nil, false
	}

	result, err := models.UnmarshalJobResult(body)
	if err != nil {
		d.logger.Errorf("Failed to unmarshal stored result for job %s: %s", jobID, err)
		return nil, false
	}

	return result, true
}

// JobTypes returns the job types the dispatcher can execute.
func (d *Dispatcher) JobTypes() []string {
	return d.registry.Types()
}

func (d *Dispatcher) execute(ctx context.Context, job *models.Job, handler HandlerFunc, h *async.Handle[json.RawMessage]) {
	started := time.Now()
	logger := d.logger.WithField("job_id", job.ID).WithField("job_type", job.Type)

	result := models.NewPendingResult(job)
	result.Status = models.StatusRunning
	d.storeResult(ctx, result)

	output, err := d.runHandler(ctx, job, handler, logger)

	duration := fmt.Sprintf("%v", time.Since(started))

	if err != nil {
		result.Fail(err)
		_ = h.Fail(err)

		logger.WithField("duration", duration).Errorf("Job failed: %s", err)
		d.notifier.NotifyJobFailure(ctx, job, err.Error())
	} else {
		result.Succeed(output)
		_ = h.Complete(output)

		logger.WithField("duration", duration).Info("Job completed")
	}

	d.storeResult(ctx, result)
	d.metrics.AddToCounter(MetricJobsCompleted, 1, job.Type, string(result.Status))
}

// runHandler executes the handler, holding the execution lock when the job
// carries a dedup key. Handler panics are converted into errors.
func (d *Dispatcher) runHandler(ctx context.Context, job *models.Job, handler HandlerFunc, logger common.Logger) (output json.RawMessage, err error) {
	if job.DedupKey != "" {
		lock, lockErr := d.locker.Obtain(ctx, lockKey(job.DedupKey), d.cfg.LockTTL, d.cfg.LockMaxWait)
		if lockErr != nil {
			return nil, fmt.Errorf("failed to obtain execution lock: %w", lockErr)
		}

		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
			defer cancel()

			if releaseErr := lock.Release(releaseCtx); releaseErr != nil {
				logger.Errorf("Failed to release execution lock: %s", releaseErr)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler(ctx, job.Input)
}

func (d *Dispatcher) storeResult(ctx context.Context, result *models.JobResult) {
	body, err := result.Marshal()
	if err != nil {
		d.logger.Errorf("Failed to store result for job %s: %s", result.JobID, err)
		return
	}

	d.results.Set(ctx, resultKey(result.JobID), body, d.cfg.ResultTTL)
}

func resultKey(jobID string) string {
	return "result:" + jobID
}

func lockKey(dedupKey string) string {
	return "exec-lock:" + internal.Hash(dedupKey)
}
