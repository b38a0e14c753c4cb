package config

import (
	"fmt"
	"time"
)

// SaturationPolicy controls what Submit does when the pool queue is full.
type SaturationPolicy string

const (
	// SaturationReject makes Submit fail immediately when the queue is full.
	SaturationReject SaturationPolicy = "reject"

	// SaturationWait makes Submit wait up to MaxSubmitWaitTime for queue space.
	SaturationWait SaturationPolicy = "wait"
)

// Validation constants for PoolConfig.
const (
	// MinWorkers is the minimum allowed worker count.
	MinWorkers = 1
	// MaxWorkers is the maximum allowed worker count.
	MaxWorkers = 1024

	// MinQueueSize is the minimum allowed submission queue size.
	MinQueueSize = 1
	// MaxQueueSize is the maximum allowed submission queue size.
	MaxQueueSize = 1_000_000

	// MinMaxSubmitWaitTime is the minimum allowed submit wait time (for the wait policy).
	MinMaxSubmitWaitTime = 10 * time.Millisecond
	// MaxMaxSubmitWaitTime is the maximum allowed submit wait time (for the wait policy).
	MaxMaxSubmitWaitTime = 5 * time.Minute
)

// PoolConfig holds configuration for a worker pool.
// These settings cannot be changed after the pool is created.
type PoolConfig struct {
	// Workers is the number of workers executing submitted tasks concurrently.
	Workers int `json:"workers" yaml:"workers"`

	// QueueSize bounds the number of tasks waiting for a worker.
	QueueSize int `json:"queueSize" yaml:"queueSize"`

	// Saturation controls what Submit does when the queue is full.
	Saturation SaturationPolicy `json:"saturation" yaml:"saturation"`

	// MaxSubmitWaitTime is the maximum time Submit waits for queue space.
	// Only used with the wait saturation policy.
	MaxSubmitWaitTime time.Duration `json:"maxSubmitWaitTime" yaml:"maxSubmitWaitTime"`
}

// NewDefaultPoolConfig returns a PoolConfig with default values.
func NewDefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:           8,
		QueueSize:         256,
		Saturation:        SaturationReject,
		MaxSubmitWaitTime: 5 * time.Second,
	}
}

// Validate validates the PoolConfig and returns an error if any fields are invalid.
func (c *PoolConfig) Validate() error {
	if c.Workers < MinWorkers || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between %d and %d", MinWorkers, MaxWorkers)
	}

	if c.QueueSize < MinQueueSize || c.QueueSize > MaxQueueSize {
		return fmt.Errorf("queue size must be between %d and %d", MinQueueSize, MaxQueueSize)
	}

	switch c.Saturation {
	case SaturationReject:
	case SaturationWait:
		if c.MaxSubmitWaitTime < MinMaxSubmitWaitTime || c.MaxSubmitWaitTime > MaxMaxSubmitWaitTime {
			return fmt.Errorf("max submit wait time must be between %v and %v", MinMaxSubmitWaitTime, MaxMaxSubmitWaitTime)
		}
	default:
		return fmt.Errorf("saturation policy must be %q or %q", SaturationReject, SaturationWait)
	}

	return nil
}
