package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation constants for DispatcherConfig.
const (
	// MinResultTTL is the minimum allowed result retention time.
	MinResultTTL = time.Second
	// MaxResultTTL is the maximum allowed result retention time.
	MaxResultTTL = 7 * 24 * time.Hour

	// MinLockTTL is the minimum allowed execution lock TTL.
	MinLockTTL = time.Second
	// MaxLockTTL is the maximum allowed execution lock TTL.
	MaxLockTTL = time.Hour
)

// DispatcherConfig holds configuration for the job dispatcher.
// These settings cannot be changed after startup.
type DispatcherConfig struct {
	// CacheKeyPrefix is the prefix used for all result store keys. Set the same
	// prefix on every instance sharing a store.
	CacheKeyPrefix string `json:"cacheKeyPrefix" yaml:"cacheKeyPrefix"`

	// ResultTTL is how long job results are retained in the result store.
	ResultTTL time.Duration `json:"resultTtl" yaml:"resultTtl"`

	// LockTTL is the TTL of the exclusive execution lock taken for jobs with a
	// dedup key. It must comfortably exceed the longest expected handler run.
	LockTTL time.Duration `json:"lockTtl" yaml:"lockTtl"`

	// LockMaxWait is the maximum time a worker waits for an execution lock
	// before failing the job.
	LockMaxWait time.Duration `json:"lockMaxWait" yaml:"lockMaxWait"`

	// Pool holds configuration for the worker pool executing jobs.
	Pool *PoolConfig `json:"pool" yaml:"pool"`
}

// NewDefaultDispatcherConfig returns a DispatcherConfig with default values.
func NewDefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		CacheKeyPrefix: "task-dispatch:",
		ResultTTL:      time.Hour,
		LockTTL:        5 * time.Minute,
		LockMaxWait:    30 * time.Second,
		Pool:           NewDefaultPoolConfig(),
	}
}

// Validate validates the DispatcherConfig and returns an error if any required
// fields are missing or invalid.
func (c *DispatcherConfig) Validate() error {
	if c.CacheKeyPrefix == "" {
		return errors.New("cache key prefix is required")
	}

	if c.ResultTTL < MinResultTTL || c.ResultTTL > MaxResultTTL {
		return fmt.Errorf("result TTL must be between %v and %v", MinResultTTL, MaxResultTTL)
	}

	if c.LockTTL < MinLockTTL || c.LockTTL > MaxLockTTL {
		return fmt.Errorf("lock TTL must be between %v and %v", MinLockTTL, MaxLockTTL)
	}

	if c.LockMaxWait < 0 {
		return errors.New("lock max wait cannot be negative")
	}

	if c.Pool == nil {
		return errors.New("pool config is required")
	}

	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("pool config is invalid: %w", err)
	}

	return nil
}
