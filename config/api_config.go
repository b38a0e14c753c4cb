package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Validation constants for APIConfig.
const (
	// MinRestPort is the minimum valid port number.
	MinRestPort = 1
	// MaxRestPort is the maximum valid port number.
	MaxRestPort = 65535

	// MinSyncWaitTime is the minimum allowed wait time for synchronous submissions.
	MinSyncWaitTime = time.Second
	// MaxSyncWaitTime is the maximum allowed wait time for synchronous submissions.
	MaxSyncWaitTime = 5 * time.Minute
)

// Validation constants for RateLimitConfig.
const (
	// MinRequestsPerSecond is the minimum allowed request rate per client.
	MinRequestsPerSecond = 0.001
	// MaxRequestsPerSecond is the maximum allowed request rate per client.
	MaxRequestsPerSecond = 10000

	// MinAllowedBurst is the minimum allowed burst size.
	MinAllowedBurst = 1
	// MaxAllowedBurst is the maximum allowed burst size.
	MaxAllowedBurst = 100000

	// MinMaxRequestWaitTime is the minimum allowed request wait time.
	MinMaxRequestWaitTime = 100 * time.Millisecond
	// MaxMaxRequestWaitTime is the maximum allowed request wait time.
	MaxMaxRequestWaitTime = time.Minute
)

// APIConfig holds configuration for the task dispatch REST API.
// These are basic app settings. They cannot be changed after startup.
type APIConfig struct {
	// LogJSON indicates whether to log in JSON format.
	LogJSON bool `json:"logJson" yaml:"logJson"`

	// Verbose indicates whether to enable verbose logging.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// RestPort is the port the REST API server listens on.
	RestPort string `json:"restPort" yaml:"restPort"`

	// SyncWaitTime is the maximum time a synchronous submission waits for its result.
	SyncWaitTime time.Duration `json:"syncWaitTime" yaml:"syncWaitTime"`

	// RateLimitPerClient holds rate limiting configuration per client.
	RateLimitPerClient *RateLimitConfig `json:"rateLimitPerClient" yaml:"rateLimitPerClient"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the number of requests allowed per second.
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`

	// AllowedBurst is the maximum burst size.
	AllowedBurst int `json:"allowedBurst" yaml:"allowedBurst"`

	// MaxRequestWaitTime is the maximum time a request will wait for available rate limit tokens.
	MaxRequestWaitTime time.Duration `json:"maxRequestWaitTime" yaml:"maxRequestWaitTime"`
}

// Validate validates the RateLimitConfig and returns an error if any fields are invalid.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond < MinRequestsPerSecond || c.RequestsPerSecond > MaxRequestsPerSecond {
		return fmt.Errorf("requests per second must be between %v and %v", MinRequestsPerSecond, MaxRequestsPerSecond)
	}

	if c.AllowedBurst < MinAllowedBurst || c.AllowedBurst > MaxAllowedBurst {
		return fmt.Errorf("allowed burst must be between %d and %d", MinAllowedBurst, MaxAllowedBurst)
	}

	if c.MaxRequestWaitTime < MinMaxRequestWaitTime || c.MaxRequestWaitTime > MaxMaxRequestWaitTime {
		return fmt.Errorf("max request wait time must be between %v and %v", MinMaxRequestWaitTime, MaxMaxRequestWaitTime)
	}

	return nil
}

// NewDefaultAPIConfig returns an APIConfig with default values.
func NewDefaultAPIConfig() *APIConfig {
	return &APIConfig{
		LogJSON:      true,
		Verbose:      false,
		RestPort:     "8080",
		SyncWaitTime: 30 * time.Second,
		RateLimitPerClient: &RateLimitConfig{
			RequestsPerSecond:  10,
			AllowedBurst:       30,
			MaxRequestWaitTime: 15 * time.Second,
		},
	}
}

// Validate validates the APIConfig and returns an error if any required fields are missing or invalid.
func (c *APIConfig) Validate() error {
	if err := c.validateRestPort(); err != nil {
		return err
	}

	if c.SyncWaitTime < MinSyncWaitTime || c.SyncWaitTime > MaxSyncWaitTime {
		return fmt.Errorf("sync wait time must be between %v and %v", MinSyncWaitTime, MaxSyncWaitTime)
	}

	if c.RateLimitPerClient == nil {
		return errors.New("rate limit config is required")
	}

	if err := c.RateLimitPerClient.Validate(); err != nil {
		return fmt.Errorf("rate limit config is invalid: %w", err)
	}

	return nil
}

// validateRestPort validates that the REST port is a valid port number.
func (c *APIConfig) validateRestPort() error {
	if c.RestPort == "" {
		return errors.New("rest port is required")
	}

	port, err := strconv.Atoi(c.RestPort)
	if err != nil {
		return errors.New("rest port must be a valid number")
	}

	if port < MinRestPort || port > MaxRestPort {
		return fmt.Errorf("rest port must be between %d and %d", MinRestPort, MaxRestPort)
	}

	return nil
}
