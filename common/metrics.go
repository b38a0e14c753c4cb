package common

import "time"

// Metrics is the metrics interface used throughout the module.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// RegisterCounter registers a counter with the given name, help text and label names.
	// Registering the same name twice is a no-op.
	RegisterCounter(name, help string, labels ...string)

	// AddToCounter adds value to a previously registered counter.
	AddToCounter(name string, value float64, labelValues ...string)

	// AddHTTPRequestMetric records a single HTTP request.
	AddHTTPRequestMetric(path, method string, statusCode int, duration time.Duration)
}

// NoopMetrics is a Metrics implementation that does nothing.
type NoopMetrics struct{}

func (m *NoopMetrics) RegisterCounter(name, help string, labels ...string) {}

func (m *NoopMetrics) AddToCounter(name string, value float64, labelValues ...string) {}

func (m *NoopMetrics) AddHTTPRequestMetric(path, method string, statusCode int, duration time.Duration) {
}
