package common

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics using a dedicated prometheus registry.
// Use HTTPHandler to expose the registry on a /metrics endpoint.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.HistogramVec

	countersLock sync.Mutex
	counters     map[string]*prometheus.CounterVec

	logger Logger
}

func NewPrometheusMetrics(namespace string, logger Logger) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by path, method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method", "status_code"})

	registry.MustRegister(requests)

	return &PrometheusMetrics{
		registry: registry,
		requests: requests,
		counters: make(map[string]*prometheus.CounterVec),
		logger:   logger,
	}
}

func (m *PrometheusMetrics) RegisterCounter(name, help string, labels ...string) {
	m.countersLock.Lock()
	defer m.countersLock.Unlock()

	if _, ok := m.counters[name]; ok {
		return
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)

	if err := m.registry.Register(counter); err != nil {
		m.logger.Errorf("Failed to register counter %s: %s", name, err)
		return
	}

	m.counters[name] = counter
}

func (m *PrometheusMetrics) AddToCounter(name string, value float64, labelValues ...string) {
	m.countersLock.Lock()
	counter, ok := m.counters[name]
	m.countersLock.Unlock()

	if !ok {
		m.logger.Errorf("Counter %s is not registered", name)
		return
	}

	counter.WithLabelValues(labelValues...).Add(value)
}

func (m *PrometheusMetrics) AddHTTPRequestMetric(path, method string, statusCode int, duration time.Duration) {
	m.requests.WithLabelValues(path, method, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

// HTTPHandler returns a handler serving the metrics registry.
func (m *PrometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
