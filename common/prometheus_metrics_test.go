package common_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	common "github.com/peteraglen/task-dispatch/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, metrics *common.PrometheusMetrics) string {
	t.Helper()

	recorder := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	return string(body)
}

func TestPrometheusMetrics_Counters(t *testing.T) {
	t.Parallel()

	metrics := common.NewPrometheusMetrics("test", &common.NoopLogger{})

	metrics.RegisterCounter("jobs_total", "Total jobs.", "type")
	metrics.AddToCounter("jobs_total", 1, "resize")
	metrics.AddToCounter("jobs_total", 2, "resize")

	body := scrape(t, metrics)
	assert.Contains(t, body, `jobs_total{type="resize"} 3`)
}

func TestPrometheusMetrics_DuplicateRegistrationIsIgnored(t *testing.T) {
	t.Parallel()

	metrics := common.NewPrometheusMetrics("test", &common.NoopLogger{})

	metrics.RegisterCounter("jobs_total", "Total jobs.", "type")
	metrics.RegisterCounter("jobs_total", "Total jobs.", "type")

	metrics.AddToCounter("jobs_total", 1, "resize")

	body := scrape(t, metrics)
	assert.Contains(t, body, `jobs_total{type="resize"} 1`)
}

func TestPrometheusMetrics_UnregisteredCounterIsDropped(t *testing.T) {
	t.Parallel()

	metrics := common.NewPrometheusMetrics("test", &common.NoopLogger{})

	// Must not panic, the miss is only logged.
	metrics.AddToCounter("never_registered", 1)

	body := scrape(t, metrics)
	assert.NotContains(t, body, "never_registered")
}

func TestPrometheusMetrics_HTTPRequestMetric(t *testing.T) {
	t.Parallel()

	metrics := common.NewPrometheusMetrics("test", &common.NoopLogger{})

	metrics.AddHTTPRequestMetric("/ping", http.MethodGet, http.StatusOK, 5*time.Millisecond)

	body := scrape(t, metrics)
	assert.Contains(t, body, "test_http_request_duration_seconds")
	assert.Contains(t, body, `path="/ping"`)
	assert.Contains(t, body, `status_code="200"`)
}
