package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/peteraglen/task-dispatch/client"
	"github.com/peteraglen/task-dispatch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (l *testLogger) Debugf(format string, v ...interface{}) {}
func (l *testLogger) Infof(format string, v ...interface{})  {}
func (l *testLogger) Errorf(format string, v ...interface{}) {}

// stubAPI emulates the dispatch REST API. It records submission headers and
// serves canned results, including one that only becomes available after a
// few polls.
type stubAPI struct {
	mu            sync.Mutex
	lastClientID  string
	lastDedupKey  string
	lateResultGet int
}

func (s *stubAPI) handler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodGet && req.URL.Path == "/ping":
			_, _ = resp.Write([]byte("pong"))

		case req.Method == http.MethodPost && req.URL.Path == "/jobs/echo":
			s.mu.Lock()
			s.lastClientID = req.Header.Get("X-Client-Id")
			s.lastDedupKey = req.Header.Get("X-Dedup-Key")
			s.mu.Unlock()

			resp.WriteHeader(http.StatusAccepted)
			_, _ = resp.Write([]byte(`{"jobId": "job-123"}`))

		case req.Method == http.MethodPost && req.URL.Path == "/jobs/echo/sync":
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			_, _ = resp.Write(body)

		case req.Method == http.MethodPost && req.URL.Path == "/jobs/nope":
			resp.WriteHeader(http.StatusNotFound)
			_, _ = resp.Write([]byte("No handler registered for job type nope"))

		case req.Method == http.MethodGet && req.URL.Path == "/jobs/job-123":
			writeResult(t, resp, &models.JobResult{
				JobID:  "job-123",
				Type:   "echo",
				Status: models.StatusSucceeded,
				Output: json.RawMessage(`{"n": 1}`),
			})

		case req.Method == http.MethodGet && req.URL.Path == "/jobs/job-late":
			s.mu.Lock()
			s.lateResultGet++
			polls := s.lateResultGet
			s.mu.Unlock()

			// Not found on the first poll, pending on the second,
			// terminal from then on.
			switch {
			case polls == 1:
				resp.WriteHeader(http.StatusNotFound)
			case polls == 2:
				writeResult(t, resp, &models.JobResult{JobID: "job-late", Status: models.StatusPending})
			default:
				writeResult(t, resp, &models.JobResult{JobID: "job-late", Status: models.StatusFailed, Error: "it broke"})
			}

		default:
			resp.WriteHeader(http.StatusNotFound)
		}
	})
}

func writeResult(t *testing.T, resp http.ResponseWriter, result *models.JobResult) {
	t.Helper()

	resp.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(resp).Encode(result))
}

func connect(t *testing.T, api *stubAPI, clientOptions ...client.Options) client.DispatchClient {
	t.Helper()

	ts := httptest.NewServer(api.handler(t))
	t.Cleanup(ts.Close)

	clientOptions = append([]client.Options{client.RetryCount(0), client.PollInterval(10 * time.Millisecond)}, clientOptions...)

	c, err := client.NewDispatchClient().Connect(context.Background(), ts.URL, &testLogger{}, clientOptions...)
	require.NoError(t, err)

	return c
}

func TestDispatchClient_Connect(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	assert.NoError(t, c.Ping(context.Background()))
}

func TestDispatchClient_ConnectFailures(t *testing.T) {
	t.Parallel()

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := client.NewDispatchClient().Connect(context.Background(), "http://127.0.0.1:1", &testLogger{}, client.RetryCount(0))
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()

		_, err := client.NewDispatchClient().Connect(context.Background(), "http://localhost:8080", nil)
		assert.Error(t, err)
	})

	t.Run("empty base URL", func(t *testing.T) {
		t.Parallel()

		_, err := client.NewDispatchClient().Connect(context.Background(), "", &testLogger{})
		assert.Error(t, err)
	})
}

func TestDispatchClient_NotConnected(t *testing.T) {
	t.Parallel()

	c := client.NewDispatchClient()

	_, err := c.SubmitJob(context.Background(), "echo", nil, "")
	assert.ErrorContains(t, err, "not connected")
}

func TestDispatchClient_SubmitJob(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	c := connect(t, api, client.ClientID("test-client"))

	jobID, err := c.SubmitJob(context.Background(), "echo", json.RawMessage(`{"n": 1}`), "tenant-42")
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, "test-client", api.lastClientID)
	assert.Equal(t, "tenant-42", api.lastDedupKey)
}

func TestDispatchClient_SubmitJobEmptyType(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	_, err := c.SubmitJob(context.Background(), "", nil, "")
	assert.ErrorContains(t, err, "job type cannot be empty")
}

func TestDispatchClient_SubmitJobUnknownType(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	_, err := c.SubmitJob(context.Background(), "nope", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No handler registered")
}

func TestDispatchClient_SubmitJobSync(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	output, err := c.SubmitJobSync(context.Background(), "echo", json.RawMessage(`{"n": 2}`), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 2}`, string(output))
}

func TestDispatchClient_GetResult(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	result, err := c.GetResult(context.Background(), "job-123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSucceeded, result.Status)
	assert.JSONEq(t, `{"n": 1}`, string(result.Output))
}

func TestDispatchClient_GetResultNotFound(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	_, err := c.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, client.ErrResultNotFound)
}

func TestDispatchClient_WaitForResult(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Survives a not-found poll and a pending poll before the terminal result.
	result, err := c.WaitForResult(ctx, "job-late")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, "it broke", result.Error)
}

func TestDispatchClient_WaitForResultContextCancelled(t *testing.T) {
	t.Parallel()

	c := connect(t, &stubAPI{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The result never appears, so the wait ends with the context.
	_, err := c.WaitForResult(ctx, "missing")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
