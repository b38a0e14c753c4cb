// Package client provides a Go client for the task dispatch REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/peteraglen/task-dispatch/models"
)

// Header names understood by the API.
const (
	clientIDHeader = "X-Client-Id"
	dedupKeyHeader = "X-Dedup-Key"
)

// ErrResultNotFound is returned when the API has no result for a job ID
// (unknown ID, or the result expired).
var ErrResultNotFound = errors.New("no result for job")

// DispatchClient represents a client which submits jobs and fetches their results.
type DispatchClient interface {
	Connect(ctx context.Context, baseURL string, logger Logger, clientOptions ...Options) (DispatchClient, error)

	// SubmitJob submits a job for deferred execution and returns its ID.
	SubmitJob(ctx context.Context, jobType string, input json.RawMessage, dedupKey string) (string, error)

	// SubmitJobSync submits a job and waits for the API to return its output.
	SubmitJobSync(ctx context.Context, jobType string, input json.RawMessage, dedupKey string) (json.RawMessage, error)

	// GetResult fetches the stored result for a job ID.
	GetResult(ctx context.Context, jobID string) (*models.JobResult, error)

	// WaitForResult polls until the job reaches a terminal status or the context is done.
	WaitForResult(ctx context.Context, jobID string) (*models.JobResult, error)

	Ping(ctx context.Context) error
}

type dispatchClient struct {
	restClient *restClient
	options    *options
}

// NewDispatchClient creates a new task dispatch client. Call Connect before use.
func NewDispatchClient() DispatchClient {
	return &dispatchClient{}
}

func (c *dispatchClient) Connect(ctx context.Context, baseURL string, logger Logger, clientOptions ...Options) (DispatchClient, error) {
	options := newClientOptions()

	for _, o := range clientOptions {
		o(options)
	}

	client, err := newRestClient(baseURL, logger, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create rest client with error: %w", err)
	}

	if err = client.ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping dispatch API with error: %w", err)
	}

	c.restClient = client
	c.options = options

	return c, nil
}

func (c *dispatchClient) SubmitJob(ctx context.Context, jobType string, input json.RawMessage, dedupKey string) (string, error) {
	if err := c.checkConnected(); err != nil {
		return "", err
	}

	if jobType == "" {
		return "", errors.New("job type cannot be empty")
	}

	body, err := c.restClient.post(ctx, "jobs/"+jobType, c.headers(dedupKey), input)
	if err != nil {
		return "", err
	}

	var response struct {
		JobID string `json:"jobId"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal submit response: %w", err)
	}

	return response.JobID, nil
}

func (c *dispatchClient) SubmitJobSync(ctx context.Context, jobType string, input json.RawMessage, dedupKey string) (json.RawMessage, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}

	if jobType == "" {
		return nil, errors.New("job type cannot be empty")
	}

	return c.restClient.post(ctx, "jobs/"+jobType+"/sync", c.headers(dedupKey), input)
}

func (c *dispatchClient) GetResult(ctx context.Context, jobID string) (*models.JobResult, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}

	if jobID == "" {
		return nil, errors.New("job ID cannot be empty")
	}

	body, statusCode, err := c.restClient.get(ctx, "jobs/"+jobID)
	if err != nil {
		if statusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, jobID)
		}

		return nil, err
	}

	var result models.JobResult

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}

	return &result, nil
}

// WaitForResult polls GetResult at the configured interval. Not-found is
// treated as retryable, since a result may lag behind submission in a shared
// result store.
func (c *dispatchClient) WaitForResult(ctx context.Context, jobID string) (*models.JobResult, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.options.pollInterval)
	defer ticker.Stop()

	for {
		result, err := c.GetResult(ctx, jobID)

		switch {
		case err == nil && result.Status.Terminal():
			return result, nil
		case err != nil && !errors.Is(err, ErrResultNotFound):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *dispatchClient) Ping(ctx context.Context) error {
	if err := c.checkConnected(); err != nil {
		return err
	}

	return c.restClient.ping(ctx)
}

func (c *dispatchClient) checkConnected() error {
	if c == nil || c.restClient == nil {
		return errors.New("client is not connected")
	}

	return nil
}

func (c *dispatchClient) headers(dedupKey string) map[string]string {
	headers := make(map[string]string)

	if c.options.clientID != "" {
		headers[clientIDHeader] = c.options.clientID
	}

	if dedupKey != "" {
		headers[dedupKeyHeader] = dedupKey
	}

	return headers
}
