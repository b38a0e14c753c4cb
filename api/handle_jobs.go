package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/peteraglen/task-dispatch/async"
	"github.com/peteraglen/task-dispatch/dispatcher"
	"github.com/peteraglen/task-dispatch/models"
)

// submitResponse is the body returned by a deferred submission.
type submitResponse struct {
	JobID string `json:"jobId"`
}

// submitJob accepts a job and returns 202 as soon as it is queued.
// The response never waits for execution; poll GET /jobs/{jobId} for the outcome.
func (s *Server) submitJob(resp http.ResponseWriter, req *http.Request) {
	started := time.Now()

	job, ok := s.acceptJob(resp, req, started)
	if !ok {
		return
	}

	if _, err := s.dispatcher.Submit(req.Context(), job); err != nil {
		s.writeErrorResponse(err, statusCodeForSubmitError(err), resp, req, started)
		return
	}

	s.writeJSONResponse(&submitResponse{JobID: job.ID}, http.StatusAccepted, resp, req, started)
}

// submitJobSync accepts a job, then holds the response until the job
// completes or the configured sync wait time elapses. The submission itself
// is still deferred; only the response waits.
func (s *Server) submitJobSync(resp http.ResponseWriter, req *http.Request) {
	started := time.Now()

	job, ok := s.acceptJob(resp, req, started)
	if !ok {
		return
	}

	handle, err := s.dispatcher.Submit(req.Context(), job)
	if err != nil {
		s.writeErrorResponse(err, statusCodeForSubmitError(err), resp, req, started)
		return
	}

	waitCtx, cancel := context.WithTimeout(req.Context(), s.cfg.SyncWaitTime)
	defer cancel()

	output, err := handle.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = fmt.Errorf("job %s did not complete in time, poll /jobs/%s for the result", job.ID, job.ID)
			s.writeErrorResponse(err, http.StatusGatewayTimeout, resp, req, started)
			return
		}

		s.writeErrorResponse(fmt.Errorf("job %s failed: %w", job.ID, err), http.StatusInternalServerError, resp, req, started)
		return
	}

	if len(output) == 0 {
		resp.WriteHeader(http.StatusNoContent)
		s.metrics.AddHTTPRequestMetric(req.URL.Path, req.Method, http.StatusNoContent, time.Since(started))
		return
	}

	resp.Header().Add("Content-Type", "application/json")
	resp.WriteHeader(http.StatusOK)

	if _, err := resp.Write(output); err != nil {
		s.logger.Errorf("Failed to write job output: %s", err)
	}

	s.metrics.AddHTTPRequestMetric(req.URL.Path, req.Method, http.StatusOK, time.Since(started))
}

// jobResult returns the stored result for a job ID.
func (s *Server) jobResult(resp http.ResponseWriter, req *http.Request) {
	started := time.Now()

	jobID := mux.Vars(req)["jobId"]

	result, ok := s.dispatcher.Result(req.Context(), jobID)
	if !ok {
		err := fmt.Errorf("no result for job %s (unknown ID, or the result expired)", jobID)
		s.writeErrorResponse(err, http.StatusNotFound, resp, req, started)
		return
	}

	s.writeJSONResponse(result, http.StatusOK, resp, req, started)
}

func (s *Server) jobTypes(resp http.ResponseWriter, req *http.Request) {
	started := time.Now()

	s.writeJSONResponse(s.dispatcher.JobTypes(), http.StatusOK, resp, req, started)
}

func (s *Server) ping(resp http.ResponseWriter, req *http.Request) {
	started := time.Now()

	resp.Header().Add("Content-Type", "text/plain")
	resp.WriteHeader(http.StatusOK)

	_, err := resp.Write([]byte("pong"))
	if err != nil {
		s.logger.Errorf("Failed to write ping response: %s", err)
	}

	s.metrics.AddHTTPRequestMetric(req.URL.Path, req.Method, http.StatusOK, time.Since(started))
}

// acceptJob applies rate limiting and builds the job from the request.
// On failure it writes the error response and returns false.
func (s *Server) acceptJob(resp http.ResponseWriter, req *http.Request, started time.Time) (*models.Job, bool) {
	if err := s.waitForRateLimit(req.Context(), clientKey(req)); err != nil {
		s.writeErrorResponse(err, http.StatusTooManyRequests, resp, req, started)
		return nil, false
	}

	jobType := mux.Vars(req)["jobType"]

	body, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, MaxJobInputBytes))
	if err != nil {
		err = fmt.Errorf("failed to read POST body: %w", err)
		s.writeErrorResponse(err, http.StatusBadRequest, resp, req, started)
		return nil, false
	}

	s.debugLogRequest(req, body)

	var input json.RawMessage
	if len(body) > 0 {
		input = body
	}

	job := models.NewJob(jobType, input)
	job.DedupKey = req.Header.Get(DedupKeyHeader)

	return job, true
}

func (s *Server) writeJSONResponse(value interface{}, statusCode int, resp http.ResponseWriter, req *http.Request, started time.Time) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		err = fmt.Errorf("failed to marshal response: %w", err)
		s.writeErrorResponse(err, http.StatusInternalServerError, resp, req, started)
		return
	}

	resp.Header().Add("Content-Type", "application/json")
	resp.WriteHeader(statusCode)

	if _, err := resp.Write(data); err != nil {
		s.logger.Errorf("Failed to write response: %s", err)
	}

	s.metrics.AddHTTPRequestMetric(req.URL.Path, req.Method, statusCode, time.Since(started))
}

func (s *Server) debugLogRequest(req *http.Request, body []byte) {
	s.logger.WithField("body", string(body)).Debugf("%s %s", req.Method, req.URL.Path)
}

func statusCodeForSubmitError(err error) int {
	switch {
	case errors.Is(err, dispatcher.ErrUnknownJobType):
		return http.StatusNotFound
	case errors.Is(err, dispatcher.ErrInvalidJob):
		return http.StatusBadRequest
	case errors.Is(err, async.ErrPoolSaturated):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
