package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobResult is the stored outcome of a job, from submission to completion.
type JobResult struct {
	// JobID is the ID of the job this result belongs to.
	JobID string `json:"jobId"`

	// Type is the job type, repeated here so a result is self-describing.
	Type string `json:"type"`

	// Status is the current job status.
	Status JobStatus `json:"status"`

	// Output is the handler output. Only set when Status is SUCCEEDED.
	Output json.RawMessage `json:"output,omitempty"`

	// Error is the failure text. Only set when Status is FAILED.
	Error string `json:"error,omitempty"`

	// SubmittedAt is the time the job was accepted.
	SubmittedAt time.Time `json:"submittedAt"`

	// CompletedAt is the time the job reached a terminal status.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewPendingResult creates the initial result record for a job.
func NewPendingResult(job *Job) *JobResult {
	return &JobResult{
		JobID:       job.ID,
		Type:        job.Type,
		Status:      StatusPending,
		SubmittedAt: job.SubmittedAt,
	}
}

// Succeed marks the result as succeeded with the given output.
func (r *JobResult) Succeed(output json.RawMessage) {
	now := time.Now().UTC()
	r.Status = StatusSucceeded
	r.Output = output
	r.Error = ""
	r.CompletedAt = &now
}

// Fail marks the result as failed with the given error.
func (r *JobResult) Fail(err error) {
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.Output = nil
	r.CompletedAt = &now

	if err != nil {
		r.Error = err.Error()
	} else {
		r.Error = "unknown error"
	}
}

// Marshal serializes the result for the result store.
func (r *JobResult) Marshal() (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job result: %w", err)
	}

	return string(body), nil
}

// UnmarshalJobResult deserializes a result from the result store.
func UnmarshalJobResult(body string) (*JobResult, error) {
	var result JobResult

	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}

	return &result, nil
}
