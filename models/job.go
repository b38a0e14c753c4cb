package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// MaxJobTypeLength is the maximum allowed length of a job type name.
const MaxJobTypeLength = 128

// Job represents a single unit of work submitted for deferred execution.
type Job struct {
	// ID uniquely identifies the job. Assigned at creation time.
	ID string `json:"id"`

	// Type names the registered handler that will execute the job.
	Type string `json:"type"`

	// Input is the handler input, passed through verbatim.
	Input json.RawMessage `json:"input,omitempty"`

	// DedupKey optionally serializes execution: jobs sharing a dedup key never
	// execute concurrently, even across instances (requires a distributed locker).
	DedupKey string `json:"dedupKey,omitempty"`

	// SubmittedAt is the time the job was accepted.
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewJob creates a job of the given type with a fresh ID.
func NewJob(jobType string, input json.RawMessage) *Job {
	return &Job{
		ID:          ksuid.New().String(),
		Type:        jobType,
		Input:       input,
		SubmittedAt: time.Now().UTC(),
	}
}

// Validate validates the job and returns an error if any required fields are missing or invalid.
func (j *Job) Validate() error {
	if j.ID == "" {
		return errors.New("job ID is required")
	}

	if _, err := ksuid.Parse(j.ID); err != nil {
		return fmt.Errorf("job ID is not a valid ksuid: %w", err)
	}

	if j.Type == "" {
		return errors.New("job type is required")
	}

	if len(j.Type) > MaxJobTypeLength {
		return fmt.Errorf("job type must be at most %d characters", MaxJobTypeLength)
	}

	return nil
}
