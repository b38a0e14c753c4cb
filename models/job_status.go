package models

// JobStatus represents the current state of a submitted job.
type JobStatus string

const (
	// StatusPending indicates that the job is queued and waiting for a worker.
	StatusPending = JobStatus("PENDING")

	// StatusRunning indicates that a worker is currently executing the job.
	StatusRunning = JobStatus("RUNNING")

	// StatusSucceeded indicates that the job completed successfully. Terminal.
	StatusSucceeded = JobStatus("SUCCEEDED")

	// StatusFailed indicates that the job failed. Terminal.
	StatusFailed = JobStatus("FAILED")
)

// Terminal reports whether the status is a final one.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
