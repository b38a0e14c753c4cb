package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/peteraglen/task-dispatch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	input := json.RawMessage(`{"n": 1}`)
	job := models.NewJob("resize", input)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "resize", job.Type)
	assert.Equal(t, input, job.Input)
	assert.Empty(t, job.DedupKey)
	assert.False(t, job.SubmittedAt.IsZero())

	require.NoError(t, job.Validate())
}

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		modify      func(*models.Job)
		expectError string
	}{
		{
			name:        "valid job",
			modify:      func(j *models.Job) {},
			expectError: "",
		},
		{
			name: "missing ID",
			modify: func(j *models.Job) {
				j.ID = ""
			},
			expectError: "job ID is required",
		},
		{
			name: "malformed ID",
			modify: func(j *models.Job) {
				j.ID = "not-a-ksuid"
			},
			expectError: "job ID is not a valid ksuid",
		},
		{
			name: "missing type",
			modify: func(j *models.Job) {
				j.Type = ""
			},
			expectError: "job type is required",
		},
		{
			name: "type too long",
			modify: func(j *models.Job) {
				j.Type = strings.Repeat("x", models.MaxJobTypeLength+1)
			},
			expectError: "job type must be at most",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := models.NewJob("resize", nil)
			tt.modify(job)

			err := job.Validate()

			if tt.expectError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			}
		})
	}
}
