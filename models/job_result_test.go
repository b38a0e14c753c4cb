package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/peteraglen/task-dispatch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, models.StatusPending.Terminal())
	assert.False(t, models.StatusRunning.Terminal())
	assert.True(t, models.StatusSucceeded.Terminal())
	assert.True(t, models.StatusFailed.Terminal())
}

func TestJobResult_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("pending to succeeded", func(t *testing.T) {
		t.Parallel()

		job := models.NewJob("resize", nil)
		result := models.NewPendingResult(job)

		assert.Equal(t, job.ID, result.JobID)
		assert.Equal(t, models.StatusPending, result.Status)
		assert.Nil(t, result.CompletedAt)

		result.Succeed(json.RawMessage(`{"ok": true}`))

		assert.Equal(t, models.StatusSucceeded, result.Status)
		assert.JSONEq(t, `{"ok": true}`, string(result.Output))
		assert.Empty(t, result.Error)
		require.NotNil(t, result.CompletedAt)
	})

	t.Run("pending to failed", func(t *testing.T) {
		t.Parallel()

		job := models.NewJob("resize", nil)
		result := models.NewPendingResult(job)

		result.Fail(errors.New("it broke"))

		assert.Equal(t, models.StatusFailed, result.Status)
		assert.Equal(t, "it broke", result.Error)
		assert.Nil(t, result.Output)
		require.NotNil(t, result.CompletedAt)
	})

	t.Run("fail with nil error", func(t *testing.T) {
		t.Parallel()

		result := models.NewPendingResult(models.NewJob("resize", nil))

		result.Fail(nil)

		assert.Equal(t, models.StatusFailed, result.Status)
		assert.NotEmpty(t, result.Error)
	})
}

func TestJobResult_MarshalRoundtrip(t *testing.T) {
	t.Parallel()

	job := models.NewJob("resize", json.RawMessage(`{"n": 1}`))
	result := models.NewPendingResult(job)
	result.Succeed(json.RawMessage(`{"n": 2}`))

	body, err := result.Marshal()
	require.NoError(t, err)

	restored, err := models.UnmarshalJobResult(body)
	require.NoError(t, err)

	assert.Equal(t, result.JobID, restored.JobID)
	assert.Equal(t, result.Status, restored.Status)
	assert.JSONEq(t, string(result.Output), string(restored.Output))
}

func TestUnmarshalJobResult_InvalidBody(t *testing.T) {
	t.Parallel()

	_, err := models.UnmarshalJobResult("{not json")
	assert.Error(t, err)
}
