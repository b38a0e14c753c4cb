package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peteraglen/task-dispatch/async"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_CompleteOnce(t *testing.T) {
	t.Parallel()

	h := async.NewHandle[int]()

	require.False(t, h.Completed())
	require.NoError(t, h.Complete(42))
	require.True(t, h.Completed())

	value, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestHandle_DoubleCompletionIsRejected(t *testing.T) {
	t.Parallel()

	t.Run("complete then complete", func(t *testing.T) {
		t.Parallel()

		h := async.NewHandle[string]()

		require.NoError(t, h.Complete("first"))
		assert.ErrorIs(t, h.Complete("second"), async.ErrAlreadyCompleted)

		value, err := h.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "first", value)
	})

	t.Run("complete then fail", func(t *testing.T) {
		t.Parallel()

		h := async.NewHandle[string]()

		require.NoError(t, h.Complete("first"))
		assert.ErrorIs(t, h.Fail(errors.New("too late")), async.ErrAlreadyCompleted)

		value, err := h.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "first", value)
	})

	t.Run("fail then complete", func(t *testing.T) {
		t.Parallel()

		h := async.NewHandle[string]()
		failure := errors.New("it broke")

		require.NoError(t, h.Fail(failure))
		assert.ErrorIs(t, h.Complete("too late"), async.ErrAlreadyCompleted)

		_, err := h.Wait(context.Background())
		assert.ErrorIs(t, err, failure)
	})
}

func TestHandle_FailWithNilError(t *testing.T) {
	t.Parallel()

	h := async.NewHandle[int]()

	require.NoError(t, h.Fail(nil))

	_, err := h.Wait(context.Background())
	assert.Error(t, err)
}

func TestHandle_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	h := async.NewHandle[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandle_DoneClosesOnCompletion(t *testing.T) {
	t.Parallel()

	h := async.NewHandle[int]()

	select {
	case <-h.Done():
		t.Fatal("done channel closed before completion")
	default:
	}

	require.NoError(t, h.Complete(1))

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after completion")
	}
}

func TestHandle_ConcurrentCompletionsObserveOneWinner(t *testing.T) {
	t.Parallel()

	h := async.NewHandle[int]()
	done := make(chan error, 10)

	for i := 0; i < 10; i++ {
		value := i

		go func() {
			done <- h.Complete(value)
		}()
	}

	succeeded := 0

	for i := 0; i < 10; i++ {
		if err := <-done; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, async.ErrAlreadyCompleted)
		}
	}

	assert.Equal(t, 1, succeeded)
}
