package task

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue and consume", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(2, slog.Default())
		task := newStubTask()

		require.NoError(t, queue.Enqueue(task))

		got := <-queue.GetChannel()
		assert.Equal(t, task.ID(), got.ID())
	})

	t.Run("full queue rejects enqueue", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(1, slog.Default())
		require.NoError(t, queue.Enqueue(newStubTask()))

		err := queue.Enqueue(newStubTask())
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue rejects enqueue", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(1, slog.Default())
		queue.Close()

		err := queue.Enqueue(newStubTask())
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(1, slog.Default())
		queue.Close()
		assert.NotPanics(t, queue.Close)
	})
}
