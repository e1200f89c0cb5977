package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/worker/queue"
)

type captureQueue struct {
	tasks []queue.Task
	err   error
}

func (q *captureQueue) Enqueue(_ context.Context, task queue.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "1-0", nil
}

func TestEnqueueCleanup(t *testing.T) {
	q := &captureQueue{}
	s := NewScheduler(q, zerolog.Nop())

	s.enqueueCleanup(ScopeActivity)
	s.enqueueCleanup(ScopeImages)

	require.Len(t, q.tasks, 2)
	for i, scope := range []string{ScopeActivity, ScopeImages} {
		assert.Equal(t, queue.TaskCleanup, q.tasks[i].Type)
		var payload queue.CleanupPayload
		require.NoError(t, q.tasks[i].Decode(&payload))
		assert.Equal(t, scope, payload.Scope)
	}
}

func TestEnqueueFailureIsLogged(t *testing.T) {
	s := NewScheduler(&captureQueue{err: errors.New("redis down")}, zerolog.Nop())
	assert.NotPanics(t, func() { s.enqueueCleanup(ScopeActivity) })
}

func TestStartWithoutQueue(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())
	require.NoError(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&captureQueue{}, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
