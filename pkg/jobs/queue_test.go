package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 2)
	queue := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "a"}))
	require.NoError(t, queue.Enqueue(Job{ID: "b"}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var calls int32
	done := make(chan Job, 1)
	queue := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- job
		return nil
	}, QueueConfig{RetryDelay: 5 * time.Millisecond, MaxRetries: 3})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "flaky"}))

	select {
	case job := <-done:
		assert.Equal(t, 2, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	queue := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	require.Error(t, queue.Enqueue(Job{ID: "x"}))
	queue.Stop()
}

func TestQueueHandsExhaustedJobsToOnGiveUp(t *testing.T) {
	abandoned := make(chan Job, 1)
	queue := NewQueue("doomed", func(ctx context.Context, job Job) error {
		return errors.New("disk full")
	}, QueueConfig{
		RetryDelay: time.Millisecond,
		MaxRetries: 2,
		OnGiveUp: func(job Job, err error) {
			abandoned <- job
		},
	})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "export-1", Type: "timetable_export"}))

	select {
	case job := <-abandoned:
		assert.Equal(t, "export-1", job.ID)
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job was never abandoned")
	}
	assert.Zero(t, queue.Pending())
}

func TestQueueBackoffDoublesUpToCap(t *testing.T) {
	queue := NewQueue("backoff", func(ctx context.Context, job Job) error { return nil }, QueueConfig{
		RetryDelay:    10 * time.Millisecond,
		MaxRetryDelay: 50 * time.Millisecond,
	})
	assert.Equal(t, 10*time.Millisecond, queue.backoff(1))
	assert.Equal(t, 20*time.Millisecond, queue.backoff(2))
	assert.Equal(t, 40*time.Millisecond, queue.backoff(3))
	assert.Equal(t, 50*time.Millisecond, queue.backoff(4))
	assert.Equal(t, 50*time.Millisecond, queue.backoff(9))
}
