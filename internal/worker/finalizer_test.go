package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"skill-catalog/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	mu       sync.Mutex
	executed []uuid.UUID
	owners   map[uuid.UUID]string
	stalled  []catalog.FinalizationJob
	done     chan struct{}
}

func newFakeExecutor(expect int) *fakeExecutor {
	return &fakeExecutor{owners: map[uuid.UUID]string{}, done: make(chan struct{}, expect)}
}

func (e *fakeExecutor) Execute(_ context.Context, _ string, jobID uuid.UUID, owner string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.owners[jobID]; ok && prev != owner {
		e.done <- struct{}{}
		return catalog.ErrLeaseLost
	}
	e.owners[jobID] = owner
	e.executed = append(e.executed, jobID)
	e.done <- struct{}{}
	return nil
}

func (e *fakeExecutor) Stalled(context.Context) ([]catalog.FinalizationJob, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.stalled
	e.stalled = nil
	return out, nil
}

func wait(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d executions", i, n)
		}
	}
}

func TestFinalizer_RunsEnqueuedJobs(t *testing.T) {
	exec := newFakeExecutor(2)
	f := NewFinalizer(NewChannelQueue(8), exec, Options{Workers: 2, PollInterval: 10 * time.Millisecond, SweepInterval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = f.Run(ctx)
	}()

	a, b := uuid.New(), uuid.New()
	require.NoError(t, f.Enqueue(ctx, "p1", a))
	require.NoError(t, f.Enqueue(ctx, "p2", b))
	wait(t, exec.done, 2)

	cancel()
	<-stopped

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.ElementsMatch(t, []uuid.UUID{a, b}, exec.executed)
}

func TestFinalizer_SweeperReenqueuesStalledJobs(t *testing.T) {
	exec := newFakeExecutor(1)
	stalled := uuid.New()
	exec.stalled = []catalog.FinalizationJob{{ProjectID: "p1", JobID: stalled, State: catalog.JobRunning}}

	f := NewFinalizer(NewChannelQueue(8), exec, Options{Workers: 1, PollInterval: 10 * time.Millisecond, SweepInterval: 20 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	wait(t, exec.done, 1)
	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Equal(t, []uuid.UUID{stalled}, exec.executed)
}

func TestChannelQueue_Dequeue(t *testing.T) {
	q := NewChannelQueue(1)
	ctx := context.Background()

	_, ok, err := q.Dequeue(ctx, 5*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	task := Task{ProjectID: "p", JobID: uuid.New()}
	require.NoError(t, q.Enqueue(ctx, task))
	assert.ErrorIs(t, q.Enqueue(ctx, task), ErrQueueFull)

	got, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task, got)
}
