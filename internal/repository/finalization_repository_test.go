package repository

import (
	"context"
	"testing"
	"time"

	"skill-catalog/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizationJobRepository_StartIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobs := s.Jobs()
	now := time.Now()

	ok, err := jobs.TryStart(ctx, "p1", uuid.New(), "alice", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = jobs.TryStart(ctx, "p1", uuid.New(), "bob", now)
	require.NoError(t, err)
	assert.False(t, ok)

	guard, err := jobs.AcquireImportGuard(ctx, "p1", now)
	require.NoError(t, err)
	assert.False(t, guard)

	job, err := jobs.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, catalog.JobRunning, job.State)
	require.NotNil(t, job.TriggeredBy)
	assert.Equal(t, "alice", *job.TriggeredBy)
}

func TestFinalizationJobRepository_LeaseAndComplete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	jobs := s.Jobs()
	now := time.Now()
	jobID := uuid.New()

	require.NoError(t, jobs.EnsureRow(ctx, "p1", now))
	guard, err := jobs.AcquireImportGuard(ctx, "p1", now)
	require.NoError(t, err)
	require.True(t, guard)

	ok, err := jobs.TryStart(ctx, "p1", jobID, "", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = jobs.ClaimLease(ctx, "p1", jobID, "w1", now, now.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	// a second worker cannot take a fresh lease
	ok, err = jobs.ClaimLease(ctx, "p1", jobID, "w2", now, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	// but it can once the heartbeat is stale
	later := now.Add(5 * time.Minute)
	stalled, err := jobs.ListStalled(ctx, later.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stalled, 1)
	assert.Equal(t, jobID, stalled[0].JobID)

	ok, err = jobs.ClaimLease(ctx, "p1", jobID, "w2", later, later.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = jobs.Complete(ctx, "p1", jobID, "w1", later)
	require.NoError(t, err)
	assert.False(t, ok, "lost lease must not complete")

	ok, err = jobs.Complete(ctx, "p1", jobID, "w2", later)
	require.NoError(t, err)
	require.True(t, ok)

	job, err := jobs.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, catalog.JobComplete, job.State)
	assert.Equal(t, 2, job.Attempts)
	assert.Nil(t, job.LeaseOwner)
	require.NotNil(t, job.CompletedAt)

	// completed rows can be restarted with a new job id
	ok, err = jobs.TryStart(ctx, "p1", uuid.New(), "", later)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFinalizationJobRepository_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Jobs().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
