package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"
	"skill-catalog/internal/pkg/logger"
	"skill-catalog/internal/repository"

	"github.com/google/uuid"
)

// JobQueue hands triggered jobs to the workers.
type JobQueue interface {
	Enqueue(ctx context.Context, projectID string, jobID uuid.UUID) error
}

type JobHandle struct {
	ProjectID string
	JobID     uuid.UUID
	LinkCount int
}

type FinalizationStatus struct {
	ProjectID   string
	State       catalog.JobState
	Remaining   int
	LinkCount   int
	JobID       *uuid.UUID
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type FinalizationInfo struct {
	NumSkillsToFinalize int
	NumProjectsInvolved int
	PendingPointsTotal  int
	State               catalog.JobState
}

type FinalizationUsecase interface {
	Trigger(ctx context.Context, projectID, triggeredBy string) (JobHandle, error)
	Status(ctx context.Context, projectID string) (FinalizationStatus, error)
	Info(ctx context.Context, projectID string) (FinalizationInfo, error)
}

type Finalization struct {
	store      repository.Store
	queue      JobQueue
	publisher  events.Publisher
	staleAfter time.Duration
	log        *logger.Logger
	now        func() time.Time
}

func NewFinalizationUsecase(store repository.Store, queue JobQueue, publisher events.Publisher, staleAfter time.Duration, log *logger.Logger) *Finalization {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if staleAfter <= 0 {
		staleAfter = 2 * time.Minute
	}
	return &Finalization{
		store:      store,
		queue:      queue,
		publisher:  publisher,
		staleAfter: staleAfter,
		log:        logger.OrNop(log).With("component", "finalization"),
		now:        time.Now,
	}
}

// SetQueue wires the worker queue after construction.
func (u *Finalization) SetQueue(q JobQueue) {
	u.queue = q
}

// Trigger starts a finalization job for the project and returns without
// waiting for it. The job row is moved to running with a compare-and-swap, so
// concurrent triggers produce exactly one running job.
func (u *Finalization) Trigger(ctx context.Context, projectID, triggeredBy string) (JobHandle, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return JobHandle{}, invalid("project is required")
	}

	h := JobHandle{ProjectID: projectID, JobID: uuid.New()}
	err := u.store.InTx(ctx, func(s repository.Store) error {
		started, err := s.Jobs().TryStart(ctx, projectID, h.JobID, triggeredBy, u.now())
		if err != nil {
			return internal(err)
		}
		if !started {
			return catalog.ErrAlreadyRunning
		}

		pending, err := s.Links().CountPending(ctx, projectID)
		if err != nil {
			return internal(err)
		}
		if pending == 0 {
			return catalog.ErrNothingPending
		}
		h.LinkCount = pending
		if err := s.Jobs().SetLinkCount(ctx, projectID, h.JobID, pending); err != nil {
			return internal(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			u.log.Error("trigger failed", "project_id", projectID, "error", err)
		}
		return JobHandle{}, err
	}

	if u.queue == nil {
		u.log.Warn("no dispatch queue, job waits for a sweeper", "project_id", projectID, "job_id", h.JobID)
	} else if err := u.queue.Enqueue(ctx, projectID, h.JobID); err != nil {
		// the sweeper re-enqueues the job once its heartbeat is stale
		u.log.Warn("enqueue failed", "project_id", projectID, "job_id", h.JobID, "error", err)
	}

	e := events.New(events.FinalizationStarted, projectID)
	e.JobID = h.JobID.String()
	e.Count = h.LinkCount
	u.publisher.Publish(ctx, e)
	u.log.Info("finalization triggered", "project_id", projectID, "job_id", h.JobID, "links", h.LinkCount, "triggered_by", triggeredBy)
	return h, nil
}

func (u *Finalization) Status(ctx context.Context, projectID string) (FinalizationStatus, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return FinalizationStatus{}, invalid("project is required")
	}

	out := FinalizationStatus{ProjectID: projectID, State: catalog.JobIdle}
	pending, err := u.store.Links().CountPending(ctx, projectID)
	if err != nil {
		return FinalizationStatus{}, internal(err)
	}
	out.Remaining = pending

	job, err := u.store.Jobs().Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, nil
		}
		return FinalizationStatus{}, internal(err)
	}
	if job.JobID != uuid.Nil {
		id := job.JobID
		out.JobID = &id
		out.LinkCount = job.LinkCount
		out.StartedAt = job.StartedAt
		out.CompletedAt = job.CompletedAt
	}

	switch {
	case job.State == catalog.JobRunning:
		out.State = catalog.JobRunning
	case job.State == catalog.JobComplete && pending == 0:
		out.State = catalog.JobComplete
	}
	return out, nil
}

func (u *Finalization) Info(ctx context.Context, projectID string) (FinalizationInfo, error) {
	st, err := u.Status(ctx, projectID)
	if err != nil {
		return FinalizationInfo{}, err
	}
	sum, err := u.store.Links().PendingSummary(ctx, st.ProjectID)
	if err != nil {
		return FinalizationInfo{}, internal(err)
	}
	return FinalizationInfo{
		NumSkillsToFinalize: sum.Links,
		NumProjectsInvolved: sum.Projects,
		PendingPointsTotal:  sum.TotalPoints,
		State:               st.State,
	}, nil
}

// Execute runs job jobID of the project as owner. Shadow re-sync, link
// activation and job completion happen in one transaction, and each step only
// touches rows that are still pending, so a retry after a crash is safe.
// It returns catalog.ErrLeaseLost when another worker holds the job or the
// job is no longer running.
func (u *Finalization) Execute(ctx context.Context, projectID string, jobID uuid.UUID, owner string) error {
	now := u.now()
	claimed, err := u.store.Jobs().ClaimLease(ctx, projectID, jobID, owner, now, now.Add(-u.staleAfter))
	if err != nil {
		return internal(err)
	}
	if !claimed {
		return catalog.ErrLeaseLost
	}

	var activated int64
	err = u.store.InTx(ctx, func(s repository.Store) error {
		now := u.now()
		held, err := s.Jobs().Heartbeat(ctx, projectID, jobID, owner, now)
		if err != nil {
			return internal(err)
		}
		if !held {
			return catalog.ErrLeaseLost
		}

		if _, err := s.Skills().EnablePendingShadows(ctx, projectID); err != nil {
			return internal(err)
		}
		activated, err = s.Links().ActivatePending(ctx, projectID, now)
		if err != nil {
			return internal(err)
		}

		done, err := s.Jobs().Complete(ctx, projectID, jobID, owner, now)
		if err != nil {
			return internal(err)
		}
		if !done {
			return catalog.ErrLeaseLost
		}
		return nil
	})
	if err != nil {
		return err
	}

	e := events.New(events.FinalizationCompleted, projectID)
	e.JobID = jobID.String()
	e.Count = int(activated)
	u.publisher.Publish(ctx, e)
	return nil
}

// Stalled lists running jobs whose heartbeat is older than the stale window.
func (u *Finalization) Stalled(ctx context.Context) ([]catalog.FinalizationJob, error) {
	jobs, err := u.store.Jobs().ListStalled(ctx, u.now().Add(-u.staleAfter), 50)
	if err != nil {
		return nil, internal(err)
	}
	return jobs, nil
}
