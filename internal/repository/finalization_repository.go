package repository

import (
	"context"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/domain/catalog"

	"github.com/google/uuid"
)

// FinalizationJobRepository owns the single finalization_jobs row of each
// destination project. Every state change is a guarded UPDATE so that
// concurrent callers on any instance serialize on the row itself.
type FinalizationJobRepository interface {
	Get(ctx context.Context, projectID string) (catalog.FinalizationJob, error)
	EnsureRow(ctx context.Context, projectID string, at time.Time) error
	AcquireImportGuard(ctx context.Context, projectID string, at time.Time) (bool, error)
	TryStart(ctx context.Context, projectID string, jobID uuid.UUID, triggeredBy string, at time.Time) (bool, error)
	SetLinkCount(ctx context.Context, projectID string, jobID uuid.UUID, n int) error
	ClaimLease(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now, staleBefore time.Time) (bool, error)
	Heartbeat(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now time.Time) (bool, error)
	Complete(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now time.Time) (bool, error)
	ListStalled(ctx context.Context, staleBefore time.Time, limit int) ([]catalog.FinalizationJob, error)
}

type SQLFinalizationJobRepository struct {
	db database.Querier
}

func NewSQLFinalizationJobRepository(db database.Querier) *SQLFinalizationJobRepository {
	return &SQLFinalizationJobRepository{db: db}
}

const jobColumns = `project_id, job_id, state, link_count, attempts, lease_owner, triggered_by, started_at, heartbeat_at, completed_at, version, updated_at`

func (r *SQLFinalizationJobRepository) Get(ctx context.Context, projectID string) (catalog.FinalizationJob, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM finalization_jobs WHERE project_id = $1`, projectID)
	if err != nil {
		return catalog.FinalizationJob{}, err
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		return catalog.FinalizationJob{}, err
	}
	if len(jobs) == 0 {
		return catalog.FinalizationJob{}, ErrNotFound
	}
	return jobs[0], nil
}

func (r *SQLFinalizationJobRepository) EnsureRow(ctx context.Context, projectID string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO finalization_jobs (project_id, state, link_count, attempts, version, updated_at)
		 VALUES ($1, 'idle', 0, 0, 0, $2)
		 ON CONFLICT (project_id) DO NOTHING`,
		projectID, dbTime(at),
	)
	return err
}

// AcquireImportGuard bumps the row version unless a job is running. The
// update holds the row until the surrounding transaction ends, so a trigger
// racing with an import waits for it (and vice versa).
func (r *SQLFinalizationJobRepository) AcquireImportGuard(ctx context.Context, projectID string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE finalization_jobs
		 SET version = version + 1, updated_at = $2
		 WHERE project_id = $1 AND state <> 'running'`,
		projectID, dbTime(at),
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// TryStart moves the project's job row to running under a new job id. It
// reports false when a job is already running.
func (r *SQLFinalizationJobRepository) TryStart(ctx context.Context, projectID string, jobID uuid.UUID, triggeredBy string, at time.Time) (bool, error) {
	var by *string
	if triggeredBy != "" {
		by = &triggeredBy
	}
	at = dbTime(at)
	n, err := r.db.Exec(ctx,
		`INSERT INTO finalization_jobs (`+jobColumns+`)
		 VALUES ($1, $2, 'running', 0, 0, NULL, $3, $4, $4, NULL, 1, $4)
		 ON CONFLICT (project_id) DO UPDATE SET
		     job_id = excluded.job_id,
		     state = 'running',
		     link_count = 0,
		     attempts = 0,
		     lease_owner = NULL,
		     triggered_by = excluded.triggered_by,
		     started_at = excluded.started_at,
		     heartbeat_at = excluded.heartbeat_at,
		     completed_at = NULL,
		     version = finalization_jobs.version + 1,
		     updated_at = excluded.updated_at
		 WHERE finalization_jobs.state <> 'running'`,
		projectID, jobID, by, at,
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLFinalizationJobRepository) SetLinkCount(ctx context.Context, projectID string, jobID uuid.UUID, n int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE finalization_jobs SET link_count = $3 WHERE project_id = $1 AND job_id = $2`,
		projectID, jobID, n,
	)
	return err
}

// ClaimLease hands the running job to owner when it is unclaimed, already
// owned by owner, or its heartbeat is older than staleBefore.
func (r *SQLFinalizationJobRepository) ClaimLease(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now, staleBefore time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE finalization_jobs
		 SET lease_owner = $3, heartbeat_at = $4, attempts = attempts + 1, updated_at = $4
		 WHERE project_id = $1 AND job_id = $2 AND state = 'running'
		   AND (lease_owner IS NULL OR lease_owner = $3 OR heartbeat_at IS NULL OR heartbeat_at < $5)`,
		projectID, jobID, owner, dbTime(now), dbTime(staleBefore),
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLFinalizationJobRepository) Heartbeat(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE finalization_jobs
		 SET heartbeat_at = $4, updated_at = $4
		 WHERE project_id = $1 AND job_id = $2 AND state = 'running' AND lease_owner = $3`,
		projectID, jobID, owner, dbTime(now),
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLFinalizationJobRepository) Complete(ctx context.Context, projectID string, jobID uuid.UUID, owner string, now time.Time) (bool, error) {
	now = dbTime(now)
	n, err := r.db.Exec(ctx,
		`UPDATE finalization_jobs
		 SET state = 'complete', completed_at = $4, heartbeat_at = $4, lease_owner = NULL,
		     version = version + 1, updated_at = $4
		 WHERE project_id = $1 AND job_id = $2 AND state = 'running' AND lease_owner = $3`,
		projectID, jobID, owner, now,
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLFinalizationJobRepository) ListStalled(ctx context.Context, staleBefore time.Time, limit int) ([]catalog.FinalizationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM finalization_jobs
		 WHERE state = 'running' AND (heartbeat_at IS NULL OR heartbeat_at < $1)
		 ORDER BY heartbeat_at ASC, project_id ASC
		 LIMIT $2`,
		dbTime(staleBefore), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func scanJobs(rows database.Rows) ([]catalog.FinalizationJob, error) {
	out := make([]catalog.FinalizationJob, 0)
	for rows.Next() {
		var j catalog.FinalizationJob
		var jobID uuid.NullUUID
		if err := rows.Scan(
			&j.ProjectID,
			&jobID,
			(*string)(&j.State),
			&j.LinkCount,
			&j.Attempts,
			&j.LeaseOwner,
			&j.TriggeredBy,
			&j.StartedAt,
			&j.HeartbeatAt,
			&j.CompletedAt,
			&j.Version,
			&j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if jobID.Valid {
			j.JobID = jobID.UUID
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
