package repository

import (
	"context"
	"strings"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/domain/catalog"

	"github.com/google/uuid"
)

// PendingSummary describes the pending links of one destination project.
type PendingSummary struct {
	Links       int
	Projects    int
	TotalPoints int
}

// Importer is a destination project linking an exported skill.
type Importer struct {
	ProjectID   string
	ProjectName string
	SkillID     string
	State       catalog.LinkState
	ImportedAt  time.Time
	ActivatedAt *time.Time
}

// ImportedSkill is a shadow skill in a destination project with its link.
type ImportedSkill struct {
	Link        catalog.ImportedSkillLink
	Name        string
	TotalPoints int
	Enabled     bool
	OriginName  string
}

type LinkRepository interface {
	Insert(ctx context.Context, links []catalog.ImportedSkillLink) error
	ListByDestination(ctx context.Context, projectID string) ([]catalog.ImportedSkillLink, error)
	OriginRefs(ctx context.Context, projectID string) (map[catalog.SkillRef]struct{}, error)
	CountPending(ctx context.Context, projectID string) (int, error)
	PendingSummary(ctx context.Context, projectID string) (PendingSummary, error)
	ActivatePending(ctx context.Context, projectID string, at time.Time) (int64, error)
	DeleteByDestination(ctx context.Context, projectID, skillID string) (int64, error)
	DeleteByOrigin(ctx context.Context, origin catalog.SkillRef) ([]catalog.ImportedSkillLink, error)
	ListImporters(ctx context.Context, origin catalog.SkillRef) ([]Importer, error)
	ListImported(ctx context.Context, projectID string) ([]ImportedSkill, error)
}

type SQLLinkRepository struct {
	db database.Querier
}

func NewSQLLinkRepository(db database.Querier) *SQLLinkRepository {
	return &SQLLinkRepository{db: db}
}

const linkColumns = `id, dest_project_id, dest_skill_id, dest_subject_id, dest_group_id, origin_project_id, origin_skill_id, state, created_at, activated_at`

func (r *SQLLinkRepository) Insert(ctx context.Context, links []catalog.ImportedSkillLink) error {
	for _, l := range links {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.State == "" {
			l.State = catalog.LinkPending
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO imported_skill_links (`+linkColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)`,
			l.ID,
			l.DestinationProjectID,
			l.DestinationSkillID,
			l.DestinationSubjectID,
			l.DestinationGroupID,
			l.Origin.ProjectID,
			l.Origin.SkillID,
			string(l.State),
			dbTime(l.CreatedAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLLinkRepository) ListByDestination(ctx context.Context, projectID string) ([]catalog.ImportedSkillLink, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+linkColumns+`
		 FROM imported_skill_links
		 WHERE dest_project_id = $1
		 ORDER BY origin_project_id ASC, origin_skill_id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (r *SQLLinkRepository) OriginRefs(ctx context.Context, projectID string) (map[catalog.SkillRef]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT origin_project_id, origin_skill_id FROM imported_skill_links WHERE dest_project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[catalog.SkillRef]struct{}{}
	for rows.Next() {
		var ref catalog.SkillRef
		if err := rows.Scan(&ref.ProjectID, &ref.SkillID); err != nil {
			return nil, err
		}
		out[ref] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLLinkRepository) CountPending(ctx context.Context, projectID string) (int, error) {
	var c int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM imported_skill_links WHERE dest_project_id = $1 AND state = 'pending'`,
		projectID,
	).Scan(&c)
	if err != nil {
		return 0, err
	}
	return c, nil
}

func (r *SQLLinkRepository) PendingSummary(ctx context.Context, projectID string) (PendingSummary, error) {
	var s PendingSummary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT l.origin_project_id), COALESCE(SUM(o.total_points), 0)
		 FROM imported_skill_links l
		 LEFT JOIN skills o ON o.project_id = l.origin_project_id AND o.id = l.origin_skill_id
		 WHERE l.dest_project_id = $1 AND l.state = 'pending'`,
		projectID,
	).Scan(&s.Links, &s.Projects, &s.TotalPoints)
	if err != nil {
		return PendingSummary{}, err
	}
	return s, nil
}

// ActivatePending flips every pending link of the project to active. Links
// that are already active are left alone, so repeating the call is a no-op.
func (r *SQLLinkRepository) ActivatePending(ctx context.Context, projectID string, at time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE imported_skill_links
		 SET state = 'active', activated_at = $2
		 WHERE dest_project_id = $1 AND state = 'pending'`,
		projectID, dbTime(at),
	)
}

func (r *SQLLinkRepository) DeleteByDestination(ctx context.Context, projectID, skillID string) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM imported_skill_links WHERE dest_project_id = $1 AND dest_skill_id = $2`,
		projectID, skillID,
	)
}

// DeleteByOrigin removes every link to origin and returns what was removed.
func (r *SQLLinkRepository) DeleteByOrigin(ctx context.Context, origin catalog.SkillRef) ([]catalog.ImportedSkillLink, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+linkColumns+`
		 FROM imported_skill_links
		 WHERE origin_project_id = $1 AND origin_skill_id = $2
		 ORDER BY dest_project_id ASC`,
		origin.ProjectID, origin.SkillID,
	)
	if err != nil {
		return nil, err
	}
	links, err := scanLinks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return links, nil
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM imported_skill_links WHERE origin_project_id = $1 AND origin_skill_id = $2`,
		origin.ProjectID, origin.SkillID,
	); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *SQLLinkRepository) ListImporters(ctx context.Context, origin catalog.SkillRef) ([]Importer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT l.dest_project_id, p.name, l.dest_skill_id, l.state, l.created_at, l.activated_at
		 FROM imported_skill_links l
		 JOIN projects p ON p.id = l.dest_project_id
		 WHERE l.origin_project_id = $1 AND l.origin_skill_id = $2
		 ORDER BY l.created_at ASC, l.dest_project_id ASC`,
		origin.ProjectID, origin.SkillID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Importer, 0)
	for rows.Next() {
		var it Importer
		if err := rows.Scan(&it.ProjectID, &it.ProjectName, &it.SkillID, (*string)(&it.State), &it.ImportedAt, &it.ActivatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLLinkRepository) ListImported(ctx context.Context, projectID string) ([]ImportedSkill, error) {
	cols := make([]string, 0, 10)
	for _, c := range strings.Split(linkColumns, ", ") {
		cols = append(cols, "l."+c)
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+strings.Join(cols, ", ")+`, s.name, s.total_points, s.enabled, COALESCE(o.name, '')
		 FROM imported_skill_links l
		 JOIN skills s ON s.project_id = l.dest_project_id AND s.id = l.dest_skill_id
		 LEFT JOIN skills o ON o.project_id = l.origin_project_id AND o.id = l.origin_skill_id
		 WHERE l.dest_project_id = $1
		 ORDER BY s.name ASC, l.dest_skill_id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ImportedSkill, 0)
	for rows.Next() {
		var it ImportedSkill
		dest := linkScanDest(&it.Link)
		dest = append(dest, &it.Name, &it.TotalPoints, &it.Enabled, &it.OriginName)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func linkScanDest(l *catalog.ImportedSkillLink) []any {
	return []any{
		&l.ID,
		&l.DestinationProjectID,
		&l.DestinationSkillID,
		&l.DestinationSubjectID,
		&l.DestinationGroupID,
		&l.Origin.ProjectID,
		&l.Origin.SkillID,
		(*string)(&l.State),
		&l.CreatedAt,
		&l.ActivatedAt,
	}
}

func scanLinks(rows database.Rows) ([]catalog.ImportedSkillLink, error) {
	out := make([]catalog.ImportedSkillLink, 0)
	for rows.Next() {
		var l catalog.ImportedSkillLink
		dest := linkScanDest(&l)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
