package repository

import (
	"context"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/domain/catalog"
)

// SkillRepository covers the parts of the skills, subjects and projects
// tables the import engine reads or writes. Ordinary CRUD of these tables
// belongs to the skill management service.
type SkillRepository interface {
	Get(ctx context.Context, projectID, skillID string) (catalog.Skill, error)
	ListByProject(ctx context.Context, projectID string) ([]catalog.Skill, error)
	Identities(ctx context.Context, projectID string) (ids map[string]struct{}, names map[string]struct{}, err error)
	CountInSubject(ctx context.Context, projectID, subjectID string) (int, error)
	SubjectExists(ctx context.Context, projectID, subjectID string) (bool, error)
	GroupInSubject(ctx context.Context, projectID, subjectID, groupID string) (bool, error)
	Create(ctx context.Context, s catalog.Skill) error
	EnablePendingShadows(ctx context.Context, projectID string) (int64, error)
	SetExported(ctx context.Context, projectID, skillID string, exported bool, at time.Time) (int64, error)
	Delete(ctx context.Context, projectID, skillID string) (int64, error)
	DisableOrphans(ctx context.Context, links []catalog.ImportedSkillLink) error
	CreateProject(ctx context.Context, id, name string) error
	CreateSubject(ctx context.Context, projectID, id, name string) error
}

type SQLSkillRepository struct {
	db database.Querier
}

func NewSQLSkillRepository(db database.Querier) *SQLSkillRepository {
	return &SQLSkillRepository{db: db}
}

const skillColumns = `project_id, id, subject_id, group_id, type, name, total_points, enabled, read_only, exported, exported_at, copied_from_project_id, copied_from_skill_id`

func (r *SQLSkillRepository) Get(ctx context.Context, projectID, skillID string) (catalog.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE project_id = $1 AND id = $2`,
		projectID, skillID,
	)
	if err != nil {
		return catalog.Skill{}, err
	}
	defer rows.Close()

	items, err := scanSkills(rows)
	if err != nil {
		return catalog.Skill{}, err
	}
	if len(items) == 0 {
		return catalog.Skill{}, ErrNotFound
	}
	return items[0], nil
}

func (r *SQLSkillRepository) ListByProject(ctx context.Context, projectID string) ([]catalog.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE project_id = $1 ORDER BY subject_id ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSkills(rows)
}

// Identities returns every skill and group id and name in the project.
func (r *SQLSkillRepository) Identities(ctx context.Context, projectID string) (map[string]struct{}, map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM skills WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	ids := map[string]struct{}{}
	names := map[string]struct{}{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		ids[id] = struct{}{}
		names[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return ids, names, nil
}

// CountInSubject counts the skills of a subject, including disabled shadows
// and skills nested in groups. Groups themselves are not counted.
func (r *SQLSkillRepository) CountInSubject(ctx context.Context, projectID, subjectID string) (int, error) {
	var c int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM skills WHERE project_id = $1 AND subject_id = $2 AND type = 'Skill'`,
		projectID, subjectID,
	).Scan(&c)
	if err != nil {
		return 0, err
	}
	return c, nil
}

func (r *SQLSkillRepository) SubjectExists(ctx context.Context, projectID, subjectID string) (bool, error) {
	var c int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM subjects WHERE project_id = $1 AND id = $2`,
		projectID, subjectID,
	).Scan(&c)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *SQLSkillRepository) GroupInSubject(ctx context.Context, projectID, subjectID, groupID string) (bool, error) {
	var c int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM skills
		 WHERE project_id = $1 AND subject_id = $2 AND id = $3 AND type = 'SkillsGroup'`,
		projectID, subjectID, groupID,
	).Scan(&c)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *SQLSkillRepository) Create(ctx context.Context, s catalog.Skill) error {
	if s.Type == "" {
		s.Type = catalog.TypeSkill
	}
	var fromProject, fromSkill *string
	if s.CopiedFrom != nil {
		fromProject = &s.CopiedFrom.ProjectID
		fromSkill = &s.CopiedFrom.SkillID
	}
	var exportedAt *time.Time
	if s.ExportedAt != nil {
		t := dbTime(*s.ExportedAt)
		exportedAt = &t
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO skills (`+skillColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ProjectID,
		s.ID,
		s.SubjectID,
		s.GroupID,
		string(s.Type),
		s.Name,
		s.TotalPoints,
		s.Enabled,
		s.ReadOnly,
		s.Exported,
		exportedAt,
		fromProject,
		fromSkill,
	)
	return err
}

// EnablePendingShadows enables the shadow skills behind the project's pending
// links and copies the current origin name and points onto them. Origins that
// no longer exist leave the shadow values unchanged. A renamed origin keeps the
// import-time name when its new name is taken in the destination, or is shared
// with another pending shadow's origin.
func (r *SQLSkillRepository) EnablePendingShadows(ctx context.Context, projectID string) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE skills
		 SET enabled = TRUE,
		     name = COALESCE((
		         SELECT o.name FROM skills o
		         WHERE o.project_id = skills.copied_from_project_id AND o.id = skills.copied_from_skill_id
		           AND NOT EXISTS (
		               SELECT 1 FROM skills d
		               WHERE d.project_id = skills.project_id AND d.id <> skills.id AND d.name = o.name)
		           AND NOT EXISTS (
		               SELECT 1 FROM imported_skill_links l2
		               JOIN skills d2 ON d2.project_id = l2.dest_project_id AND d2.id = l2.dest_skill_id
		               JOIN skills o2 ON o2.project_id = d2.copied_from_project_id AND o2.id = d2.copied_from_skill_id
		               WHERE l2.dest_project_id = skills.project_id AND l2.state = 'pending'
		                 AND d2.id <> skills.id AND o2.name = o.name)), skills.name),
		     total_points = COALESCE((
		         SELECT o.total_points FROM skills o
		         WHERE o.project_id = skills.copied_from_project_id AND o.id = skills.copied_from_skill_id), skills.total_points)
		 WHERE project_id = $1
		   AND id IN (
		       SELECT l.dest_skill_id FROM imported_skill_links l
		       WHERE l.dest_project_id = $1 AND l.state = 'pending')`,
		projectID,
	)
}

func (r *SQLSkillRepository) SetExported(ctx context.Context, projectID, skillID string, exported bool, at time.Time) (int64, error) {
	if exported {
		return r.db.Exec(ctx,
			`UPDATE skills SET exported = TRUE, exported_at = $3
			 WHERE project_id = $1 AND id = $2 AND exported = FALSE`,
			projectID, skillID, dbTime(at),
		)
	}
	return r.db.Exec(ctx,
		`UPDATE skills SET exported = FALSE, exported_at = NULL
		 WHERE project_id = $1 AND id = $2 AND exported = TRUE`,
		projectID, skillID,
	)
}

func (r *SQLSkillRepository) Delete(ctx context.Context, projectID, skillID string) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM skills WHERE project_id = $1 AND id = $2`, projectID, skillID)
}

// DisableOrphans disables the shadows behind links whose origin is gone and
// clears their provenance. The rows stay read-only.
func (r *SQLSkillRepository) DisableOrphans(ctx context.Context, links []catalog.ImportedSkillLink) error {
	for _, l := range links {
		if _, err := r.db.Exec(ctx,
			`UPDATE skills
			 SET enabled = FALSE, copied_from_project_id = NULL, copied_from_skill_id = NULL
			 WHERE project_id = $1 AND id = $2`,
			l.DestinationProjectID, l.DestinationSkillID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLSkillRepository) CreateProject(ctx context.Context, id, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, dbTime(time.Now()),
	)
	return err
}

func (r *SQLSkillRepository) CreateSubject(ctx context.Context, projectID, id, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO subjects (project_id, id, name) VALUES ($1, $2, $3)`,
		projectID, id, name,
	)
	return err
}

func scanSkills(rows database.Rows) ([]catalog.Skill, error) {
	out := make([]catalog.Skill, 0)
	for rows.Next() {
		var s catalog.Skill
		var fromProject, fromSkill *string
		if err := rows.Scan(
			&s.ProjectID,
			&s.ID,
			&s.SubjectID,
			&s.GroupID,
			(*string)(&s.Type),
			&s.Name,
			&s.TotalPoints,
			&s.Enabled,
			&s.ReadOnly,
			&s.Exported,
			&s.ExportedAt,
			&fromProject,
			&fromSkill,
		); err != nil {
			return nil, err
		}
		if fromProject != nil && fromSkill != nil {
			s.CopiedFrom = &catalog.SkillRef{ProjectID: *fromProject, SkillID: *fromSkill}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
