package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/domain/catalog"
)

type SortColumn string

const (
	SortSkillID     SortColumn = "skillId"
	SortName        SortColumn = "name"
	SortProjectName SortColumn = "projectName"
	SortSubjectName SortColumn = "subjectName"
	SortTotalPoints SortColumn = "totalPoints"
)

var sortColumns = map[SortColumn]string{
	SortSkillID:     "s.id",
	SortName:        "s.name",
	SortProjectName: "p.name",
	SortSubjectName: "sub.name",
	SortTotalPoints: "s.total_points",
}

func ValidSortColumn(c SortColumn) bool {
	_, ok := sortColumns[c]
	return ok
}

type CatalogFilter struct {
	DestinationProjectID string
	NameFilter           string
	ProjectNameFilter    string
	SubjectNameFilter    string
	SortBy               SortColumn
	Ascending            bool
	Limit                int
	Offset               int
}

type CatalogRepository interface {
	ListAvailable(ctx context.Context, f CatalogFilter) ([]catalog.ExportableSkill, error)
	CountAvailable(ctx context.Context, f CatalogFilter) (int, error)
	FindExported(ctx context.Context, refs []catalog.SkillRef) (map[catalog.SkillRef]catalog.ExportableSkill, error)
	ExportConflicts(ctx context.Context, projectID, skillID, name string) (idConflict bool, nameConflict bool, err error)
	ListExportedByProject(ctx context.Context, projectID string, limit, offset int) ([]catalog.ExportableSkill, int, error)
}

type SQLCatalogRepository struct {
	db database.Querier
}

func NewSQLCatalogRepository(db database.Querier) *SQLCatalogRepository {
	return &SQLCatalogRepository{db: db}
}

const exportableSelect = `SELECT s.project_id, p.name, s.id, s.name, s.subject_id, sub.name, s.total_points, s.exported_at
	 FROM skills s
	 JOIN projects p ON p.id = s.project_id
	 JOIN subjects sub ON sub.project_id = s.project_id AND sub.id = s.subject_id`

func availableWhere(f CatalogFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("s.exported = TRUE")
	dest := w.arg(f.DestinationProjectID)
	w.add("s.project_id <> " + dest)
	w.add(`NOT EXISTS (
		SELECT 1 FROM imported_skill_links l
		WHERE l.dest_project_id = ` + dest + `
		  AND l.origin_project_id = s.project_id
		  AND l.origin_skill_id = s.id)`)
	if f.NameFilter != "" {
		w.add("LOWER(s.name) LIKE " + w.arg(likePattern(f.NameFilter)) + ` ESCAPE '\'`)
	}
	if f.ProjectNameFilter != "" {
		w.add("LOWER(p.name) LIKE " + w.arg(likePattern(f.ProjectNameFilter)) + ` ESCAPE '\'`)
	}
	if f.SubjectNameFilter != "" {
		w.add("LOWER(sub.name) LIKE " + w.arg(likePattern(f.SubjectNameFilter)) + ` ESCAPE '\'`)
	}
	return w
}

// ListAvailable returns one page of the catalog as seen by the destination
// project. Ordering always ends with (project, skill id) so page boundaries
// are stable between requests.
func (r *SQLCatalogRepository) ListAvailable(ctx context.Context, f CatalogFilter) ([]catalog.ExportableSkill, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[SortSkillID]
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	w := availableWhere(f)
	q := exportableSelect + w.sql() +
		fmt.Sprintf(" ORDER BY %s %s, s.project_id %s, s.id %s", col, dir, dir, dir) +
		" LIMIT " + w.arg(f.Limit) + " OFFSET " + w.arg(f.Offset)

	rows, err := r.db.Query(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExportable(rows)
}

func (r *SQLCatalogRepository) CountAvailable(ctx context.Context, f CatalogFilter) (int, error) {
	w := availableWhere(f)
	q := `SELECT COUNT(1)
	 FROM skills s
	 JOIN projects p ON p.id = s.project_id
	 JOIN subjects sub ON sub.project_id = s.project_id AND sub.id = s.subject_id` + w.sql()

	var c int
	if err := r.db.QueryRow(ctx, q, w.args...).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// FindExported loads the catalog entries for refs. Refs that are missing or
// not exported are absent from the result.
func (r *SQLCatalogRepository) FindExported(ctx context.Context, refs []catalog.SkillRef) (map[catalog.SkillRef]catalog.ExportableSkill, error) {
	out := make(map[catalog.SkillRef]catalog.ExportableSkill, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	w := &whereBuilder{}
	w.add("s.exported = TRUE")
	ors := make([]string, 0, len(refs))
	for _, ref := range refs {
		ors = append(ors, "(s.project_id = "+w.arg(ref.ProjectID)+" AND s.id = "+w.arg(ref.SkillID)+")")
	}
	w.add("(" + strings.Join(ors, " OR ") + ")")

	rows, err := r.db.Query(ctx, exportableSelect+w.sql(), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanExportable(rows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.Ref] = it
	}
	return out, nil
}

// ExportConflicts reports whether another project already exports a skill
// with the same id or the same name.
func (r *SQLCatalogRepository) ExportConflicts(ctx context.Context, projectID, skillID, name string) (bool, bool, error) {
	var idHits, nameHits int
	err := r.db.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN id = $2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN name = $3 THEN 1 ELSE 0 END), 0)
		 FROM skills
		 WHERE exported = TRUE AND project_id <> $1 AND (id = $2 OR name = $3)`,
		projectID, skillID, name,
	).Scan(&idHits, &nameHits)
	if err != nil {
		return false, false, err
	}
	return idHits > 0, nameHits > 0, nil
}

func (r *SQLCatalogRepository) ListExportedByProject(ctx context.Context, projectID string, limit, offset int) ([]catalog.ExportableSkill, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM skills WHERE project_id = $1 AND exported = TRUE`,
		projectID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		exportableSelect+`
		 WHERE s.project_id = $1 AND s.exported = TRUE
		 ORDER BY s.exported_at DESC, s.id ASC
		 LIMIT $2 OFFSET $3`,
		projectID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanExportable(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func scanExportable(rows database.Rows) ([]catalog.ExportableSkill, error) {
	out := make([]catalog.ExportableSkill, 0)
	for rows.Next() {
		var it catalog.ExportableSkill
		var exportedAt *time.Time
		if err := rows.Scan(
			&it.Ref.ProjectID,
			&it.OriginProjectName,
			&it.Ref.SkillID,
			&it.Name,
			&it.SubjectID,
			&it.SubjectName,
			&it.TotalPoints,
			&exportedAt,
		); err != nil {
			return nil, err
		}
		if exportedAt != nil {
			it.ExportedAt = exportedAt.UTC()
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
