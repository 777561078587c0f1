package seeder

import (
	"context"
	"fmt"
	"time"

	"skill-catalog/internal/database"
)

type demoProject struct {
	ID       string
	Name     string
	Subjects []demoSubject
}

type demoSubject struct {
	ID     string
	Name   string
	Skills []demoSkill
}

type demoSkill struct {
	ID       string
	Name     string
	Points   int
	Exported bool
}

var demoProjects = []demoProject{
	{
		ID:   "movies",
		Name: "Movies",
		Subjects: []demoSubject{
			{ID: "directors", Name: "Directors", Skills: []demoSkill{
				{ID: "kubrick", Name: "Stanley Kubrick", Points: 100, Exported: true},
				{ID: "kurosawa", Name: "Akira Kurosawa", Points: 150, Exported: true},
				{ID: "varda", Name: "Agnes Varda", Points: 120, Exported: true},
				{ID: "lynch", Name: "David Lynch", Points: 90},
			}},
			{ID: "genres", Name: "Genres", Skills: []demoSkill{
				{ID: "noir", Name: "Film Noir", Points: 80, Exported: true},
				{ID: "western", Name: "Western", Points: 60, Exported: true},
			}},
		},
	},
	{
		ID:   "shows",
		Name: "TV Shows",
		Subjects: []demoSubject{
			{ID: "dramas", Name: "Dramas", Skills: []demoSkill{
				{ID: "wire", Name: "The Wire", Points: 200, Exported: true},
				{ID: "sopranos", Name: "The Sopranos", Points: 180, Exported: true},
				{ID: "noir-tv", Name: "Film Noir", Points: 40},
			}},
		},
	},
	{
		ID:   "books",
		Name: "Books",
		Subjects: []demoSubject{
			{ID: "classics", Name: "Classics", Skills: []demoSkill{
				{ID: "moby", Name: "Moby Dick", Points: 300, Exported: true},
			}},
			{ID: "adaptations", Name: "Adaptations"},
		},
	},
}

type ProjectsSeeder struct{}

func (ProjectsSeeder) Name() string { return "projects" }

func (ProjectsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "projects", "id", "name", "created_at"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "subjects", "project_id", "id", "name"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		now := time.Now().UTC()
		for _, p := range demoProjects {
			if _, err := tx.Exec(ctx,
				`INSERT INTO projects (id, name, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
				p.ID, p.Name, now,
			); err != nil {
				return fmt.Errorf("project %s: %w", p.ID, err)
			}
			for _, s := range p.Subjects {
				if _, err := tx.Exec(ctx,
					`INSERT INTO subjects (project_id, id, name) VALUES ($1, $2, $3) ON CONFLICT (project_id, id) DO NOTHING`,
					p.ID, s.ID, s.Name,
				); err != nil {
					return fmt.Errorf("subject %s/%s: %w", p.ID, s.ID, err)
				}
			}
		}
		return nil
	})
}

// CatalogSkillsSeeder creates the demo skills. Most are exported, so every
// demo project sees the others' skills in its catalog.
type CatalogSkillsSeeder struct{}

func (CatalogSkillsSeeder) Name() string { return "catalog_skills" }

func (CatalogSkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "project_id", "id", "subject_id", "name", "total_points", "exported", "exported_at"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, p := range demoProjects {
			for _, s := range p.Subjects {
				for _, sk := range s.Skills {
					var exportedAt *time.Time
					if sk.Exported {
						exportedAt = &now
					}
					if _, err := tx.Exec(ctx,
						`INSERT INTO skills (project_id, id, subject_id, type, name, total_points, enabled, read_only, exported, exported_at)
						 VALUES ($1, $2, $3, 'Skill', $4, $5, TRUE, FALSE, $6, $7)
						 ON CONFLICT (project_id, id) DO NOTHING`,
						p.ID, sk.ID, s.ID, sk.Name, sk.Points, sk.Exported, exportedAt,
					); err != nil {
						return fmt.Errorf("skill %s/%s: %w", p.ID, sk.ID, err)
					}
				}
			}
		}
		return nil
	})
}
