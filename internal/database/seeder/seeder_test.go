package seeder_test

import (
	"context"
	"testing"

	"skill-catalog/internal/database/seeder"
	"skill-catalog/internal/repository"
	"skill-catalog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_SeedDemoCatalogTwice(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()

	r := seeder.Runner{Seeders: seeder.Defaults()}
	require.NoError(t, r.Run(ctx, db))
	require.NoError(t, r.Run(ctx, db), "seeding is idempotent")

	items, err := repository.NewSQLStore(db).Catalog().ListAvailable(ctx, repository.CatalogFilter{
		DestinationProjectID: "books",
		SortBy:               repository.SortSkillID,
		Ascending:            true,
		Limit:                100,
	})
	require.NoError(t, err)
	assert.Len(t, items, 7)
	for _, it := range items {
		assert.NotEqual(t, "books", it.Ref.ProjectID)
	}
}

func TestEnsureTableColumns_MissingColumn(t *testing.T) {
	db := testutil.NewSQLite(t)
	err := seeder.EnsureTableColumns(context.Background(), db, "skills", "id", "category")
	assert.Error(t, err)
}

func TestRunner_OnlyRunsNamedSeeders(t *testing.T) {
	db := testutil.NewSQLite(t)
	ctx := context.Background()

	r := seeder.Runner{Seeders: seeder.Defaults(), Only: []string{"projects"}}
	require.NoError(t, r.Run(ctx, db))

	var projects, skills int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&projects))
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM skills`).Scan(&skills))
	assert.Positive(t, projects)
	assert.Zero(t, skills)
}

func TestRunner_UnknownSeeder(t *testing.T) {
	db := testutil.NewSQLite(t)

	r := seeder.Runner{Seeders: seeder.Defaults(), Only: []string{"projects", "jobs"}}
	err := r.Run(context.Background(), db)
	require.ErrorIs(t, err, seeder.ErrUnknownSeeder)
	assert.Contains(t, err.Error(), `"jobs"`)
	assert.Equal(t, []string{"projects", "catalog_skills"}, seeder.Names(seeder.Defaults()))
}
