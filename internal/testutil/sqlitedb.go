// Package testutil opens throwaway migrated databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"skill-catalog/internal/database"
	"skill-catalog/internal/database/migration"
	"skill-catalog/internal/database/sqlite"
	"skill-catalog/migrations"

	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated SQLite database under t.TempDir. It is closed
// when the test ends.
func NewSQLite(t testing.TB) database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.Runner{FS: migrations.FS}.Run(ctx, db))
	return db
}
