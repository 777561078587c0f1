package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SQLiteWithOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("FINALIZE_STALE_AFTER", "90")
	t.Setenv("MAX_SKILLS_IN_BULK_IMPORT", "7")
	t.Setenv("MAX_SKILLS_PER_SUBJECT", "")
	t.Setenv("CATALOG_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.JWT.AuthDisabled)
	assert.Equal(t, 90*time.Second, cfg.Finalization.StaleAfter)
	assert.Equal(t, 7, cfg.Catalog.MaxSkillsInBulkImport)
	assert.Equal(t, 100, cfg.Catalog.MaxSkillsPerSubject)
}

func TestLoad_ReportsAllMissingKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "JWT_ACCESS_SECRET", "AUTH_DISABLED"} {
		t.Setenv(k, "")
	}

	_, err := Load()
	require.ErrorIs(t, err, errMissingRequiredEnv)
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "JWT_ACCESS_SECRET"} {
		assert.Contains(t, err.Error(), k)
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseCatalogConfig(t *testing.T) {
	cfg, err := ParseCatalogConfig([]byte(`
catalog:
  maxSkillsInBulkImport: 5
  maxSkillsPerSubject: 20
  defaultPageSize: 500
`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxSkillsInBulkImport)
	assert.Equal(t, 20, cfg.MaxSkillsPerSubject)
	assert.Equal(t, cfg.MaxPageSize, cfg.DefaultPageSize, "default page size is capped")
	assert.Equal(t, 50, cfg.MaxFilterLength)

	_, err = ParseCatalogConfig([]byte("catalog: ["))
	assert.Error(t, err)
}

func TestLoadCatalogConfig_File(t *testing.T) {
	cfg, err := LoadCatalogConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogConfig(), cfg)

	p := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(p, []byte("catalog:\n  maxSkillsPerSubject: 3\n"), 0o600))
	cfg, err = LoadCatalogConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSkillsPerSubject)
	assert.Equal(t, 25, cfg.MaxSkillsInBulkImport)
}
