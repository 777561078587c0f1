package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"skill-catalog/internal/config"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"
	"skill-catalog/internal/repository"
	"skill-catalog/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu    sync.Mutex
	tasks []uuid.UUID
}

func (q *recordingQueue) Enqueue(_ context.Context, _ string, jobID uuid.UUID) error {
	q.mu.Lock()
	q.tasks = append(q.tasks, jobID)
	q.mu.Unlock()
	return nil
}

type testEnv struct {
	store    *repository.SQLStore
	events   *events.Recorder
	queue    *recordingQueue
	cfg      config.CatalogConfig
	validate *Validator
	catalog  *Catalog
	imports  *Import
	final    *Finalization
	refresh  *CatalogRefresh
	export   *Export
}

func newEnv(t *testing.T, limits catalog.Limits) *testEnv {
	t.Helper()
	store := repository.NewSQLStore(testutil.NewSQLite(t))
	rec := &events.Recorder{}
	q := &recordingQueue{}
	cfg := config.DefaultCatalogConfig()
	cfg.MaxSkillsInBulkImport = limits.MaxSkillsInBulkImport
	cfg.MaxSkillsPerSubject = limits.MaxSkillsPerSubject

	v := NewValidator(store, limits)
	refresh := NewCatalogRefreshUsecase(store, rec, nil)
	return &testEnv{
		store:    store,
		events:   rec,
		queue:    q,
		cfg:      cfg,
		validate: v,
		catalog:  NewCatalogUsecase(store, v, cfg),
		imports:  NewImportUsecase(store, limits, rec, nil),
		final:    NewFinalizationUsecase(store, q, rec, time.Minute, nil),
		refresh:  refresh,
		export:   NewExportUsecase(store, refresh, cfg, nil),
	}
}

func (e *testEnv) project(t *testing.T, id string, subjects ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.Skills().CreateProject(ctx, id, "Project "+id))
	for _, s := range subjects {
		require.NoError(t, e.store.Skills().CreateSubject(ctx, id, s, "Subject "+s))
	}
}

func (e *testEnv) skill(t *testing.T, projectID, subjectID, id, name string, exported bool) catalog.SkillRef {
	t.Helper()
	var at *time.Time
	if exported {
		now := time.Now()
		at = &now
	}
	require.NoError(t, e.store.Skills().Create(context.Background(), catalog.Skill{
		ProjectID:   projectID,
		ID:          id,
		SubjectID:   subjectID,
		Name:        name,
		TotalPoints: 50,
		Enabled:     true,
		Exported:    exported,
		ExportedAt:  at,
	}))
	return catalog.SkillRef{ProjectID: projectID, SkillID: id}
}

// exported creates n exported skills named "<prefix> <i>" with ids "<project>-skill<i>".
func (e *testEnv) exported(t *testing.T, projectID, subjectID, prefix string, n int) []catalog.SkillRef {
	t.Helper()
	refs := make([]catalog.SkillRef, 0, n)
	for i := 1; i <= n; i++ {
		refs = append(refs, e.skill(t, projectID, subjectID, fmt.Sprintf("%s-skill%02d", projectID, i), fmt.Sprintf("%s %d", prefix, i), true))
	}
	return refs
}

func (e *testEnv) query(t *testing.T, q CatalogQuery) CatalogPage {
	t.Helper()
	if q.PageSize == 0 {
		q.PageSize = 50
	}
	q.Ascending = true
	page, err := e.catalog.Query(context.Background(), q)
	require.NoError(t, err)
	return page
}

func refsOf(items []CatalogItem) []catalog.SkillRef {
	out := make([]catalog.SkillRef, 0, len(items))
	for _, it := range items {
		out = append(out, it.Ref)
	}
	return out
}
