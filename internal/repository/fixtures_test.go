package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	return NewSQLStore(testutil.NewSQLite(t))
}

func seedProject(t *testing.T, s Store, id, name string, subjects ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Skills().CreateProject(ctx, id, name))
	for _, sub := range subjects {
		require.NoError(t, s.Skills().CreateSubject(ctx, id, sub, "Subject "+sub))
	}
}

func seedExported(t *testing.T, s Store, projectID, subjectID string, n int) []catalog.SkillRef {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refs := make([]catalog.SkillRef, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("skill%02d", i)
		require.NoError(t, s.Skills().Create(ctx, catalog.Skill{
			ProjectID:   projectID,
			ID:          id,
			SubjectID:   subjectID,
			Name:        fmt.Sprintf("%s Skill %d", projectID, i),
			TotalPoints: 100 * i,
			Enabled:     true,
			Exported:    true,
			ExportedAt:  &at,
		}))
		refs = append(refs, catalog.SkillRef{ProjectID: projectID, SkillID: id})
	}
	return refs
}
