package usecase

import (
	"context"
	"strings"
	"testing"

	"skill-catalog/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUsecase_Query_Validation(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 25, MaxSkillsPerSubject: 100})
	ctx := context.Background()

	_, err := env.catalog.Query(ctx, CatalogQuery{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.catalog.Query(ctx, CatalogQuery{DestinationProjectID: "p", NameFilter: strings.Repeat("x", 51)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.catalog.Query(ctx, CatalogQuery{DestinationProjectID: "p", SortBy: "createdAt"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	page, err := env.catalog.Query(ctx, CatalogQuery{DestinationProjectID: "p", PageSize: 10000})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)
	assert.Equal(t, env.cfg.MaxPageSize, page.PageSize)
}

// destination has a skill named "Very Great Skill 1" under another id; the
// colliding origin skill is listed but not selectable
func TestCatalogUsecase_Query_MarksDuplicateName(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 25, MaxSkillsPerSubject: 100})
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Very Great Skill", 3)
	env.skill(t, "dest", "d1", "local1", "Very Great Skill 1", false)
	env.skill(t, "dest", "d1", refs[2].SkillID, "Unrelated", false)

	page := env.query(t, CatalogQuery{DestinationProjectID: "dest", SubjectID: "d1"})
	require.Len(t, page.Items, 3)

	byRef := map[catalog.SkillRef]CatalogItem{}
	for _, it := range page.Items {
		byRef[it.Ref] = it
	}
	assert.False(t, byRef[refs[0]].Importable)
	assert.Equal(t, catalog.ReasonDuplicateName, byRef[refs[0]].Reason)
	assert.True(t, byRef[refs[1]].Importable)
	assert.False(t, byRef[refs[2]].Importable)
	assert.Equal(t, catalog.ReasonDuplicateID, byRef[refs[2]].Reason)
	assert.Equal(t, 2, page.SubjectSkillCount)
}

func TestCatalogUsecase_Query_CapacityBlocksUnselected(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 2, MaxSkillsPerSubject: 100})
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Skill", 4)

	page := env.query(t, CatalogQuery{
		DestinationProjectID: "dest",
		SubjectID:            "d1",
		Selected:             catalog.NewSelectionSet(refs[0], refs[1]),
	})
	require.NotNil(t, page.Capacity)
	assert.Equal(t, catalog.ReasonBulkLimitExceeded, page.Capacity.Reason)
	assert.Equal(t, 2, page.SelectionSize)
	for _, it := range page.Items {
		if it.Ref == refs[0] || it.Ref == refs[1] {
			assert.True(t, it.Importable, "selected items stay selectable")
			continue
		}
		assert.False(t, it.Importable)
		assert.Equal(t, catalog.ReasonBulkLimitExceeded, it.Reason)
	}
}

func TestCatalogUsecase_Query_PagesAreStable(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	env.project(t, "a", "s1")
	env.project(t, "b", "s1")
	env.project(t, "dest", "d1")
	env.exported(t, "a", "s1", "A", 7)
	env.exported(t, "b", "s1", "B", 6)

	seen := map[catalog.SkillRef]bool{}
	for p := 1; p <= 3; p++ {
		page := env.query(t, CatalogQuery{DestinationProjectID: "dest", Page: p, PageSize: 5})
		assert.Equal(t, 13, page.TotalCount)
		for _, ref := range refsOf(page.Items) {
			require.False(t, seen[ref])
			seen[ref] = true
		}
	}
	assert.Len(t, seen, 13)
}
