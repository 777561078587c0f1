package usecase

import (
	"context"
	"testing"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deleting an imported skill puts its origin back into the catalog, and it
// can be imported again
func TestCatalogRefresh_ShadowDeleteRestoresOrigin(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	ctx := context.Background()
	refs := importPending(t, env, 2)

	page := env.query(t, CatalogQuery{DestinationProjectID: "dest"})
	assert.Zero(t, page.TotalCount)

	res, err := env.refresh.SkillDeleted(ctx, "dest", catalog.ShadowSkillID(refs[0]))
	require.NoError(t, err)
	assert.True(t, res.WasShadow)
	assert.Zero(t, res.OrphanedLinks)

	page = env.query(t, CatalogQuery{DestinationProjectID: "dest"})
	assert.Equal(t, []catalog.SkillRef{refs[0]}, refsOf(page.Items))

	last := env.events.Events()[len(env.events.Events())-1]
	assert.Equal(t, events.CatalogChanged, last.Type)
	assert.Equal(t, "dest", last.ProjectID)

	again, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[:1]})
	require.NoError(t, err)
	assert.Len(t, again.Created, 1)
}

func TestCatalogRefresh_OriginDeleteOrphansShadows(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	ctx := context.Background()
	refs := importPending(t, env, 2)
	h, err := env.final.Trigger(ctx, "dest", "")
	require.NoError(t, err)
	require.NoError(t, env.final.Execute(ctx, "dest", h.JobID, "worker-a"))

	res, err := env.refresh.SkillDeleted(ctx, refs[0].ProjectID, refs[0].SkillID)
	require.NoError(t, err)
	assert.False(t, res.WasShadow)
	assert.Equal(t, 1, res.OrphanedLinks)

	imported, err := env.imports.ListImported(ctx, "dest")
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, refs[1], imported[0].Link.Origin)

	sk, err := env.store.Skills().Get(ctx, "dest", catalog.ShadowSkillID(refs[0]))
	require.NoError(t, err)
	assert.False(t, sk.Enabled)
	assert.True(t, sk.ReadOnly)
	assert.Nil(t, sk.CopiedFrom)

	last := env.events.Events()[len(env.events.Events())-1]
	assert.Equal(t, events.CatalogChanged, last.Type)
	assert.Empty(t, last.ProjectID)
	assert.Equal(t, 1, last.Count)
}

func TestCatalogRefresh_SkillDeleted_NotFound(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	env.project(t, "dest", "d1")

	_, err := env.refresh.SkillDeleted(context.Background(), "dest", "nope")
	assert.ErrorIs(t, err, ErrSkillNotFound)
	assert.Empty(t, env.events.Events())
}
