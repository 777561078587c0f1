package usecase

import (
	"context"
	"testing"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportUsecase_Export_Verdicts(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	ctx := context.Background()
	refs := importPending(t, env, 1)
	env.project(t, "other", "o1")
	env.skill(t, "other", "o1", "taken", "Taken Elsewhere", true)

	env.skill(t, "dest", "d1", "fresh", "Fresh", false)
	env.skill(t, "dest", "d1", "already", "Already", true)
	env.skill(t, "dest", "d1", "taken", "Different Name", false)
	env.skill(t, "dest", "d1", "dupname", "Taken Elsewhere", false)
	require.NoError(t, env.store.Skills().Create(ctx, catalog.Skill{
		ProjectID: "dest", ID: "grp", SubjectID: "d1", Type: catalog.TypeSkillsGroup, Name: "Group",
	}))

	shadow := catalog.ShadowSkillID(refs[0])
	out, err := env.export.Export(ctx, "dest", []string{
		"fresh", "already", shadow, "taken", "dupname", "grp", "missing",
	})
	require.NoError(t, err)

	got := map[string]ExportVerdict{}
	for _, r := range out {
		got[r.SkillID] = r.Result
	}
	assert.Equal(t, map[string]ExportVerdict{
		"fresh":   ExportExported,
		"already": ExportAlreadyExported,
		shadow:    ExportImportedSkill,
		"taken":   ExportIDConflict,
		"dupname": ExportNameConflict,
		"grp":     ExportNotFound,
		"missing": ExportNotFound,
	}, got)

	page := env.query(t, CatalogQuery{DestinationProjectID: "other", NameFilter: "fresh"})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dest", page.Items[0].Ref.ProjectID)

	assert.Equal(t, events.CatalogChanged, env.events.Types()[len(env.events.Types())-1])
}

// unexporting hides the skill from new importers but keeps existing links
func TestExportUsecase_Unexport_KeepsLinks(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	ctx := context.Background()
	refs := importPending(t, env, 2)
	env.project(t, "third", "t1")

	require.NoError(t, env.export.Unexport(ctx, refs[0].ProjectID, refs[0].SkillID))
	require.NoError(t, env.export.Unexport(ctx, refs[0].ProjectID, refs[0].SkillID))
	assert.ErrorIs(t, env.export.Unexport(ctx, refs[0].ProjectID, "missing"), ErrSkillNotFound)

	page := env.query(t, CatalogQuery{DestinationProjectID: "third"})
	assert.Equal(t, []catalog.SkillRef{refs[1]}, refsOf(page.Items))

	imported, err := env.imports.ListImported(ctx, "dest")
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	stats, err := env.export.Stats(ctx, refs[0].ProjectID, refs[0].SkillID)
	require.NoError(t, err)
	assert.False(t, stats.Skill.Exported)
	require.Len(t, stats.Importers, 1)
	assert.Equal(t, "dest", stats.Importers[0].ProjectID)
	assert.Equal(t, catalog.LinkPending, stats.Importers[0].State)
}

func TestExportUsecase_ListExported(t *testing.T) {
	env := newEnv(t, catalog.Limits{})
	env.project(t, "origin", "s1")
	env.exported(t, "origin", "s1", "Skill", 5)
	env.skill(t, "origin", "s1", "private", "Private", false)

	page, err := env.export.ListExported(context.Background(), "origin", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page)
}
