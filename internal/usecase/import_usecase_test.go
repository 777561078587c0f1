package usecase

import (
	"context"
	"errors"
	"testing"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// destination with no skills, ten exportable origin skills, five imported
func TestImportUsecase_Submit_ImportsSelectionAndHidesIt(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 25, MaxSkillsPerSubject: 10})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Origin Skill", 10)

	sel := catalog.NewSelectionSet()
	for _, ref := range refs[:5] {
		d, err := env.validate.CheckSelection(ctx, SelectionCheck{ProjectID: "dest", SubjectID: "d1", Selected: sel, Candidate: ref})
		require.NoError(t, err)
		require.True(t, d.Allowed)
		sel.Add(ref)
	}

	res, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: sel.Refs()})
	require.NoError(t, err)
	assert.Len(t, res.Created, 5)
	assert.Empty(t, res.Rejected)

	page := env.query(t, CatalogQuery{DestinationProjectID: "dest"})
	assert.Equal(t, 5, page.TotalCount)
	assert.ElementsMatch(t, refs[5:], refsOf(page.Items))

	skills, err := env.store.Skills().ListByProject(ctx, "dest")
	require.NoError(t, err)
	require.Len(t, skills, 5)
	for _, sk := range skills {
		assert.False(t, sk.Enabled, "shadow stays disabled until finalized")
		assert.True(t, sk.ReadOnly)
		require.NotNil(t, sk.CopiedFrom)
		assert.Equal(t, sk.ID, sk.CopiedFrom.SkillID)
	}

	st, err := env.final.Status(ctx, "dest")
	require.NoError(t, err)
	assert.Equal(t, catalog.JobIdle, st.State)
	assert.Equal(t, 5, st.Remaining)

	assert.Equal(t, []events.Type{events.ImportSubmitted}, env.events.Types())
}

func TestImportUsecase_Submit_RejectsPerItem(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 25, MaxSkillsPerSubject: 100})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Skill", 3)
	env.skill(t, "dest", "d1", "own", "Skill 2", true)
	hidden := env.skill(t, "origin", "s1", "private", "Private", false)

	res, err := env.imports.Submit(ctx, SubmitInput{
		DestinationProjectID: "dest",
		SubjectID:            "d1",
		Items: []catalog.SkillRef{
			refs[0],
			refs[1],
			refs[0],
			hidden,
			{ProjectID: "dest", SkillID: "own"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, refs[0], res.Created[0].Ref)

	reasons := map[catalog.Reason]int{}
	for _, r := range res.Rejected {
		reasons[r.Reason]++
	}
	assert.Equal(t, map[catalog.Reason]int{
		catalog.ReasonDuplicateName:   1,
		catalog.ReasonAlreadyImported: 1,
		catalog.ReasonNotInCatalog:    1,
		catalog.ReasonOwnProject:      1,
	}, reasons)

	// a second submission of the same origin is rejected, not duplicated
	res, err = env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[:1]})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, catalog.ReasonAlreadyImported, res.Rejected[0].Reason)
}

func TestImportUsecase_Submit_CapacityFailsWholeBatch(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 3, MaxSkillsPerSubject: 5})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Skill", 6)

	_, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[:4]})
	var cerr *catalog.CapacityError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, catalog.ReasonBulkLimitExceeded, cerr.Reason)

	env.skill(t, "dest", "d1", "l1", "Local 1", false)
	env.skill(t, "dest", "d1", "l2", "Local 2", false)
	env.skill(t, "dest", "d1", "l3", "Local 3", false)

	_, err = env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[:3]})
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, catalog.ReasonSubjectLimitExceeded, cerr.Reason)
	assert.Equal(t, "No more than 5 Skills per Subject are allowed, this project already has 3", cerr.Message)

	n, err := env.store.Links().CountPending(ctx, "dest")
	require.NoError(t, err)
	assert.Zero(t, n, "no partial batch")
	skills, err := env.store.Skills().ListByProject(ctx, "dest")
	require.NoError(t, err)
	assert.Len(t, skills, 3)

	res, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[:2]})
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
}

func TestImportUsecase_Submit_GroupAndSubjectChecks(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 25, MaxSkillsPerSubject: 100})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1", "d2")
	refs := env.exported(t, "origin", "s1", "Skill", 1)
	require.NoError(t, env.store.Skills().Create(ctx, catalog.Skill{
		ProjectID: "dest", ID: "g1", SubjectID: "d2", Type: catalog.TypeSkillsGroup, Name: "Group", Enabled: true,
	}))

	_, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "missing", Items: refs})
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, err = env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", GroupID: "g1", Items: refs})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	res, err := env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d2", GroupID: "g1", Items: refs})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)

	imported, err := env.imports.ListImported(ctx, "dest")
	require.NoError(t, err)
	require.Len(t, imported, 1)
	require.NotNil(t, imported[0].Link.DestinationGroupID)
	assert.Equal(t, "g1", *imported[0].Link.DestinationGroupID)
	assert.False(t, imported[0].Enabled)

	_, err = env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// the subject count is re-read on every selection change, so skills imported
// through another path while browsing are taken into account
func TestValidator_CheckSelection_ReReadsSubjectCount(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 10, MaxSkillsPerSubject: 4})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	refs := env.exported(t, "origin", "s1", "Skill", 6)

	sel := catalog.NewSelectionSet(refs[0])
	d, err := env.validate.CheckSelection(ctx, SelectionCheck{ProjectID: "dest", SubjectID: "d1", Selected: sel, Candidate: refs[1]})
	require.NoError(t, err)
	require.True(t, d.Allowed)
	sel.Add(refs[1])

	_, err = env.imports.Submit(ctx, SubmitInput{DestinationProjectID: "dest", SubjectID: "d1", Items: refs[4:6]})
	require.NoError(t, err)

	d, err = env.validate.CheckSelection(ctx, SelectionCheck{ProjectID: "dest", SubjectID: "d1", Selected: sel, Candidate: refs[2]})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, catalog.ReasonSubjectLimitExceeded, d.Reason)
	assert.Equal(t, 2, d.SubjectSkillCount)
	assert.Equal(t, "No more than 4 Skills per Subject are allowed, this project already has 2", d.Message)
}

// three items selected across two pages; a fourth is refused on either page
// until one is deselected
func TestValidator_CheckSelection_BulkLimitAcrossPages(t *testing.T) {
	env := newEnv(t, catalog.Limits{MaxSkillsInBulkImport: 3, MaxSkillsPerSubject: 100})
	ctx := context.Background()
	env.project(t, "origin", "s1")
	env.project(t, "dest", "d1")
	env.exported(t, "origin", "s1", "Skill", 8)

	page1 := env.query(t, CatalogQuery{DestinationProjectID: "dest", SubjectID: "d1", Page: 1, PageSize: 4})
	page2 := env.query(t, CatalogQuery{DestinationProjectID: "dest", SubjectID: "d1", Page: 2, PageSize: 4})

	sel := catalog.NewSelectionSet(page1.Items[0].Ref, page1.Items[1].Ref, page2.Items[0].Ref)
	for _, cand := range []catalog.SkillRef{page1.Items[2].Ref, page2.Items[1].Ref} {
		d, err := env.validate.CheckSelection(ctx, SelectionCheck{ProjectID: "dest", SubjectID: "d1", Selected: sel, Candidate: cand})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, catalog.ReasonBulkLimitExceeded, d.Reason)
		assert.Equal(t, "Cannot import more than 3 Skills at once", d.Message)
	}

	again := env.query(t, CatalogQuery{DestinationProjectID: "dest", SubjectID: "d1", Page: 2, PageSize: 4, Selected: sel})
	assert.True(t, again.Items[0].Importable)
	assert.False(t, again.Items[1].Importable)

	sel.Remove(page1.Items[1].Ref)
	d, err := env.validate.CheckSelection(ctx, SelectionCheck{ProjectID: "dest", SubjectID: "d1", Selected: sel, Candidate: page2.Items[1].Ref})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
