package usecase

import (
	"context"
	"strings"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/repository"
)

type SelectionCheck struct {
	ProjectID string
	SubjectID string
	Selected  catalog.SelectionSet
	Candidate catalog.SkillRef
}

type SelectionDecision struct {
	Allowed           bool
	Reason            catalog.Reason
	Message           string
	SelectionSize     int
	SubjectSkillCount int
}

type ImportValidatorUsecase interface {
	Validate(ctx context.Context, destinationProjectID string, refs []catalog.SkillRef) ([]catalog.Verdict, error)
	CheckSelection(ctx context.Context, in SelectionCheck) (SelectionDecision, error)
}

// Validator evaluates candidates against a live read of the destination.
// Nothing is cached between calls.
type Validator struct {
	store  repository.Store
	limits catalog.Limits
}

func NewValidator(store repository.Store, limits catalog.Limits) *Validator {
	return &Validator{store: store, limits: limits}
}

func (v *Validator) Limits() catalog.Limits {
	return v.limits
}

func (v *Validator) Validate(ctx context.Context, destinationProjectID string, refs []catalog.SkillRef) ([]catalog.Verdict, error) {
	destinationProjectID = strings.TrimSpace(destinationProjectID)
	if destinationProjectID == "" {
		return nil, invalid("destination project is required")
	}

	state, err := loadDestinationState(ctx, v.store, destinationProjectID)
	if err != nil {
		return nil, internal(err)
	}
	cands, err := loadCandidates(ctx, v.store, refs)
	if err != nil {
		return nil, internal(err)
	}
	return catalog.EvaluateBatch(state, cands), nil
}

// CheckSelection decides whether Candidate may be added to Selected. The
// subject's skill count is re-read on every call.
func (v *Validator) CheckSelection(ctx context.Context, in SelectionCheck) (SelectionDecision, error) {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	if in.ProjectID == "" || in.SubjectID == "" || in.Candidate.IsZero() {
		return SelectionDecision{}, invalid("project, subject and candidate are required")
	}
	if in.Selected == nil {
		in.Selected = catalog.NewSelectionSet()
	}

	count, err := v.store.Skills().CountInSubject(ctx, in.ProjectID, in.SubjectID)
	if err != nil {
		return SelectionDecision{}, internal(err)
	}
	out := SelectionDecision{
		Allowed:           true,
		SelectionSize:     in.Selected.Len(),
		SubjectSkillCount: count,
	}
	if in.Selected.Contains(in.Candidate) {
		return out, nil
	}

	if cerr := v.limits.CanGrow(count, in.Selected.Len()); cerr != nil {
		out.Allowed = false
		out.Reason = cerr.Reason
		out.Message = cerr.Message
		return out, nil
	}

	state, err := selectionState(ctx, v.store, in.ProjectID, in.Selected)
	if err != nil {
		return SelectionDecision{}, internal(err)
	}
	cands, err := loadCandidates(ctx, v.store, []catalog.SkillRef{in.Candidate})
	if err != nil {
		return SelectionDecision{}, internal(err)
	}
	verdict := catalog.Evaluate(state, cands[0])
	if !verdict.Importable() {
		out.Allowed = false
		out.Reason = verdict.Reason
		out.Message = string(verdict.Reason)
	}
	return out, nil
}

func loadDestinationState(ctx context.Context, s repository.Store, projectID string) (catalog.DestinationState, error) {
	state := catalog.NewDestinationState(projectID)
	ids, names, err := s.Skills().Identities(ctx, projectID)
	if err != nil {
		return state, err
	}
	linked, err := s.Links().OriginRefs(ctx, projectID)
	if err != nil {
		return state, err
	}
	state.SkillIDs = ids
	state.SkillNames = names
	state.Linked = linked
	return state, nil
}

// selectionState is the destination state with every importable member of
// the current selection folded in, so candidates are also checked against
// what is already selected.
func selectionState(ctx context.Context, s repository.Store, projectID string, selected catalog.SelectionSet) (catalog.DestinationState, error) {
	state, err := loadDestinationState(ctx, s, projectID)
	if err != nil || selected.Len() == 0 {
		return state, err
	}
	cands, err := loadCandidates(ctx, s, selected.Refs())
	if err != nil {
		return state, err
	}
	for _, c := range cands {
		if catalog.Evaluate(state, c).Importable() {
			state.Accept(c)
		}
	}
	return state, nil
}

func loadCandidates(ctx context.Context, s repository.Store, refs []catalog.SkillRef) ([]catalog.Candidate, error) {
	origins, err := s.Catalog().FindExported(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Candidate, 0, len(refs))
	for _, ref := range refs {
		c := catalog.Candidate{Ref: ref}
		if o, ok := origins[ref]; ok {
			c.Origin = &o
		}
		out = append(out, c)
	}
	return out, nil
}
