package catalog

import "fmt"

type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonDuplicateID          Reason = "DuplicateId"
	ReasonDuplicateName        Reason = "DuplicateName"
	ReasonDuplicateIDAndName   Reason = "DuplicateIdAndName"
	ReasonNotInCatalog         Reason = "NotInCatalog"
	ReasonOwnProject           Reason = "OwnProject"
	ReasonAlreadyImported      Reason = "AlreadyImported"
	ReasonBulkLimitExceeded    Reason = "BulkLimitExceeded"
	ReasonSubjectLimitExceeded Reason = "SubjectLimitExceeded"
)

// DestinationState is a live read of everything in the destination project
// that an import can collide with.
type DestinationState struct {
	ProjectID  string
	SkillIDs   map[string]struct{}
	SkillNames map[string]struct{}
	Linked     map[SkillRef]struct{}
}

func NewDestinationState(projectID string) DestinationState {
	return DestinationState{
		ProjectID:  projectID,
		SkillIDs:   map[string]struct{}{},
		SkillNames: map[string]struct{}{},
		Linked:     map[SkillRef]struct{}{},
	}
}

func (d DestinationState) Clone() DestinationState {
	out := NewDestinationState(d.ProjectID)
	for k := range d.SkillIDs {
		out.SkillIDs[k] = struct{}{}
	}
	for k := range d.SkillNames {
		out.SkillNames[k] = struct{}{}
	}
	for k := range d.Linked {
		out.Linked[k] = struct{}{}
	}
	return out
}

// Accept records c as imported into d.
func (d DestinationState) Accept(c Candidate) {
	d.Linked[c.Ref] = struct{}{}
	d.SkillIDs[ShadowSkillID(c.Ref)] = struct{}{}
	if c.Origin != nil {
		d.SkillNames[c.Origin.Name] = struct{}{}
	}
}

// Candidate is a proposed import. Origin is nil when the referenced skill is
// not currently in the catalog.
type Candidate struct {
	Ref    SkillRef
	Origin *ExportableSkill
}

type Verdict struct {
	Ref    SkillRef
	Reason Reason
	Origin *ExportableSkill
}

func (v Verdict) Importable() bool {
	return v.Reason == ReasonNone
}

// ShadowSkillID is the id a shadow of ref gets in the destination project.
func ShadowSkillID(ref SkillRef) string {
	return ref.SkillID
}

// Evaluate checks a single candidate against the destination.
func Evaluate(dest DestinationState, c Candidate) Verdict {
	v := Verdict{Ref: c.Ref, Origin: c.Origin}
	switch {
	case c.Origin == nil:
		v.Reason = ReasonNotInCatalog
		return v
	case c.Ref.ProjectID == dest.ProjectID:
		v.Reason = ReasonOwnProject
		return v
	}
	if _, ok := dest.Linked[c.Ref]; ok {
		v.Reason = ReasonAlreadyImported
		return v
	}

	_, idHit := dest.SkillIDs[ShadowSkillID(c.Ref)]
	_, nameHit := dest.SkillNames[c.Origin.Name]
	switch {
	case idHit && nameHit:
		v.Reason = ReasonDuplicateIDAndName
	case idHit:
		v.Reason = ReasonDuplicateID
	case nameHit:
		v.Reason = ReasonDuplicateName
	}
	return v
}

// EvaluateBatch evaluates candidates in order. Each accepted candidate is
// folded into the working destination state, so a later candidate that would
// collide with it is rejected the same way a stored skill would reject it.
func EvaluateBatch(dest DestinationState, cands []Candidate) []Verdict {
	work := dest.Clone()
	out := make([]Verdict, 0, len(cands))
	for _, c := range cands {
		v := Evaluate(work, c)
		if v.Importable() {
			work.Accept(c)
		}
		out = append(out, v)
	}
	return out
}

// Limits are the capacity settings from the public configuration. A value
// <= 0 disables that limit.
type Limits struct {
	MaxSkillsInBulkImport int
	MaxSkillsPerSubject   int
}

type CapacityError struct {
	Reason  Reason
	Message string
	Limit   int
	Current int
}

func (e *CapacityError) Error() string {
	return e.Message
}

func subjectLimitError(max, current int) *CapacityError {
	return &CapacityError{
		Reason:  ReasonSubjectLimitExceeded,
		Message: fmt.Sprintf("No more than %d Skills per Subject are allowed, this project already has %d", max, current),
		Limit:   max,
		Current: current,
	}
}

func bulkLimitError(max, current int) *CapacityError {
	return &CapacityError{
		Reason:  ReasonBulkLimitExceeded,
		Message: fmt.Sprintf("Cannot import more than %d Skills at once", max),
		Limit:   max,
		Current: current,
	}
}

// CanGrow reports whether a selection of size selected may take one more
// item, given subjectCount skills already in the destination subject. The
// per-subject limit is reported before the bulk limit.
func (l Limits) CanGrow(subjectCount, selected int) *CapacityError {
	if l.MaxSkillsPerSubject > 0 && subjectCount+selected >= l.MaxSkillsPerSubject {
		return subjectLimitError(l.MaxSkillsPerSubject, subjectCount)
	}
	if l.MaxSkillsInBulkImport > 0 && selected >= l.MaxSkillsInBulkImport {
		return bulkLimitError(l.MaxSkillsInBulkImport, selected)
	}
	return nil
}

// CheckBatch validates a batch of n accepted items about to be written.
func (l Limits) CheckBatch(subjectCount, n int) *CapacityError {
	if l.MaxSkillsPerSubject > 0 && subjectCount+n > l.MaxSkillsPerSubject {
		return subjectLimitError(l.MaxSkillsPerSubject, subjectCount)
	}
	if l.MaxSkillsInBulkImport > 0 && n > l.MaxSkillsInBulkImport {
		return bulkLimitError(l.MaxSkillsInBulkImport, n)
	}
	return nil
}
