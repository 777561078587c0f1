package catalog

import (
	"errors"
	"testing"
)

func origin(project, id, name string) Candidate {
	return Candidate{
		Ref:    SkillRef{ProjectID: project, SkillID: id},
		Origin: &ExportableSkill{Ref: SkillRef{ProjectID: project, SkillID: id}, Name: name},
	}
}

func destWith(ids, names []string) DestinationState {
	d := NewDestinationState("dest")
	for _, id := range ids {
		d.SkillIDs[id] = struct{}{}
	}
	for _, n := range names {
		d.SkillNames[n] = struct{}{}
	}
	return d
}

func TestEvaluate_CollisionPrecedence(t *testing.T) {
	dest := destWith([]string{"skill1", "skill2"}, []string{"Very Great Skill 1", "Other"})

	cases := []struct {
		name string
		c    Candidate
		want Reason
	}{
		{"importable", origin("p1", "skill9", "Fresh"), ReasonNone},
		{"id only", origin("p1", "skill1", "Fresh"), ReasonDuplicateID},
		{"name only", origin("p1", "skill7", "Very Great Skill 1"), ReasonDuplicateName},
		{"id and name", origin("p1", "skill2", "Other"), ReasonDuplicateIDAndName},
		{"name is case sensitive", origin("p1", "skill8", "very great skill 1"), ReasonNone},
		{"own project", origin("dest", "skill9", "Fresh"), ReasonOwnProject},
		{"not in catalog", Candidate{Ref: SkillRef{ProjectID: "p1", SkillID: "gone"}}, ReasonNotInCatalog},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(dest, tc.c)
			if got.Reason != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.Reason)
			}
		})
	}
}

func TestEvaluate_AlreadyLinkedBeatsCollision(t *testing.T) {
	dest := destWith([]string{"skill1"}, []string{"Name"})
	dest.Linked[SkillRef{ProjectID: "p1", SkillID: "skill1"}] = struct{}{}

	got := Evaluate(dest, origin("p1", "skill1", "Name"))
	if got.Reason != ReasonAlreadyImported {
		t.Fatalf("expected AlreadyImported, got %q", got.Reason)
	}
}

func TestEvaluateBatch_RejectsCollisionsWithinBatch(t *testing.T) {
	dest := destWith(nil, nil)
	verdicts := EvaluateBatch(dest, []Candidate{
		origin("p1", "skill1", "Alpha"),
		origin("p2", "skill1", "Beta"),
		origin("p2", "skill5", "Alpha"),
		origin("p1", "skill1", "Alpha"),
		origin("p2", "skill6", "Gamma"),
	})

	want := []Reason{ReasonNone, ReasonDuplicateID, ReasonDuplicateName, ReasonAlreadyImported, ReasonNone}
	if len(verdicts) != len(want) {
		t.Fatalf("expected %d verdicts, got %d", len(want), len(verdicts))
	}
	for i, v := range verdicts {
		if v.Reason != want[i] {
			t.Fatalf("verdict %d: expected %q, got %q", i, want[i], v.Reason)
		}
	}
	if len(dest.SkillIDs) != 0 {
		t.Fatalf("input state must not be mutated")
	}
}

func TestLimits_CanGrow(t *testing.T) {
	l := Limits{MaxSkillsInBulkImport: 3, MaxSkillsPerSubject: 10}

	if err := l.CanGrow(0, 2); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	err := l.CanGrow(0, 3)
	if err == nil || err.Reason != ReasonBulkLimitExceeded {
		t.Fatalf("expected BulkLimitExceeded, got %v", err)
	}
	if err.Error() != "Cannot import more than 3 Skills at once" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	// subject limit wins even below the bulk max
	err = l.CanGrow(9, 1)
	if err == nil || err.Reason != ReasonSubjectLimitExceeded {
		t.Fatalf("expected SubjectLimitExceeded, got %v", err)
	}
	if err.Error() != "No more than 10 Skills per Subject are allowed, this project already has 9" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	err = l.CanGrow(8, 3)
	if err == nil || err.Reason != ReasonSubjectLimitExceeded {
		t.Fatalf("expected SubjectLimitExceeded, got %v", err)
	}
}

func TestLimits_CheckBatch(t *testing.T) {
	l := Limits{MaxSkillsInBulkImport: 5, MaxSkillsPerSubject: 10}

	if err := l.CheckBatch(5, 5); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := l.CheckBatch(6, 5); err == nil || err.Reason != ReasonSubjectLimitExceeded {
		t.Fatalf("expected SubjectLimitExceeded, got %v", err)
	}
	if err := l.CheckBatch(0, 6); err == nil || err.Reason != ReasonBulkLimitExceeded {
		t.Fatalf("expected BulkLimitExceeded, got %v", err)
	}
	if err := (Limits{}).CheckBatch(1000, 1000); err != nil {
		t.Fatalf("zero limits must be unlimited, got %v", err)
	}

	var target *CapacityError
	var err error = l.CheckBatch(0, 6)
	if !errors.As(err, &target) {
		t.Fatalf("expected *CapacityError")
	}
}
