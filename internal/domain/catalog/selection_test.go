package catalog

import "testing"

func TestSelectionSet_AddRemoveAndOrder(t *testing.T) {
	s := NewSelectionSet()
	s.Add(SkillRef{ProjectID: "p2", SkillID: "a"})
	s.Add(SkillRef{ProjectID: "p1", SkillID: "b"})
	s.Add(SkillRef{ProjectID: "p1", SkillID: "a"})
	s.Add(SkillRef{ProjectID: "p1", SkillID: "a"})

	if s.Len() != 3 {
		t.Fatalf("expected 3, got %d", s.Len())
	}
	refs := s.Refs()
	if refs[0].String() != "p1:a" || refs[1].String() != "p1:b" || refs[2].String() != "p2:a" {
		t.Fatalf("unexpected order: %v", refs)
	}

	s.Remove(SkillRef{ProjectID: "p1", SkillID: "b"})
	if s.Contains(SkillRef{ProjectID: "p1", SkillID: "b"}) {
		t.Fatalf("expected removed")
	}
}

func TestParseSelection(t *testing.T) {
	s, err := ParseSelection(" p1:skill1, p2:skill2 ,")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !s.Contains(SkillRef{ProjectID: "p1", SkillID: "skill1"}) || !s.Contains(SkillRef{ProjectID: "p2", SkillID: "skill2"}) {
		t.Fatalf("unexpected selection: %v", s.Refs())
	}

	if _, err := ParseSelection("p1"); err == nil {
		t.Fatalf("expected error for missing skill id")
	}
	if _, err := ParseSkillRef(":x"); err == nil {
		t.Fatalf("expected error for missing project id")
	}

	empty, err := ParseSelection("")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("expected empty selection, got %v %v", empty, err)
	}
}
