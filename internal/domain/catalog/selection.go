package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// SelectionSet is the set of catalog items a client has picked for import.
// It is keyed by origin reference and carries no page or filter state.
type SelectionSet map[SkillRef]struct{}

func NewSelectionSet(refs ...SkillRef) SelectionSet {
	s := make(SelectionSet, len(refs))
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

func (s SelectionSet) Add(r SkillRef) {
	s[r] = struct{}{}
}

func (s SelectionSet) Remove(r SkillRef) {
	delete(s, r)
}

func (s SelectionSet) Contains(r SkillRef) bool {
	_, ok := s[r]
	return ok
}

func (s SelectionSet) Len() int {
	return len(s)
}

// Refs returns the selection ordered by (project, skill).
func (s SelectionSet) Refs() []SkillRef {
	out := make([]SkillRef, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectID != out[j].ProjectID {
			return out[i].ProjectID < out[j].ProjectID
		}
		return out[i].SkillID < out[j].SkillID
	})
	return out
}

// ParseSkillRef parses "project:skill".
func ParseSkillRef(raw string) (SkillRef, error) {
	p, sk, ok := strings.Cut(strings.TrimSpace(raw), ":")
	p = strings.TrimSpace(p)
	sk = strings.TrimSpace(sk)
	if !ok || p == "" || sk == "" {
		return SkillRef{}, fmt.Errorf("invalid skill reference %q", raw)
	}
	return SkillRef{ProjectID: p, SkillID: sk}, nil
}

// ParseSelection parses a comma separated list of "project:skill" refs.
func ParseSelection(raw string) (SelectionSet, error) {
	s := SelectionSet{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseSkillRef(part)
		if err != nil {
			return nil, err
		}
		s.Add(r)
	}
	return s, nil
}
