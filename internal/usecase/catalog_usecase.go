package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"skill-catalog/internal/config"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/repository"
)

type CatalogQuery struct {
	DestinationProjectID string
	SubjectID            string
	NameFilter           string
	ProjectNameFilter    string
	SubjectNameFilter    string
	SortBy               string
	Ascending            bool
	Page                 int
	PageSize             int
	Selected             catalog.SelectionSet
}

// CatalogItem is a catalog entry annotated with whether the destination can
// select it right now.
type CatalogItem struct {
	catalog.ExportableSkill
	Importable bool
	Reason     catalog.Reason
}

type CatalogPage struct {
	Items             []CatalogItem
	TotalCount        int
	Page              int
	PageSize          int
	SelectionSize     int
	SubjectSkillCount int
	Capacity          *catalog.CapacityError
}

type CatalogUsecase interface {
	Query(ctx context.Context, q CatalogQuery) (CatalogPage, error)
}

type Catalog struct {
	store     repository.Store
	validator *Validator
	cfg       config.CatalogConfig
}

func NewCatalogUsecase(store repository.Store, validator *Validator, cfg config.CatalogConfig) *Catalog {
	return &Catalog{store: store, validator: validator, cfg: cfg}
}

// Query returns one page of the skills the destination project may import.
// Its own skills and skills it already links (pending or active) are never
// listed. With a subject, each item carries the validator's verdict given the
// current selection, so rejected items can be shown as non-selectable.
func (u *Catalog) Query(ctx context.Context, q CatalogQuery) (CatalogPage, error) {
	q.DestinationProjectID = strings.TrimSpace(q.DestinationProjectID)
	q.SubjectID = strings.TrimSpace(q.SubjectID)
	if q.DestinationProjectID == "" {
		return CatalogPage{}, invalid("project is required")
	}
	for _, f := range []string{q.NameFilter, q.ProjectNameFilter, q.SubjectNameFilter} {
		if utf8.RuneCountInString(f) > u.cfg.MaxFilterLength {
			return CatalogPage{}, invalid("filter longer than %d characters", u.cfg.MaxFilterLength)
		}
	}

	sortBy := repository.SortColumn(q.SortBy)
	if sortBy == "" {
		sortBy = repository.SortSkillID
	}
	if !repository.ValidSortColumn(sortBy) {
		return CatalogPage{}, invalid("unsupported sortBy %q", q.SortBy)
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = u.cfg.DefaultPageSize
	}
	if q.PageSize > u.cfg.MaxPageSize {
		q.PageSize = u.cfg.MaxPageSize
	}

	filter := repository.CatalogFilter{
		DestinationProjectID: q.DestinationProjectID,
		NameFilter:           strings.TrimSpace(q.NameFilter),
		ProjectNameFilter:    strings.TrimSpace(q.ProjectNameFilter),
		SubjectNameFilter:    strings.TrimSpace(q.SubjectNameFilter),
		SortBy:               sortBy,
		Ascending:            q.Ascending,
		Limit:                q.PageSize,
		Offset:               (q.Page - 1) * q.PageSize,
	}

	var (
		items []catalog.ExportableSkill
		total int
	)
	err := u.store.Snapshot(ctx, func(s repository.Store) error {
		var err error
		if items, err = s.Catalog().ListAvailable(ctx, filter); err != nil {
			return err
		}
		total, err = s.Catalog().CountAvailable(ctx, filter)
		return err
	})
	if err != nil {
		return CatalogPage{}, internal(err)
	}

	page := CatalogPage{
		Items:         make([]CatalogItem, 0, len(items)),
		TotalCount:    total,
		Page:          q.Page,
		PageSize:      q.PageSize,
		SelectionSize: q.Selected.Len(),
	}
	for _, it := range items {
		page.Items = append(page.Items, CatalogItem{ExportableSkill: it, Importable: true})
	}
	if q.SubjectID == "" {
		return page, nil
	}

	if err := u.annotate(ctx, q, &page); err != nil {
		return CatalogPage{}, err
	}
	return page, nil
}

func (u *Catalog) annotate(ctx context.Context, q CatalogQuery, page *CatalogPage) error {
	selected := q.Selected
	if selected == nil {
		selected = catalog.NewSelectionSet()
	}

	count, err := u.store.Skills().CountInSubject(ctx, q.DestinationProjectID, q.SubjectID)
	if err != nil {
		return internal(err)
	}
	page.SubjectSkillCount = count
	page.Capacity = u.validator.Limits().CanGrow(count, selected.Len())

	state, err := selectionState(ctx, u.store, q.DestinationProjectID, selected)
	if err != nil {
		return internal(err)
	}

	for i := range page.Items {
		it := &page.Items[i]
		if selected.Contains(it.Ref) {
			continue
		}
		origin := it.ExportableSkill
		v := catalog.Evaluate(state, catalog.Candidate{Ref: it.Ref, Origin: &origin})
		switch {
		case !v.Importable():
			it.Importable = false
			it.Reason = v.Reason
		case page.Capacity != nil:
			it.Importable = false
			it.Reason = page.Capacity.Reason
		}
	}
	return nil
}
