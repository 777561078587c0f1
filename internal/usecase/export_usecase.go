package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"skill-catalog/internal/config"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/pkg/logger"
	"skill-catalog/internal/repository"
)

type ExportVerdict string

const (
	ExportExported        ExportVerdict = "Exported"
	ExportAlreadyExported ExportVerdict = "AlreadyExported"
	ExportImportedSkill   ExportVerdict = "ImportedSkill"
	ExportIDConflict      ExportVerdict = "IdConflict"
	ExportNameConflict    ExportVerdict = "NameConflict"
	ExportNotFound        ExportVerdict = "NotFound"
)

type ExportResult struct {
	SkillID string
	Result  ExportVerdict
}

type ExportedPage struct {
	Items      []catalog.ExportableSkill
	TotalCount int
	Page       int
	PageSize   int
}

type ExportStats struct {
	Skill     catalog.Skill
	Importers []repository.Importer
}

type ExportUsecase interface {
	Export(ctx context.Context, projectID string, skillIDs []string) ([]ExportResult, error)
	Unexport(ctx context.Context, projectID, skillID string) error
	ListExported(ctx context.Context, projectID string, page, pageSize int) (ExportedPage, error)
	Stats(ctx context.Context, projectID, skillID string) (ExportStats, error)
}

type Export struct {
	store   repository.Store
	refresh CatalogRefreshUsecase
	cfg     config.CatalogConfig
	log     *logger.Logger
	now     func() time.Time
}

func NewExportUsecase(store repository.Store, refresh CatalogRefreshUsecase, cfg config.CatalogConfig, log *logger.Logger) *Export {
	return &Export{
		store:   store,
		refresh: refresh,
		cfg:     cfg,
		log:     logger.OrNop(log).With("component", "export"),
		now:     time.Now,
	}
}

// Export adds skills of the project to the catalog. Each skill gets its own
// verdict; skills that cannot be exported do not fail the others.
func (u *Export) Export(ctx context.Context, projectID string, skillIDs []string) ([]ExportResult, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" || len(skillIDs) == 0 {
		return nil, invalid("project and skills are required")
	}

	out := make([]ExportResult, 0, len(skillIDs))
	var exported []string
	err := u.store.InTx(ctx, func(s repository.Store) error {
		out = out[:0]
		exported = exported[:0]
		for _, raw := range skillIDs {
			skillID := strings.TrimSpace(raw)
			verdict, err := u.exportOne(ctx, s, projectID, skillID)
			if err != nil {
				return err
			}
			if verdict == ExportExported {
				exported = append(exported, skillID)
			}
			out = append(out, ExportResult{SkillID: skillID, Result: verdict})
		}
		return nil
	})
	if err != nil {
		u.log.Error("export failed", "project_id", projectID, "error", err)
		return nil, err
	}

	for _, id := range exported {
		u.refresh.ExportToggled(ctx, projectID, id, true)
	}
	return out, nil
}

func (u *Export) exportOne(ctx context.Context, s repository.Store, projectID, skillID string) (ExportVerdict, error) {
	sk, err := s.Skills().Get(ctx, projectID, skillID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ExportNotFound, nil
		}
		return "", internal(err)
	}
	switch {
	case sk.Type != catalog.TypeSkill:
		return ExportNotFound, nil
	case sk.IsShadow() || sk.ReadOnly:
		return ExportImportedSkill, nil
	case sk.Exported:
		return ExportAlreadyExported, nil
	}

	idHit, nameHit, err := s.Catalog().ExportConflicts(ctx, projectID, sk.ID, sk.Name)
	if err != nil {
		return "", internal(err)
	}
	if idHit {
		return ExportIDConflict, nil
	}
	if nameHit {
		return ExportNameConflict, nil
	}

	if _, err := s.Skills().SetExported(ctx, projectID, skillID, true, u.now()); err != nil {
		return "", internal(err)
	}
	return ExportExported, nil
}

// Unexport removes the skill from the catalog. Projects that already linked
// it keep their links.
func (u *Export) Unexport(ctx context.Context, projectID, skillID string) error {
	projectID = strings.TrimSpace(projectID)
	skillID = strings.TrimSpace(skillID)
	if projectID == "" || skillID == "" {
		return invalid("project and skill are required")
	}

	n, err := u.store.Skills().SetExported(ctx, projectID, skillID, false, u.now())
	if err != nil {
		return internal(err)
	}
	if n == 0 {
		if _, err := u.store.Skills().Get(ctx, projectID, skillID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSkillNotFound
			}
			return internal(err)
		}
		return nil
	}
	u.refresh.ExportToggled(ctx, projectID, skillID, false)
	return nil
}

func (u *Export) ListExported(ctx context.Context, projectID string, page, pageSize int) (ExportedPage, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ExportedPage{}, invalid("project is required")
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = u.cfg.DefaultPageSize
	}
	if pageSize > u.cfg.MaxPageSize {
		pageSize = u.cfg.MaxPageSize
	}

	items, total, err := u.store.Catalog().ListExportedByProject(ctx, projectID, pageSize, (page-1)*pageSize)
	if err != nil {
		return ExportedPage{}, internal(err)
	}
	return ExportedPage{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

func (u *Export) Stats(ctx context.Context, projectID, skillID string) (ExportStats, error) {
	projectID = strings.TrimSpace(projectID)
	skillID = strings.TrimSpace(skillID)
	if projectID == "" || skillID == "" {
		return ExportStats{}, invalid("project and skill are required")
	}

	sk, err := u.store.Skills().Get(ctx, projectID, skillID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ExportStats{}, ErrSkillNotFound
		}
		return ExportStats{}, internal(err)
	}
	importers, err := u.store.Links().ListImporters(ctx, catalog.SkillRef{ProjectID: projectID, SkillID: skillID})
	if err != nil {
		return ExportStats{}, internal(err)
	}
	return ExportStats{Skill: sk, Importers: importers}, nil
}
