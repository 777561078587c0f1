package usecase

import (
	"context"
	"errors"
	"strings"

	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"
	"skill-catalog/internal/pkg/logger"
	"skill-catalog/internal/repository"
)

type DeleteResult struct {
	WasShadow     bool
	OrphanedLinks int
}

type CatalogRefreshUsecase interface {
	SkillDeleted(ctx context.Context, projectID, skillID string) (DeleteResult, error)
	ExportToggled(ctx context.Context, projectID, skillID string, exported bool)
}

// CatalogRefresh keeps links consistent when skills are deleted and tells
// realtime subscribers when catalog availability changed. The catalog is
// always read from storage, so there is nothing to invalidate.
type CatalogRefresh struct {
	store     repository.Store
	publisher events.Publisher
	log       *logger.Logger
}

func NewCatalogRefreshUsecase(store repository.Store, publisher events.Publisher, log *logger.Logger) *CatalogRefresh {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CatalogRefresh{
		store:     store,
		publisher: publisher,
		log:       logger.OrNop(log).With("component", "catalog_refresh"),
	}
}

// SkillDeleted deletes the skill and every link touching it in one
// transaction. Deleting a shadow removes its link, which returns the origin
// to the destination's catalog. Deleting an origin removes all links to it;
// the shadows stay in their projects, disabled and detached from the origin.
func (u *CatalogRefresh) SkillDeleted(ctx context.Context, projectID, skillID string) (DeleteResult, error) {
	projectID = strings.TrimSpace(projectID)
	skillID = strings.TrimSpace(skillID)
	if projectID == "" || skillID == "" {
		return DeleteResult{}, invalid("project and skill are required")
	}

	var res DeleteResult
	var wasExported bool
	err := u.store.InTx(ctx, func(s repository.Store) error {
		res = DeleteResult{}
		sk, err := s.Skills().Get(ctx, projectID, skillID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSkillNotFound
			}
			return internal(err)
		}
		wasExported = sk.Exported

		if _, err := s.Skills().Delete(ctx, projectID, skillID); err != nil {
			return internal(err)
		}

		unlinked, err := s.Links().DeleteByDestination(ctx, projectID, skillID)
		if err != nil {
			return internal(err)
		}
		res.WasShadow = unlinked > 0

		origin := catalog.SkillRef{ProjectID: projectID, SkillID: skillID}
		orphaned, err := s.Links().DeleteByOrigin(ctx, origin)
		if err != nil {
			return internal(err)
		}
		if err := s.Skills().DisableOrphans(ctx, orphaned); err != nil {
			return internal(err)
		}
		res.OrphanedLinks = len(orphaned)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			u.log.Error("skill delete failed", "project_id", projectID, "skill_id", skillID, "error", err)
		}
		return DeleteResult{}, err
	}

	if res.WasShadow {
		e := events.New(events.CatalogChanged, projectID)
		e.SkillID = skillID
		u.publisher.Publish(ctx, e)
	}
	if res.OrphanedLinks > 0 || wasExported {
		e := events.New(events.CatalogChanged, "")
		e.SkillID = skillID
		e.Count = res.OrphanedLinks
		u.publisher.Publish(ctx, e)
	}
	u.log.Info("skill deleted",
		"project_id", projectID,
		"skill_id", skillID,
		"was_shadow", res.WasShadow,
		"orphaned_links", res.OrphanedLinks,
	)
	return res, nil
}

// ExportToggled announces that a skill entered or left the catalog.
// Existing links are not touched when a skill stops being exported.
func (u *CatalogRefresh) ExportToggled(ctx context.Context, projectID, skillID string, exported bool) {
	e := events.New(events.CatalogChanged, "")
	e.SkillID = skillID
	u.publisher.Publish(ctx, e)
	u.log.Debug("export toggled", "project_id", projectID, "skill_id", skillID, "exported", exported)
}
