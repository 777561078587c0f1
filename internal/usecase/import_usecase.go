package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/events"
	"skill-catalog/internal/pkg/logger"
	"skill-catalog/internal/repository"

	"github.com/google/uuid"
)

type SubmitInput struct {
	DestinationProjectID string
	SubjectID            string
	GroupID              string
	Items                []catalog.SkillRef
}

type CreatedImport struct {
	Ref     catalog.SkillRef
	SkillID string
	LinkID  uuid.UUID
}

type RejectedImport struct {
	Ref    catalog.SkillRef
	Reason catalog.Reason
}

type SubmitResult struct {
	Created  []CreatedImport
	Rejected []RejectedImport
}

type ImportUsecase interface {
	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)
	ListImported(ctx context.Context, projectID string) ([]repository.ImportedSkill, error)
}

type Import struct {
	store     repository.Store
	limits    catalog.Limits
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewImportUsecase(store repository.Store, limits catalog.Limits, publisher events.Publisher, log *logger.Logger) *Import {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Import{
		store:     store,
		limits:    limits,
		publisher: publisher,
		log:       logger.OrNop(log).With("component", "import"),
		now:       time.Now,
	}
}

// Submit validates the batch against live destination state and, in one
// transaction, creates a disabled read-only shadow skill and a pending link
// for every accepted item. The whole batch fails while the project is being
// finalized or when the accepted items would exceed a capacity limit.
func (u *Import) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	in.DestinationProjectID = strings.TrimSpace(in.DestinationProjectID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.GroupID = strings.TrimSpace(in.GroupID)
	if in.DestinationProjectID == "" || in.SubjectID == "" {
		return SubmitResult{}, invalid("destination project and subject are required")
	}
	if len(in.Items) == 0 {
		return SubmitResult{}, invalid("no items to import")
	}
	for _, ref := range in.Items {
		if ref.IsZero() {
			return SubmitResult{}, invalid("item with empty origin reference")
		}
	}

	var res SubmitResult
	err := u.store.InTx(ctx, func(s repository.Store) error {
		res = SubmitResult{}
		now := u.now()

		if err := s.Jobs().EnsureRow(ctx, in.DestinationProjectID, now); err != nil {
			return internal(err)
		}
		ok, err := s.Jobs().AcquireImportGuard(ctx, in.DestinationProjectID, now)
		if err != nil {
			return internal(err)
		}
		if !ok {
			return catalog.ErrFinalizationInProgress
		}

		exists, err := s.Skills().SubjectExists(ctx, in.DestinationProjectID, in.SubjectID)
		if err != nil {
			return internal(err)
		}
		if !exists {
			return ErrSubjectNotFound
		}
		var groupID *string
		if in.GroupID != "" {
			inSubject, err := s.Skills().GroupInSubject(ctx, in.DestinationProjectID, in.SubjectID, in.GroupID)
			if err != nil {
				return internal(err)
			}
			if !inSubject {
				return ErrGroupNotFound
			}
			groupID = &in.GroupID
		}

		state, err := loadDestinationState(ctx, s, in.DestinationProjectID)
		if err != nil {
			return internal(err)
		}
		cands, err := loadCandidates(ctx, s, in.Items)
		if err != nil {
			return internal(err)
		}

		accepted := make([]catalog.Verdict, 0, len(cands))
		for _, v := range catalog.EvaluateBatch(state, cands) {
			if v.Importable() {
				accepted = append(accepted, v)
				continue
			}
			res.Rejected = append(res.Rejected, RejectedImport{Ref: v.Ref, Reason: v.Reason})
		}
		if len(accepted) == 0 {
			return nil
		}

		count, err := s.Skills().CountInSubject(ctx, in.DestinationProjectID, in.SubjectID)
		if err != nil {
			return internal(err)
		}
		if cerr := u.limits.CheckBatch(count, len(accepted)); cerr != nil {
			return cerr
		}

		links := make([]catalog.ImportedSkillLink, 0, len(accepted))
		for _, v := range accepted {
			origin := v.Ref
			shadowID := catalog.ShadowSkillID(origin)
			if err := s.Skills().Create(ctx, catalog.Skill{
				ProjectID:   in.DestinationProjectID,
				ID:          shadowID,
				SubjectID:   in.SubjectID,
				GroupID:     groupID,
				Type:        catalog.TypeSkill,
				Name:        v.Origin.Name,
				TotalPoints: v.Origin.TotalPoints,
				Enabled:     false,
				ReadOnly:    true,
				CopiedFrom:  &origin,
			}); err != nil {
				return storageErr(err)
			}

			link := catalog.ImportedSkillLink{
				ID:                   uuid.New(),
				DestinationProjectID: in.DestinationProjectID,
				DestinationSkillID:   shadowID,
				DestinationSubjectID: in.SubjectID,
				DestinationGroupID:   groupID,
				Origin:               origin,
				State:                catalog.LinkPending,
				CreatedAt:            now,
			}
			links = append(links, link)
			res.Created = append(res.Created, CreatedImport{Ref: origin, SkillID: shadowID, LinkID: link.ID})
		}
		if err := s.Links().Insert(ctx, links); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			u.log.Error("import failed", "project_id", in.DestinationProjectID, "error", err)
		}
		return SubmitResult{}, err
	}

	if len(res.Created) > 0 {
		e := events.New(events.ImportSubmitted, in.DestinationProjectID)
		e.Count = len(res.Created)
		u.publisher.Publish(ctx, e)
	}
	u.log.Info("import submitted",
		"project_id", in.DestinationProjectID,
		"subject_id", in.SubjectID,
		"created", len(res.Created),
		"rejected", len(res.Rejected),
	)
	return res, nil
}

func (u *Import) ListImported(ctx context.Context, projectID string) ([]repository.ImportedSkill, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, invalid("project is required")
	}
	items, err := u.store.Links().ListImported(ctx, projectID)
	if err != nil {
		return nil, internal(err)
	}
	return items, nil
}

func storageErr(err error) error {
	if errors.Is(err, database.ErrUniqueViolation) {
		return ErrImportConflict
	}
	return internal(err)
}
