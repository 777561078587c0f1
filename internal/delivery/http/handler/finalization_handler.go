package handler

import (
	"skill-catalog/internal/delivery/http/dto"
	"skill-catalog/internal/delivery/http/middleware"
	"skill-catalog/internal/pkg/response"
	"skill-catalog/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type FinalizationHandler struct {
	uc usecase.FinalizationUsecase
}

func NewFinalizationHandler(uc usecase.FinalizationUsecase) *FinalizationHandler {
	return &FinalizationHandler{uc: uc}
}

func (h *FinalizationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/finalize")
	grp.Post("/", h.HandleTrigger)
	grp.Get("/status", h.HandleStatus)
	grp.Get("/info", h.HandleInfo)
}

// HandleTrigger returns 202 as soon as the job is queued.
func (h *FinalizationHandler) HandleTrigger(c fiber.Ctx) error {
	var req dto.FinalizeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	job, err := h.uc.Trigger(c.Context(), req.ProjectID, middleware.UserID(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusAccepted, response.MessageFinalizationStarted, dto.FinalizeResponse{
		JobID:     job.JobID,
		LinkCount: job.LinkCount,
	})
}

func (h *FinalizationHandler) HandleStatus(c fiber.Ctx) error {
	st, err := h.uc.Status(c.Context(), c.Query("projectId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FinalizationStatusResponse{
		ProjectID:   st.ProjectID,
		State:       string(st.State),
		Remaining:   st.Remaining,
		LinkCount:   st.LinkCount,
		JobID:       st.JobID,
		StartedAt:   st.StartedAt,
		CompletedAt: st.CompletedAt,
	})
}

func (h *FinalizationHandler) HandleInfo(c fiber.Ctx) error {
	info, err := h.uc.Info(c.Context(), c.Query("projectId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FinalizationInfoResponse{
		NumSkillsToFinalize: info.NumSkillsToFinalize,
		NumProjectsInvolved: info.NumProjectsInvolved,
		PendingPointsTotal:  info.PendingPointsTotal,
		State:               string(info.State),
	})
}
