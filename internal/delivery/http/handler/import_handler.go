package handler

import (
	"skill-catalog/internal/delivery/http/dto"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/pkg/response"
	"skill-catalog/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ImportHandler struct {
	uc usecase.ImportUsecase
}

func NewImportHandler(uc usecase.ImportUsecase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

func (h *ImportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/import", h.HandleSubmit)
}

func (h *ImportHandler) HandleSubmit(c fiber.Ctx) error {
	var req dto.ImportRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	items := make([]catalog.SkillRef, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.Domain())
	}
	res, err := h.uc.Submit(c.Context(), usecase.SubmitInput{
		DestinationProjectID: req.DestinationProjectID,
		SubjectID:            req.SubjectID,
		GroupID:              req.GroupID,
		Items:                items,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	out := dto.ImportResponse{
		Created:  make([]dto.CreatedImportResponse, 0, len(res.Created)),
		Rejected: make([]dto.RejectedImportResponse, 0, len(res.Rejected)),
	}
	for _, it := range res.Created {
		out.Created = append(out.Created, dto.CreatedImportResponse{
			Item:    dto.FromSkillRef(it.Ref),
			SkillID: it.SkillID,
			LinkID:  it.LinkID,
		})
	}
	for _, it := range res.Rejected {
		out.Rejected = append(out.Rejected, dto.RejectedImportResponse{
			Item:   dto.FromSkillRef(it.Ref),
			Reason: string(it.Reason),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageImportSubmitted, out)
}
