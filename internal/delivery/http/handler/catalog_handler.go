package handler

import (
	"skill-catalog/internal/delivery/http/dto"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/pkg/response"
	"skill-catalog/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CatalogHandler struct {
	uc        usecase.CatalogUsecase
	validator usecase.ImportValidatorUsecase
}

func NewCatalogHandler(uc usecase.CatalogUsecase, validator usecase.ImportValidatorUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc, validator: validator}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/catalog")
	grp.Get("/", h.HandleQuery)
	grp.Post("/selection", h.HandleSelection)
}

// HandleQuery lists the catalog for ?project=. With ?subject= every item is
// annotated for the selection given in ?selected=proj:skill,...
func (h *CatalogHandler) HandleQuery(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return badRequest(err)
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 0)
	if err != nil {
		return badRequest(err)
	}
	asc, err := parseQueryBool(c, "ascending", true)
	if err != nil {
		return badRequest(err)
	}
	selected, err := catalog.ParseSelection(c.Query("selected"))
	if err != nil {
		return badRequest(err)
	}

	res, err := h.uc.Query(c.Context(), usecase.CatalogQuery{
		DestinationProjectID: c.Query("project"),
		SubjectID:            c.Query("subject"),
		NameFilter:           c.Query("nameFilter"),
		ProjectNameFilter:    c.Query("projectNameFilter"),
		SubjectNameFilter:    c.Query("subjectNameFilter"),
		SortBy:               c.Query("sortBy"),
		Ascending:            asc,
		Page:                 page,
		PageSize:             pageSize,
		Selected:             selected,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	out := dto.CatalogPageResponse{
		Items:             make([]dto.CatalogItemResponse, 0, len(res.Items)),
		TotalCount:        res.TotalCount,
		Page:              res.Page,
		PageSize:          res.PageSize,
		SelectionSize:     res.SelectionSize,
		SubjectSkillCount: res.SubjectSkillCount,
		Capacity:          dto.FromCapacityError(res.Capacity),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.CatalogItemResponse{
			OriginProjectID:   it.Ref.ProjectID,
			OriginSkillID:     it.Ref.SkillID,
			Name:              it.Name,
			OriginProjectName: it.OriginProjectName,
			SubjectID:         it.SubjectID,
			SubjectName:       it.SubjectName,
			TotalPoints:       it.TotalPoints,
			ExportedAt:        it.ExportedAt.UTC(),
			Importable:        it.Importable,
			Reason:            string(it.Reason),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *CatalogHandler) HandleSelection(c fiber.Ctx) error {
	var req dto.SelectionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	sel := catalog.NewSelectionSet()
	for _, r := range req.Selected {
		sel.Add(r.Domain())
	}
	d, err := h.validator.CheckSelection(c.Context(), usecase.SelectionCheck{
		ProjectID: req.ProjectID,
		SubjectID: req.SubjectID,
		Selected:  sel,
		Candidate: req.Candidate.Domain(),
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SelectionResponse{
		Allowed:           d.Allowed,
		Reason:            string(d.Reason),
		Message:           d.Message,
		SelectionSize:     d.SelectionSize,
		SubjectSkillCount: d.SubjectSkillCount,
	})
}
