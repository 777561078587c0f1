package handler

import (
	"skill-catalog/internal/delivery/http/dto"
	"skill-catalog/internal/pkg/response"
	"skill-catalog/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// ProjectSkillHandler serves the per-project skill endpoints: export
// management, the imported skill list and skill deletion.
type ProjectSkillHandler struct {
	exports usecase.ExportUsecase
	imports usecase.ImportUsecase
	refresh usecase.CatalogRefreshUsecase
}

func NewProjectSkillHandler(exports usecase.ExportUsecase, imports usecase.ImportUsecase, refresh usecase.CatalogRefreshUsecase) *ProjectSkillHandler {
	return &ProjectSkillHandler{exports: exports, imports: imports, refresh: refresh}
}

func (h *ProjectSkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/projects/:projectId/skills")
	grp.Get("/imported", h.HandleListImported)
	grp.Get("/exported", h.HandleListExported)
	grp.Post("/export", h.HandleExport)
	grp.Delete("/:skillId/export", h.HandleUnexport)
	grp.Get("/:skillId/exported/stats", h.HandleExportStats)
	grp.Delete("/:skillId", h.HandleDelete)
}

func (h *ProjectSkillHandler) HandleExport(c fiber.Ctx) error {
	var req dto.ExportRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	results, err := h.exports.Export(c.Context(), c.Params("projectId"), req.SkillIDs)
	if err != nil {
		return mapUsecaseError(err)
	}
	out := make([]dto.ExportResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.ExportResultResponse{SkillID: r.SkillID, Result: string(r.Result)})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProjectSkillHandler) HandleUnexport(c fiber.Ctx) error {
	if err := h.exports.Unexport(c.Context(), c.Params("projectId"), c.Params("skillId")); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageSkillUnexported, nil)
}

func (h *ProjectSkillHandler) HandleListExported(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return badRequest(err)
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 0)
	if err != nil {
		return badRequest(err)
	}

	res, err := h.exports.ListExported(c.Context(), c.Params("projectId"), page, pageSize)
	if err != nil {
		return mapUsecaseError(err)
	}
	out := dto.ExportedPageResponse{
		Items:      make([]dto.ExportedSkillResponse, 0, len(res.Items)),
		TotalCount: res.TotalCount,
		Page:       res.Page,
		PageSize:   res.PageSize,
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.ExportedSkillResponse{
			SkillID:     it.Ref.SkillID,
			Name:        it.Name,
			SubjectID:   it.SubjectID,
			SubjectName: it.SubjectName,
			TotalPoints: it.TotalPoints,
			ExportedAt:  it.ExportedAt.UTC(),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProjectSkillHandler) HandleExportStats(c fiber.Ctx) error {
	st, err := h.exports.Stats(c.Context(), c.Params("projectId"), c.Params("skillId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	out := dto.ExportStatsResponse{
		SkillID:    st.Skill.ID,
		Name:       st.Skill.Name,
		Exported:   st.Skill.Exported,
		ExportedAt: st.Skill.ExportedAt,
		Importers:  make([]dto.ImporterResponse, 0, len(st.Importers)),
	}
	for _, im := range st.Importers {
		out.Importers = append(out.Importers, dto.ImporterResponse{
			ProjectID:   im.ProjectID,
			ProjectName: im.ProjectName,
			SkillID:     im.SkillID,
			State:       string(im.State),
			ImportedAt:  im.ImportedAt,
			ActivatedAt: im.ActivatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProjectSkillHandler) HandleListImported(c fiber.Ctx) error {
	items, err := h.imports.ListImported(c.Context(), c.Params("projectId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	out := make([]dto.ImportedSkillResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ImportedSkillResponse{
			LinkID:      it.Link.ID,
			SkillID:     it.Link.DestinationSkillID,
			SubjectID:   it.Link.DestinationSubjectID,
			GroupID:     it.Link.DestinationGroupID,
			Name:        it.Name,
			TotalPoints: it.TotalPoints,
			Enabled:     it.Enabled,
			State:       string(it.Link.State),
			Origin:      dto.FromSkillRef(it.Link.Origin),
			OriginName:  it.OriginName,
			ImportedAt:  it.Link.CreatedAt,
			ActivatedAt: it.Link.ActivatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

// HandleDelete is the deletion boundary of the skill store: the skill and any
// links touching it go in one transaction.
func (h *ProjectSkillHandler) HandleDelete(c fiber.Ctx) error {
	res, err := h.refresh.SkillDeleted(c.Context(), c.Params("projectId"), c.Params("skillId"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageSkillDeleted, dto.DeleteSkillResponse{
		WasImported:   res.WasShadow,
		OrphanedLinks: res.OrphanedLinks,
	})
}
