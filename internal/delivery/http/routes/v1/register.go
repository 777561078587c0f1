package v1

import (
	"skill-catalog/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Catalog       *handler.CatalogHandler
	Import        *handler.ImportHandler
	Finalization  *handler.FinalizationHandler
	ProjectSkills *handler.ProjectSkillHandler
}

// Register mounts the catalog API. Every route sits behind auth when it is
// given.
func Register(r fiber.Router, auth fiber.Handler, h Handlers) {
	if r == nil {
		return
	}

	protected := r
	if auth != nil {
		protected = r.Group("", auth)
	}

	if h.Catalog != nil {
		h.Catalog.RegisterRoutes(protected)
	}
	if h.Import != nil {
		h.Import.RegisterRoutes(protected)
	}
	if h.Finalization != nil {
		h.Finalization.RegisterRoutes(protected)
	}
	if h.ProjectSkills != nil {
		h.ProjectSkills.RegisterRoutes(protected)
	}
}
