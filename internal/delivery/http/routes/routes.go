package routes

import (
	"skill-catalog/internal/delivery/http/handler"
	v1 "skill-catalog/internal/delivery/http/routes/v1"
	"skill-catalog/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	events *ws.Handler
	auth   fiber.Handler
	v1     v1.Handlers
}

func NewRegistry(health *handler.HealthHandler, events *ws.Handler, auth fiber.Handler, handlers v1.Handlers) *Registry {
	return &Registry{health: health, events: events, auth: auth, v1: handlers}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.auth, r.v1)

	// browsers cannot set headers on a websocket upgrade; events carry ids
	// and counts only
	if r.events != nil {
		api.Get("/v1/ws", r.events.HandleEvents)
	}
}
