package handler

import (
	"context"
	"time"

	"skill-catalog/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is anything the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler probes db and, when non-nil, redis. A redis outage only
// degrades the service, so it does not fail the check.
func NewHealthHandler(db Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	out := healthResponse{Database: "ok", Redis: "disabled"}
	if h.redis != nil {
		out.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			out.Redis = "unavailable"
		}
	}
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			out.Database = "unavailable"
			return response.Error(c, fiber.StatusServiceUnavailable, response.MessageDatabaseUnavailable, out)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
