package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"talent-ledger/internal/pkg/response"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    pinger
	cache pinger
}

func NewHealthHandler(db, cache pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

// Health reports liveness plus dependency status. The cache degrading
// does not fail the check; an unreachable store does.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	status := fiber.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			deps["database"] = "down"
			status = fiber.StatusServiceUnavailable
		} else {
			deps["database"] = "up"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			deps["cache"] = "degraded"
		} else {
			deps["cache"] = "up"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, "unhealthy", deps)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, deps)
}
