package handler

import (
	"context"
	"time"

	"locum-match/internal/database"
	"locum-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    database.DB
	cache CachePinger
}

func NewHealthHandler(db database.DB, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.GetHealth)
}

func (h *HealthHandler) GetHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	out := fiber.Map{"database": "ok", "cache": "ok"}
	status := fiber.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			out["database"] = "down"
			status = fiber.StatusServiceUnavailable
		}
	}
	// A bypassed cache is degraded, not unhealthy.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			out["cache"] = "down"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, "service unavailable", out)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
