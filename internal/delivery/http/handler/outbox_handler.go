package handler

import (
	"errors"

	"locum-match/internal/delivery/http/dto"
	"locum-match/internal/delivery/http/middleware"
	"locum-match/internal/domain/outbox"
	"locum-match/internal/pkg/response"
	"locum-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type OutboxHandler struct {
	queries usecase.RunQueryUsecase
}

func NewOutboxHandler(queries usecase.RunQueryUsecase) *OutboxHandler {
	return &OutboxHandler{queries: queries}
}

func (h *OutboxHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/outbox")
	grp.Get("/pending", h.GetPending)
	grp.Post("/:item_id/sent", h.MarkSent)
}

func (h *OutboxHandler) GetPending(c fiber.Ctx) error {
	var itemType outbox.Type
	switch raw := c.Query("type"); raw {
	case "":
	case string(outbox.TypeShortTermMatch), string(outbox.TypeWeeklyDigest):
		itemType = outbox.Type(raw)
	default:
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid outbox type", nil, nil)
	}

	items, err := h.queries.GetPendingOutbox(c.Context(), itemType)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewOutboxItemResponses(items))
}

func (h *OutboxHandler) MarkSent(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("item_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid outbox item id", nil, err)
	}

	if err := h.queries.MarkOutboxSent(c.Context(), itemID); err != nil {
		if errors.Is(err, usecase.ErrOutboxItemNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Outbox item not found", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, "Outbox item marked sent", nil)
}
