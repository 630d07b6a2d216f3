package http

import (
	"textclub_server/core/domain"
	"textclub_server/core/port/out"
	"textclub_server/pkg/apperr"
	"textclub_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MessageHandler exposes read-only message inspection endpoints for the
// review dashboard.
type MessageHandler struct {
	messages out.MessageRepository
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages out.MessageRepository) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Register registers message routes.
func (h *MessageHandler) Register(router fiber.Router) {
	messages := router.Group("/messages")

	messages.Get("/queue", h.QueueCounts)
	messages.Get("/:id", h.GetMessage)
}

// GetMessage returns a single message with its provenance.
func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a UUID")
	}

	msg, err := h.messages.GetByID(c.Context(), id)
	if err != nil {
		return apperr.DatabaseError("get message", err)
	}
	if msg == nil {
		return apperr.NotFound("message")
	}

	return response.OK(c, msg)
}

// QueueCounts returns per-status message counts.
func (h *MessageHandler) QueueCounts(c *fiber.Ctx) error {
	statuses := []domain.MessageStatus{
		domain.StatusReady,
		domain.StatusSpamReview,
		domain.StatusPromoted,
		domain.StatusArchived,
	}

	counts := make(map[string]int, len(statuses))
	for _, status := range statuses {
		n, err := h.messages.CountByStatus(c.Context(), status)
		if err != nil {
			return apperr.DatabaseError("count messages", err)
		}
		counts[string(status)] = n
	}

	return response.OK(c, counts)
}
