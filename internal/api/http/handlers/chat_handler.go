package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iticket/helpdesk/internal/api/dto"
	"github.com/iticket/helpdesk/internal/auth"
	"github.com/iticket/helpdesk/internal/service"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// ChatHandler manages ticket threads and direct conversations.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// ListMessages handles GET /chat/messages. ticketId selects a ticket
// thread, userId a direct conversation with that user.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	if ticketID := c.Query("ticketId"); ticketID != "" {
		messages, err := h.service.ListTicketThread(c.Context(), actor, ticketID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
	}

	if peerID := c.Query("userId"); peerID != "" {
		messages, err := h.service.ListDirect(c.Context(), actor, peerID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
	}

	return apperrors.NewValidationError("ticketId or userId required", nil)
}

// Send handles POST /chat/messages.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.service.Send(c.Context(), actor, service.SendMessageInput{
		Content:    req.Content,
		ReceiverID: req.ReceiverID,
		TicketID:   req.TicketID,
		Attachment: req.Attachment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(message)})
}

// MarkRead handles POST /chat/messages/read.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.MarkRead(c.Context(), actor, req.TicketID, req.PeerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}
