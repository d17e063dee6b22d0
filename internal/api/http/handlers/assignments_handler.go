package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iticket/helpdesk/internal/api/dto"
	"github.com/iticket/helpdesk/internal/auth"
	"github.com/iticket/helpdesk/internal/service"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// AssignmentsHandler manages ticket assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// List handles GET /assignments. Exactly one of ticketId and helpdeskId
// selects the lookup.
func (h *AssignmentsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	if ticketID := c.Query("ticketId"); ticketID != "" {
		assignment, err := h.service.Get(c.Context(), actor, ticketID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
	}

	if helpdeskID := c.Query("helpdeskId"); helpdeskID != "" {
		assignments, err := h.service.ListByHelpdesk(c.Context(), actor, helpdeskID)
		if err != nil {
			return err
		}
		items := make([]dto.AssignmentResponse, 0, len(assignments))
		for i := range assignments {
			items = append(items, dto.NewAssignmentResponse(&assignments[i]))
		}
		return c.JSON(fiber.Map{"data": items})
	}

	return apperrors.NewValidationError("ticketId or helpdeskId required", nil)
}

// Assign handles POST /assignments. Creates or replaces the single
// assignment row for the ticket.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" || req.HelpdeskID == "" {
		return apperrors.NewValidationError("ticket_id and helpdesk_id required", nil)
	}

	assignment, err := h.service.Assign(c.Context(), actor, req.TicketID, req.HelpdeskID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentResponse(assignment)})
}

// Unassign handles DELETE /assignments?ticketId=.
func (h *AssignmentsHandler) Unassign(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID := c.Query("ticketId")
	if ticketID == "" {
		return apperrors.NewValidationError("ticketId required", nil)
	}

	if err := h.service.Unassign(c.Context(), actor, ticketID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
