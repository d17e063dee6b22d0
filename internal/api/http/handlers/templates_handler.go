package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iticket/helpdesk/internal/api/dto"
	"github.com/iticket/helpdesk/internal/auth"
	"github.com/iticket/helpdesk/internal/service"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// TemplatesHandler manages form template endpoints.
type TemplatesHandler struct {
	service *service.TemplateService
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(templateService *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{service: templateService}
}

// List handles GET /templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	templates, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		items = append(items, dto.NewTemplateResponse(&templates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /templates/:id.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	template, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTemplateResponse(template)})
}

// Create handles POST /templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	template, err := h.service.Create(c.Context(), actor, req.Name, req.Fields)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTemplateResponse(template)})
}

// Update handles PUT /templates/:id.
func (h *TemplatesHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	template, err := h.service.Update(c.Context(), actor, c.Params("id"), req.Name, req.Fields)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTemplateResponse(template)})
}

// Delete handles DELETE /templates/:id.
func (h *TemplatesHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
