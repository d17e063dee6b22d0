package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iticket/helpdesk/internal/api/dto"
	"github.com/iticket/helpdesk/internal/service"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// UploadsHandler accepts multipart file uploads for chat attachments.
type UploadsHandler struct {
	service *service.UploadService
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(uploadService *service.UploadService) *UploadsHandler {
	return &UploadsHandler{service: uploadService}
}

// Upload handles POST /upload. Expects a multipart form with a "file" part.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file part required", nil)
	}

	stored, err := h.service.Prepare(fileHeader.Filename, fileHeader.Size)
	if err != nil {
		return err
	}
	if err := c.SaveFile(fileHeader, stored.Path); err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{
		Name:      stored.Name,
		StoredAs:  stored.StoredAs,
		PublicURL: stored.PublicURL,
		Size:      stored.Size,
		Type:      fileHeader.Header.Get("Content-Type"),
	}})
}
