package dto

import (
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

// TemplateRequest payload for create and update.
type TemplateRequest struct {
	Name   string                 `json:"name"`
	Fields []domain.TemplateField `json:"fields"`
}

// TemplateResponse returns a template with parsed fields.
type TemplateResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Fields    []domain.TemplateField `json:"fields"`
	CreatedBy string                 `json:"created_by"`
	Creator   *UserResponse          `json:"creator,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewTemplateResponse maps a domain template.
func NewTemplateResponse(template *domain.FormTemplate) TemplateResponse {
	resp := TemplateResponse{
		ID:        template.ID,
		Name:      template.Name,
		Fields:    template.Fields,
		CreatedBy: template.CreatedBy,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}
	if template.Creator != nil {
		creator := NewUserResponse(template.Creator)
		resp.Creator = &creator
	}
	return resp
}
