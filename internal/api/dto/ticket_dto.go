package dto

import (
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	TemplateID string         `json:"form_template_id"`
	FormData   map[string]any `json:"form_data"`
}

// UpdateTicketRequest payload; nil fields are left unchanged.
type UpdateTicketRequest struct {
	Status   *domain.TicketStatus   `json:"status"`
	Priority *domain.TicketPriority `json:"priority"`
	FormData map[string]any         `json:"form_data"`
}

// TicketResponse returns a submission.
type TicketResponse struct {
	ID          string                `json:"id"`
	TemplateID  string                `json:"form_template_id"`
	Submitter   *UserResponse         `json:"submitter,omitempty"`
	SubmittedBy string                `json:"submitted_by"`
	FormData    map[string]any        `json:"form_data"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID,
		TemplateID:  ticket.TemplateID,
		SubmittedBy: ticket.SubmitterID,
		FormData:    ticket.FormData,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	if ticket.Submitter != nil {
		submitter := NewUserResponse(ticket.Submitter)
		resp.Submitter = &submitter
	}
	return resp
}

// AuditResponse returns one audit trail entry.
type AuditResponse struct {
	ID            string             `json:"id"`
	Action        domain.AuditAction `json:"action"`
	Actor         *UserResponse      `json:"actor,omitempty"`
	PreviousValue *string            `json:"previous_value,omitempty"`
	NewValue      *string            `json:"new_value,omitempty"`
	Details       map[string]any     `json:"details,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewAuditResponse maps a domain audit entry.
func NewAuditResponse(entry *domain.TicketAudit) AuditResponse {
	resp := AuditResponse{
		ID:            entry.ID,
		Action:        entry.Action,
		PreviousValue: entry.PreviousValue,
		NewValue:      entry.NewValue,
		Details:       entry.Details,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.Actor != nil {
		actor := NewUserResponse(entry.Actor)
		resp.Actor = &actor
	}
	return resp
}
