package dto

import (
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

// AssignRequest payload.
type AssignRequest struct {
	TicketID   string `json:"ticket_id"`
	HelpdeskID string `json:"helpdesk_id"`
}

// AssignmentResponse returns an assignment with the helpdesk identity.
type AssignmentResponse struct {
	ID         string        `json:"id"`
	TicketID   string        `json:"ticket_id"`
	HelpdeskID string        `json:"helpdesk_id"`
	Helpdesk   *UserResponse `json:"helpdesk,omitempty"`
	AssignedBy string        `json:"assigned_by"`
	AssignedAt time.Time     `json:"assigned_at"`
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(assignment *domain.TicketAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         assignment.ID,
		TicketID:   assignment.TicketID,
		HelpdeskID: assignment.HelpdeskID,
		AssignedBy: assignment.AssignedBy,
		AssignedAt: assignment.AssignedAt,
	}
	if assignment.Helpdesk != nil {
		helpdesk := NewUserResponse(assignment.Helpdesk)
		resp.Helpdesk = &helpdesk
	}
	return resp
}
