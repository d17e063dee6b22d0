package events

import (
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted     EventType = "ticket_submitted"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketRevoked       EventType = "ticket_revoked"
	EventMessageSent         EventType = "message_sent"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	TemplateID string                `json:"template_id"`
	Priority   domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	HelpdeskID         string  `json:"helpdesk_id"`
	PreviousHelpdeskID *string `json:"previous_helpdesk_id,omitempty"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID  string  `json:"message_id"`
	ReceiverID *string `json:"receiver_id,omitempty"`
	HasFile    bool    `json:"has_file"`
}
