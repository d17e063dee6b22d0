package domain

import "time"

// TicketAssignment binds at most one helpdesk user to a ticket.
type TicketAssignment struct {
	ID         string
	TicketID   string
	HelpdeskID string
	Helpdesk   *User
	AssignedBy string
	AssignedAt time.Time
}
