package domain

import "time"

// TicketStatus enumerates lifecycle states for submitted tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusReopened   TicketStatus = "reopened"
	TicketStatusRevoked    TicketStatus = "revoked"
)

// Valid reports whether the status is one of the known values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusClosed, TicketStatusReopened, TicketStatusRevoked:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed || s == TicketStatusRevoked
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityPending TicketPriority = "pending"
	TicketPriorityLow     TicketPriority = "low"
	TicketPriorityMedium  TicketPriority = "medium"
	TicketPriorityHigh    TicketPriority = "high"
	TicketPriorityUrgent  TicketPriority = "urgent"
)

// Valid reports whether the priority is one of the known values.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityPending, TicketPriorityLow, TicketPriorityMedium,
		TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is a form submission: a user's filled-out support request
// tied to a template.
type Ticket struct {
	ID          string
	TemplateID  string
	Template    *FormTemplate
	SubmitterID string
	Submitter   *User
	FormData    map[string]any
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// allowedTransitions maps each status to the states staff may move it to.
// Revocation is submitter-initiated and handled separately; it is allowed
// from any non-terminal state.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusInProgress: {TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusReopened},
	TicketStatusClosed:     {TicketStatusReopened},
	TicketStatusReopened:   {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusRevoked:    {},
}

// CanTransition reports whether staff may move a ticket between the two
// states. Closed tickets admit only reopening; revoked tickets admit nothing.
func CanTransition(current, next TicketStatus) bool {
	if current == next {
		return false
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
