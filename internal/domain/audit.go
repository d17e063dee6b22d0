package domain

import "time"

// AuditAction captures what a ticket audit entry records.
type AuditAction string

const (
	AuditTicketAssigned    AuditAction = "ticket_assigned"
	AuditTicketReassigned  AuditAction = "ticket_reassigned"
	AuditAssignmentRemoved AuditAction = "assignment_removed"
	AuditStatusChange      AuditAction = "status_change"
)

// TicketAudit is an immutable record of a status or assignment change.
// Rows are append-only; they are never updated or deleted.
type TicketAudit struct {
	ID            string
	ActorID       *string
	Actor         *User
	Action        AuditAction
	TicketID      string
	PreviousValue *string
	NewValue      *string
	Details       map[string]any
	CreatedAt     time.Time
}
