// Package authz holds the single capability policy consumed by every
// service. Role checks live here rather than being repeated per handler.
package authz

import "github.com/iticket/helpdesk/internal/domain"

// Action enumerates ticket-scoped capabilities.
type Action string

const (
	ActionViewTicket   Action = "ticket.view"
	ActionUpdateTicket Action = "ticket.update"
	ActionRevokeTicket Action = "ticket.revoke"
	ActionReadThread   Action = "thread.read"
	ActionSendMessage  Action = "message.send"
	ActionReadAudit    Action = "audit.read"
)

// CanOnTicket decides whether the caller may perform an action on a ticket.
// assignment is the ticket's current assignment, or nil when unassigned.
func CanOnTicket(caller *domain.User, action Action, ticket *domain.Ticket, assignment *domain.TicketAssignment) bool {
	if caller == nil || ticket == nil {
		return false
	}

	isAdmin := caller.Role == domain.RoleAdmin
	isSubmitter := caller.ID == ticket.SubmitterID
	isAssignedHelpdesk := caller.Role == domain.RoleHelpdesk &&
		assignment != nil && assignment.HelpdeskID == caller.ID

	switch action {
	case ActionViewTicket, ActionReadThread, ActionSendMessage, ActionReadAudit:
		return isAdmin || isAssignedHelpdesk || isSubmitter
	case ActionUpdateTicket:
		return isAdmin || isAssignedHelpdesk
	case ActionRevokeTicket:
		return isSubmitter
	}
	return false
}

// CanAssign decides whether the caller may assign a ticket to the target
// user. Admins may assign any helpdesk user; helpdesk users may only claim
// tickets for themselves.
func CanAssign(caller, target *domain.User) bool {
	if caller == nil || target == nil || target.Role != domain.RoleHelpdesk {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleHelpdesk:
		return caller.ID == target.ID
	}
	return false
}

// CanUnassign decides whether the caller may remove a ticket's assignment.
func CanUnassign(caller *domain.User, assignment *domain.TicketAssignment) bool {
	if caller == nil || assignment == nil {
		return false
	}
	if caller.Role == domain.RoleAdmin {
		return true
	}
	return caller.Role == domain.RoleHelpdesk && assignment.HelpdeskID == caller.ID
}
