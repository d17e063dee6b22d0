package service

import (
	"context"
	"testing"

	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/events"
)

type assignmentTestEnv struct {
	*ticketTestEnv
	service       *AssignmentService
	otherHelpdesk *domain.User
}

func newAssignmentTestEnv(t *testing.T) *assignmentTestEnv {
	t.Helper()
	base := newTicketTestEnv(t)
	env := &assignmentTestEnv{ticketTestEnv: base}
	env.service = NewAssignmentService(AssignmentDependencies{
		AssignmentRepo: base.assignments,
		TicketRepo:     base.tickets,
		UserRepo:       base.users,
		Dispatcher:     base.dispatcher,
	})
	env.otherHelpdesk = &domain.User{Name: "Agent Two", Email: "agent2@test", Role: domain.RoleHelpdesk}
	if err := base.users.Create(context.Background(), env.otherHelpdesk); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestAssignWritesSingleAuditRow(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)

	assignment, err := env.service.Assign(ctx, env.admin, ticket.ID, env.helpdesk.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assignment.HelpdeskID != env.helpdesk.ID {
		t.Errorf("helpdesk = %s", assignment.HelpdeskID)
	}

	audits := env.audits.byTicket(ticket.ID)
	if len(audits) != 1 {
		t.Fatalf("expected exactly 1 audit row, got %d", len(audits))
	}
	entry := audits[0]
	if entry.Action != domain.AuditTicketAssigned {
		t.Errorf("action = %s, want ticket_assigned", entry.Action)
	}
	if entry.PreviousValue != nil {
		t.Errorf("previous = %v, want nil for first assignment", entry.PreviousValue)
	}
	if entry.NewValue == nil || *entry.NewValue != env.helpdesk.ID {
		t.Errorf("new = %v, want %s", entry.NewValue, env.helpdesk.ID)
	}
}

func TestReassignUpsertsAndAudits(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)

	if _, err := env.service.Assign(ctx, env.admin, ticket.ID, env.helpdesk.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.service.Assign(ctx, env.admin, ticket.ID, env.otherHelpdesk.ID); err != nil {
		t.Fatal(err)
	}

	// at most one assignment row per ticket
	current, err := env.assignments.GetByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if current.HelpdeskID != env.otherHelpdesk.ID {
		t.Errorf("current helpdesk = %s, want %s", current.HelpdeskID, env.otherHelpdesk.ID)
	}
	if len(env.assignments.assignments) != 1 {
		t.Fatalf("expected 1 assignment row, got %d", len(env.assignments.assignments))
	}

	audits := env.audits.byTicket(ticket.ID)
	if len(audits) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audits))
	}
	reassign := audits[1]
	if reassign.Action != domain.AuditTicketReassigned {
		t.Errorf("action = %s, want ticket_reassigned", reassign.Action)
	}
	if reassign.PreviousValue == nil || *reassign.PreviousValue != env.helpdesk.ID {
		t.Errorf("previous = %v, want %s", reassign.PreviousValue, env.helpdesk.ID)
	}
	if reassign.NewValue == nil || *reassign.NewValue != env.otherHelpdesk.ID {
		t.Errorf("new = %v, want %s", reassign.NewValue, env.otherHelpdesk.ID)
	}

	assignedEvents := env.dispatcher.byType(events.EventTicketAssigned)
	if len(assignedEvents) != 2 {
		t.Errorf("expected 2 assigned events, got %d", len(assignedEvents))
	}
}

func TestAssignAuthorization(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)

	// helpdesk may claim a ticket for themselves
	if _, err := env.service.Assign(ctx, env.helpdesk, ticket.ID, env.helpdesk.ID); err != nil {
		t.Fatalf("self-claim: %v", err)
	}

	// but not hand it to a colleague
	_, err := env.service.Assign(ctx, env.helpdesk, ticket.ID, env.otherHelpdesk.ID)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403, got %v", err)
	}

	// end users never assign
	_, err = env.service.Assign(ctx, env.submitter, ticket.ID, env.helpdesk.ID)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403, got %v", err)
	}

	// target must hold the helpdesk role
	_, err = env.service.Assign(ctx, env.admin, ticket.ID, env.submitter.ID)
	if err == nil || statusCode(t, err) != 400 {
		t.Fatalf("expected 400, got %v", err)
	}

	// unknown target
	_, err = env.service.Assign(ctx, env.admin, ticket.ID, "missing-user")
	if err == nil || statusCode(t, err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestAssignTerminalTicketRejected(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)
	ticket.Status = domain.TicketStatusRevoked
	if err := env.tickets.Update(ctx, ticket); err != nil {
		t.Fatal(err)
	}

	_, err := env.service.Assign(ctx, env.admin, ticket.ID, env.helpdesk.ID)
	if err == nil || statusCode(t, err) != 409 {
		t.Fatalf("expected 409 assigning a revoked ticket, got %v", err)
	}
}

func TestUnassign(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)

	// nothing assigned yet
	err := env.service.Unassign(ctx, env.admin, ticket.ID)
	if err == nil || statusCode(t, err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}

	if _, err := env.service.Assign(ctx, env.admin, ticket.ID, env.helpdesk.ID); err != nil {
		t.Fatal(err)
	}

	// only admin or the assigned helpdesk user may remove
	err = env.service.Unassign(ctx, env.otherHelpdesk, ticket.ID)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403, got %v", err)
	}

	if err := env.service.Unassign(ctx, env.helpdesk, ticket.ID); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	if _, err := env.service.Get(ctx, env.admin, ticket.ID); err != nil {
		t.Fatalf("Get after unassign: %v", err)
	}

	audits := env.audits.byTicket(ticket.ID)
	if len(audits) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audits))
	}
	removed := audits[1]
	if removed.Action != domain.AuditAssignmentRemoved {
		t.Errorf("action = %s, want assignment_removed", removed.Action)
	}
	if removed.PreviousValue == nil || *removed.PreviousValue != env.helpdesk.ID {
		t.Errorf("previous = %v, want %s", removed.PreviousValue, env.helpdesk.ID)
	}
}

func TestListByHelpdeskScope(t *testing.T) {
	env := newAssignmentTestEnv(t)
	ctx := context.Background()
	ticket := env.submit(t)
	if _, err := env.service.Assign(ctx, env.admin, ticket.ID, env.helpdesk.ID); err != nil {
		t.Fatal(err)
	}

	own, err := env.service.ListByHelpdesk(ctx, env.helpdesk, env.helpdesk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 {
		t.Errorf("expected 1 assignment, got %d", len(own))
	}

	_, err = env.service.ListByHelpdesk(ctx, env.otherHelpdesk, env.helpdesk.ID)
	if err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403 for peer lookup, got %v", err)
	}

	if _, err := env.service.ListByHelpdesk(ctx, env.admin, env.helpdesk.ID); err != nil {
		t.Fatalf("admin lookup: %v", err)
	}
}
