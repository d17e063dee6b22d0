package service

import (
	"context"
	"testing"

	"github.com/iticket/helpdesk/internal/domain"
)

func TestAuditTrailAccess(t *testing.T) {
	env := newTicketTestEnv(t)
	svc := NewAuditService(env.audits, env.tickets, env.assignments)
	ctx := context.Background()

	ticket := env.submit(t)
	env.assignHelpdesk(t, ticket.ID)

	prev := string(domain.TicketStatusOpen)
	next := string(domain.TicketStatusInProgress)
	if err := env.audits.Create(ctx, &domain.TicketAudit{
		ActorID:       &env.helpdesk.ID,
		Action:        domain.AuditStatusChange,
		TicketID:      ticket.ID,
		PreviousValue: &prev,
		NewValue:      &next,
	}); err != nil {
		t.Fatal(err)
	}

	for _, caller := range []*domain.User{env.admin, env.helpdesk, env.submitter} {
		entries, err := svc.ListForTicket(ctx, caller, ticket.ID)
		if err != nil {
			t.Fatalf("%s: %v", caller.Role, err)
		}
		if len(entries) != 1 {
			t.Fatalf("%s sees %d entries, want 1", caller.Role, len(entries))
		}
	}

	stranger := &domain.User{Name: "Stranger", Email: "stranger@test", Role: domain.RoleUser}
	if err := env.users.Create(ctx, stranger); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListForTicket(ctx, stranger, ticket.ID); err == nil || statusCode(t, err) != 403 {
		t.Fatalf("expected 403 for stranger, got %v", err)
	}

	if _, err := svc.ListForTicket(ctx, env.admin, "missing-ticket"); err == nil || statusCode(t, err) != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}
