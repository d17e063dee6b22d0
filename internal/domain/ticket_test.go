package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to TicketStatus }{
		{TicketStatusOpen, TicketStatusInProgress},
		{TicketStatusOpen, TicketStatusResolved},
		{TicketStatusInProgress, TicketStatusResolved},
		{TicketStatusResolved, TicketStatusClosed},
		{TicketStatusResolved, TicketStatusReopened},
		{TicketStatusClosed, TicketStatusReopened},
		{TicketStatusReopened, TicketStatusInProgress},
		{TicketStatusReopened, TicketStatusResolved},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to TicketStatus }{
		{TicketStatusOpen, TicketStatusClosed},
		{TicketStatusOpen, TicketStatusReopened},
		{TicketStatusInProgress, TicketStatusOpen},
		{TicketStatusClosed, TicketStatusInProgress},
		{TicketStatusClosed, TicketStatusResolved},
		{TicketStatusRevoked, TicketStatusOpen},
		{TicketStatusRevoked, TicketStatusReopened},
		{TicketStatusResolved, TicketStatusInProgress},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}

	// self-transitions are never allowed
	for _, status := range []TicketStatus{
		TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusClosed, TicketStatusReopened, TicketStatusRevoked,
	} {
		if CanTransition(status, status) {
			t.Errorf("expected %s -> %s to be denied", status, status)
		}
	}
}

func TestTicketStatusTerminal(t *testing.T) {
	if !TicketStatusClosed.Terminal() || !TicketStatusRevoked.Terminal() {
		t.Error("closed and revoked should be terminal")
	}
	for _, status := range []TicketStatus{
		TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusReopened,
	} {
		if status.Terminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestTicketStatusValid(t *testing.T) {
	if TicketStatus("archived").Valid() {
		t.Error("unknown status should be invalid")
	}
	if !TicketStatusReopened.Valid() {
		t.Error("reopened should be valid")
	}
}

func TestTicketPriorityValid(t *testing.T) {
	if TicketPriority("critical").Valid() {
		t.Error("unknown priority should be invalid")
	}
	for _, p := range []TicketPriority{TicketPriorityPending, TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
}
