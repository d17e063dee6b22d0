package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iticket/helpdesk/internal/authz"
	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/repository"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// AuditService reads the append-only ticket audit trail.
type AuditService struct {
	audits      repository.AuditRepository
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
}

// NewAuditService constructs the service.
func NewAuditService(audits repository.AuditRepository, tickets repository.TicketRepository, assignments repository.AssignmentRepository) *AuditService {
	return &AuditService{audits: audits, tickets: tickets, assignments: assignments}
}

// ListForTicket returns a ticket's audit entries ordered by time, joined
// with actor identity. Readable by admins, the currently assigned helpdesk
// user, and the ticket's submitter.
func (s *AuditService) ListForTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketAudit, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	assignment, err := s.assignments.GetByTicket(ctx, ticketID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if !authz.CanOnTicket(actor, authz.ActionReadAudit, ticket, assignment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.audits.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
