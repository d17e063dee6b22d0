package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iticket/helpdesk/internal/authz"
	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/events"
	"github.com/iticket/helpdesk/internal/repository"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// AssignmentService handles ticket assignment operations. Every mutation
// writes exactly one audit row in the same transaction as the assignment
// change.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	tickets     repository.TicketRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Get returns the ticket's current assignment with helpdesk identity joined,
// or nil when unassigned.
func (s *AssignmentService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.TicketAssignment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.currentAssignment(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnTicket(actor, authz.ActionViewTicket, ticket, assignment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return assignment, nil
}

// ListByHelpdesk returns a helpdesk user's assignments. Admins may query
// anyone; helpdesk users only themselves.
func (s *AssignmentService) ListByHelpdesk(ctx context.Context, actor *domain.User, helpdeskID string) ([]domain.TicketAssignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAdmin && actor.ID != helpdeskID {
		return nil, apperrors.NewForbidden("access denied")
	}
	assignments, err := s.assignments.ListByHelpdesk(ctx, helpdeskID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignments, nil
}

// Assign binds a helpdesk user to the ticket, replacing any existing
// binding (upsert keyed by ticket_id). Admins may assign any helpdesk user;
// helpdesk users may only claim the ticket for themselves.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.User, ticketID, helpdeskID string) (*domain.TicketAssignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	target, err := s.users.GetByID(ctx, helpdeskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": helpdeskID})
		}
		return nil, apperrors.MapError(err)
	}
	if target.Role != domain.RoleHelpdesk {
		return nil, apperrors.NewValidationError("assignee must hold the helpdesk role",
			map[string]any{"user_id": helpdeskID, "role": target.Role})
	}
	if !authz.CanAssign(actor, target) {
		return nil, apperrors.NewForbidden("not allowed to assign this user")
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewConflict("ticket is in a terminal state",
			map[string]any{"status": ticket.Status})
	}

	assignment := &domain.TicketAssignment{
		TicketID:   ticketID,
		HelpdeskID: helpdeskID,
		AssignedBy: actor.ID,
	}
	var previousHelpdesk *string
	err = s.assignments.AssignWithAudit(ctx, assignment, func(previous *domain.TicketAssignment) *domain.TicketAudit {
		action := domain.AuditTicketAssigned
		if previous != nil {
			action = domain.AuditTicketReassigned
			prev := previous.HelpdeskID
			previousHelpdesk = &prev
		}
		next := helpdeskID
		return &domain.TicketAudit{
			ActorID:       &actor.ID,
			Action:        action,
			TicketID:      ticketID,
			PreviousValue: previousHelpdesk,
			NewValue:      &next,
		}
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignment.Helpdesk = target

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		ActorID:  &actor.ID,
		Payload: events.TicketAssignedPayload{
			HelpdeskID:         helpdeskID,
			PreviousHelpdeskID: previousHelpdesk,
		},
	})
	return assignment, nil
}

// Unassign deletes the ticket's assignment. Admin, or the currently
// assigned helpdesk user only.
func (s *AssignmentService) Unassign(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return err
	}
	assignment, err := s.currentAssignment(ctx, ticketID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return apperrors.NewNotFound("assignment", map[string]any{"ticket_id": ticketID})
	}
	if !authz.CanUnassign(actor, assignment) {
		return apperrors.NewForbidden("access denied")
	}

	err = s.assignments.UnassignWithAudit(ctx, ticketID, func(removed *domain.TicketAssignment) *domain.TicketAudit {
		prev := removed.HelpdeskID
		return &domain.TicketAudit{
			ActorID:       &actor.ID,
			Action:        domain.AuditAssignmentRemoved,
			TicketID:      ticketID,
			PreviousValue: &prev,
		}
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("assignment", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AssignmentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) currentAssignment(ctx context.Context, ticketID string) (*domain.TicketAssignment, error) {
	assignment, err := s.assignments.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return assignment, nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
