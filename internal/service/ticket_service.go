package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/iticket/helpdesk/internal/authz"
	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/events"
	"github.com/iticket/helpdesk/internal/repository"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// TicketService coordinates the submission lifecycle.
type TicketService struct {
	tickets     repository.TicketRepository
	templates   repository.TemplateRepository
	assignments repository.AssignmentRepository
	messages    repository.MessageRepository
	audits      repository.AuditRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	TemplateRepo   repository.TemplateRepository
	AssignmentRepo repository.AssignmentRepository
	MessageRepo    repository.MessageRepository
	AuditRepo      repository.AuditRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// TicketListFilter describes listing filters; role scoping is applied on top.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	TemplateID *string
	Limit      int
	Offset     int
}

// TicketUpdateInput carries the mutable submission attributes. Nil means
// leave unchanged.
type TicketUpdateInput struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	FormData map[string]any
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		templates:   deps.TemplateRepo,
		assignments: deps.AssignmentRepo,
		messages:    deps.MessageRepo,
		audits:      deps.AuditRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// Submit creates a ticket from a template-backed form. Any authenticated
// user may submit; the ticket opens with default priority.
func (s *TicketService) Submit(ctx context.Context, actor *domain.User, templateID string, formData map[string]any) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": templateID})
		}
		return nil, apperrors.MapError(err)
	}
	if details := validateFormData(template.Fields, formData); details != nil {
		return nil, apperrors.NewValidationError("form data does not satisfy template", details)
	}

	ticket := &domain.Ticket{
		TemplateID:  template.ID,
		SubmitterID: actor.ID,
		FormData:    formData,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketSubmitted,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketSubmittedPayload{
			TemplateID: ticket.TemplateID,
			Priority:   ticket.Priority,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the caller: admins see all, helpdesk see
// tickets assigned to them, users see their own submissions.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		TemplateID: filter.TemplateID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleHelpdesk:
		repoFilter.AssignedHelpdeskID = &actor.ID
	default:
		repoFilter.SubmitterID = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches one ticket, enforcing view access.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, assignment, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnTicket(actor, authz.ActionViewTicket, ticket, assignment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// Update mutates status, priority and/or form data. Only an admin or the
// assigned helpdesk may update. A transition to resolved posts an automatic
// system message to the submitter's thread.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, assignment, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnTicket(actor, authz.ActionUpdateTicket, ticket, assignment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	// Closed tickets admit exactly one mutation: reopening. Revoked admits none.
	if ticket.Status == domain.TicketStatusRevoked {
		return nil, apperrors.NewConflict("ticket is in a terminal state",
			map[string]any{"status": ticket.Status})
	}
	if ticket.Status == domain.TicketStatusClosed &&
		(input.Status == nil || *input.Status != domain.TicketStatusReopened) {
		return nil, apperrors.NewConflict("closed tickets may only be reopened",
			map[string]any{"status": ticket.Status})
	}

	oldStatus := ticket.Status
	statusChanged := false
	if input.Status != nil && *input.Status != ticket.Status {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		if *input.Status == domain.TicketStatusRevoked {
			return nil, apperrors.NewForbidden("revocation is submitter-initiated")
		}
		if !domain.CanTransition(ticket.Status, *input.Status) {
			return nil, apperrors.NewValidationError("invalid status transition",
				map[string]any{"from": ticket.Status, "to": *input.Status})
		}
		ticket.Status = *input.Status
		statusChanged = true
	}
	if input.Priority != nil && *input.Priority != ticket.Priority {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.FormData != nil {
		ticket.FormData = input.FormData
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if statusChanged {
		if err := s.recordStatusChange(ctx, actor, ticket, oldStatus); err != nil {
			return nil, apperrors.MapError(err)
		}
		if ticket.Status == domain.TicketStatusResolved {
			s.sendResolutionNotice(ctx, ticket)
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  &actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// Revoke cancels a ticket. Submitter only; terminal, and blocks further
// messaging on the thread.
func (s *TicketService) Revoke(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, assignment, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnTicket(actor, authz.ActionRevokeTicket, ticket, assignment) {
		return nil, apperrors.NewForbidden("only the submitter may revoke a ticket")
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewConflict("ticket is in a terminal state",
			map[string]any{"status": ticket.Status})
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusRevoked
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, actor, ticket, oldStatus); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketRevoked,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// Stats returns ticket counts grouped by status. Staff only.
func (s *TicketService) Stats(ctx context.Context, actor *domain.User) (map[domain.TicketStatus]int64, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleHelpdesk {
		return nil, apperrors.NewForbidden("staff role required")
	}
	stats, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, *domain.TicketAssignment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	assignment, err := s.assignments.GetByTicket(ctx, ticketID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, assignment, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actor *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus) error {
	prev := string(oldStatus)
	next := string(ticket.Status)
	return s.audits.Create(ctx, &domain.TicketAudit{
		ActorID:       &actor.ID,
		Action:        domain.AuditStatusChange,
		TicketID:      ticket.ID,
		PreviousValue: &prev,
		NewValue:      &next,
	})
}

// sendResolutionNotice posts the automatic system message to the submitter.
// Failure here is logged, not surfaced: the status change already committed.
func (s *TicketService) sendResolutionNotice(ctx context.Context, ticket *domain.Ticket) {
	msg := &domain.Message{
		ReceiverID: &ticket.SubmitterID,
		TicketID:   &ticket.ID,
		Content:    "Your ticket has been marked as resolved. Reply here if the issue persists.",
	}
	if err := s.messages.Create(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("failed to post resolution notice",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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

func validateFormData(fields []domain.TemplateField, formData map[string]any) map[string]any {
	details := map[string]any{}
	for _, field := range fields {
		value, present := formData[field.ID]
		if !present || value == nil || value == "" {
			if field.Required {
				details[field.ID] = "required field missing"
			}
			continue
		}
		if field.Type == domain.FieldTypeSelect {
			str, ok := value.(string)
			if !ok {
				details[field.ID] = "expected a string value"
				continue
			}
			if !containsOption(field.OptionValues(), str) {
				details[field.ID] = fmt.Sprintf("value %q is not one of the field options", str)
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
