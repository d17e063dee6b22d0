package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iticket/helpdesk/internal/authz"
	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/events"
	"github.com/iticket/helpdesk/internal/repository"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// ChatService manages ticket threads and direct messages.
type ChatService struct {
	messages    repository.MessageRepository
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
}

// ChatDependencies bundles repositories.
type ChatDependencies struct {
	MessageRepo    repository.MessageRepository
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// SendMessageInput carries a new message. TicketID scopes the message to a
// ticket thread; otherwise ReceiverID addresses a direct message.
type SendMessageInput struct {
	Content    string
	ReceiverID *string
	TicketID   *string
	Attachment *domain.Attachment
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		messages:    deps.MessageRepo,
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// ListTicketThread returns a ticket's messages ordered by creation time.
// Admins may read any thread, helpdesk only threads for tickets assigned to
// them, users only threads for tickets they submitted.
func (s *ChatService) ListTicketThread(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Message, error) {
	ticket, assignment, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnTicket(actor, authz.ActionReadThread, ticket, assignment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// ListDirect returns the direct conversation between the caller and peer.
// The query anchors one end at the caller, so the two-participant scope is
// enforced by construction.
func (s *ChatService) ListDirect(ctx context.Context, actor *domain.User, peerID string) ([]domain.Message, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if peerID == "" || peerID == actor.ID {
		return nil, apperrors.NewValidationError("peer user id required", nil)
	}
	msgs, err := s.messages.ListDirect(ctx, actor.ID, peerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// Send appends a message. Content may be empty only when an attachment is
// present. Sends against revoked tickets are rejected.
func (s *ChatService) Send(ctx context.Context, actor *domain.User, input SendMessageInput) (*domain.Message, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" && input.Attachment == nil {
		return nil, apperrors.NewValidationError("message content or attachment required", nil)
	}

	if input.TicketID != nil {
		ticket, assignment, err := s.loadTicket(ctx, *input.TicketID)
		if err != nil {
			return nil, err
		}
		if !authz.CanOnTicket(actor, authz.ActionSendMessage, ticket, assignment) {
			return nil, apperrors.NewForbidden("access denied")
		}
		if ticket.Status == domain.TicketStatusRevoked {
			return nil, apperrors.NewConflict("ticket has been revoked; messaging is closed",
				map[string]any{"ticket_id": ticket.ID})
		}
	} else {
		if input.ReceiverID == nil || *input.ReceiverID == "" {
			return nil, apperrors.NewValidationError("receiver required for direct messages", nil)
		}
		if *input.ReceiverID == actor.ID {
			return nil, apperrors.NewValidationError("cannot message yourself", nil)
		}
	}

	msg := &domain.Message{
		SenderID:   &actor.ID,
		ReceiverID: input.ReceiverID,
		TicketID:   input.TicketID,
		Content:    content,
		Attachment: input.Attachment,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMessageSent,
			ActorID:   &actor.ID,
			Timestamp: time.Now(),
			Payload: events.MessageSentPayload{
				MessageID:  msg.ID,
				ReceiverID: msg.ReceiverID,
				HasFile:    msg.Attachment != nil,
			},
		}
		if msg.TicketID != nil {
			event.TicketID = *msg.TicketID
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
	return msg, nil
}

// MarkRead flags inbound messages in a thread as read for the caller.
func (s *ChatService) MarkRead(ctx context.Context, actor *domain.User, ticketID, peerID *string) (int64, error) {
	if actor == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	if ticketID != nil {
		ticket, assignment, err := s.loadTicket(ctx, *ticketID)
		if err != nil {
			return 0, err
		}
		if !authz.CanOnTicket(actor, authz.ActionReadThread, ticket, assignment) {
			return 0, apperrors.NewForbidden("access denied")
		}
	} else if peerID == nil || *peerID == "" {
		return 0, apperrors.NewValidationError("ticket id or peer user id required", nil)
	}
	count, err := s.messages.MarkRead(ctx, actor.ID, ticketID, peerID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

func (s *ChatService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, *domain.TicketAssignment, error) {
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
