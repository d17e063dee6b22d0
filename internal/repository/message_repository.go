package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iticket/helpdesk/internal/domain"
)

// MessageRepository manages chat messages. Rows are append-only except for
// the read flag.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	ListDirect(ctx context.Context, userID, peerID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, readerID string, ticketID, peerID *string) (int64, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO chat_messages (sender_id, receiver_id, ticket_id, content, attachment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, read_flag, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		msg.TicketID,
		msg.Content,
		msg.Attachment,
	).Scan(&msg.ID, &msg.Read, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.sender_id, m.receiver_id, m.ticket_id, m.content, m.attachment, m.read_flag, m.created_at,
               u.id, u.name, u.email, u.role
        FROM chat_messages m
        LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.ticket_id=$1 ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListDirect returns the non-ticket conversation between two users. The
// caller is always one endpoint, so participant scoping is enforced by
// construction.
func (r *messageRepository) ListDirect(ctx context.Context, userID, peerID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.sender_id, m.receiver_id, m.ticket_id, m.content, m.attachment, m.read_flag, m.created_at,
               u.id, u.name, u.email, u.role
        FROM chat_messages m
        LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.ticket_id IS NULL
          AND ((m.sender_id=$1 AND m.receiver_id=$2) OR (m.sender_id=$2 AND m.receiver_id=$1))
        ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// MarkRead flags messages addressed to the reader as read, scoped to a
// ticket thread or to a direct peer.
func (r *messageRepository) MarkRead(ctx context.Context, readerID string, ticketID, peerID *string) (int64, error) {
	switch {
	case ticketID != nil:
		cmd, err := r.pool.Exec(ctx, `
            UPDATE chat_messages SET read_flag=TRUE
            WHERE ticket_id=$1 AND read_flag=FALSE
              AND (sender_id IS NULL OR sender_id<>$2)`,
			*ticketID, readerID)
		if err != nil {
			return 0, err
		}
		return cmd.RowsAffected(), nil
	case peerID != nil:
		cmd, err := r.pool.Exec(ctx, `
            UPDATE chat_messages SET read_flag=TRUE
            WHERE ticket_id IS NULL AND read_flag=FALSE
              AND sender_id=$1 AND receiver_id=$2`,
			*peerID, readerID)
		if err != nil {
			return 0, err
		}
		return cmd.RowsAffected(), nil
	}
	return 0, nil
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		var senderID, senderName, senderEmail *string
		var senderRole *domain.Role
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.TicketID,
			&msg.Content,
			&msg.Attachment,
			&msg.Read,
			&msg.CreatedAt,
			&senderID,
			&senderName,
			&senderEmail,
			&senderRole,
		); err != nil {
			return nil, err
		}
		if senderID != nil {
			msg.Sender = &domain.User{ID: *senderID, Name: *senderName, Email: *senderEmail, Role: *senderRole}
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
