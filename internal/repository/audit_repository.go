package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iticket/helpdesk/internal/domain"
)

// AuditRepository stores append-only ticket audit entries.
type AuditRepository interface {
	Create(ctx context.Context, audit *domain.TicketAudit) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAudit, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, audit *domain.TicketAudit) error {
	const query = `
        INSERT INTO ticket_audits (actor_id, action, ticket_id, previous_value, new_value, details)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		audit.ActorID,
		audit.Action,
		audit.TicketID,
		audit.PreviousValue,
		audit.NewValue,
		audit.Details,
	).Scan(&audit.ID, &audit.CreatedAt)
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAudit, error) {
	const query = `
        SELECT a.id, a.actor_id, a.action, a.ticket_id, a.previous_value, a.new_value, a.details, a.created_at,
               u.id, u.name, u.email, u.role
        FROM ticket_audits a
        LEFT JOIN users u ON u.id = a.actor_id
        WHERE a.ticket_id=$1 ORDER BY a.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAudit
	for rows.Next() {
		var audit domain.TicketAudit
		var actorID, actorName, actorEmail *string
		var actorRole *domain.Role
		if err := rows.Scan(
			&audit.ID,
			&audit.ActorID,
			&audit.Action,
			&audit.TicketID,
			&audit.PreviousValue,
			&audit.NewValue,
			&audit.Details,
			&audit.CreatedAt,
			&actorID,
			&actorName,
			&actorEmail,
			&actorRole,
		); err != nil {
			return nil, err
		}
		if actorID != nil {
			audit.Actor = &domain.User{ID: *actorID, Name: *actorName, Email: *actorEmail, Role: *actorRole}
		}
		result = append(result, audit)
	}
	return result, rows.Err()
}
