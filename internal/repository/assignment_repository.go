package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iticket/helpdesk/internal/domain"
)

// AuditBuilder derives the audit row for an assignment mutation from the
// previously assigned row (nil when the ticket was unassigned). It runs
// inside the same transaction as the mutation, so the assignment and its
// audit entry commit or roll back together.
type AuditBuilder func(previous *domain.TicketAssignment) *domain.TicketAudit

// AssignmentRepository manages the one-row-per-ticket assignment binding.
type AssignmentRepository interface {
	GetByTicket(ctx context.Context, ticketID string) (*domain.TicketAssignment, error)
	ListByHelpdesk(ctx context.Context, helpdeskID string) ([]domain.TicketAssignment, error)
	AssignWithAudit(ctx context.Context, assignment *domain.TicketAssignment, buildAudit AuditBuilder) error
	UnassignWithAudit(ctx context.Context, ticketID string, buildAudit AuditBuilder) error
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.TicketAssignment, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.helpdesk_id, a.assigned_by, a.assigned_at,
               u.id, u.name, u.email, u.role
        FROM ticket_assignments a
        JOIN users u ON u.id = a.helpdesk_id
        WHERE a.ticket_id=$1`

	var assignment domain.TicketAssignment
	var helpdesk domain.User
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.HelpdeskID,
		&assignment.AssignedBy,
		&assignment.AssignedAt,
		&helpdesk.ID,
		&helpdesk.Name,
		&helpdesk.Email,
		&helpdesk.Role,
	); err != nil {
		return nil, err
	}
	assignment.Helpdesk = &helpdesk
	return &assignment, nil
}

func (r *assignmentRepository) ListByHelpdesk(ctx context.Context, helpdeskID string) ([]domain.TicketAssignment, error) {
	const query = `
        SELECT id, ticket_id, helpdesk_id, assigned_by, assigned_at
        FROM ticket_assignments WHERE helpdesk_id=$1 ORDER BY assigned_at DESC`
	rows, err := r.pool.Query(ctx, query, helpdeskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAssignment
	for rows.Next() {
		var assignment domain.TicketAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TicketID,
			&assignment.HelpdeskID,
			&assignment.AssignedBy,
			&assignment.AssignedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

// AssignWithAudit upserts the assignment keyed by ticket_id and inserts the
// audit row built from the previous assignment in a single transaction. The
// parent ticket row is locked first: two concurrent first-assigns would
// otherwise both read previous=nil (no assignment row exists yet to lock)
// and both audit a fresh assignment instead of a reassignment.
func (r *assignmentRepository) AssignWithAudit(ctx context.Context, assignment *domain.TicketAssignment, buildAudit AuditBuilder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := lockTicket(ctx, tx, assignment.TicketID); err != nil {
		return err
	}
	previous, err := lockAssignment(ctx, tx, assignment.TicketID)
	if err != nil {
		return err
	}

	const upsert = `
        INSERT INTO ticket_assignments (ticket_id, helpdesk_id, assigned_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id) DO UPDATE
        SET helpdesk_id=EXCLUDED.helpdesk_id, assigned_by=EXCLUDED.assigned_by, assigned_at=NOW()
        RETURNING id, assigned_at`
	if err := tx.QueryRow(ctx, upsert,
		assignment.TicketID,
		assignment.HelpdeskID,
		assignment.AssignedBy,
	).Scan(&assignment.ID, &assignment.AssignedAt); err != nil {
		return err
	}

	if buildAudit != nil {
		if audit := buildAudit(previous); audit != nil {
			if err := insertAudit(ctx, tx, audit); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// UnassignWithAudit deletes the assignment and inserts the audit row in one
// transaction. Returns pgx.ErrNoRows when the ticket has no assignment.
func (r *assignmentRepository) UnassignWithAudit(ctx context.Context, ticketID string, buildAudit AuditBuilder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := lockTicket(ctx, tx, ticketID); err != nil {
		return err
	}
	previous, err := lockAssignment(ctx, tx, ticketID)
	if err != nil {
		return err
	}
	if previous == nil {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ticket_assignments WHERE ticket_id=$1`, ticketID); err != nil {
		return err
	}

	if buildAudit != nil {
		if audit := buildAudit(previous); audit != nil {
			if err := insertAudit(ctx, tx, audit); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// lockTicket serializes assignment mutations per ticket by taking a row lock
// on the parent submission.
func lockTicket(ctx context.Context, tx pgx.Tx, ticketID string) error {
	var id string
	return tx.QueryRow(ctx,
		`SELECT id FROM form_submissions WHERE id=$1 FOR UPDATE`, ticketID,
	).Scan(&id)
}

func lockAssignment(ctx context.Context, tx pgx.Tx, ticketID string) (*domain.TicketAssignment, error) {
	const query = `
        SELECT id, ticket_id, helpdesk_id, assigned_by, assigned_at
        FROM ticket_assignments WHERE ticket_id=$1 FOR UPDATE`
	var assignment domain.TicketAssignment
	err := tx.QueryRow(ctx, query, ticketID).Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.HelpdeskID,
		&assignment.AssignedBy,
		&assignment.AssignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func insertAudit(ctx context.Context, tx pgx.Tx, audit *domain.TicketAudit) error {
	const query = `
        INSERT INTO ticket_audits (actor_id, action, ticket_id, previous_value, new_value, details)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		audit.ActorID,
		audit.Action,
		audit.TicketID,
		audit.PreviousValue,
		audit.NewValue,
		audit.Details,
	).Scan(&audit.ID, &audit.CreatedAt)
}
