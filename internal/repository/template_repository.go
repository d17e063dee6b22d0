package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iticket/helpdesk/internal/domain"
)

// TemplateRepository encapsulates form template persistence. Field lists are
// stored as JSONB and (de)serialized here, never surfaced as raw strings.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.FormTemplate) error
	Update(ctx context.Context, template *domain.FormTemplate) error
	GetByID(ctx context.Context, id string) (*domain.FormTemplate, error)
	List(ctx context.Context) ([]domain.FormTemplate, error)
	Delete(ctx context.Context, id string) error
	CountSubmissions(ctx context.Context, templateID string) (int64, error)
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository instantiates the repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) Create(ctx context.Context, template *domain.FormTemplate) error {
	const query = `
        INSERT INTO form_templates (name, fields, created_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		template.Name,
		template.Fields,
		template.CreatedBy,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
}

func (r *templateRepository) Update(ctx context.Context, template *domain.FormTemplate) error {
	const query = `
        UPDATE form_templates SET name=$1, fields=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, template.Name, template.Fields, template.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.FormTemplate, error) {
	const query = `
        SELECT t.id, t.name, t.fields, t.created_by, t.created_at, t.updated_at,
               u.id, u.name, u.email, u.role
        FROM form_templates t
        JOIN users u ON u.id = t.created_by
        WHERE t.id=$1`

	var template domain.FormTemplate
	var creator domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.Fields,
		&template.CreatedBy,
		&template.CreatedAt,
		&template.UpdatedAt,
		&creator.ID,
		&creator.Name,
		&creator.Email,
		&creator.Role,
	); err != nil {
		return nil, err
	}
	template.Creator = &creator
	return &template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]domain.FormTemplate, error) {
	const query = `
        SELECT id, name, fields, created_by, created_at, updated_at
        FROM form_templates ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FormTemplate
	for rows.Next() {
		var template domain.FormTemplate
		if err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.Fields,
			&template.CreatedBy,
			&template.CreatedAt,
			&template.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, template)
	}
	return result, rows.Err()
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM form_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *templateRepository) CountSubmissions(ctx context.Context, templateID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM form_submissions WHERE form_template_id=$1`, templateID,
	).Scan(&count)
	return count, err
}
