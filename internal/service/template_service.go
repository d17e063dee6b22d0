package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/repository"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// TemplateService manages admin-defined ticket form templates.
type TemplateService struct {
	templates repository.TemplateRepository
}

// NewTemplateService constructs the service.
func NewTemplateService(templates repository.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// List returns all templates with parsed field lists.
func (s *TemplateService) List(ctx context.Context) ([]domain.FormTemplate, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return templates, nil
}

// Get returns one template with creator info.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.FormTemplate, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Create validates and persists a new template. Admin only. Select field
// options are normalized before storage so every read returns the canonical
// form.
func (s *TemplateService) Create(ctx context.Context, actor *domain.User, name string, fields []domain.TemplateField) (*domain.FormTemplate, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("template name required", nil)
	}
	if details := domain.ValidateFields(fields); details != nil {
		return nil, apperrors.NewValidationError("invalid field list", details)
	}

	template := &domain.FormTemplate{
		Name:      name,
		Fields:    fields,
		CreatedBy: actor.ID,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Update re-validates and overwrites an existing template. Admin only.
func (s *TemplateService) Update(ctx context.Context, actor *domain.User, id, name string, fields []domain.TemplateField) (*domain.FormTemplate, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("template name required", nil)
	}
	if details := domain.ValidateFields(fields); details != nil {
		return nil, apperrors.NewValidationError("invalid field list", details)
	}

	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	template.Name = name
	template.Fields = fields
	if err := s.templates.Update(ctx, template); err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Delete removes a template. Refused while any submission references it;
// the guard runs in application code ahead of the FK constraint.
func (s *TemplateService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	count, err := s.templates.CountSubmissions(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("template has submissions and cannot be deleted",
			map[string]any{"template_id": id, "submission_count": count})
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("template", map[string]any{"template_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
