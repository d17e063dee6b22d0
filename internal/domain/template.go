package domain

import (
	"fmt"
	"strings"
	"time"
)

// FieldType enumerates supported form field kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
)

// Valid reports whether the field type is one of the known values.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber,
		FieldTypeEmail, FieldTypeTel, FieldTypeDate, FieldTypeSelect:
		return true
	}
	return false
}

// TemplateField is one entry of a template's ordered field list.
// Options holds the comma-joined choice list for select fields.
type TemplateField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  string    `json:"options,omitempty"`
}

// FormTemplate is an admin-defined schema for ticket submissions.
type FormTemplate struct {
	ID        string
	Name      string
	Fields    []TemplateField
	CreatedBy string
	Creator   *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeOptions canonicalizes a select option string: split on comma,
// trim each entry, drop empties, rejoin with ", ". The result is stable
// under repeated application.
func NormalizeOptions(raw string) string {
	parts := strings.Split(raw, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return strings.Join(cleaned, ", ")
}

// ValidateFields checks a template's field list and normalizes select
// options in place. Returned map entries are keyed by field position for
// field-level error reporting.
func ValidateFields(fields []TemplateField) map[string]any {
	if len(fields) == 0 {
		return map[string]any{"fields": "at least one field required"}
	}
	details := map[string]any{}
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		field := &fields[i]
		key := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(field.ID) == "" {
			details[key] = "field id required"
			continue
		}
		if _, dup := seen[field.ID]; dup {
			details[key] = "duplicate field id"
			continue
		}
		seen[field.ID] = struct{}{}
		if strings.TrimSpace(field.Label) == "" {
			details[key] = "field label required"
			continue
		}
		if !field.Type.Valid() {
			details[key] = fmt.Sprintf("unknown field type %q", field.Type)
			continue
		}
		if field.Type == FieldTypeSelect {
			field.Options = NormalizeOptions(field.Options)
			if field.Options == "" {
				details[key] = "select field requires at least one option"
			}
		} else {
			field.Options = ""
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// OptionValues returns the parsed choice list of a select field.
func (f TemplateField) OptionValues() []string {
	if f.Type != FieldTypeSelect || f.Options == "" {
		return nil
	}
	parts := strings.Split(f.Options, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		values = append(values, strings.TrimSpace(part))
	}
	return values
}
