package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser     Role = "user"
	RoleHelpdesk Role = "helpdesk"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleHelpdesk, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can authenticate against the service.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
