package users

import (
	"slices"
	"time"
)

// Role names. Keep these stable; they are part of the JWT and voter contracts.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_USER_ADMIN"
)

// User is a tenant-scoped identity record.
//
// Multi-tenant invariant: ApplicationID is required; every lookup on behalf of
// another user must be scoped to the acting user's application.
// Deletion is soft: rows are flagged, never removed, and soft-deleted users
// must not authenticate.
type User struct {
	ID        int64  `json:"id" db:"id"`
	Email     string `json:"email,omitempty" db:"email"`
	FirstName string `json:"first_name,omitempty" db:"first_name"`
	LastName  string `json:"last_name,omitempty" db:"last_name"`
	Login     string `json:"login" db:"login"`

	Roles []string `json:"roles" db:"roles"`

	// PasswordHash embeds its salt (bcrypt). Never serialized.
	PasswordHash string `json:"-" db:"password_hash"`

	ApplicationID int64 `json:"application_id" db:"application_id"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	CreatedBy *int64     `json:"created_by,omitempty" db:"created_by"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeletedBy *int64     `json:"deleted_by,omitempty" db:"deleted_by"`
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
}

// HasRole reports exact role-set membership, never substring matching.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// NewUserInput carries the fields an admin supplies when creating a user.
type NewUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"login"`
	Password  string `json:"password"`
}

// UpdateUserInput carries the mutable profile fields.
type UpdateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
