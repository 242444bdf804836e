package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles an AppUser row can carry. Exactly one owner exists per tenant,
// created at signup; the invite flow only ever assigns the non-owner roles.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleOperator   = "operator"
	RoleSupervisor = "supervisor"
	RoleAuditor    = "auditor"
	RoleViewer     = "viewer"
)

// InvitableRoles is the set of roles the invite flow accepts.
var InvitableRoles = map[string]bool{
	RoleAdmin:      true,
	RoleOperator:   true,
	RoleSupervisor: true,
	RoleAuditor:    true,
}

type AppUser struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	IdentityRef uuid.UUID  `json:"identity_ref" db:"identity_ref"`
	Email       string     `json:"email" db:"email"`
	UserName    string     `json:"user_name" db:"user_name"`
	Name        string     `json:"name" db:"name"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	Role        string     `json:"role" db:"role"`
	Active      bool       `json:"active" db:"active"`
	LastLogin   *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
