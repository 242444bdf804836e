package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Slug              string    `json:"slug" db:"slug"`
	TaxID             string    `json:"tax_id" db:"tax_id"`
	Email             string    `json:"email" db:"email"`
	Phone             string    `json:"phone" db:"phone"`
	Address           string    `json:"address" db:"address"`
	City              string    `json:"city" db:"city"`
	Plan              string    `json:"plan" db:"plan"`
	PlanLimitUsers    int       `json:"plan_limit_users" db:"plan_limit_users"`
	PlanLimitProjects int       `json:"plan_limit_projects" db:"plan_limit_projects"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
