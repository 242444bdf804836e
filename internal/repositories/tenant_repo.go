package repositories

import (
	"context"

	"companyhub/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, tax_id, email, phone, address, city, plan, plan_limit_users, plan_limit_projects, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Slug, tenant.TaxID, tenant.Email, tenant.Phone,
		tenant.Address, tenant.City, tenant.Plan, tenant.PlanLimitUsers, tenant.PlanLimitProjects, tenant.IsActive)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, slug, tax_id, email, phone, address, city, plan, plan_limit_users, plan_limit_projects, is_active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.TaxID, &tenant.Email, &tenant.Phone,
		&tenant.Address, &tenant.City, &tenant.Plan, &tenant.PlanLimitUsers, &tenant.PlanLimitProjects,
		&tenant.IsActive, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM tenants WHERE slug = $1`
	if err := r.db.QueryRow(ctx, query, slug).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tenants WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
