package repositories

import (
	"context"
	"time"

	"companyhub/internal/models"

	"github.com/google/uuid"
)

type AppUserRepository interface {
	Create(ctx context.Context, user *models.AppUser) error
	GetByIdentityRef(ctx context.Context, identityRef uuid.UUID) (*models.AppUser, error)
	UsernameExists(ctx context.Context, userName string) (bool, error)
	EmailExistsInTenant(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type appUserRepo struct {
	db Database
}

func NewAppUserRepo(db Database) AppUserRepository {
	return &appUserRepo{db: db}
}

func (r *appUserRepo) Create(ctx context.Context, user *models.AppUser) error {
	query := `
		INSERT INTO app_users (id, tenant_id, identity_ref, email, user_name, name, phone, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.TenantID, user.IdentityRef, user.Email, user.UserName,
		user.Name, user.Phone, user.Role, user.Active)
	return err
}

func (r *appUserRepo) GetByIdentityRef(ctx context.Context, identityRef uuid.UUID) (*models.AppUser, error) {
	user := &models.AppUser{}
	query := `
		SELECT id, tenant_id, identity_ref, email, user_name, name, phone, role, active, last_login, created_at, updated_at
		FROM app_users
		WHERE identity_ref = $1
	`
	err := r.db.QueryRow(ctx, query, identityRef).Scan(
		&user.ID, &user.TenantID, &user.IdentityRef, &user.Email, &user.UserName,
		&user.Name, &user.Phone, &user.Role, &user.Active, &user.LastLogin,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *appUserRepo) UsernameExists(ctx context.Context, userName string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM app_users WHERE user_name = $1`
	if err := r.db.QueryRow(ctx, query, userName).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appUserRepo) EmailExistsInTenant(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM app_users WHERE tenant_id = $1 AND email = $2`
	if err := r.db.QueryRow(ctx, query, tenantID, email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActive is the single authoritative active-user count the plan limit
// is compared against.
func (r *appUserRepo) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM app_users WHERE tenant_id = $1 AND active = TRUE`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *appUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM app_users WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *appUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE app_users SET last_login = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, at, id)
	return err
}
