package services

import (
	"context"

	"companyhub/internal/common"
	"companyhub/internal/repositories"

	"github.com/google/uuid"
)

// UniquenessChecker runs the advisory pre-flight reads. These improve error
// messages and avoid needless identity-provider calls, but the store's
// unique constraints remain the binding outcome for anything that races in
// after the check.
type UniquenessChecker struct {
	tenants repositories.TenantRepository
	users   repositories.AppUserRepository
}

func NewUniquenessChecker(tenants repositories.TenantRepository, users repositories.AppUserRepository) *UniquenessChecker {
	return &UniquenessChecker{tenants: tenants, users: users}
}

// CheckSignup verifies the slug and the global username are unclaimed.
func (c *UniquenessChecker) CheckSignup(ctx context.Context, slug, userName string) error {
	taken, err := c.tenants.SlugExists(ctx, slug)
	if err != nil {
		return common.Upstream("failed to check slug uniqueness", err)
	}
	if taken {
		return common.Conflict("slug already in use")
	}

	taken, err = c.users.UsernameExists(ctx, userName)
	if err != nil {
		return common.Upstream("failed to check user_name uniqueness", err)
	}
	if taken {
		return common.Conflict("user_name is not available")
	}
	return nil
}

// CheckInvite verifies the global username and the tenant-scoped email are
// unclaimed.
func (c *UniquenessChecker) CheckInvite(ctx context.Context, tenantID uuid.UUID, userName, email string) error {
	taken, err := c.users.UsernameExists(ctx, userName)
	if err != nil {
		return common.Upstream("failed to check user_name uniqueness", err)
	}
	if taken {
		return common.Conflict("user_name is not available")
	}

	taken, err = c.users.EmailExistsInTenant(ctx, tenantID, email)
	if err != nil {
		return common.Upstream("failed to check email uniqueness", err)
	}
	if taken {
		return common.Conflict("email already exists in this tenant")
	}
	return nil
}
