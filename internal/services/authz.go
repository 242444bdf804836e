package services

import (
	"context"

	"companyhub/internal/common"
	"companyhub/internal/identity"
	"companyhub/internal/models"
	"companyhub/internal/repositories"

	"github.com/google/uuid"
)

// AuthzGuard resolves the caller of an invite request and enforces the role
// and tenant-scoping policy. The tenant a caller may target is always the
// one derived from their own membership, never one supplied in the request.
type AuthzGuard struct {
	provider identity.Provider
	users    repositories.AppUserRepository
}

func NewAuthzGuard(provider identity.Provider, users repositories.AppUserRepository) *AuthzGuard {
	return &AuthzGuard{provider: provider, users: users}
}

// RequireInviter exchanges the bearer credential for the caller's AppUser
// row and checks that the caller is active, holds owner or admin, and
// belongs to the requested tenant.
func (g *AuthzGuard) RequireInviter(ctx context.Context, bearer string, tenantID uuid.UUID) (*models.AppUser, error) {
	ref, err := g.provider.ResolveIdentity(ctx, bearer)
	if err != nil {
		return nil, err
	}

	caller, err := g.users.GetByIdentityRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.Forbidden("caller has no internal user record")
		}
		return nil, common.Upstream("failed to load the caller's user record", err)
	}

	if !caller.Active {
		return nil, common.Forbidden("caller account is deactivated")
	}
	if caller.Role != models.RoleOwner && caller.Role != models.RoleAdmin {
		return nil, common.Forbidden("inviting users requires the owner or admin role")
	}
	if caller.TenantID != tenantID {
		return nil, common.Forbidden("cannot invite users into another tenant")
	}

	return caller, nil
}
