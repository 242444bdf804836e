package services

import (
	"context"

	"companyhub/internal/common"
	"companyhub/internal/models"
	"companyhub/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlanLimitEnforcer compares the tenant's active-user count against its
// plan_limit_users before any mutation happens. One count query is the sole
// source of truth; a narrow race against a concurrent invite is resolved by
// the store's constraints, not here.
type PlanLimitEnforcer struct {
	tenants repositories.TenantRepository
	users   repositories.AppUserRepository
}

func NewPlanLimitEnforcer(tenants repositories.TenantRepository, users repositories.AppUserRepository) *PlanLimitEnforcer {
	return &PlanLimitEnforcer{tenants: tenants, users: users}
}

// Check fails with NotFound when the tenant is absent and with Conflict when
// the active count has reached the limit. The tenant row and the count have
// no ordering dependency, so they are fetched concurrently.
func (e *PlanLimitEnforcer) Check(ctx context.Context, tenantID uuid.UUID) error {
	var (
		tenant *models.Tenant
		active int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := e.tenants.GetByID(gctx, tenantID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return common.NotFound("tenant not found")
			}
			return common.Upstream("failed to load tenant", err)
		}
		tenant = t
		return nil
	})
	g.Go(func() error {
		n, err := e.users.CountActive(gctx, tenantID)
		if err != nil {
			return common.Upstream("failed to count active users", err)
		}
		active = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	limit := tenant.PlanLimitUsers
	if limit <= 0 {
		limit = 1
	}
	if active >= limit {
		return common.Conflict("plan user limit reached")
	}
	return nil
}
