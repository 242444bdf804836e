package services

import (
	"context"
	"time"

	"companyhub/internal/common"
	"companyhub/internal/identity"
	"companyhub/internal/models"
	"companyhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignupResult is returned when a tenant and its owner were fully committed.
type SignupResult struct {
	Ok          bool      `json:"ok"`
	TenantID    uuid.UUID `json:"tenant_id"`
	IdentityRef uuid.UUID `json:"identity_ref"`
	Slug        string    `json:"slug"`
}

// InviteResult is returned when an invited user was fully committed.
type InviteResult struct {
	Ok          bool      `json:"ok"`
	AppUserID   uuid.UUID `json:"app_user_id"`
	IdentityRef uuid.UUID `json:"identity_ref"`
}

// UsernameAvailability answers the availability query.
type UsernameAvailability struct {
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
	Normalized string `json:"normalized"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser is the slice of the AppUser row a login response exposes.
type LoginUser struct {
	IdentityRef uuid.UUID `json:"identity_ref"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	UserName    string    `json:"user_name"`
	Role        string    `json:"role"`
	TenantID    uuid.UUID `json:"tenant_id"`
}

type LoginResult struct {
	Ok bool `json:"ok"`
	identity.TokenSet
	User LoginUser `json:"user"`
}

// ProvisionService sequences tenant and user creation across the identity
// provider and the relational store. The two backends share no transaction:
// pre-flight checks run before any mutation, and once mutation starts, a
// later step's failure rolls earlier steps back in reverse order.
type ProvisionService interface {
	Signup(ctx context.Context, req *SignupRequest) (*SignupResult, error)
	Invite(ctx context.Context, bearer string, req *InviteRequest) (*InviteResult, error)
	CheckUsername(ctx context.Context, raw string) (*UsernameAvailability, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
}

type provisionService struct {
	provider identity.Provider
	tenants  repositories.TenantRepository
	users    repositories.AppUserRepository
	orphans  repositories.OrphanRepository
	guard    *AuthzGuard
	unique   *UniquenessChecker
	limits   *PlanLimitEnforcer
	log      *zap.Logger
}

func NewProvisionService(
	provider identity.Provider,
	tenants repositories.TenantRepository,
	users repositories.AppUserRepository,
	orphans repositories.OrphanRepository,
	log *zap.Logger,
) ProvisionService {
	return &provisionService{
		provider: provider,
		tenants:  tenants,
		users:    users,
		orphans:  orphans,
		guard:    NewAuthzGuard(provider, users),
		unique:   NewUniquenessChecker(tenants, users),
		limits:   NewPlanLimitEnforcer(tenants, users),
		log:      log,
	}
}

// Signup provisions a tenant and its first owner: identity, then tenant row,
// then owner AppUser row. Any failure after the identity exists unwinds the
// committed steps before the original error is surfaced.
func (s *provisionService) Signup(ctx context.Context, req *SignupRequest) (*SignupResult, error) {
	plan, err := validateSignup(req)
	if err != nil {
		return nil, err
	}

	if err := s.unique.CheckSignup(ctx, plan.tenant.Slug, plan.owner.UserName); err != nil {
		return nil, err
	}

	comp := newCompensationStack(s.log, s.orphans)

	ref, err := s.provider.CreateIdentity(ctx, plan.owner.Email, plan.owner.Password, identity.Metadata{
		Name:  plan.owner.Name,
		Phone: plan.owner.Phone,
	})
	if err != nil {
		return nil, err
	}
	comp.push("delete identity", models.OrphanIdentity, ref, func(ctx context.Context) error {
		return s.provider.DeleteIdentity(ctx, ref)
	})

	tenant := plan.tenant
	if err := s.tenants.Create(ctx, &tenant); err != nil {
		return nil, s.abort(ctx, comp, storeCreateError(err, "slug already in use", "failed to create tenant"))
	}
	comp.push("delete tenant", models.OrphanTenant, tenant.ID, func(ctx context.Context) error {
		return s.tenants.Delete(ctx, tenant.ID)
	})

	owner := &models.AppUser{
		ID:          uuid.New(),
		TenantID:    tenant.ID,
		IdentityRef: ref,
		Email:       plan.owner.Email,
		UserName:    plan.owner.UserName,
		Name:        plan.owner.Name,
		Phone:       plan.owner.Phone,
		Role:        models.RoleOwner,
		Active:      true,
	}
	if err := s.users.Create(ctx, owner); err != nil {
		return nil, s.abort(ctx, comp, storeCreateError(err, "user_name is not available", "failed to create owner user"))
	}

	s.log.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.String("identity_ref", ref.String()))

	return &SignupResult{Ok: true, TenantID: tenant.ID, IdentityRef: ref, Slug: tenant.Slug}, nil
}

// Invite provisions one additional user inside the caller's own tenant:
// identity, then AppUser row bound to the already-resolved tenant.
func (s *provisionService) Invite(ctx context.Context, bearer string, req *InviteRequest) (*InviteResult, error) {
	if req == nil || req.User == nil {
		return nil, common.Validation("request must contain tenant_id and user objects", "tenant_id", "user")
	}
	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return nil, common.Validation(err.Error(), "tenant_id")
	}

	if _, err := s.guard.RequireInviter(ctx, bearer, tenantID); err != nil {
		return nil, err
	}

	plan, err := validateInvite(tenantID, req)
	if err != nil {
		return nil, err
	}

	if err := s.unique.CheckInvite(ctx, tenantID, plan.user.UserName, plan.user.Email); err != nil {
		return nil, err
	}
	if err := s.limits.Check(ctx, tenantID); err != nil {
		return nil, err
	}

	comp := newCompensationStack(s.log, s.orphans)

	ref, err := s.provider.CreateIdentity(ctx, plan.user.Email, plan.user.Password, identity.Metadata{
		Name:  plan.user.Name,
		Phone: plan.user.Phone,
	})
	if err != nil {
		return nil, err
	}
	comp.push("delete identity", models.OrphanIdentity, ref, func(ctx context.Context) error {
		return s.provider.DeleteIdentity(ctx, ref)
	})

	user := &models.AppUser{
		ID:          uuid.New(),
		TenantID:    tenantID,
		IdentityRef: ref,
		Email:       plan.user.Email,
		UserName:    plan.user.UserName,
		Name:        plan.user.Name,
		Phone:       plan.user.Phone,
		Role:        plan.user.Role,
		Active:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.abort(ctx, comp, storeCreateError(err, "user_name or email is not available", "failed to create user"))
	}

	s.log.Info("user invited",
		zap.String("tenant_id", tenantID.String()),
		zap.String("app_user_id", user.ID.String()),
		zap.String("role", user.Role))

	return &InviteResult{Ok: true, AppUserID: user.ID, IdentityRef: ref}, nil
}

// CheckUsername answers the availability query for a candidate username.
func (s *provisionService) CheckUsername(ctx context.Context, raw string) (*UsernameAvailability, error) {
	userName := NormalizeUsername(raw)
	if !ValidUsername(userName) {
		return &UsernameAvailability{Available: false, Reason: "invalid", Normalized: userName}, nil
	}
	if ReservedUsername(userName) {
		return &UsernameAvailability{Available: false, Reason: "reserved", Normalized: userName}, nil
	}

	taken, err := s.users.UsernameExists(ctx, userName)
	if err != nil {
		return nil, common.Upstream("failed to check user_name availability", err)
	}
	if taken {
		return &UsernameAvailability{Available: false, Reason: "taken", Normalized: userName}, nil
	}
	return &UsernameAvailability{Available: true, Normalized: userName}, nil
}

// Login exchanges email/password for provider tokens and returns the
// caller's user record. The last-login update is informational and never
// blocks a successful login.
func (s *provisionService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, common.Validation("email and password are required", "email", "password")
	}

	tokens, ref, err := s.provider.PasswordGrant(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByIdentityRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.Conflict("identity has no internal user record")
		}
		return nil, common.Upstream("failed to load user record", err)
	}
	if !user.Active {
		return nil, common.Forbidden("user account is deactivated")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update last_login",
			zap.String("app_user_id", user.ID.String()),
			zap.Error(err))
	}

	return &LoginResult{
		Ok:       true,
		TokenSet: *tokens,
		User: LoginUser{
			IdentityRef: user.IdentityRef,
			Email:       user.Email,
			Name:        user.Name,
			UserName:    user.UserName,
			Role:        user.Role,
			TenantID:    user.TenantID,
		},
	}, nil
}

// abort unwinds committed steps and returns the original failure unchanged.
func (s *provisionService) abort(ctx context.Context, comp *compensationStack, cause error) error {
	comp.unwind(ctx, cause)
	return cause
}

// storeCreateError maps a write failure to the caller-visible error: unique
// constraint hits are conflicts (the binding outcome of any race the
// advisory checks missed), everything else is an upstream failure.
func storeCreateError(err error, conflictMsg, upstreamMsg string) error {
	if repositories.IsUniqueViolation(err) {
		return common.Conflict(conflictMsg)
	}
	return common.Upstream(upstreamMsg, err)
}
