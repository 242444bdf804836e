package services

import (
	"strings"

	"companyhub/internal/common"
	"companyhub/internal/models"

	"github.com/google/uuid"
)

// Defaults applied to a signup tenant when the request leaves them unset.
const (
	defaultPlan              = "basic"
	defaultPlanLimitUsers    = 5
	defaultPlanLimitProjects = 2
)

// SignupTenant carries the tenant half of a signup request.
type SignupTenant struct {
	Name              string  `json:"name"`
	Slug              *string `json:"slug"`
	TaxID             string  `json:"tax_id"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	Plan              *string `json:"plan"`
	PlanLimitUsers    *int    `json:"plan_limit_users"`
	PlanLimitProjects *int    `json:"plan_limit_projects"`
	IsActive          *bool   `json:"is_active"`
}

// SignupOwner carries the first-owner half of a signup request.
type SignupOwner struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	UserName string  `json:"user_name"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
}

type SignupRequest struct {
	Tenant *SignupTenant `json:"tenant"`
	Owner  *SignupOwner  `json:"owner"`
}

// InviteUser carries the invited user's fields.
type InviteUser struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	UserName string  `json:"user_name"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

type InviteRequest struct {
	TenantID string      `json:"tenant_id"`
	User     *InviteUser `json:"user"`
}

// signupPlan is the normalized signup payload handed to the orchestrator.
type signupPlan struct {
	tenant models.Tenant
	owner  SignupOwner
}

// invitePlan is the normalized invite payload handed to the orchestrator.
type invitePlan struct {
	tenantID uuid.UUID
	user     InviteUser
}

type requiredField struct {
	name  string
	value string
}

// missingFields reports blank required fields in declaration order, so the
// same request always produces the same error payload.
func missingFields(fields []requiredField) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func validateSignup(req *SignupRequest) (*signupPlan, error) {
	if req == nil || req.Tenant == nil || req.Owner == nil {
		return nil, common.Validation("request must contain tenant and owner objects", "tenant", "owner")
	}

	t := req.Tenant
	o := req.Owner
	missing := missingFields([]requiredField{
		{"tenant.name", t.Name},
		{"tenant.tax_id", t.TaxID},
		{"tenant.email", t.Email},
		{"tenant.phone", t.Phone},
		{"tenant.address", t.Address},
		{"tenant.city", t.City},
		{"owner.email", o.Email},
		{"owner.password", o.Password},
		{"owner.user_name", o.UserName},
		{"owner.name", o.Name},
	})
	if len(missing) > 0 {
		return nil, common.Validation("missing required fields", missing...)
	}

	slug := ""
	if t.Slug != nil {
		slug = strings.TrimSpace(*t.Slug)
	}
	if slug == "" {
		slug = Slugify(t.Name)
	}
	if slug == "" {
		return nil, common.Validation("could not derive a valid slug from the tenant name", "tenant.slug")
	}

	userName, err := checkUserNameRules(o.UserName)
	if err != nil {
		return nil, err
	}

	tenant := models.Tenant{
		ID:                uuid.New(),
		Name:              t.Name,
		Slug:              slug,
		TaxID:             t.TaxID,
		Email:             t.Email,
		Phone:             t.Phone,
		Address:           t.Address,
		City:              t.City,
		Plan:              defaultPlan,
		PlanLimitUsers:    defaultPlanLimitUsers,
		PlanLimitProjects: defaultPlanLimitProjects,
		IsActive:          true,
	}
	if t.Plan != nil && *t.Plan != "" {
		tenant.Plan = *t.Plan
	}
	if t.PlanLimitUsers != nil {
		if *t.PlanLimitUsers <= 0 {
			return nil, common.Validation("plan_limit_users must be positive", "tenant.plan_limit_users")
		}
		tenant.PlanLimitUsers = *t.PlanLimitUsers
	}
	if t.PlanLimitProjects != nil {
		tenant.PlanLimitProjects = *t.PlanLimitProjects
	}
	if t.IsActive != nil {
		tenant.IsActive = *t.IsActive
	}

	owner := *o
	owner.UserName = userName
	return &signupPlan{tenant: tenant, owner: owner}, nil
}

func validateInvite(tenantID uuid.UUID, req *InviteRequest) (*invitePlan, error) {
	u := req.User

	missing := missingFields([]requiredField{
		{"user.email", u.Email},
		{"user.password", u.Password},
		{"user.user_name", u.UserName},
		{"user.name", u.Name},
		{"user.role", u.Role},
	})
	if len(missing) > 0 {
		return nil, common.Validation("missing required fields", missing...)
	}

	if u.Role == models.RoleOwner {
		return nil, common.Validation("role 'owner' cannot be invited", "user.role")
	}
	if !models.InvitableRoles[u.Role] {
		return nil, common.Validation("invalid role", "user.role")
	}

	userName, err := checkUserNameRules(u.UserName)
	if err != nil {
		return nil, err
	}

	user := *u
	user.UserName = userName
	return &invitePlan{tenantID: tenantID, user: user}, nil
}

// checkUserNameRules normalizes a raw username and applies the format and
// denylist rules shared by both flows.
func checkUserNameRules(raw string) (string, error) {
	userName := NormalizeUsername(raw)
	if !ValidUsername(userName) {
		return "", common.Validation("user_name must be 3-20 characters from a-z, 0-9, '.', '_' or '-'", "user_name")
	}
	if ReservedUsername(userName) {
		return "", common.Conflict("user_name is not available")
	}
	return userName, nil
}
