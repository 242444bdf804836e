package handlers

import (
	"net/http"
	"time"

	"companyhub/internal/caching"
	"companyhub/internal/common"
	"companyhub/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	availabilityRateLimit  = 30
	availabilityRateWindow = time.Minute
)

// ProvisionHandlers handles tenant signup, user invitation, username
// availability and login HTTP requests
type ProvisionHandlers struct {
	svc   services.ProvisionService
	cache caching.CacheService
	log   *zap.Logger
}

// NewProvisionHandlers creates a new provisioning handlers instance
func NewProvisionHandlers(svc services.ProvisionService, cache caching.CacheService, log *zap.Logger) *ProvisionHandlers {
	return &ProvisionHandlers{svc: svc, cache: cache, log: log}
}

// Signup handles tenant registration with its first owner account
func (h *ProvisionHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.Respond(c, common.Validation("invalid request format"))
	}

	result, err := h.svc.Signup(ctx, &req)
	if err != nil {
		return common.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Invite handles adding a user to the caller's tenant
func (h *ProvisionHandlers) Invite(c echo.Context) error {
	ctx := c.Request().Context()
	bearer := common.BearerToken(c.Request())

	var req services.InviteRequest
	if err := c.Bind(&req); err != nil {
		return common.Respond(c, common.Validation("invalid request format"))
	}

	result, err := h.svc.Invite(ctx, bearer, &req)
	if err != nil {
		return common.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CheckUsername answers whether a candidate username is available
func (h *ProvisionHandlers) CheckUsername(c echo.Context) error {
	ctx := c.Request().Context()

	// Public endpoint: rate limit per client IP. A cache outage degrades to
	// letting the request through.
	key := "check-username:" + c.RealIP()
	limited, err := h.cache.IsRateLimited(ctx, key, availabilityRateLimit, availabilityRateWindow)
	if err != nil {
		h.log.Warn("rate limit check failed", zap.Error(err))
	} else if limited {
		return c.JSON(http.StatusTooManyRequests,
			common.CreateErrorResponse("rate_limited", "too many availability checks, slow down", nil))
	}
	if err := h.cache.IncrementRateLimit(ctx, key, availabilityRateWindow); err != nil {
		h.log.Warn("rate limit increment failed", zap.Error(err))
	}

	result, err := h.svc.CheckUsername(ctx, c.QueryParam("user_name"))
	if err != nil {
		return common.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Login handles email/password authentication through the identity provider
func (h *ProvisionHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.Respond(c, common.Validation("invalid request format"))
	}

	result, err := h.svc.Login(ctx, &req)
	if err != nil {
		return common.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
