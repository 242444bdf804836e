package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"companyhub/internal/common"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Metadata is attached to an identity at creation time.
type Metadata struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

// TokenSet is the credential bundle the provider issues on a password grant.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Provider is the identity-provider collaborator. One client is constructed
// at process start and injected wherever identities are created, deleted, or
// resolved.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string, meta Metadata) (uuid.UUID, error)
	DeleteIdentity(ctx context.Context, ref uuid.UUID) error
	ResolveIdentity(ctx context.Context, bearer string) (uuid.UUID, error)
	PasswordGrant(ctx context.Context, email, password string) (*TokenSet, uuid.UUID, error)
}

// TokenVerifier resolves a bearer credential to the identity reference it
// was issued for.
type TokenVerifier interface {
	Subject(token string) (uuid.UUID, error)
}

type client struct {
	http     *resty.Client
	verifier TokenVerifier
}

// NewClient builds a Provider talking to a GoTrue-style admin API. The
// service key authorizes the admin endpoints; bearer resolution is done
// locally through the verifier. Provider calls carry a timeout but no
// retries: a single failed attempt is final for the request that made it.
func NewClient(baseURL, serviceKey string, verifier TokenVerifier) Provider {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey)

	return &client{http: httpClient, verifier: verifier}
}

type identityEnvelope struct {
	ID string `json:"id"`
}

type grantEnvelope struct {
	TokenSet
	User identityEnvelope `json:"user"`
}

func (c *client) CreateIdentity(ctx context.Context, email, password string, meta Metadata) (uuid.UUID, error) {
	var created identityEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
			"user_metadata": meta,
		}).
		SetResult(&created).
		Post("/admin/users")
	if err != nil {
		return uuid.Nil, common.Upstream("identity provider unreachable", err)
	}
	if resp.IsError() {
		return uuid.Nil, common.Upstream("identity provider rejected identity creation",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	ref, err := uuid.Parse(created.ID)
	if err != nil || ref == uuid.Nil {
		return uuid.Nil, common.Upstream("identity provider returned an unusable identity reference", err)
	}
	return ref, nil
}

func (c *client) DeleteIdentity(ctx context.Context, ref uuid.UUID) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/admin/users/%s", ref))
	if err != nil {
		return common.Upstream("identity provider unreachable", err)
	}
	// Already gone counts as deleted.
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return common.Upstream("identity provider rejected identity deletion",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}

func (c *client) ResolveIdentity(ctx context.Context, bearer string) (uuid.UUID, error) {
	if bearer == "" {
		return uuid.Nil, common.Unauthorized("missing bearer credential")
	}
	ref, err := c.verifier.Subject(bearer)
	if err != nil {
		return uuid.Nil, common.Unauthorized("invalid bearer credential")
	}
	return ref, nil
}

func (c *client) PasswordGrant(ctx context.Context, email, password string) (*TokenSet, uuid.UUID, error) {
	var grant grantEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&grant).
		Post("/token")
	if err != nil {
		return nil, uuid.Nil, common.Upstream("identity provider unreachable", err)
	}
	if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
		return nil, uuid.Nil, common.Unauthorized("invalid credentials")
	}
	if resp.IsError() {
		return nil, uuid.Nil, common.Upstream("identity provider rejected credential exchange",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	ref, err := uuid.Parse(grant.User.ID)
	if err != nil || ref == uuid.Nil {
		return nil, uuid.Nil, common.Upstream("identity provider returned an unusable identity reference", err)
	}
	return &grant.TokenSet, ref, nil
}
