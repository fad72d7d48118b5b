// Package provider wraps the hosted identity/data service. Authentication
// calls go to its auth API, row access to its REST API; this process never
// stores credentials or sessions itself.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/identity"
	"github.com/gx-tools/task-tracker/internal/logger"
)

// Session is the opaque credential bundle issued by the provider at login.
// The access token is not interpreted here; expiry is enforced provider-side.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Client is the long-lived handle to the provider, constructed once at
// bootstrap and handed to the gate and handlers. Configuration is read-only
// after New.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func New(baseURL, anonKey string, timeout time.Duration) (*Client, error) {
	if baseURL == "" || anonKey == "" {
		return nil, errors.New("provider: missing url or anon key")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// VerifyCredentials exchanges email+password for a session. Every provider
// failure collapses into ErrInvalidCredentials so callers cannot tell
// whether the account exists.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, apperr.E(apperr.ErrInternal, "Internal server error")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return Session{}, apperr.E(apperr.ErrInternal, "Internal server error")
	}
	c.anonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("provider: credential verification failed", map[string]any{
			"error": err.Error(),
		})
		return Session{}, apperr.E(apperr.ErrInvalidCredentials, "Invalid credentials")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("provider: credential verification rejected", map[string]any{
			"status": resp.StatusCode,
		})
		return Session{}, apperr.E(apperr.ErrInvalidCredentials, "Invalid credentials")
	}

	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return Session{}, apperr.E(apperr.ErrInternal, "Internal server error")
	}
	return sess, nil
}

// RegisterAccount creates a new account. Provider validation errors (for
// example a duplicate email) are forwarded as BadRequest with the provider's
// own message; signup errors are not secret.
func (c *Client) RegisterAccount(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	c.anonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("provider: signup call failed", map[string]any{
			"error": err.Error(),
		})
		return apperr.E(apperr.ErrBadRequest, "Invalid request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperr.E(apperr.ErrBadRequest, providerMessage(resp.Body))
	}
	return nil
}

// IntrospectToken validates the session token and resolves the identity it
// represents. Each call builds a fresh bearer-scoped capability and discards
// it afterwards; no session state persists between introspections.
func (c *Client) IntrospectToken(ctx context.Context, token string) (identity.Identity, error) {
	if c.baseURL == "" || c.anonKey == "" {
		// Fails closed: misconfiguration must not admit anyone.
		logger.Error("provider: missing environment configuration for introspection", nil)
		return identity.Identity{}, apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	}

	return c.scoped(token).resolveIdentity(ctx)
}

// TerminateSession revokes the token provider-side. Best-effort: callers
// must clear the cookie regardless of the outcome here.
func (c *Client) TerminateSession(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	c.anonHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apperr.E(apperr.ErrInternal, "Internal server error")
	}
	return nil
}

func (c *Client) anonHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
}

// scopedClient is a single-use capability carrying one bearer token. It is
// built per introspection and never reused.
type scopedClient struct {
	parent *Client
	token  string
}

func (c *Client) scoped(token string) *scopedClient {
	return &scopedClient{parent: c, token: token}
}

func (s *scopedClient) resolveIdentity(ctx context.Context) (identity.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.parent.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return identity.Identity{}, apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	}
	s.parent.anonHeaders(req)
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.parent.http.Do(req)
	if err != nil {
		logger.Error("provider: introspection call failed", map[string]any{
			"error": err.Error(),
		})
		return identity.Identity{}, apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("provider: introspection rejected", map[string]any{
			"status": resp.StatusCode,
		})
		return identity.Identity{}, apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	}

	var payload struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Role         string `json:"role"`
		UserMetadata struct {
			Role string `json:"role"`
		} `json:"user_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.ID == "" {
		logger.Error("provider: unexpected introspection payload", map[string]any{
			"decode_error": fmt.Sprint(err),
		})
		return identity.Identity{}, apperr.E(apperr.ErrUnauthorized, "Unauthorized access")
	}

	return identity.Identity{
		ID:    payload.ID,
		Email: payload.Email,
		Role:  resolveRole(payload.UserMetadata.Role, payload.Role),
	}, nil
}

func resolveRole(candidates ...string) identity.Role {
	for _, c := range candidates {
		switch r := identity.Role(c); r {
		case identity.RoleAdmin, identity.RoleInstructor, identity.RoleStudent, identity.RoleUser:
			return r
		}
	}
	return identity.RoleUser
}

// providerMessage extracts the human-readable error text from a provider
// error body. The auth API is not consistent about the field name.
func providerMessage(r io.Reader) string {
	var payload struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.Description} {
			if m != "" {
				return m
			}
		}
	}
	return "Invalid request"
}
