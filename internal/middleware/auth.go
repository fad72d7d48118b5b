package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/identity"
	"github.com/gx-tools/task-tracker/internal/logger"
	"github.com/gx-tools/task-tracker/internal/session"
)

// unexported, collision-proof context keys
type identityContextKeyType struct{}
type tokenContextKeyType struct{}

var (
	identityKey = identityContextKeyType{}
	tokenKey    = tokenContextKeyType{}
)

// IdentityFromContext extracts the resolved identity attached by the gate.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(identity.Identity)
	return id, ok
}

// TokenFromContext extracts the raw session token attached by the gate.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}

// Introspector validates a session token against the identity provider.
type Introspector interface {
	IntrospectToken(ctx context.Context, token string) (identity.Identity, error)
}

// AuthMiddleware is the per-request authentication gate. Each request is an
// independent decision: at most one introspection round trip, no shared
// mutable state.
type AuthMiddleware struct {
	provider Introspector
}

func NewAuthMiddleware(provider Introspector) *AuthMiddleware {
	return &AuthMiddleware{provider: provider}
}

// RequireAuth rejects the request unless the session cookie introspects to a
// valid identity. On success the identity and raw token are attached to the
// request context for downstream handlers.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read session cookie. Missing cookie short-circuits without a
		// provider round trip.
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			api.Fail(c, apperr.ErrUnauthorized)
			return
		}

		// 2. Introspect. Provider detail stays in the logs.
		id, err := a.provider.IntrospectToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("auth gate rejected request", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			api.Fail(c, apperr.ErrUnauthorized)
			return
		}

		// 3. Attach identity + token to the request context.
		ctx := context.WithValue(c.Request.Context(), identityKey, id)
		ctx = context.WithValue(ctx, tokenKey, token)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Caller returns the resolved identity and raw token for the current
// request, rejecting with Unauthorized when the gate has not run. Resource
// handlers use it instead of reading the context keys directly.
func Caller(c *gin.Context) (identity.Identity, string, bool) {
	id, ok := IdentityFromContext(c.Request.Context())
	if !ok {
		api.Fail(c, apperr.ErrUnauthorized)
		return identity.Identity{}, "", false
	}
	token, ok := TokenFromContext(c.Request.Context())
	if !ok {
		api.Fail(c, apperr.ErrUnauthorized)
		return identity.Identity{}, "", false
	}
	return id, token, true
}

// RequireMutableRole gates write endpoints on roles allowed to mutate
// resources. Must run after RequireAuth.
func RequireMutableRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c.Request.Context())
		if !ok {
			api.Fail(c, apperr.ErrUnauthorized)
			return
		}
		if !id.Role.CanMutate() {
			c.AbortWithStatusJSON(http.StatusForbidden, api.Response{
				Success: false,
				Message: api.MsgUnauthorized,
			})
			return
		}
		c.Next()
	}
}
