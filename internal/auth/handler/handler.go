// Package handler implements the authentication endpoints. They are the only
// code paths allowed to mint or clear the session cookie.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/identity"
	"github.com/gx-tools/task-tracker/internal/logger"
	"github.com/gx-tools/task-tracker/internal/provider"
	"github.com/gx-tools/task-tracker/internal/session"
)

// AuthProvider is the slice of the identity provider the endpoints need.
type AuthProvider interface {
	VerifyCredentials(ctx context.Context, email, password string) (provider.Session, error)
	RegisterAccount(ctx context.Context, email, password string) error
	IntrospectToken(ctx context.Context, token string) (identity.Identity, error)
	TerminateSession(ctx context.Context, token string) error
}

type Handler struct {
	provider AuthProvider
	env      string
}

func NewHandler(p AuthProvider, env string) *Handler {
	return &Handler{provider: p, env: env}
}

// RegisterRoutes mounts the auth endpoints. Extra middleware (for example a
// rate limiter) is applied to the credential-bearing routes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, throttle ...gin.HandlerFunc) {
	creds := append([]gin.HandlerFunc{}, throttle...)
	rg.POST("/signup", append(creds, h.Signup)...)
	rg.POST("/login", append(creds, h.Login)...)
	rg.POST("/logout", h.Logout)
	rg.GET("/status", h.Status)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Invalid request body"))
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		api.Fail(c, err)
		return
	}

	if err := h.provider.RegisterAccount(c.Request.Context(), req.Email, req.Password); err != nil {
		api.Fail(c, err)
		return
	}

	// No auto-login: the account exists, the session does not.
	api.OK(c, http.StatusCreated, api.MsgSignupSuccess, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Invalid request body"))
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		api.Fail(c, err)
		return
	}

	sess, err := h.provider.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.Fail(c, err)
		return
	}

	// A nominally successful verification must carry a session; anything
	// else is a provider contract violation, not a bad login.
	if sess.AccessToken == "" {
		logger.Error("login succeeded without a session token", map[string]any{
			"email_present": req.Email != "",
		})
		api.Fail(c, apperr.ErrInternal)
		return
	}

	session.Set(c.Writer, sess.AccessToken, session.LoginOptions(h.env))

	// Token travels only in the HTTP-only cookie, never in the body.
	api.OK(c, http.StatusOK, api.MsgLoginSuccess, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		// Best-effort provider-side termination. The browser's cookie state
		// is authoritative for the caller.
		if err := h.provider.TerminateSession(c.Request.Context(), token); err != nil {
			logger.Warn("provider session termination failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.Clear(c.Writer, session.ClearOptions(h.env))
	api.OK(c, http.StatusOK, api.MsgLogoutSuccess, nil)
}

// Status reports authentication state without gating anything. Unlike the
// resource gate it answers 200 with a success:false envelope when no valid
// session exists, so thin clients can render status uniformly.
func (h *Handler) Status(c *gin.Context) {
	token, err := c.Cookie(session.CookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, api.Response{Success: false, Message: api.MsgUnauthorized})
		return
	}

	id, err := h.provider.IntrospectToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, api.Response{Success: false, Message: api.MsgUnauthorized})
		return
	}

	api.OK(c, http.StatusOK, api.MsgAuthenticated, id)
}
