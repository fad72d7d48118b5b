// Package users exposes the caller's own profile record.
package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/middleware"
	"github.com/gx-tools/task-tracker/internal/provider"
)

const table = "users"

type profile struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Handler struct {
	provider *provider.Client
}

func NewHandler(p *provider.Client) *Handler {
	return &Handler{provider: p}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.Me)
}

// Me returns the email and role stored for the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	id, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var rows []profile
	err := h.provider.Rows(token).From(table).
		Eq("id", id.ID).
		Select(c.Request.Context(), &rows)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(rows) == 0 {
		api.Fail(c, apperr.E(apperr.ErrNotFound, "User not found"))
		return
	}

	api.OK(c, http.StatusOK, api.MsgUserRetrieved, rows[0])
}
