// Package projects implements the project CRUD endpoints.
package projects

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/middleware"
	"github.com/gx-tools/task-tracker/internal/provider"
)

const table = "projects"

type Project struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Handler struct {
	provider *provider.Client
}

func NewHandler(p *provider.Client) *Handler {
	return &Handler{provider: p}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/projects")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	mutate := middleware.RequireMutableRole()
	g.POST("", mutate, h.Create)
	g.PUT("/:id", mutate, h.Update)
	g.DELETE("/:id", mutate, h.Delete)
}

type projectRequest struct {
	Title string `json:"title"`
}

func (h *Handler) Create(c *gin.Context) {
	id, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Project title is required"))
		return
	}

	var created []Project
	err := h.provider.Rows(token).From(table).Insert(c.Request.Context(), map[string]any{
		"title":      req.Title,
		"created_by": id.ID,
	}, &created)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(created) == 0 {
		api.Fail(c, apperr.ErrInternal)
		return
	}

	api.OK(c, http.StatusCreated, api.MsgProjCreated, created[0])
}

func (h *Handler) List(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var list []Project
	err := h.provider.Rows(token).From(table).
		OrderDesc("created_at").
		Select(c.Request.Context(), &list)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, api.MsgProjsRetrieved, list)
}

func (h *Handler) Get(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var list []Project
	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Select(c.Request.Context(), &list)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(list) == 0 {
		api.Fail(c, apperr.E(apperr.ErrNotFound, "Project not found"))
		return
	}

	api.OK(c, http.StatusOK, api.MsgProjRetrieved, list[0])
}

func (h *Handler) Update(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Project title is required"))
		return
	}

	var updated []Project
	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Update(c.Request.Context(), map[string]any{"title": req.Title}, &updated)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(updated) == 0 {
		api.Fail(c, apperr.E(apperr.ErrNotFound, "Project not found"))
		return
	}

	api.OK(c, http.StatusOK, api.MsgProjUpdated, updated[0])
}

func (h *Handler) Delete(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Delete(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, api.MsgProjDeleted, nil)
}
