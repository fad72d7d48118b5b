// Package tasks implements the task CRUD endpoints. All rows live in the
// hosted data service; ownership is enforced there against the caller's
// token, with an explicit created_by filter on mutations as a second fence.
package tasks

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/apperr"
	"github.com/gx-tools/task-tracker/internal/middleware"
	"github.com/gx-tools/task-tracker/internal/provider"
)

const table = "tasks"

type Task struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
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

// RegisterRoutes mounts the task endpoints on an authenticated group.
// Mutations additionally require a role allowed to write.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/tasks")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	mutate := middleware.RequireMutableRole()
	g.POST("", mutate, h.Create)
	g.PUT("/:id", mutate, h.Update)
	g.DELETE("/:id", mutate, h.Delete)
}

type createRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type updateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (h *Handler) Create(c *gin.Context) {
	id, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Task title is required"))
		return
	}

	var created []Task
	err := h.provider.Rows(token).From(table).Insert(c.Request.Context(), map[string]any{
		"title":      req.Title,
		"completed":  req.Completed,
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

	api.OK(c, http.StatusCreated, api.MsgTaskCreated, created[0])
}

func (h *Handler) List(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var tasks []Task
	err := h.provider.Rows(token).From(table).
		OrderDesc("created_at").
		Select(c.Request.Context(), &tasks)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, api.MsgTasksRetrieved, tasks)
}

func (h *Handler) Get(c *gin.Context) {
	_, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var tasks []Task
	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Select(c.Request.Context(), &tasks)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(tasks) == 0 {
		api.Fail(c, apperr.E(apperr.ErrNotFound, "Task not found"))
		return
	}

	api.OK(c, http.StatusOK, api.MsgTaskRetrieved, tasks[0])
}

func (h *Handler) Update(c *gin.Context) {
	id, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Invalid request body"))
		return
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Completed != nil {
		patch["completed"] = *req.Completed
	}
	if len(patch) == 0 {
		api.Fail(c, apperr.E(apperr.ErrBadRequest, "Nothing to update"))
		return
	}

	var updated []Task
	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Eq("created_by", id.ID).
		Update(c.Request.Context(), patch, &updated)
	if err != nil {
		api.Fail(c, err)
		return
	}
	if len(updated) == 0 {
		api.Fail(c, apperr.E(apperr.ErrNotFound, "Task not found"))
		return
	}

	api.OK(c, http.StatusOK, api.MsgTaskUpdated, updated[0])
}

func (h *Handler) Delete(c *gin.Context) {
	id, token, ok := middleware.Caller(c)
	if !ok {
		return
	}

	err := h.provider.Rows(token).From(table).
		Eq("id", c.Param("id")).
		Eq("created_by", id.ID).
		Delete(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, http.StatusOK, api.MsgTaskDeleted, nil)
}
