// Package api holds the uniform response envelope shared by every endpoint.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gx-tools/task-tracker/internal/apperr"
)

// Response is the envelope every endpoint answers with, success or failure.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Canonical client-facing messages.
const (
	MsgSignupSuccess  = "User registered successfully"
	MsgLoginSuccess   = "Login successful"
	MsgLogoutSuccess  = "Logout successful"
	MsgAuthenticated  = "User is authenticated"
	MsgUnauthorized   = "Unauthorized access"
	MsgTaskCreated    = "Task created successfully"
	MsgTaskUpdated    = "Task updated successfully"
	MsgTaskDeleted    = "Task deleted successfully"
	MsgTasksRetrieved = "Tasks retrieved successfully"
	MsgTaskRetrieved  = "Task retrieved successfully"
	MsgProjCreated    = "Project created successfully"
	MsgProjUpdated    = "Project updated successfully"
	MsgProjDeleted    = "Project deleted successfully"
	MsgProjsRetrieved = "Projects retrieved successfully"
	MsgProjRetrieved  = "Project retrieved successfully"
	MsgUserRetrieved  = "User retrieved successfully"
)

// OK writes a success envelope with the given status.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope, deriving status and message from the
// error's kind and aborting the handler chain.
func Fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.Status(err), Response{
		Success: false,
		Message: apperr.Message(err),
	})
}
