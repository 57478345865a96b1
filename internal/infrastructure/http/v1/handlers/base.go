// Package handlers implements the HTTP API surface.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swiftpos/internal/core/apperror"
	appctx "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/infrastructure/http/v1/dto"
)

// BaseHandler bundles the request helpers every concrete handler embeds:
// binding, ID parsing and response shortcuts.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON decodes the request body, reporting a validation error on
// malformed input.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery decodes query parameters into obj.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error aborts the request; middleware.ErrorHandler renders the body.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID reads a UUID path parameter.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", param))
		return id.Nil(), false
	}
	return parsed, true
}

// parseIDField parses a UUID carried in a request body field.
func parseIDField(value, field string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return parsed, nil
}

// ParseIntQuery reads an integer query parameter, falling back to
// defaultVal when absent or unparsable.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	if parsed, err := strconv.Atoi(raw); err == nil {
		return parsed
	}
	return defaultVal
}

// GetUserID returns the authenticated user's ID, or "".
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	if user := appctx.GetUser(c.Request.Context()); user != nil {
		return user.UserID
	}
	return ""
}

func (h *BaseHandler) Created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
