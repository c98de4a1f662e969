// Package handlers provides HTTP request handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tudogestao/internal/core/apperror"
	appctx "tudogestao/internal/core/context"
	"tudogestao/internal/core/id"
	"tudogestao/internal/core/tenant"
	"tudogestao/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts the request.
// The JSON response is written by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID parses a path parameter as an id.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	v, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", param))
		return id.Nil(), false
	}
	return v, true
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// CompanyID returns the company resolved by the Tenant middleware.
func (h *BaseHandler) CompanyID(c *gin.Context) (id.ID, bool) {
	companyID, err := tenant.CompanyID(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return companyID, true
}

// UserID returns the authenticated user id.
func (h *BaseHandler) UserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, data)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.respond(c, http.StatusCreated, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body
	middleware.CompleteIdempotency(c, http.StatusNoContent, nil)
	c.Status(http.StatusNoContent)
}

// respond serializes once so the idempotency replay is byte-identical.
func (h *BaseHandler) respond(c *gin.Context, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	middleware.CompleteIdempotency(c, status, body)
	c.Data(status, "application/json; charset=utf-8", body)
}
