package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/logger"
	"github.com/kendall-kelly/box-erp-api/services"
	"github.com/kendall-kelly/box-erp-api/utils"
)

// Responder writes the JSON envelope shared by every endpoint.
type Responder struct {
	errorLogs *services.ErrorLogService
}

// NewResponder creates a Responder. Unexpected errors are stored through errorLogs.
func NewResponder(errorLogs *services.ErrorLogService) *Responder {
	return &Responder{errorLogs: errorLogs}
}

// OK writes a success envelope.
func (r *Responder) OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Fail writes an error envelope.
func (r *Responder) Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Error maps a service error onto a status code. Anything unexpected is logged,
// recorded in the error log and answered with a generic 500.
func (r *Responder) Error(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var uploadErr *utils.FileUploadError

	switch {
	case errors.As(err, &validationErr):
		r.Fail(c, http.StatusBadRequest, validationErr.Code, validationErr.Message)
	case errors.As(err, &uploadErr):
		r.Fail(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
	case errors.Is(err, services.ErrNotFound):
		r.Fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		r.Fail(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, services.ErrUnsupported):
		r.Fail(c, http.StatusConflict, "UNSUPPORTED", err.Error())
	case errors.Is(err, services.ErrConflict):
		r.Fail(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		r.Fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	default:
		ctx := c.Request.Context()
		logger.FromContext(ctx).Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		if r.errorLogs != nil {
			r.errorLogs.Record(ctx, "server", err, map[string]any{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
		}
		r.Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// BadRequest answers a malformed request body or query.
func (r *Responder) BadRequest(c *gin.Context, err error) {
	r.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
}
