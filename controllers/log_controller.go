package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/services"
)

// LogController serves /api/logs.
type LogController struct {
	logs    *services.ErrorLogService
	respond *Responder
}

// NewLogController creates a LogController.
func NewLogController(logs *services.ErrorLogService, respond *Responder) *LogController {
	return &LogController{logs: logs, respond: respond}
}

// List handles GET /api/logs?source=&limit=
func (h *LogController) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respond.Error(c, err)
		return
	}

	entries, err := h.logs.List(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, entries)
}

// Create handles POST /api/logs - errors reported by the UI
func (h *LogController) Create(c *gin.Context) {
	var entry models.ErrorLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.respond.BadRequest(c, err)
		return
	}
	entry.ID = ""

	if err := h.logs.Create(c.Request.Context(), &entry); err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusCreated, entry)
}

// Clear handles DELETE /api/logs
func (h *LogController) Clear(c *gin.Context) {
	deleted, err := h.logs.Clear(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, gin.H{"deleted": deleted})
}
