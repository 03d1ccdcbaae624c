package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/services"
)

// PutSettingRequest represents the request body for saving a setting
type PutSettingRequest struct {
	Value string `json:"value"`
}

// SettingsController serves /api/settings.
type SettingsController struct {
	settings *services.SettingsService
	respond  *Responder
}

// NewSettingsController creates a SettingsController.
func NewSettingsController(settings *services.SettingsService, respond *Responder) *SettingsController {
	return &SettingsController{settings: settings, respond: respond}
}

// List handles GET /api/settings
func (h *SettingsController) List(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, settings)
}

// Put handles PUT /api/settings/:key
func (h *SettingsController) Put(c *gin.Context) {
	var req PutSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	setting, err := h.settings.Put(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, setting)
}
