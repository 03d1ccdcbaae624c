package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/services"
)

// ResetDataRequest represents the request body for wiping operational data
type ResetDataRequest struct {
	Confirmation string `json:"confirmation"`
}

// AdminController serves the maintenance endpoints.
type AdminController struct {
	admin   *services.AdminService
	respond *Responder
}

// NewAdminController creates an AdminController.
func NewAdminController(admin *services.AdminService, respond *Responder) *AdminController {
	return &AdminController{admin: admin, respond: respond}
}

// ResetData handles POST /api/reset-data
func (h *AdminController) ResetData(c *gin.Context) {
	var req ResetDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	deleted, err := h.admin.ResetData(c.Request.Context(), req.Confirmation)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, gin.H{"deleted": deleted})
}

// SeedTestData handles POST /api/seed-test-data
func (h *AdminController) SeedTestData(c *gin.Context) {
	summary, err := h.admin.SeedTestData(c.Request.Context())
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, summary)
}
