package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/services"
)

// MarkReadRequest represents the request body for marking notifications read
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// NotificationController serves /api/notifications.
type NotificationController struct {
	notifications *services.NotificationService
	respond       *Responder
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(notifications *services.NotificationService, respond *Responder) *NotificationController {
	return &NotificationController{notifications: notifications, respond: respond}
}

// List handles GET /api/notifications?userId=&roleId= - unread notifications for a user or role
func (h *NotificationController) List(c *gin.Context) {
	notifications, err := h.notifications.Unread(c.Request.Context(), c.Query("userId"), c.Query("roleId"))
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, notifications)
}

// MarkRead handles POST /api/notifications/mark-read
func (h *NotificationController) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), req.IDs)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, gin.H{"updated": updated})
}
