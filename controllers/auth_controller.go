package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/services"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController serves /api/auth.
type AuthController struct {
	auth    *services.AuthService
	respond *Responder
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService, respond *Responder) *AuthController {
	return &AuthController{auth: auth, respond: respond}
}

// Login handles POST /api/auth/login - returns the user with role and permissions
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, session)
}
