package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController reports service and database health.
type HealthController struct {
	db      *gorm.DB
	respond *Responder
}

// NewHealthController creates a HealthController.
func NewHealthController(db *gorm.DB, respond *Responder) *HealthController {
	return &HealthController{db: db, respond: respond}
}

// Health handles the health check endpoint
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Box ERP API is running",
	})
}

// DatabaseStatus checks database connectivity and returns table information
func (h *HealthController) DatabaseStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sqlDB, err := h.db.DB()
	if err != nil {
		h.respond.Fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance")
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		h.respond.Fail(c, http.StatusInternalServerError, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	query := "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	if h.db.Dialector.Name() == "postgres" {
		query = "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"
	}

	tables := []string{}
	if err := h.db.WithContext(ctx).Raw(query).Scan(&tables).Error; err != nil {
		h.respond.Fail(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"driver":  h.db.Dialector.Name(),
		"tables":  tables,
	})
}
