package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/controllers"
	"github.com/kendall-kelly/box-erp-api/middleware"
)

// MaintenanceScope is required on destructive endpoints when tokens are checked.
const MaintenanceScope = "admin:maintenance"

// ExportPath streams an already compressed archive and is excluded from gzip.
const ExportPath = "/api/backup/export"

// Params are the dependencies of Setup.
type Params struct {
	fx.In

	Config        *config.Config
	Logger        *slog.Logger
	Resources     *controllers.ResourceControllers
	Orders        *controllers.OrderController
	Notifications *controllers.NotificationController
	Auth          *controllers.AuthController
	Settings      *controllers.SettingsController
	Logs          *controllers.LogController
	Admin         *controllers.AdminController
	Uploads       *controllers.UploadController
	Backups       *controllers.BackupController
	Health        *controllers.HealthController
}

// Setup configures the gin engine with middleware and every route.
func Setup(p Params) (*gin.Engine, error) {
	switch {
	case p.Config.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case p.Config.IsTest():
		gin.SetMode(gin.TestMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(cors.New(corsConfig(p.Config)))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{ExportPath})))

	engine.GET("/uploads/:folder/:filename", p.Uploads.Serve)

	public := engine.Group("/api")
	public.GET("/health", p.Health.Health)
	public.GET("/database/status", p.Health.DatabaseStatus)
	public.POST("/auth/login", p.Auth.Login)

	api := engine.Group("/api")
	if p.Config.AuthEnabled() {
		ensureValidToken, err := middleware.EnsureValidToken(p.Config, p.Logger)
		if err != nil {
			return nil, err
		}
		api.Use(ensureValidToken)
	}

	p.Orders.Register(api.Group("/orders"))
	p.Resources.Register(api)

	api.GET("/notifications", p.Notifications.List)
	api.POST("/notifications/mark-read", p.Notifications.MarkRead)

	api.GET("/settings", p.Settings.List)
	api.PUT("/settings/:key", p.Settings.Put)

	api.GET("/logs", p.Logs.List)
	api.POST("/logs", p.Logs.Create)
	api.DELETE("/logs", p.Logs.Clear)

	api.POST("/upload", p.Uploads.Upload)

	api.GET("/backup/export", p.Backups.Export)
	api.POST("/backup/offsite", p.Backups.Offsite)

	maintenance := api.Group("", maintenanceGuard(p.Config))
	maintenance.POST("/backup/import", p.Backups.Import)
	maintenance.POST("/reset-data", p.Admin.ResetData)
	maintenance.POST("/seed-test-data", p.Admin.SeedTestData)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})

	return engine, nil
}

// maintenanceGuard demands MaintenanceScope when the Auth0 perimeter is on.
func maintenanceGuard(cfg *config.Config) gin.HandlerFunc {
	if !cfg.AuthEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RequireScope(MaintenanceScope)
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
		c.AllowCredentials = true
	}
	return c
}
