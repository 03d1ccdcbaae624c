package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/controllers"
	"github.com/kendall-kelly/box-erp-api/services"
	"github.com/kendall-kelly/box-erp-api/tests/testutil"
	"github.com/kendall-kelly/box-erp-api/workflow"
)

func newTestParams(t *testing.T, cfg *config.Config) Params {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	db := testDB.DB
	log := testutil.DiscardLogger()
	cfg.DatabasePath = testDB.Path
	cfg.UploadDir = t.TempDir()
	if cfg.MaxUploadSizeMB == 0 {
		cfg.MaxUploadSizeMB = 1
	}

	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	resources, err := services.NewResources(db, hasher)
	require.NoError(t, err)
	engine, err := workflow.Default(false)
	require.NoError(t, err)
	orders, err := services.NewOrderService(db, engine, log)
	require.NoError(t, err)
	backups := services.NewBackupService(db, services.BackupConfig{DatabasePath: cfg.DatabasePath, UploadDir: cfg.UploadDir}, func() error { return nil }, nil, log)

	respond := controllers.NewResponder(services.NewErrorLogService(db, log))
	return Params{
		Config:        cfg,
		Logger:        log,
		Resources:     controllers.NewResourceControllers(resources, services.NewStockService(db), respond),
		Orders:        controllers.NewOrderController(orders, respond),
		Notifications: controllers.NewNotificationController(services.NewNotificationService(db), respond),
		Auth:          controllers.NewAuthController(services.NewAuthService(db, hasher), respond),
		Settings:      controllers.NewSettingsController(services.NewSettingsService(db), respond),
		Logs:          controllers.NewLogController(services.NewErrorLogService(db, log), respond),
		Admin:         controllers.NewAdminController(services.NewAdminService(db, hasher, log), respond),
		Uploads:       controllers.NewUploadController(cfg, respond),
		Backups:       controllers.NewBackupController(backups, services.NewOffsiteBackupService(backups, nil, log), respond),
		Health:        controllers.NewHealthController(db, respond),
	}
}

func serve(engine http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(nil))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSetupRoutes(t *testing.T) {
	engine, err := Setup(newTestParams(t, &config.Config{GoEnv: "test", CORSAllowedOrigins: []string{"*"}}))
	require.NoError(t, err)

	routes := map[string]bool{}
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/health",
		"GET /api/database/status",
		"POST /api/auth/login",
		"GET /api/orders",
		"PATCH /api/orders/:id",
		"GET /api/customers/:id",
		"DELETE /api/products/:id",
		"GET /api/molds",
		"GET /api/personnel",
		"GET /api/machines",
		"GET /api/shifts",
		"GET /api/roles",
		"POST /api/users",
		"GET /api/messages",
		"GET /api/plans",
		"GET /api/stock/summary",
		"GET /api/stock/:id",
		"GET /api/notifications",
		"POST /api/notifications/mark-read",
		"PUT /api/settings/:key",
		"DELETE /api/logs",
		"POST /api/upload",
		"GET /uploads/:folder/:filename",
		"GET /api/backup/export",
		"POST /api/backup/import",
		"POST /api/backup/offsite",
		"POST /api/reset-data",
		"POST /api/seed-test-data",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}

	w := serve(engine, http.MethodGet, "/api/stock/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSetupCompressionAndRequestID(t *testing.T) {
	engine, err := Setup(newTestParams(t, &config.Config{GoEnv: "test", CORSAllowedOrigins: []string{"*"}}))
	require.NoError(t, err)

	w := serve(engine, http.MethodGet, "/api/molds", map[string]string{"Accept-Encoding": "gzip"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(engine, http.MethodGet, ExportPath, map[string]string{"Accept-Encoding": "gzip"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Encoding"), "archives are not compressed twice")
}

func TestSetupCORS(t *testing.T) {
	engine, err := Setup(newTestParams(t, &config.Config{GoEnv: "test", CORSAllowedOrigins: []string{"http://localhost:5173"}}))
	require.NoError(t, err)

	w := serve(engine, http.MethodOptions, "/api/orders", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "PATCH",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(engine, http.MethodGet, "/api/health", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetupWithAuth0(t *testing.T) {
	engine, err := Setup(newTestParams(t, &config.Config{
		GoEnv:              "test",
		CORSAllowedOrigins: []string{"*"},
		Auth0Domain:        "test.auth0.com",
		Auth0Audience:      "https://api.test.com",
	}))
	require.NoError(t, err)

	w := serve(engine, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")

	w = serve(engine, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestMaintenanceGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withAuth := &config.Config{Auth0Domain: "test.auth0.com", Auth0Audience: "https://api.test.com"}

	tests := []struct {
		name           string
		cfg            *config.Config
		scopes         []string
		expectedStatus int
	}{
		{"auth disabled", &config.Config{}, nil, http.StatusOK},
		{"missing scope", withAuth, []string{"read:orders"}, http.StatusForbidden},
		{"maintenance scope", withAuth, []string{"read:orders", MaintenanceScope}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(testutil.MockAuth("auth0|admin", tt.scopes...))
			engine.POST("/api/reset-data", maintenanceGuard(tt.cfg), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(engine, http.MethodPost, "/api/reset-data", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
