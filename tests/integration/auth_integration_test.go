package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kendall-kelly/box-erp-api/models"
)

func TestLocalLogin(t *testing.T) {
	h := startApp(t, nil)

	w := h.do(t, http.MethodPost, "/api/roles", map[string]any{"name": "Yönetici", "permissions": []string{"orders", "admin"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roleID := decodeData[models.Role](t, w).ID

	w = h.do(t, http.MethodPost, "/api/users", map[string]any{"username": "mehmet", "password": "gizli-parola", "roleId": roleID, "active": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored models.User
	require.NoError(t, h.db.Where("username = ?", "mehmet").First(&stored).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("gizli-parola")))

	tests := []struct {
		name           string
		password       string
		expectedStatus int
	}{
		{"correct password", "gizli-parola", http.StatusOK},
		{"wrong password", "yanlis", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "mehmet", "password": tt.password})
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestAuth0Perimeter(t *testing.T) {
	h := startApp(t, map[string]string{
		"AUTH0_DOMAIN":   "test.auth0.com",
		"AUTH0_AUDIENCE": "https://api.test.com",
	})

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
	}{
		{"health is public", http.MethodGet, "/api/health", nil, http.StatusOK},
		{"database status is public", http.MethodGet, "/api/database/status", nil, http.StatusOK},
		{"login is public", http.MethodPost, "/api/auth/login", map[string]any{"username": "x", "password": "y"}, http.StatusUnauthorized},
		{"orders need a token", http.MethodGet, "/api/orders", nil, http.StatusUnauthorized},
		{"reset needs a token", http.MethodPost, "/api/reset-data", map[string]any{"confirmation": "SIFIRLA"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := h.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, w).Error.Code)
}
