package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/kendall-kelly/box-erp-api/models"
)

func TestLogin(t *testing.T) {
	db := setupServicesTestDB(t)
	resources := newTestResources(t, db)
	auth := NewAuthService(db, testHasher())
	ctx := context.Background()

	role := models.Role{Name: "Muhasebe", Permissions: datatypes.JSONSlice[string]{"orders", "invoices"}}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, resources.Users.Create(ctx, &models.User{Username: "muh", Password: "pw", RoleID: role.ID, Active: true}))
	require.NoError(t, resources.Users.Create(ctx, &models.User{Username: "passive", Password: "pw", Active: false}))

	session, err := auth.Login(ctx, "muh", "pw")
	require.NoError(t, err)
	assert.Equal(t, "muh", session.User.Username)
	require.NotNil(t, session.Role)
	assert.Equal(t, "Muhasebe", session.Role.Name)
	assert.Equal(t, []string{"orders", "invoices"}, session.Permissions)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "muh", "nope"},
		{"unknown user", "ghost", "pw"},
		{"inactive user", "passive", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}
