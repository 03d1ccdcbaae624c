package services

import (
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

// Module provides the database backed services.
var Module = fx.Provide(
	newPasswordHasher,
	NewResources,
	NewOrderService,
	NewAuthService,
	NewNotificationService,
	NewErrorLogService,
	NewSettingsService,
	NewStockService,
	NewAdminService,
	NewOffsiteBackupService,
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(bcrypt.DefaultCost)
}
