package controllers

import "go.uber.org/fx"

// Module provides every HTTP controller.
var Module = fx.Provide(
	NewResponder,
	NewResourceControllers,
	NewOrderController,
	NewNotificationController,
	NewAuthController,
	NewSettingsController,
	NewLogController,
	NewAdminController,
	NewUploadController,
	NewBackupController,
	NewHealthController,
)
