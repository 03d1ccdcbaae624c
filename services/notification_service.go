package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
)

// NotificationService is the read side of notifications.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Unread returns unread notifications addressed to userID or roleID, newest first.
// With neither given it returns an empty list.
func (s *NotificationService) Unread(ctx context.Context, userID, roleID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if userID == "" && roleID == "" {
		return notifications, nil
	}

	tx := s.db.WithContext(ctx).Where("is_read = ?", false)
	switch {
	case userID != "" && roleID != "":
		tx = tx.Where("(user_id = ? OR role_id = ?)", userID, roleID)
	case userID != "":
		tx = tx.Where("user_id = ?", userID)
	default:
		tx = tx.Where("role_id = ?", roleID)
	}

	if err := tx.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags the given notifications as read and returns how many changed.
func (s *NotificationService) MarkRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, Invalid("VALIDATION_ERROR", "ids must not be empty")
	}
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ? AND is_read = ?", ids, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
