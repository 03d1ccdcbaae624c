package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
)

// ErrorLogService stores server and client errors.
type ErrorLogService struct {
	db  *gorm.DB
	log *slog.Logger
}

// NewErrorLogService creates an ErrorLogService.
func NewErrorLogService(db *gorm.DB, log *slog.Logger) *ErrorLogService {
	return &ErrorLogService{db: db, log: log}
}

// Record writes an error log row. Failures are logged and swallowed.
func (s *ErrorLogService) Record(ctx context.Context, source string, cause error, fields map[string]any) {
	entry := models.ErrorLog{
		Source:  source,
		Message: cause.Error(),
		Context: datatypes.JSONMap(fields),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("failed to record error log",
			slog.String("source", source),
			slog.String("error", err.Error()),
		)
	}
}

// Create stores a client reported error.
func (s *ErrorLogService) Create(ctx context.Context, entry *models.ErrorLog) error {
	if entry.Message == "" {
		return Invalid("VALIDATION_ERROR", "message is required")
	}
	if entry.Source == "" {
		entry.Source = "client"
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translate(err, "error log")
	}
	return nil
}

// List returns the most recent entries, optionally for one source.
func (s *ErrorLogService) List(ctx context.Context, source string, limit int) ([]models.ErrorLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	tx := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if source != "" {
		tx = tx.Where("source = ?", source)
	}
	entries := []models.ErrorLog{}
	if err := tx.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list error logs: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry.
func (s *ErrorLogService) Clear(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear error logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
