package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"
)

// OffsiteResult describes an archive copied to object storage.
type OffsiteResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// OffsiteBackupService copies backup archives to object storage.
type OffsiteBackupService struct {
	backups *BackupService
	store   ObjectStore
	prefix  string
	log     *slog.Logger
	now     func() time.Time
}

// NewOffsiteBackupService creates an OffsiteBackupService. A nil store disables it.
func NewOffsiteBackupService(backups *BackupService, store ObjectStore, log *slog.Logger) *OffsiteBackupService {
	return &OffsiteBackupService{backups: backups, store: store, prefix: "backups", log: log, now: time.Now}
}

// Enabled reports whether an object store is configured.
func (s *OffsiteBackupService) Enabled() bool {
	return s.store != nil
}

// Upload builds an archive and stores it off site.
func (s *OffsiteBackupService) Upload(ctx context.Context) (*OffsiteResult, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("off-site storage is not configured: %w", ErrUnsupported)
	}

	tmp, err := os.CreateTemp("", "erp-offsite-*.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := s.backups.Export(ctx, tmp); err != nil {
		return nil, err
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := path.Join(s.prefix, ArchiveName(s.now()))
	if err := s.store.UploadObject(ctx, key, tmp, "application/gzip"); err != nil {
		return nil, err
	}
	url, err := s.store.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, err
	}

	s.log.Info("backup copied off site", slog.String("key", key), slog.Int64("size", size))
	return &OffsiteResult{Key: key, URL: url, Size: size}, nil
}
