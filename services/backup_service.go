package services

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/config"
)

// Archive layout.
const (
	archiveDatabaseDir = "database"
	archiveUploadsDir  = "uploads"
)

// BackupConfig locates the files a backup covers.
type BackupConfig struct {
	DatabasePath string
	UploadDir    string
	Postgres     bool
}

// Restarter schedules a process restart.
type Restarter interface {
	ScheduleRestart(reason string)
}

// DatabaseCloser releases the database before its file is replaced.
type DatabaseCloser func() error

// ImportResult describes a restored archive.
type ImportResult struct {
	DatabaseFile  string `json:"databaseFile"`
	UploadedFiles int    `json:"uploadedFiles"`
	RestartQueued bool   `json:"restartQueued"`
}

// BackupService exports and restores the database file and uploads.
type BackupService struct {
	db        *gorm.DB
	cfg       BackupConfig
	closeDB   DatabaseCloser
	restarter Restarter
	log       *slog.Logger
	rename    func(oldpath, newpath string) error

	mu       sync.Mutex
	restored bool
}

// NewBackupService creates a BackupService.
func NewBackupService(db *gorm.DB, cfg BackupConfig, closeDB DatabaseCloser, restarter Restarter, log *slog.Logger) *BackupService {
	return &BackupService{db: db, cfg: cfg, closeDB: closeDB, restarter: restarter, log: log, rename: os.Rename}
}

// ArchiveName returns a timestamped file name for an export.
func ArchiveName(now time.Time) string {
	return fmt.Sprintf("erp-backup-%s.tar.gz", now.UTC().Format("20060102-150405"))
}

// Export writes a tar.gz holding a consistent copy of the database and every upload.
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	if err := s.usable(); err != nil {
		return err
	}

	snapshotDir, err := os.MkdirTemp("", "erp-snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	defer os.RemoveAll(snapshotDir)

	snapshot := filepath.Join(snapshotDir, filepath.Base(s.cfg.DatabasePath))
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", snapshot).Error; err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	dbName := path.Join(archiveDatabaseDir, filepath.Base(s.cfg.DatabasePath))
	if err := addFile(tw, snapshot, dbName); err != nil {
		return err
	}

	files := 0
	if _, err := os.Stat(s.cfg.UploadDir); err == nil {
		err := filepath.WalkDir(s.cfg.UploadDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(s.cfg.UploadDir, p)
			if err != nil {
				return err
			}
			files++
			return addFile(tw, p, path.Join(archiveUploadsDir, filepath.ToSlash(rel)))
		})
		if err != nil {
			return fmt.Errorf("failed to archive uploads: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	s.log.Info("backup exported", slog.String("database", dbName), slog.Int("uploads", files))
	return nil
}

func addFile(tw *tar.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Import restores an archive produced by Export. The database pool is closed,
// the database file and upload folder are swapped in and a restart is scheduled.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return nil, fmt.Errorf("a restore is pending restart: %w", ErrConflict)
	}

	parent := filepath.Dir(s.cfg.DatabasePath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".restore-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	result, stagedDB, err := extractArchive(ctx, r, staging)
	if err != nil {
		return nil, err
	}
	if err := verifyDatabase(ctx, stagedDB); err != nil {
		return nil, err
	}

	if err := s.closeDB(); err != nil {
		return nil, fmt.Errorf("failed to close database: %w", err)
	}
	s.restored = true

	if err := s.swapIn(stagedDB, filepath.Join(staging, archiveUploadsDir)); err != nil {
		// The pool is closed either way; a restart reopens the previous data.
		s.log.Error("backup restore failed, previous data kept", slog.String("error", err.Error()))
		s.scheduleRestart("backup restore failed")
		return nil, err
	}

	s.log.Warn("backup restored, restart scheduled",
		slog.String("database", result.DatabaseFile),
		slog.Int("uploads", result.UploadedFiles),
	)
	result.RestartQueued = s.scheduleRestart("backup restored")
	return result, nil
}

func (s *BackupService) scheduleRestart(reason string) bool {
	if s.restarter == nil {
		return false
	}
	s.restarter.ScheduleRestart(reason)
	return true
}

// swapIn moves the staged database and uploads into place. The live database is
// kept aside until both are in place and is put back when either step fails.
func (s *BackupService) swapIn(stagedDB, stagedUploads string) error {
	live := s.cfg.DatabasePath
	aside := live + ".old-" + time.Now().UTC().Format("20060102150405")

	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = os.Remove(live + suffix)
	}
	hadLive := false
	if _, err := os.Stat(live); err == nil {
		if err := s.rename(live, aside); err != nil {
			return fmt.Errorf("failed to move database aside: %w", err)
		}
		hadLive = true
	}
	rollback := func() {
		_ = os.Remove(live)
		if hadLive {
			if err := s.rename(aside, live); err != nil {
				s.log.Error("failed to put database back", slog.String("path", aside), slog.String("error", err.Error()))
			}
		}
	}

	if err := s.rename(stagedDB, live); err != nil {
		rollback()
		return fmt.Errorf("failed to replace database: %w", err)
	}
	if err := os.MkdirAll(stagedUploads, 0o755); err != nil {
		rollback()
		return err
	}
	if err := swapDir(stagedUploads, s.cfg.UploadDir); err != nil {
		rollback()
		return err
	}

	if hadLive {
		if err := os.Remove(aside); err != nil {
			s.log.Warn("previous database left in place", slog.String("path", aside), slog.String("error", err.Error()))
		}
	}
	return nil
}

// verifyDatabase accepts only an intact SQLite file that carries the migration table.
func verifyDatabase(ctx context.Context, path string) error {
	db, err := config.OpenSQLite(path, nil)
	if err != nil {
		return Invalid("INVALID_ARCHIVE", "archive database cannot be opened")
	}
	defer func() { _ = config.CloseDatabase(db) }()

	var results []string
	err = db.WithContext(ctx).Raw("PRAGMA integrity_check").Scan(&results).Error
	if err != nil || len(results) != 1 || results[0] != "ok" {
		return Invalid("INVALID_ARCHIVE", "archive database is not a valid SQLite database")
	}
	if !db.WithContext(ctx).Migrator().HasTable("schema_migrations") {
		return Invalid("INVALID_ARCHIVE", "archive database has no schema_migrations table")
	}
	return nil
}

func (s *BackupService) usable() error {
	if s.cfg.Postgres {
		return fmt.Errorf("backups need a SQLite database file: %w", ErrUnsupported)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return fmt.Errorf("a restore is pending restart: %w", ErrConflict)
	}
	return nil
}

// extractArchive unpacks r under dir and returns the staged database path.
func extractArchive(ctx context.Context, r io.Reader, dir string) (*ImportResult, string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, "", Invalid("INVALID_ARCHIVE", "archive is not gzip compressed")
	}
	defer gz.Close()

	result := &ImportResult{}
	stagedDB := ""
	tr := tar.NewReader(gz)
	for {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", Invalid("INVALID_ARCHIVE", "archive is corrupt")
		}

		name := path.Clean(strings.TrimPrefix(filepath.ToSlash(header.Name), "./"))
		if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return nil, "", Invalid("INVALID_ARCHIVE", "archive entry %q escapes the archive", header.Name)
		}
		top, rest, _ := strings.Cut(name, "/")
		if top != archiveDatabaseDir && top != archiveUploadsDir {
			continue
		}

		target := filepath.Join(dir, filepath.FromSlash(name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, "", err
			}
		case tar.TypeReg:
			if top == archiveDatabaseDir {
				if rest == "" || strings.Contains(rest, "/") || stagedDB != "" {
					return nil, "", Invalid("INVALID_ARCHIVE", "archive must hold exactly one database file")
				}
				stagedDB = target
				result.DatabaseFile = rest
			} else {
				result.UploadedFiles++
			}
			if err := writeEntry(tr, target); err != nil {
				return nil, "", err
			}
		default:
			// links and devices are never restored
		}
	}

	if stagedDB == "" {
		return nil, "", Invalid("INVALID_ARCHIVE", "archive has no database file")
	}
	return result, stagedDB, nil
}

func writeEntry(r io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to extract %s: %w", target, err)
	}
	return f.Close()
}

// swapDir replaces dst with src, keeping dst until src is in place.
func swapDir(src, dst string) error {
	old := dst + ".old-" + time.Now().UTC().Format("20060102150405")
	hadOld := false
	if _, err := os.Stat(dst); err == nil {
		if err := os.Rename(dst, old); err != nil {
			return fmt.Errorf("failed to move uploads aside: %w", err)
		}
		hadOld = true
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		// staging may sit on another filesystem
		if err := copyTree(src, dst); err != nil {
			_ = os.RemoveAll(dst)
			if hadOld {
				_ = os.Rename(old, dst)
			}
			return fmt.Errorf("failed to restore uploads: %w", err)
		}
	}
	if hadOld {
		return os.RemoveAll(old)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeEntry(f, target)
	})
}
