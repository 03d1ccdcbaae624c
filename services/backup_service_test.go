package services

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/models"
	"github.com/kendall-kelly/box-erp-api/tests/testutil"
)

type fakeRestarter struct {
	reasons []string
}

func (f *fakeRestarter) ScheduleRestart(reason string) {
	f.reasons = append(f.reasons, reason)
}

type backupFixture struct {
	db        *gorm.DB
	dbPath    string
	uploadDir string
	restarter *fakeRestarter
	service   *BackupService
}

func newBackupFixture(t *testing.T) *backupFixture {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(uploadDir, "designs"), 0o755))

	f := &backupFixture{
		db:        testDB.DB,
		dbPath:    testDB.Path,
		uploadDir: uploadDir,
		restarter: &fakeRestarter{},
	}
	closeDB := func() error { return config.CloseDatabase(f.db) }
	f.service = NewBackupService(f.db, BackupConfig{DatabasePath: f.dbPath, UploadDir: uploadDir}, closeDB, f.restarter, testutil.DiscardLogger())
	return f
}

func seedBackupData(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Customer{Base: models.Base{ID: "c1"}, Name: "Anadolu Gıda"}).Error)
	require.NoError(t, db.Create(&models.Order{
		Base:         models.Base{ID: "o1"},
		CustomerID:   "c1",
		CustomerName: "Anadolu Gıda",
		Status:       "design_pending",
		Items: models.LineItems{{
			ProductID: "p1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("2.5"),
		}},
	}).Error)
	require.NoError(t, db.Create(&models.Setting{Key: "company", Value: "Kutu"}).Error)
	require.NoError(t, db.Create(&models.Notification{Base: models.Base{ID: "n1"}, UserID: "u1", Title: "x"}).Error)
}

var backupTables = []string{"customers", "orders", "settings", "notifications", "schema_migrations"}

func TestBackupRoundTrip(t *testing.T) {
	f := newBackupFixture(t)
	ctx := context.Background()
	seedBackupData(t, f.db)
	require.NoError(t, os.WriteFile(filepath.Join(f.uploadDir, "designs", "logo.png"), []byte("png-bytes"), 0o644))

	before := map[string][]map[string]any{}
	for _, table := range backupTables {
		before[table] = testutil.TableDump(t, f.db, table)
	}

	var archive bytes.Buffer
	require.NoError(t, f.service.Export(ctx, &archive))

	// diverge from the archive
	require.NoError(t, f.db.Create(&models.Customer{Name: "Yeni Müşteri"}).Error)
	require.NoError(t, f.db.Exec("DELETE FROM notifications").Error)
	require.NoError(t, os.WriteFile(filepath.Join(f.uploadDir, "designs", "extra.png"), []byte("x"), 0o644))

	result, err := f.service.Import(ctx, bytes.NewReader(archive.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "erp.db", result.DatabaseFile)
	assert.Equal(t, 1, result.UploadedFiles)
	assert.True(t, result.RestartQueued)
	assert.Equal(t, []string{"backup restored"}, f.restarter.reasons)

	restored, err := config.OpenSQLite(f.dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = config.CloseDatabase(restored) })

	for _, table := range backupTables {
		assert.Equal(t, before[table], testutil.TableDump(t, restored, table), table)
	}

	content, err := os.ReadFile(filepath.Join(f.uploadDir, "designs", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
	assert.NoFileExists(t, filepath.Join(f.uploadDir, "designs", "extra.png"))
	aside, err := filepath.Glob(f.dbPath + ".old-*")
	require.NoError(t, err)
	assert.Empty(t, aside, "previous database is dropped once the swap succeeds")

	_, err = f.service.Import(ctx, bytes.NewReader(archive.Bytes()))
	assert.ErrorIs(t, err, ErrConflict, "second restore before restart")
	assert.ErrorIs(t, f.service.Export(ctx, &bytes.Buffer{}), ErrConflict)
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg, ModTime: time.Now(),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestBackupImportRejectsBadArchives(t *testing.T) {
	tests := []struct {
		name    string
		archive func(t *testing.T) []byte
	}{
		{"not gzip", func(t *testing.T) []byte { return []byte("plain text") }},
		{"no database", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"uploads/a.png": "a"})
		}},
		{"escaping entry", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"database/erp.db": "db", "../../etc/evil": "x"})
		}},
		{"two databases", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"database/a.db": "a", "database/b.db": "b"})
		}},
		{"database is not sqlite", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"database/erp.db": "this is not a sqlite database"})
		}},
		{"sqlite without migrations", func(t *testing.T) []byte {
			return buildArchive(t, map[string]string{"database/erp.db": foreignSQLite(t)})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBackupFixture(t)
			seedBackupData(t, f.db)

			_, err := f.service.Import(context.Background(), bytes.NewReader(tt.archive(t)))
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "INVALID_ARCHIVE", validationErr.Code)
			assert.Empty(t, f.restarter.reasons)

			// the live database is untouched
			assert.Equal(t, int64(1), testutil.CountRows(t, f.db, "orders"))
			leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(f.dbPath), ".restore-*"))
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

// foreignSQLite returns the bytes of a valid SQLite file that was not created by the migrations.
func foreignSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := config.OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error)
	require.NoError(t, config.CloseDatabase(db))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestBackupImportKeepsDataWhenSwapFails(t *testing.T) {
	f := newBackupFixture(t)
	ctx := context.Background()
	seedBackupData(t, f.db)
	require.NoError(t, os.WriteFile(filepath.Join(f.uploadDir, "designs", "logo.png"), []byte("png-bytes"), 0o644))

	var archive bytes.Buffer
	require.NoError(t, f.service.Export(ctx, &archive))
	require.NoError(t, f.db.Create(&models.Customer{Base: models.Base{ID: "c2"}, Name: "Sonradan Eklenen"}).Error)

	f.service.rename = func(oldpath, newpath string) error {
		if strings.Contains(oldpath, ".restore-") {
			return errors.New("no space left on device")
		}
		return os.Rename(oldpath, newpath)
	}

	_, err := f.service.Import(ctx, bytes.NewReader(archive.Bytes()))
	require.Error(t, err)
	assert.Equal(t, []string{"backup restore failed"}, f.restarter.reasons, "closed pool still needs a restart")

	reopened, err := config.OpenSQLite(f.dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = config.CloseDatabase(reopened) })
	assert.Equal(t, int64(2), testutil.CountRows(t, reopened, "customers"), "live database is put back")

	aside, err := filepath.Glob(f.dbPath + ".old-*")
	require.NoError(t, err)
	assert.Empty(t, aside)
	assert.FileExists(t, filepath.Join(f.uploadDir, "designs", "logo.png"))

	_, err = f.service.Import(ctx, bytes.NewReader(archive.Bytes()))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBackupUnsupportedOnPostgres(t *testing.T) {
	service := NewBackupService(nil, BackupConfig{Postgres: true}, nil, nil, testutil.DiscardLogger())

	assert.ErrorIs(t, service.Export(context.Background(), &bytes.Buffer{}), ErrUnsupported)
	_, err := service.Import(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestArchiveName(t *testing.T) {
	name := ArchiveName(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
	assert.Equal(t, "erp-backup-20240309-140507.tar.gz", name)
}

func TestOffsiteUpload(t *testing.T) {
	f := newBackupFixture(t)
	seedBackupData(t, f.db)
	store := NewMockS3Service()
	offsite := NewOffsiteBackupService(f.service, store, testutil.DiscardLogger())
	offsite.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

	result, err := offsite.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/erp-backup-20240309-140507.tar.gz", result.Key)
	assert.Contains(t, result.URL, result.Key)

	objects := store.Objects()
	require.Contains(t, objects, result.Key)
	assert.Equal(t, result.Size, int64(len(objects[result.Key])))

	gz, err := gzip.NewReader(bytes.NewReader(objects[result.Key]))
	require.NoError(t, err)
	header, err := tar.NewReader(gz).Next()
	require.NoError(t, err)
	assert.Equal(t, "database/erp.db", header.Name)
}

func TestOffsiteDisabled(t *testing.T) {
	offsite := NewOffsiteBackupService(nil, nil, testutil.DiscardLogger())
	assert.False(t, offsite.Enabled())

	_, err := offsite.Upload(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}
