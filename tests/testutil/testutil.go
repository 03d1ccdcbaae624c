package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/migrations"
	"github.com/kendall-kelly/box-erp-api/models"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB is a migrated SQLite database in a temporary directory.
type TestDB struct {
	DB   *gorm.DB
	Path string
}

// NewTestDB opens a fresh database file under t.TempDir and applies every migration.
// The database is closed when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "erp.db")
	db, err := config.OpenSQLite(path, nil)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = config.CloseDatabase(db) })

	_, err = migrations.Default(db, DiscardLogger()).Run(context.Background())
	require.NoError(t, err, "migrate test database")

	return &TestDB{DB: db, Path: path}
}

// CreateRoles inserts roles with the given names and returns them keyed by name.
func CreateRoles(t *testing.T, db *gorm.DB, names ...string) map[string]models.Role {
	t.Helper()

	roles := make(map[string]models.Role, len(names))
	for _, name := range names {
		role := models.Role{Name: name}
		require.NoError(t, db.Create(&role).Error, "create role %s", name)
		roles[name] = role
	}
	return roles
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Table(table).Count(&count).Error)
	return count
}

// TableDump returns every row of table as maps ordered by id.
func TableDump(t *testing.T, db *gorm.DB, table string) []map[string]any {
	t.Helper()

	var rows []map[string]any
	require.NoError(t, db.Table(table).Order(orderColumn(table)).Find(&rows).Error, "dump %s", table)
	return rows
}

func orderColumn(table string) string {
	switch table {
	case "settings":
		return "key"
	case "schema_migrations":
		return "version"
	default:
		return "id"
	}
}
