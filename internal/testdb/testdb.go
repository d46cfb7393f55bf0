// Package testdb hands out throwaway databases for tests
package testdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bitwise74/codedrop/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated in-memory SQLite database that only lives as long
// as the test. It has a single connection, so callers are serialized.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	d, err := db.New("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })

	return d
}

// NewFile returns a migrated SQLite database in a temp file with a pool of
// conns connections, for tests where writers have to really race
func NewFile(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	d, err := db.New("sqlite", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", path))
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)

	t.Cleanup(func() { sqlDB.Close() })

	return d
}
