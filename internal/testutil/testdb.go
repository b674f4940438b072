package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/prdsmith/internal/db"
)

// NewTestDB opens a migrated in-memory database that is closed with the test.
// It holds a single connection, so code under test must not touch it while a
// transaction is open.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, db.MemoryPath)
}

// NewFileTestDB opens a migrated database file in a temp directory. Unlike
// NewTestDB its pool has many connections, for tests that need real
// concurrent access under WAL.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "prdsmith_test.db"))
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(path)
	require.NoError(t, err, "opening test database %s", path)
	t.Cleanup(func() { conn.Close() })
	return conn
}
