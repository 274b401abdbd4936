package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/mytournaments/db"
)

// NewTestDB returns a migrated SQLite database that lives in the test's temp dir.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mytournaments_test.db")
	conn, err := db.Connect(db.DriverSQLite, path, 5*time.Second)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	if err := db.Migrate(conn, db.DriverSQLite); err != nil {
		conn.Close()
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

// MustExec runs a statement and fails the test on error. It returns the last insert id.
func MustExec(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()

	res, err := conn.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return int(id)
}
