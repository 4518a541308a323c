package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// CreateTestSQLite creates a SQLite file in t.TempDir(), runs the given
// statements against it, closes it, and returns its path. The file is
// closed so that callers exercise their own pool lifecycle.
func CreateTestSQLite(t *testing.T, stmts ...string) string {
	t.Helper()
	return createTestDB(t, DialectSQLite, "test.sqlite", stmts)
}

// CreateTestDuckDB is CreateTestSQLite for DuckDB.
func CreateTestDuckDB(t *testing.T, stmts ...string) string {
	t.Helper()
	return createTestDB(t, DialectDuckDB, "test.duckdb", stmts)
}

func createTestDB(t *testing.T, dialect, name string, stmts []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	pool, err := Open(context.Background(), dialect, path, 1)
	if err != nil {
		t.Fatalf("open test %s: %v", dialect, err)
	}
	defer func(pool *sql.DB) { _ = pool.Close() }(pool)

	for _, stmt := range stmts {
		if _, err := pool.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}
