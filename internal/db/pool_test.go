package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sens-scan/internal/domain"
)

func TestBuildSQLiteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/x.sqlite?_busy_timeout=5000", buildSQLiteDSN("/tmp/x.sqlite"))
	assert.Equal(t, "/tmp/x.sqlite?_busy_timeout=100&mode=ro", buildSQLiteDSN("/tmp/x.sqlite?mode=ro&_busy_timeout=100"))
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn", 2)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "unsupported dialect")
}

func TestOpen_SQLitePoolSize(t *testing.T) {
	pool, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "p.sqlite"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	assert.Equal(t, 3, pool.Stats().MaxOpenConnections)

	var timeout int
	require.NoError(t, pool.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestOpen_DefaultsToOneConnection(t *testing.T) {
	pool, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "p.sqlite"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	assert.Equal(t, 1, pool.Stats().MaxOpenConnections)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, DialectPostgres, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", 1)
	var cErr *domain.ConnectivityError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "ping postgres", cErr.Op)
}

func TestCreateTestSQLite(t *testing.T) {
	path := CreateTestSQLite(t, "CREATE TABLE t (a TEXT)", "INSERT INTO t VALUES ('x')")

	pool, err := Open(context.Background(), DialectSQLite, path, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	var n int
	require.NoError(t, pool.QueryRow("SELECT count(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}
