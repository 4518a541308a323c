// Package db opens connection pools against the databases being scanned.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	// database/sql drivers for the supported dialects
	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"sens-scan/internal/domain"
)

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
	DialectDuckDB   = "duckdb"
)

const (
	defaultPingTimeout   = 5 * time.Second
	defaultSQLiteTimeout = "5000" // busy_timeout, milliseconds
)

// driverName maps a dialect to its registered database/sql driver.
func driverName(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "pgx", nil
	case DialectSQLite:
		return "sqlite3", nil
	case DialectDuckDB:
		return "duckdb", nil
	default:
		return "", domain.ErrValidation("unsupported dialect %q: must be postgres, sqlite or duckdb", dialect)
	}
}

// Open opens a *sql.DB pool for dialect sized to maxOpen connections and
// verifies it with a ping. maxOpen <= 0 defaults to 1.
//
// Every open, configuration, or ping failure is returned as a
// *domain.ConnectivityError, except an unknown dialect which is a
// *domain.ValidationError.
func Open(ctx context.Context, dialect, dsn string, maxOpen int) (*sql.DB, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}
	if maxOpen <= 0 {
		maxOpen = 1
	}

	if dialect == DialectSQLite {
		dsn = buildSQLiteDSN(dsn)
	}

	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, domain.ErrConnectivity(fmt.Sprintf("open %s", dialect), err)
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxOpen)
	pool.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, domain.ErrConnectivity(fmt.Sprintf("ping %s", dialect), err)
	}

	return pool, nil
}

// buildSQLiteDSN adds a busy timeout so concurrent readers wait on locks
// instead of failing. Caller-supplied parameters win.
func buildSQLiteDSN(dsn string) string {
	path, rawQuery, _ := strings.Cut(dsn, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}
	if params.Get("_busy_timeout") == "" {
		params.Set("_busy_timeout", defaultSQLiteTimeout)
	}
	return path + "?" + params.Encode()
}
