package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sens-scan/internal/db"
	"sens-scan/internal/domain"
)

func openScanner(t *testing.T, dialect, path string) *Scanner {
	t.Helper()
	pool, err := db.Open(context.Background(), dialect, path, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	d, err := DialectFor(dialect)
	require.NoError(t, err)
	return NewScanner(pool, d, slog.New(slog.DiscardHandler))
}

func names(cols []*domain.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.QualifiedName()
	}
	return out
}

func TestScanner_SQLiteExcludesPrimaryKeys(t *testing.T) {
	path := db.CreateTestSQLite(t,
		`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT, age INTEGER, photo BLOB)`,
		`CREATE TABLE orders (order_no TEXT, user_id INTEGER, amount NUMERIC, PRIMARY KEY (order_no))`,
	)
	s := openScanner(t, db.DialectSQLite, path)

	cols, err := s.ListColumns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"main.orders.user_id",
		"main.orders.amount",
		"main.users.email",
		"main.users.age",
		"main.users.photo",
	}, names(cols))

	email := cols[2]
	assert.Equal(t, "TEXT", email.Type)
	assert.Equal(t, domain.ObjectID("main", "users", "email"), email.ObjID)
	assert.Equal(t, domain.TableID("main", "users"), email.TblID)

	tags, err := s.ListTagOverrides(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestScanner_SQLiteIdempotent(t *testing.T) {
	path := db.CreateTestSQLite(t, `CREATE TABLE a (x TEXT, y TEXT)`, `CREATE TABLE b (z TEXT)`)
	s := openScanner(t, db.DialectSQLite, path)

	first, err := s.ListColumns(context.Background())
	require.NoError(t, err)
	second, err := s.ListColumns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScanner_DuckDB(t *testing.T) {
	path := db.CreateTestDuckDB(t,
		`CREATE SEQUENCE seq_id`,
		`CREATE TABLE customers (id INTEGER DEFAULT nextval('seq_id'), code VARCHAR PRIMARY KEY, email VARCHAR, born DATE)`,
		`COMMENT ON COLUMN customers.email IS 'contact address :sens'`,
		`COMMENT ON COLUMN customers.born IS ':nosens'`,
		`CREATE SCHEMA crm`,
		`CREATE TABLE crm.notes (body VARCHAR, score DOUBLE)`,
	)
	s := openScanner(t, db.DialectDuckDB, path)

	cols, err := s.ListColumns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"crm.notes.body",
		"crm.notes.score",
		"main.customers.email",
		"main.customers.born",
	}, names(cols))

	tags, err := s.ListTagOverrides(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	byColumn := map[string]domain.TagOverride{}
	for _, tag := range tags {
		byColumn[tag.Column] = tag
	}
	sens, ok := byColumn["email"].Verdict()
	assert.True(t, ok)
	assert.True(t, sens)
	sens, ok = byColumn["born"].Verdict()
	assert.True(t, ok)
	assert.False(t, sens)
}

func TestScanner_QueryErrorIsConnectivity(t *testing.T) {
	pool, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	s := NewScanner(pool, sqlite, slog.New(slog.DiscardHandler))
	_, err = s.ListColumns(context.Background())
	var cErr *domain.ConnectivityError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "scan columns", cErr.Op)
}

func TestSampleQuery(t *testing.T) {
	col := domain.NewColumn("public", `we"ird`, "e-mail", "text", 1, 1)

	tests := []struct {
		dialect Dialect
		limit   int
		want    string
	}{
		{postgres, 0, `SELECT DISTINCT substring(CAST("e-mail" AS text), 1, 8192) FROM "public"."we""ird" WHERE "e-mail" IS NOT NULL`},
		{postgres, 100, `SELECT DISTINCT substring(CAST("e-mail" AS text), 1, 8192) FROM "public"."we""ird" WHERE "e-mail" IS NOT NULL LIMIT 100`},
		{duckdb, 5, `SELECT DISTINCT substring(CAST("e-mail" AS VARCHAR), 1, 8192) FROM "public"."we""ird" WHERE "e-mail" IS NOT NULL LIMIT 5`},
		{sqlite, 0, `SELECT DISTINCT substr(CAST("e-mail" AS TEXT), 1, 8192) FROM "public"."we""ird" WHERE "e-mail" IS NOT NULL`},
	}
	for _, tc := range tests {
		t.Run(tc.dialect.Name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.dialect.SampleQuery(col, tc.limit))
		})
	}
}

func TestPostgresColumnsQueryExclusions(t *testing.T) {
	q := postgres.columnsQuery
	assert.Contains(t, q, "c.relkind IN ('r', 'p')")
	assert.Contains(t, q, "NOT IN ('pg_catalog', 'information_schema', 'pg_toast')")
	assert.Contains(t, q, "i.indisprimary")
	assert.Contains(t, q, "d.deptype = 'a'")
	assert.Contains(t, q, "s.relkind = 'S'")
	assert.Contains(t, q, "ORDER BY n.nspname, c.relname, a.attnum")
	assert.True(t, postgres.SupportsTags())
	assert.False(t, sqlite.SupportsTags())
}

// selectItems splits the top-level SELECT list of q, ignoring commas nested
// in parentheses.
func selectItems(q string) []string {
	upper := strings.ToUpper(q)
	start := strings.Index(upper, "SELECT") + len("SELECT")
	end := strings.Index(upper, "\nFROM")
	var items []string
	depth, last := 0, start
	for i := start; i < end; i++ {
		switch q[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(q[last:i]))
				last = i + 1
			}
		}
	}
	return append(items, strings.TrimSpace(q[last:end]))
}

func TestQueriesMatchScannerShape(t *testing.T) {
	for _, d := range []Dialect{postgres, duckdb, sqlite} {
		t.Run(d.Name, func(t *testing.T) {
			// schema, table, column, type, table id, ordinal
			assert.Len(t, selectItems(d.columnsQuery), 6)
			if d.SupportsTags() {
				// schema, table, column, comment
				assert.Len(t, selectItems(d.tagsQuery), 4)
			}
		})
	}
	assert.Equal(t, "format_type(a.atttypid, a.atttypmod)", selectItems(postgres.columnsQuery)[3])
}

func TestPostgresExclusionsAreCorrelated(t *testing.T) {
	q := postgres.columnsQuery
	parts := strings.Split(q, "NOT EXISTS")
	require.Len(t, parts, 3)

	pk := parts[1]
	assert.Contains(t, pk, "FROM pg_index i")
	assert.Contains(t, pk, "i.indrelid = c.oid")
	assert.Contains(t, pk, "a.attnum = ANY(i.indkey)")

	seq := parts[2]
	assert.Contains(t, seq, "JOIN pg_class s ON s.oid = d.objid")
	assert.Contains(t, seq, "d.refobjid = c.oid")
	assert.Contains(t, seq, "d.refobjsubid = a.attnum")
	assert.Contains(t, seq, "d.classid = 'pg_catalog.pg_class'::regclass")

	assert.Contains(t, q, "a.attnum > 0")
	assert.Contains(t, q, "NOT a.attisdropped")
}

func TestPostgresTagsQuery(t *testing.T) {
	q := postgres.tagsQuery
	// column comments only: objsubid 0 is the table comment
	assert.Contains(t, q, "d.objoid = a.attrelid AND d.objsubid = a.attnum")
	assert.Contains(t, q, "a.attnum > 0")
	assert.Contains(t, q, "c.relkind IN ('r', 'p')")
	assert.Contains(t, q, "LIKE '%:sens%'")
	assert.Contains(t, q, "LIKE '%:nosens%'")
	assert.True(t, strings.HasSuffix(q, "ORDER BY n.nspname, c.relname, a.attname"))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name)

	_, err = DialectFor("mysql")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestIsSampledType(t *testing.T) {
	for _, typ := range []string{"text", "character varying(64)", "bigint", "INTEGER", "numeric(10,2)",
		"timestamp without time zone", "date", "jsonb", "VARCHAR", "DOUBLE", "uuid"} {
		assert.True(t, IsSampledType(typ), typ)
	}
	for _, typ := range []string{"bytea", "boolean", "BLOB", "inet", "tsvector"} {
		assert.False(t, IsSampledType(typ), typ)
	}
}
