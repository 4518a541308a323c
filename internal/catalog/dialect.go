// Package catalog discovers candidate columns and their sensitivity
// annotations from a database catalog, and builds the per-column sampling
// statements for each supported dialect.
package catalog

import (
	"strconv"
	"strings"

	"sens-scan/internal/db"
	"sens-scan/internal/domain"
)

// MaxSampleLength bounds the length of every sampled value, in characters.
const MaxSampleLength = 8192

// Dialect holds the catalog and sampling SQL for one database engine.
type Dialect struct {
	Name string

	// columnsQuery returns (schema, table, column, type, table oid, ordinal)
	// for eligible columns ordered by schema, table, ordinal.
	columnsQuery string
	// tagsQuery returns (schema, table, column, comment) for annotated
	// columns; empty when the engine has no column comments.
	tagsQuery string
	// substrFunc is the engine's substring(text, start, length) function.
	substrFunc string
	// textType is the type sampled values are cast to.
	textType string
}

// DialectFor returns the Dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case db.DialectPostgres:
		return postgres, nil
	case db.DialectDuckDB:
		return duckdb, nil
	case db.DialectSQLite:
		return sqlite, nil
	default:
		return Dialect{}, domain.ErrValidation("unsupported dialect %q", name)
	}
}

// SupportsTags reports whether the engine can carry column annotations.
func (d Dialect) SupportsTags() bool { return d.tagsQuery != "" }

// SampleQuery builds the statement fetching distinct non-null values of
// col cast to text and truncated to MaxSampleLength. limit > 0 bounds the
// number of rows returned.
func (d Dialect) SampleQuery(col *domain.Column, limit int) string {
	column := QuoteIdent(col.Name)
	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	b.WriteString(d.substrFunc)
	b.WriteString("(CAST(")
	b.WriteString(column)
	b.WriteString(" AS ")
	b.WriteString(d.textType)
	b.WriteString("), 1, ")
	b.WriteString(strconv.Itoa(MaxSampleLength))
	b.WriteString(") FROM ")
	b.WriteString(QuoteIdent(col.Schema))
	b.WriteByte('.')
	b.WriteString(QuoteIdent(col.Table))
	b.WriteString(" WHERE ")
	b.WriteString(column)
	b.WriteString(" IS NOT NULL")
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
	}
	return b.String()
}

// QuoteIdent double-quotes an SQL identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sampledTypes lists the type fragments considered able to carry
// meaningful text content.
var sampledTypes = []string{
	"text", "char", "int", "numeric", "decimal", "real", "double", "float",
	"date", "time", "json", "xml", "uuid",
}

// IsSampledType reports whether a column of the declared type is worth
// sampling.
func IsSampledType(declared string) bool {
	t := strings.ToLower(declared)
	for _, frag := range sampledTypes {
		if strings.Contains(t, frag) {
			return true
		}
	}
	return false
}
