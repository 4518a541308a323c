package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"

	"sens-scan/internal/domain"
)

// Compile-time check: Scanner implements domain.CatalogReader.
var _ domain.CatalogReader = (*Scanner)(nil)

// Scanner reads candidate columns and tag overrides from a catalog.
type Scanner struct {
	db      domain.Querier
	dialect Dialect
	logger  *slog.Logger
}

// NewScanner creates a Scanner over an open pool.
func NewScanner(db domain.Querier, dialect Dialect, logger *slog.Logger) *Scanner {
	return &Scanner{db: db, dialect: dialect, logger: logger}
}

// ListColumns returns the eligible columns: user tables and partitions,
// no system schemas, no primary-key columns, no sequence-backed identity
// columns. The result is ordered by schema, table, ordinal. Any error
// aborts the scan; a partial result is never returned.
func (s *Scanner) ListColumns(ctx context.Context) ([]*domain.Column, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.columnsQuery)
	if err != nil {
		return nil, domain.ErrConnectivity("scan columns", err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []*domain.Column
	for rows.Next() {
		var (
			schema, table, name, typ string
			oid                      int64
			ordinal                  int
		)
		if err := rows.Scan(&schema, &table, &name, &typ, &oid, &ordinal); err != nil {
			return nil, domain.ErrConnectivity("scan columns", err)
		}
		cols = append(cols, domain.NewColumn(schema, table, name, typ, oid, ordinal))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrConnectivity("scan columns", err)
	}

	// engines disagree on collation, so fix the order here
	sort.SliceStable(cols, func(i, j int) bool {
		a, b := cols[i], cols[j]
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return a.Ordinal < b.Ordinal
	})

	s.logger.Info("schema scan complete", "dialect", s.dialect.Name, "columns", len(cols))
	return cols, nil
}

// ListTagOverrides returns the columns annotated with ":sens" or ":nosens".
func (s *Scanner) ListTagOverrides(ctx context.Context) ([]domain.TagOverride, error) {
	if !s.dialect.SupportsTags() {
		s.logger.Debug("dialect has no column comments, skipping tag lookup", "dialect", s.dialect.Name)
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.tagsQuery)
	if err != nil {
		return nil, domain.ErrConnectivity("scan tags", err)
	}
	defer rows.Close() //nolint:errcheck

	var tags []domain.TagOverride
	for rows.Next() {
		var t domain.TagOverride
		var comment sql.NullString
		if err := rows.Scan(&t.Schema, &t.Table, &t.Column, &comment); err != nil {
			return nil, domain.ErrConnectivity("scan tags", err)
		}
		t.Comment = comment.String
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrConnectivity("scan tags", err)
	}

	s.logger.Info("tag lookup complete", "dialect", s.dialect.Name, "tagged", len(tags))
	return tags, nil
}
