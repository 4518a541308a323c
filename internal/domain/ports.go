package domain

import (
	"context"
	"database/sql"
)

// CatalogReader enumerates candidate columns and their annotations.
// Implemented by catalog.Scanner.
type CatalogReader interface {
	ListColumns(ctx context.Context) ([]*Column, error)
	ListTagOverrides(ctx context.Context) ([]TagOverride, error)
}

// ValueSampler fills sample values for candidate columns and returns the
// ones with data. Implemented by sampler.Sampler.
type ValueSampler interface {
	Sample(ctx context.Context, cols []*Column) ([]*Column, error)
}

// Querier runs read-only queries. Satisfied by *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Sink persists the encoded rule dictionary.
// Implemented by the sink package (file, S3, GCS, Azure Blob).
type Sink interface {
	Write(ctx context.Context, data []byte) error
	Location() string
}
