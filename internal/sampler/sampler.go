// Package sampler fetches distinct sample values for candidate columns.
package sampler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"sens-scan/internal/catalog"
	"sens-scan/internal/domain"
)

var _ domain.ValueSampler = (*Sampler)(nil)

// Options configures a Sampler.
type Options struct {
	// Workers bounds concurrent sampling queries; it should match the
	// pool's MaxOpenConns.
	Workers int
	// Mode selects full or partial sampling.
	Mode domain.ScanMode
	// PartialRows bounds the rows sampled per column in partial mode.
	PartialRows int
	// RPS limits sampling queries per second; 0 disables the limit.
	RPS float64
}

// Sampler runs one sampling query per column.
type Sampler struct {
	db      domain.Querier
	dialect catalog.Dialect
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Sampler over an open pool.
func New(db domain.Querier, dialect catalog.Dialect, opts Options, logger *slog.Logger) *Sampler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	s := &Sampler{db: db, dialect: dialect, opts: opts, logger: logger}
	if opts.RPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RPS), opts.Workers)
	}
	return s
}

// limit returns the per-column row bound, 0 meaning unbounded.
func (s *Sampler) limit() int {
	if s.opts.Mode == domain.ScanModePartial {
		return s.opts.PartialRows
	}
	return 0
}

// Sample fills Query and Values for every column of a sampled type and
// returns, in input order, the columns whose sample is non-empty. Columns
// of other types are not queried. The first query error cancels the
// remaining fetches and is returned as a *domain.ConnectivityError.
func (s *Sampler) Sample(ctx context.Context, cols []*domain.Column) ([]*domain.Column, error) {
	targets := make([]*domain.Column, 0, len(cols))
	for _, c := range cols {
		if !catalog.IsSampledType(c.Type) {
			s.logger.Debug("type not sampled", "column", c.QualifiedName(), "type", c.Type)
			continue
		}
		c.Query = s.dialect.SampleQuery(c, s.limit())
		targets = append(targets, c)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, c := range targets {
		g.Go(func() error {
			values, err := s.fetch(gctx, c)
			if err != nil {
				return err
			}
			c.Values = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sampled := make([]*domain.Column, 0, len(targets))
	for _, c := range targets {
		if len(c.Values) > 0 {
			sampled = append(sampled, c)
		}
	}
	s.logger.Info("sampling complete", "queried", len(targets), "with_values", len(sampled), "workers", s.opts.Workers)
	return sampled, nil
}

func (s *Sampler) fetch(ctx context.Context, c *domain.Column) ([]string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	op := fmt.Sprintf("sample %s", c.QualifiedName())
	rows, err := s.db.QueryContext(ctx, c.Query)
	if err != nil {
		return nil, domain.ErrConnectivity(op, err)
	}
	defer rows.Close() //nolint:errcheck

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, domain.ErrConnectivity(op, err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrConnectivity(op, err)
	}
	return values, nil
}
