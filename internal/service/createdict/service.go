// Package createdict runs the sensitive column discovery pipeline and
// writes the resulting rule dictionary.
package createdict

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"sens-scan/internal/catalog"
	"sens-scan/internal/classify"
	"sens-scan/internal/db"
	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
	"sens-scan/internal/rules"
	"sens-scan/internal/sampler"
)

// Options configures one dictionary creation run.
type Options struct {
	Dialect     string
	DSN         string
	Workers     int
	ScanMode    domain.ScanMode
	PartialRows int
	SampleRPS   float64
}

// Opener opens a connection pool. db.Open is the default.
type Opener func(ctx context.Context, dialect, dsn string, maxOpen int) (*sql.DB, error)

// SamplerFactory builds the value sampler for one run's sampling pool.
type SamplerFactory func(q domain.Querier, dialect catalog.Dialect, opts sampler.Options, logger *slog.Logger) domain.ValueSampler

func newSampler(q domain.Querier, dialect catalog.Dialect, opts sampler.Options, logger *slog.Logger) domain.ValueSampler {
	return sampler.New(q, dialect, opts, logger)
}

// Service orchestrates catalog scan, classification and rule synthesis.
// A Service may be run repeatedly; every run rescans the catalog.
type Service struct {
	opts    Options
	dialect catalog.Dialect
	policy  *policy.Policy
	sink    domain.Sink
	open    Opener
	sampler SamplerFactory
	logger  *slog.Logger
}

// NewService creates a Service. The dialect is validated here so a bad
// configuration fails before any connection is attempted.
func NewService(opts Options, p *policy.Policy, sink domain.Sink, logger *slog.Logger) (*Service, error) {
	if p == nil {
		return nil, domain.ErrValidation("policy is required")
	}
	dialect, err := catalog.DialectFor(opts.Dialect)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		opts:    opts,
		dialect: dialect,
		policy:  p,
		sink:    sink,
		open:    db.Open,
		sampler: newSampler,
		logger:  logger,
	}, nil
}

// SetOpener replaces the pool opener.
func (s *Service) SetOpener(open Opener) { s.open = open }

// SetSamplerFactory replaces how the value sampler is built.
func (s *Service) SetSamplerFactory(f SamplerFactory) { s.sampler = f }

// Run builds the dictionary and writes it through the sink. Errors are
// logged with the run id and reported only as a FAIL code; nothing is
// written on failure.
func (s *Service) Run(ctx context.Context) *domain.Result {
	start := time.Now()
	res := &domain.Result{RunID: domain.NewRunID(), Code: domain.ResultFail}
	logger := s.logger.With("run_id", res.RunID)
	logger.Info("create dictionary started", "dialect", s.dialect.Name, "workers", s.opts.Workers, "scan_mode", s.opts.ScanMode)

	dict, err := s.build(ctx, logger)
	if err == nil {
		err = s.write(ctx, dict)
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		logger.Error("create dictionary failed", "error", err, "elapsed", res.Elapsed)
		return res
	}

	res.Code = domain.ResultDone
	res.Tables = len(dict.Tables())
	res.Fields = dict.FieldCount()
	logger.Info("create dictionary done",
		"tables", res.Tables,
		"fields", res.Fields,
		"output", s.sink.Location(),
		"elapsed", res.Elapsed,
	)
	return res
}

// Build runs the pipeline and returns the dictionary without writing it.
func (s *Service) Build(ctx context.Context) (*domain.RuleDictionary, error) {
	return s.build(ctx, s.logger)
}

func (s *Service) build(ctx context.Context, logger *slog.Logger) (*domain.RuleDictionary, error) {
	cols, overrides, err := s.scan(ctx, logger)
	if err != nil {
		return nil, err
	}

	eligible := classify.FilterSkipped(cols, s.policy.SkipRules, logger)
	if len(eligible) == 0 {
		return nil, domain.ErrDiscovery("no eligible columns: %d discovered, all excluded by skip rules", len(cols))
	}

	matches := domain.NewMatchSet()
	tagged := classify.ResolveTags(eligible, overrides, logger)
	for _, c := range tagged.Sensitive {
		matches.Add(c)
	}
	named := classify.ClassifyNames(tagged.Remaining, s.policy, logger)
	for _, c := range named.Matched {
		matches.Add(c)
	}

	pending := make([]*domain.Column, 0, len(named.Remaining))
	for _, c := range named.Remaining {
		if !matches.Contains(c.ObjID) {
			pending = append(pending, c)
		}
	}

	sampled, err := s.sample(ctx, pending, logger)
	if err != nil {
		return nil, err
	}

	classifier := classify.NewContentClassifier(s.policy, matches.Snapshot(), logger)
	verdicts, err := classifier.ClassifyAll(ctx, sampled, s.opts.Workers)
	if err != nil {
		return nil, err
	}
	content := make([]*domain.Column, 0, len(verdicts))
	for _, v := range verdicts {
		content = append(content, v.Column)
	}

	dict := rules.Synthesize(s.policy.Funcs, content, matches)
	logger.Info("rules synthesized",
		"content_matches", len(content),
		"tag_name_matches", matches.Len(),
		"tables", len(dict.Tables()),
	)
	return dict, nil
}

// scan lists candidate columns and tag overrides on a pool that is closed
// before sampling starts.
func (s *Service) scan(ctx context.Context, logger *slog.Logger) ([]*domain.Column, []domain.TagOverride, error) {
	pool, err := s.open(ctx, s.dialect.Name, s.opts.DSN, s.opts.Workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Close() //nolint:errcheck

	var scanner domain.CatalogReader = catalog.NewScanner(pool, s.dialect, logger)
	cols, err := scanner.ListColumns(ctx)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := scanner.ListTagOverrides(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cols, overrides, nil
}

func (s *Service) sample(ctx context.Context, cols []*domain.Column, logger *slog.Logger) ([]*domain.Column, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	pool, err := s.open(ctx, s.dialect.Name, s.opts.DSN, s.opts.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Close() //nolint:errcheck

	smp := s.sampler(pool, s.dialect, sampler.Options{
		Workers:     s.opts.Workers,
		Mode:        s.opts.ScanMode,
		PartialRows: s.opts.PartialRows,
		RPS:         s.opts.SampleRPS,
	}, logger)
	return smp.Sample(ctx, cols)
}

func (s *Service) write(ctx context.Context, dict *domain.RuleDictionary) error {
	data, err := rules.Encode(dict)
	if err != nil {
		return err
	}
	return s.sink.Write(ctx, data)
}
