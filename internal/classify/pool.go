package classify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sens-scan/internal/domain"
)

// ClassifyAll classifies every column and returns the verdicts in column
// order. With workers > 1 the columns are split into contiguous partitions,
// one goroutine each; the result does not depend on the worker count.
//
// A failure while classifying one column does not stop the other columns.
// All failures are reported together as a *domain.ClassificationError and
// no verdicts are returned in that case.
func (c *ContentClassifier) ClassifyAll(ctx context.Context, cols []*domain.Column, workers int) ([]Verdict, error) {
	verdicts := make([]*Verdict, len(cols))
	failures := make([]error, len(cols))

	run := func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			verdicts[i], failures[i] = c.classifySafe(cols[i])
		}
		return nil
	}

	if workers <= 1 || len(cols) <= 1 {
		if err := run(ctx, 0, len(cols)); err != nil {
			return nil, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, p := range partition(len(cols), workers) {
			g.Go(func() error { return run(gctx, p.lo, p.hi) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var classErr domain.ClassificationError
	out := make([]Verdict, 0)
	for i, v := range verdicts {
		if failures[i] != nil {
			classErr.Failures = append(classErr.Failures, domain.ColumnFailure{
				Column: cols[i].QualifiedName(),
				Err:    failures[i],
			})
			continue
		}
		if v != nil {
			v.Column.MarkSensitive(true)
			out = append(out, *v)
		}
	}
	if len(classErr.Failures) > 0 {
		return nil, &classErr
	}

	c.logger.Info("content classification complete", "columns", len(cols), "matched", len(out), "workers", workers)
	return out, nil
}

// classifySafe isolates a single column: a panic becomes that column's error.
func (c *ContentClassifier) classifySafe(col *domain.Column) (v *Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Classify(col), nil
}

type span struct{ lo, hi int }

// partition splits n items into at most workers contiguous spans.
func partition(n, workers int) []span {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers
	spans := make([]span, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		spans = append(spans, span{lo, hi})
	}
	return spans
}
