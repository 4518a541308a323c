package classify

import (
	"log/slog"

	"sens-scan/internal/domain"
)

// TagResult partitions columns by their annotation.
type TagResult struct {
	// Remaining have no annotation and continue to the next stage.
	Remaining []*domain.Column
	// Sensitive are annotated ":sens".
	Sensitive []*domain.Column
	// NotSensitive are annotated ":nosens" and are dropped from the run.
	NotSensitive []*domain.Column
}

// ResolveTags applies tag overrides. An annotated column receives the
// annotation's verdict and takes no further part in classification.
func ResolveTags(cols []*domain.Column, overrides []domain.TagOverride, logger *slog.Logger) TagResult {
	byKey := make(map[domain.ColumnKey]domain.TagOverride, len(overrides))
	for _, o := range overrides {
		if _, dup := byKey[o.Key()]; !dup {
			byKey[o.Key()] = o
		}
	}

	res := TagResult{Remaining: make([]*domain.Column, 0, len(cols))}
	for _, c := range cols {
		o, ok := byKey[c.Key()]
		if !ok {
			res.Remaining = append(res.Remaining, c)
			continue
		}
		sensitive, ok := o.Verdict()
		if !ok {
			res.Remaining = append(res.Remaining, c)
			continue
		}
		c.MarkSensitive(sensitive)
		if sensitive {
			res.Sensitive = append(res.Sensitive, c)
		} else {
			res.NotSensitive = append(res.NotSensitive, c)
		}
		logger.Debug("tag override", "column", c.QualifiedName(), "sensitive", sensitive)
	}
	logger.Info("tag overrides applied", "sens", len(res.Sensitive), "nosens", len(res.NotSensitive))
	return res
}
