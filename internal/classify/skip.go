// Package classify decides which candidate columns are sensitive: skip
// rules, tag overrides, column-name patterns, and sampled content.
package classify

import (
	"log/slog"

	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
)

// FilterSkipped returns the columns not excluded by any skip rule. Rules
// are evaluated in order and the first match removes the column.
func FilterSkipped(cols []*domain.Column, rules []policy.SkipRule, logger *slog.Logger) []*domain.Column {
	if len(rules) == 0 {
		return cols
	}
	kept := make([]*domain.Column, 0, len(cols))
	for _, c := range cols {
		if r, ok := firstSkipMatch(c, rules); ok {
			logger.Debug("column skipped", "column", c.QualifiedName(), "rule", r.String())
			continue
		}
		kept = append(kept, c)
	}
	logger.Info("skip rules applied", "kept", len(kept), "skipped", len(cols)-len(kept))
	return kept
}

func firstSkipMatch(c *domain.Column, rules []policy.SkipRule) (policy.SkipRule, bool) {
	for _, r := range rules {
		if r.Matches(c.Schema, c.Table, c.Name) {
			return r, true
		}
	}
	return policy.SkipRule{}, false
}
