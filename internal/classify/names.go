package classify

import (
	"log/slog"

	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
)

// NameResult is the outcome of column-name classification.
type NameResult struct {
	// Remaining are the columns still in the candidate set. Columns
	// captured by a name regex stay here, marked sensitive.
	Remaining []*domain.Column
	// Matched are all columns matched by name, in column order.
	Matched []*domain.Column
}

// ClassifyNames tests every column name against the policy's name regexes
// and exact constants. A regex match is recorded but keeps the column in
// the candidate set; a constant match removes it.
func ClassifyNames(cols []*domain.Column, p *policy.Policy, logger *slog.Logger) NameResult {
	res := NameResult{Remaining: make([]*domain.Column, 0, len(cols))}
	for _, c := range cols {
		matched := false
		for _, re := range p.FieldRules {
			if re.MatchString(c.Name) {
				logger.Debug("name rule match", "column", c.QualifiedName(), "rule", re.String())
				matched = true
				break
			}
		}

		if p.HasFieldConstant(c.Name) {
			logger.Debug("name constant match", "column", c.QualifiedName())
			c.MarkSensitive(true)
			res.Matched = append(res.Matched, c)
			continue
		}

		if matched {
			c.MarkSensitive(true)
			res.Matched = append(res.Matched, c)
		}
		res.Remaining = append(res.Remaining, c)
	}
	logger.Info("name classification complete", "matched", len(res.Matched), "remaining", len(res.Remaining))
	return res
}
