package classify

import (
	"log/slog"
	"strings"

	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
)

// Verdict records why a column was found sensitive by its content.
type Verdict struct {
	Column *domain.Column
	Reason string
}

// ContentClassifier tests sampled values against the policy's sensitive
// words and content regexes. It holds no mutable state and is safe for
// concurrent use.
type ContentClassifier struct {
	policy  *policy.Policy
	decided map[string]struct{}
	logger  *slog.Logger
}

// NewContentClassifier creates a classifier. decided holds the object ids
// already classified by another stage; those columns are never evaluated.
func NewContentClassifier(p *policy.Policy, decided map[string]struct{}, logger *slog.Logger) *ContentClassifier {
	return &ContentClassifier{policy: p, decided: decided, logger: logger}
}

// Classify returns the verdict for col, or nil when nothing matched or the
// column was already decided elsewhere.
//
// Sensitive words are checked first against every whitespace token. Then
// each value is tested against the content regexes in order; the first
// match ends evaluation for the column.
func (c *ContentClassifier) Classify(col *domain.Column) *Verdict {
	if c.decidedElsewhere(col) {
		return nil
	}

	if word, ok := c.matchWord(col.Values); ok {
		c.logger.Debug("content constant match", "column", col.QualifiedName(), "word", word)
		return &Verdict{Column: col, Reason: "constant:" + word}
	}

	for _, v := range col.Values {
		for _, re := range c.policy.DataRegex {
			if re.MatchString(v) {
				c.logger.Debug("content regex match", "column", col.QualifiedName(), "rule", re.String())
				return &Verdict{Column: col, Reason: "regex:" + re.String()}
			}
		}
	}
	return nil
}

func (c *ContentClassifier) decidedElsewhere(col *domain.Column) bool {
	if _, ok := c.decided[col.ObjID]; ok {
		return true
	}
	return col.Decided()
}

// matchWord returns the first token of values found in the sensitive word
// set. Tokens are folded with policy.NormalizeWord, the same way the
// constants were when the policy was parsed.
func (c *ContentClassifier) matchWord(values []string) (string, bool) {
	if len(c.policy.DataConstants) == 0 {
		return "", false
	}
	for _, v := range values {
		for _, tok := range strings.Fields(v) {
			w := policy.NormalizeWord(tok)
			if _, ok := c.policy.DataConstants[w]; ok {
				return w, true
			}
		}
	}
	return "", false
}
