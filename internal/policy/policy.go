// Package policy parses the classification policy document (the "meta
// dictionary") into an immutable, compiled form shared by all classifiers.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"sens-scan/internal/domain"
)

// SkipRule excludes columns from classification. Only the predicates
// present in the document take part in matching.
type SkipRule struct {
	Schema string
	Table  string
	Fields []string

	hasSchema bool
	hasTable  bool
	fieldSet  map[string]struct{} // nil when the rule has no fields key
}

// NewSkipRule builds a rule from optional predicates; nil means absent.
func NewSkipRule(schema, table *string, fields []string, hasFields bool) SkipRule {
	r := SkipRule{}
	if schema != nil {
		r.Schema, r.hasSchema = *schema, true
	}
	if table != nil {
		r.Table, r.hasTable = *table, true
	}
	if hasFields {
		r.Fields = fields
		r.fieldSet = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			r.fieldSet[f] = struct{}{}
		}
	}
	return r
}

// Matches reports whether the rule excludes schema.table.column.
//
//   - schema+table+fields excludes only the listed fields of that table
//   - schema+table excludes every field of that table
//   - schema alone excludes every table of that schema
func (r SkipRule) Matches(schema, table, column string) bool {
	if !r.hasSchema || r.Schema != schema {
		return false
	}
	hasFields := r.fieldSet != nil
	switch {
	case !r.hasTable && !hasFields:
		return true
	case r.hasTable && r.Table == table && !hasFields:
		return true
	case r.hasTable && r.Table == table && hasFields:
		_, ok := r.fieldSet[column]
		return ok
	default:
		return false
	}
}

func (r SkipRule) String() string {
	var parts []string
	if r.hasSchema {
		parts = append(parts, "schema="+r.Schema)
	}
	if r.hasTable {
		parts = append(parts, "table="+r.Table)
	}
	if r.fieldSet != nil {
		parts = append(parts, "fields=["+strings.Join(r.Fields, ",")+"]")
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// FuncRule maps a type substring to a transform template.
type FuncRule struct {
	TypeKey  string
	Template string
}

// Policy is the compiled classification policy. It is read-only once
// returned by Parse.
type Policy struct {
	FieldRules     []*regexp.Regexp
	FieldConstants map[string]struct{}
	SkipRules      []SkipRule
	DataConstants  map[string]struct{}
	DataRegex      []*regexp.Regexp
	Funcs          []FuncRule
}

// HasFieldConstant reports whether name exactly equals a configured constant.
func (p *Policy) HasFieldConstant(name string) bool {
	_, ok := p.FieldConstants[name]
	return ok
}

type ruleSection struct {
	Rules     []string `yaml:"rules"`
	Constants []string `yaml:"constants"`
}

type skipRuleDoc struct {
	Schema *string   `yaml:"schema"`
	Table  *string   `yaml:"table"`
	Fields *[]string `yaml:"fields"`
}

type document struct {
	Field     ruleSection   `yaml:"field"`
	DataRegex ruleSection   `yaml:"data_regex"`
	DataConst ruleSection   `yaml:"data_const"`
	SkipRules []skipRuleDoc `yaml:"skip_rules"`
	Funcs     yaml.Node     `yaml:"funcs"`
}

// Parse decodes and compiles a policy document. The document is YAML or
// JSON and is treated as pure data.
func Parse(data []byte) (*Policy, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.ErrValidation("parse policy: %v", err)
	}

	p := &Policy{
		FieldConstants: make(map[string]struct{}, len(doc.Field.Constants)),
		DataConstants:  make(map[string]struct{}, len(doc.DataConst.Constants)),
	}

	var err error
	if p.FieldRules, err = compileAll("field.rules", doc.Field.Rules); err != nil {
		return nil, err
	}
	if p.DataRegex, err = compileAll("data_regex.rules", doc.DataRegex.Rules); err != nil {
		return nil, err
	}
	for _, c := range doc.Field.Constants {
		p.FieldConstants[c] = struct{}{}
	}
	for _, c := range doc.DataConst.Constants {
		p.DataConstants[NormalizeWord(c)] = struct{}{}
	}

	// a rule without a schema is kept but never matches
	for _, sr := range doc.SkipRules {
		var fields []string
		if sr.Fields != nil {
			fields = *sr.Fields
		}
		p.SkipRules = append(p.SkipRules, NewSkipRule(sr.Schema, sr.Table, fields, sr.Fields != nil))
	}

	if p.Funcs, err = parseFuncs(&doc.Funcs); err != nil {
		return nil, err
	}
	return p, nil
}

func compileAll(section string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for i, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, domain.ErrValidation("%s[%d]: %v", section, i, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// parseFuncs reads the funcs mapping in document order.
func parseFuncs(node *yaml.Node) ([]FuncRule, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, domain.ErrValidation("funcs: expected a mapping of type to template (line %d)", node.Line)
	}
	funcs := make([]FuncRule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, domain.ErrValidation("funcs: entry at line %d must map a string to a string", k.Line)
		}
		if strings.Count(v.Value, "%s") > 1 {
			return nil, domain.ErrValidation("funcs[%s]: template may contain at most one %%s placeholder", k.Value)
		}
		funcs = append(funcs, FuncRule{TypeKey: k.Value, Template: v.Value})
	}
	return funcs, nil
}

// NormalizeWord folds a word for sensitive-word comparison: NFKC
// normalisation followed by Unicode lower-casing. Sampled tokens and the
// configured constants both go through it.
func NormalizeWord(w string) string {
	// a Caser is stateful; a fresh one keeps this goroutine-safe
	return cases.Lower(language.Und).String(norm.NFKC.String(w))
}

// Summary describes the size of each policy section.
func (p *Policy) Summary() string {
	return fmt.Sprintf("field rules=%d, field constants=%d, skip rules=%d, data constants=%d, data regex=%d, funcs=%d",
		len(p.FieldRules), len(p.FieldConstants), len(p.SkipRules), len(p.DataConstants), len(p.DataRegex), len(p.Funcs))
}
