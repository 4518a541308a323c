// Package rules turns sensitivity verdicts into the anonymization rule
// dictionary.
package rules

import (
	"encoding/json"
	"strings"

	"sens-scan/internal/domain"
	"sens-scan/internal/policy"
)

// DefaultTemplate is the salted hash applied when no funcs key matches.
const DefaultTemplate = `anon_funcs.digest("%s", 'salt_word', 'md5')`

// placeholder is replaced with the column name in a template.
const placeholder = "%s"

// families groups declared types under the generic names a policy may use
// as funcs keys. Checked in order.
var families = []struct {
	name  string
	frags []string
}{
	{"timestamp", []string{"timestamp", "date", "time", "interval"}},
	{"json", []string{"json"}},
	{"numeric", []string{"int", "numeric", "decimal", "real", "double", "float", "serial", "money"}},
	{"text", []string{"char", "text", "string", "clob", "uuid"}},
}

// TypeFamily returns the generic family name of a declared type, or ""
// when it belongs to none.
func TypeFamily(declared string) string {
	t := strings.ToLower(declared)
	for _, f := range families {
		for _, frag := range f.frags {
			if strings.Contains(t, frag) {
				return f.name
			}
		}
	}
	return ""
}

// SelectTransform returns the transform expression for col. The first
// funcs key contained in the declared type wins. When no key is, the first
// key equal to the type's family name is used, and otherwise the default
// template. The placeholder is replaced by the column name.
func SelectTransform(funcs []policy.FuncRule, col *domain.Column) string {
	tmpl, ok := matchTemplate(funcs, func(key string) bool {
		return strings.Contains(strings.ToLower(col.Type), key)
	})
	if !ok {
		if family := TypeFamily(col.Type); family != "" {
			tmpl, ok = matchTemplate(funcs, func(key string) bool { return key == family })
		}
	}
	if !ok {
		tmpl = DefaultTemplate
	}
	return strings.Replace(tmpl, placeholder, col.Name, 1)
}

// matchTemplate returns the template of the first non-empty funcs key,
// lower-cased, accepted by match.
func matchTemplate(funcs []policy.FuncRule, match func(key string) bool) (string, bool) {
	for _, f := range funcs {
		key := strings.ToLower(f.TypeKey)
		if key != "" && match(key) {
			return f.Template, true
		}
	}
	return "", false
}

// Synthesize merges the content-stage matches and the tag/name MatchSet
// into one dictionary. Content matches come first, in their given order,
// followed by the MatchSet in insertion order.
func Synthesize(funcs []policy.FuncRule, content []*domain.Column, matches *domain.MatchSet) *domain.RuleDictionary {
	dict := domain.NewRuleDictionary()
	for _, c := range content {
		dict.Add(c, SelectTransform(funcs, c))
	}
	if matches != nil {
		for _, c := range matches.Columns() {
			dict.Add(c, SelectTransform(funcs, c))
		}
	}
	return dict
}

// Encode renders the dictionary document as indented JSON.
func Encode(dict *domain.RuleDictionary) ([]byte, error) {
	data, err := json.MarshalIndent(dict, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
