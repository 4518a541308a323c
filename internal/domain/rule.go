package domain

import (
	"bytes"
	"encoding/json"
)

// FieldRules maps column names to transform expressions, preserving the
// order in which columns were first added.
type FieldRules struct {
	names []string
	exprs map[string]string
}

// Set assigns expr to column unless the column already has a rule.
// It reports whether the rule was added.
func (f *FieldRules) Set(column, expr string) bool {
	if f.exprs == nil {
		f.exprs = make(map[string]string)
	}
	if _, ok := f.exprs[column]; ok {
		return false
	}
	f.exprs[column] = expr
	f.names = append(f.names, column)
	return true
}

// Get returns the transform expression for column.
func (f *FieldRules) Get(column string) (string, bool) {
	expr, ok := f.exprs[column]
	return expr, ok
}

// Names returns the column names in insertion order.
func (f *FieldRules) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Len returns the number of rules.
func (f *FieldRules) Len() int { return len(f.names) }

// MarshalJSON encodes the rules as a JSON object in insertion order.
func (f FieldRules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.exprs[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableRule holds the anonymization rules of one sensitive table.
type TableRule struct {
	Schema string     `json:"schema"`
	Table  string     `json:"table"`
	Fields FieldRules `json:"fields"`
}

// RuleDictionary is the synthesized output: one entry per sensitive table,
// in first-encounter order.
type RuleDictionary struct {
	tables []*TableRule
	byID   map[string]*TableRule
}

// NewRuleDictionary creates an empty RuleDictionary.
func NewRuleDictionary() *RuleDictionary {
	return &RuleDictionary{byID: make(map[string]*TableRule)}
}

// Add records a transform for col. The table entry is created on the
// first column of that table and only extended afterwards.
func (d *RuleDictionary) Add(col *Column, expr string) {
	t, ok := d.byID[col.TblID]
	if !ok {
		t = &TableRule{Schema: col.Schema, Table: col.Table}
		d.byID[col.TblID] = t
		d.tables = append(d.tables, t)
	}
	t.Fields.Set(col.Name, expr)
}

// Tables returns the table entries in first-encounter order.
func (d *RuleDictionary) Tables() []*TableRule {
	out := make([]*TableRule, len(d.tables))
	copy(out, d.tables)
	return out
}

// Table returns the entry for schema.table.
func (d *RuleDictionary) Table(schema, table string) (*TableRule, bool) {
	t, ok := d.byID[TableID(schema, table)]
	return t, ok
}

// FieldCount returns the total number of column rules.
func (d *RuleDictionary) FieldCount() int {
	n := 0
	for _, t := range d.tables {
		n += t.Fields.Len()
	}
	return n
}

// MarshalJSON encodes the dictionary as {"dictionary": [...]}.
func (d *RuleDictionary) MarshalJSON() ([]byte, error) {
	tables := d.tables
	if tables == nil {
		tables = []*TableRule{}
	}
	return json.Marshal(struct {
		Dictionary []*TableRule `json:"dictionary"`
	}{Dictionary: tables})
}
