package domain

import "strings"

// Annotation markers recognised in column comments.
const (
	TagSens   = ":sens"
	TagNoSens = ":nosens"
)

// TagOverride is a column carrying an explicit sensitivity annotation.
type TagOverride struct {
	Schema  string
	Table   string
	Column  string
	Comment string
}

// Key returns the annotated column's lookup key.
func (t TagOverride) Key() ColumnKey {
	return ColumnKey{Schema: t.Schema, Table: t.Table, Column: t.Column}
}

// Verdict returns the sensitivity forced by the annotation. ok is false
// when the comment carries neither marker. ":sens" is checked first.
func (t TagOverride) Verdict() (sensitive, ok bool) {
	switch {
	case strings.Contains(t.Comment, TagSens):
		return true, true
	case strings.Contains(t.Comment, TagNoSens):
		return false, true
	default:
		return false, false
	}
}
