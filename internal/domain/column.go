package domain

// ScanMode controls how many rows are sampled per column.
type ScanMode string

// Supported scan modes.
const (
	ScanModeFull    ScanMode = "full"
	ScanModePartial ScanMode = "partial"
)

// ColumnKey identifies a column by its fully-qualified name.
type ColumnKey struct {
	Schema string
	Table  string
	Column string
}

// Column is one candidate column and its classification state.
type Column struct {
	Schema   string
	Table    string
	Name     string
	Type     string // declared type as reported by the catalog
	TableOID int64
	Ordinal  int
	ObjID    string // ObjectID(Schema, Table, Name)
	TblID    string // TableID(Schema, Table)

	// Query is the sampling statement, set by the sampler.
	Query string
	// Values holds the sampled distinct values.
	Values []string
	// Sensitive is nil until a classifier decides.
	Sensitive *bool
}

// NewColumn creates a Column with its content-derived identifiers filled in.
func NewColumn(schema, table, name, typ string, tableOID int64, ordinal int) *Column {
	return &Column{
		Schema:   schema,
		Table:    table,
		Name:     name,
		Type:     typ,
		TableOID: tableOID,
		Ordinal:  ordinal,
		ObjID:    ObjectID(schema, table, name),
		TblID:    TableID(schema, table),
	}
}

// Key returns the column's fully-qualified lookup key.
func (c *Column) Key() ColumnKey {
	return ColumnKey{Schema: c.Schema, Table: c.Table, Column: c.Name}
}

// QualifiedName returns schema.table.column.
func (c *Column) QualifiedName() string {
	return c.Schema + "." + c.Table + "." + c.Name
}

// MarkSensitive records the classification verdict.
func (c *Column) MarkSensitive(v bool) {
	c.Sensitive = &v
}

// Decided reports whether a verdict has been recorded.
func (c *Column) Decided() bool {
	return c.Sensitive != nil
}
