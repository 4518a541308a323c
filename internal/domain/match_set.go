package domain

// MatchSet accumulates columns decided sensitive by the tag and name stages,
// keyed by object id and kept in insertion order. It is owned by the
// orchestrator and is not safe for concurrent mutation; workers receive a
// Snapshot instead.
type MatchSet struct {
	order []*Column
	byID  map[string]*Column
}

// NewMatchSet creates an empty MatchSet.
func NewMatchSet() *MatchSet {
	return &MatchSet{byID: make(map[string]*Column)}
}

// Add records c. It returns false if a column with the same object id is
// already present; the first entry keeps its position.
func (m *MatchSet) Add(c *Column) bool {
	if _, ok := m.byID[c.ObjID]; ok {
		return false
	}
	m.byID[c.ObjID] = c
	m.order = append(m.order, c)
	return true
}

// Contains reports whether objID has been recorded.
func (m *MatchSet) Contains(objID string) bool {
	_, ok := m.byID[objID]
	return ok
}

// Len returns the number of recorded columns.
func (m *MatchSet) Len() int { return len(m.order) }

// Columns returns the recorded columns in insertion order.
func (m *MatchSet) Columns() []*Column {
	out := make([]*Column, len(m.order))
	copy(out, m.order)
	return out
}

// Snapshot returns a copy of the recorded object ids.
func (m *MatchSet) Snapshot() map[string]struct{} {
	ids := make(map[string]struct{}, len(m.byID))
	for id := range m.byID {
		ids[id] = struct{}{}
	}
	return ids
}
