package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectID_StableAndDistinct(t *testing.T) {
	a := ObjectID("public", "users", "email")
	assert.Equal(t, a, ObjectID("public", "users", "email"))
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, ObjectID("public", "users", "phone"))
	assert.NotEqual(t, TableID("public", "users"), TableID("public", "orders"))
}

func TestNewColumn_FillsIdentifiers(t *testing.T) {
	c := NewColumn("public", "users", "email", "text", 16384, 3)
	assert.Equal(t, ObjectID("public", "users", "email"), c.ObjID)
	assert.Equal(t, TableID("public", "users"), c.TblID)
	assert.Equal(t, "public.users.email", c.QualifiedName())
	assert.False(t, c.Decided())

	c.MarkSensitive(true)
	require.True(t, c.Decided())
	assert.True(t, *c.Sensitive)
}

func TestTagOverride_Verdict(t *testing.T) {
	tests := []struct {
		comment   string
		sensitive bool
		ok        bool
	}{
		{"customer email :sens", true, true},
		{":nosens internal code", false, true},
		{"plain description", false, false},
		{":sens and :nosens", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.comment, func(t *testing.T) {
			sens, ok := TagOverride{Comment: tc.comment}.Verdict()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.sensitive, sens)
		})
	}
}

func TestMatchSet_InsertionOrder(t *testing.T) {
	m := NewMatchSet()
	a := NewColumn("s", "t", "a", "text", 1, 1)
	b := NewColumn("s", "t", "b", "text", 1, 2)

	assert.True(t, m.Add(b))
	assert.True(t, m.Add(a))
	assert.False(t, m.Add(NewColumn("s", "t", "b", "text", 1, 2)))

	require.Equal(t, 2, m.Len())
	cols := m.Columns()
	assert.Equal(t, "b", cols[0].Name)
	assert.Equal(t, "a", cols[1].Name)
	assert.True(t, m.Contains(a.ObjID))

	snap := m.Snapshot()
	m.Add(NewColumn("s", "t", "c", "text", 1, 3))
	assert.Len(t, snap, 2)
}

func TestRuleDictionary_MarshalJSONKeepsOrder(t *testing.T) {
	d := NewRuleDictionary()
	d.Add(NewColumn("s", "users", "zip", "text", 1, 1), "hash(zip)")
	d.Add(NewColumn("s", "orders", "amount", "numeric", 2, 1), "noise(amount)")
	d.Add(NewColumn("s", "users", "email", "text", 1, 2), "hash(email)")
	d.Add(NewColumn("s", "users", "zip", "text", 1, 1), "other(zip)")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dictionary":[
		{"schema":"s","table":"users","fields":{"zip":"hash(zip)","email":"hash(email)"}},
		{"schema":"s","table":"orders","fields":{"amount":"noise(amount)"}}
	]}`, string(data))
	assert.Contains(t, string(data), `"fields":{"zip":"hash(zip)","email":"hash(email)"}`)
	assert.Equal(t, 3, d.FieldCount())

	users, ok := d.Table("s", "users")
	require.True(t, ok)
	assert.Equal(t, []string{"zip", "email"}, users.Fields.Names())
}

func TestRuleDictionary_EmptyMarshalsToEmptyArray(t *testing.T) {
	data, err := json.Marshal(NewRuleDictionary())
	require.NoError(t, err)
	assert.JSONEq(t, `{"dictionary":[]}`, string(data))
}
