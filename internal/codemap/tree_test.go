package codemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/internal/query"
)

func rec(path string, line int) query.Record {
	return query.Record{Path: path, Line: line}
}

func TestCodeMapPreservesInsertionOrder(t *testing.T) {
	m := NewCodeMap()
	m.ensure("zeta.go")
	m.ensure("alpha.go")
	m.ensure("mid.go")
	m.ensure("alpha.go") // re-inserting must not move or duplicate the key

	assert.Equal(t, []string{"zeta.go", "alpha.go", "mid.go"}, m.Files())
}

func TestSymbolTablePreservesInsertionOrder(t *testing.T) {
	table := NewSymbolTable()
	table.set("write", DefinitionList{{Record: rec("a.go", 10)}})
	table.set("open", DefinitionList{{Record: rec("a.go", 3)}})

	assert.Equal(t, []string{"write", "open"}, table.Names())
	assert.Equal(t, 2, table.Len())
}

func TestCodeMapRemoveKeepsRemainingOrder(t *testing.T) {
	m := NewCodeMap()
	m.ensure("a.go")
	m.ensure("b.go")
	m.ensure("c.go")

	require.True(t, m.remove("b.go"))
	assert.Equal(t, []string{"a.go", "c.go"}, m.Files())
	assert.False(t, m.remove("b.go"))
}

func TestCodeMapRenameKeepsSlot(t *testing.T) {
	m := NewCodeMap()
	m.ensure("a.go")
	table := m.ensure("b.go")
	table.set("run", DefinitionList{{Record: rec("b.go", 1)}})
	m.ensure("c.go")

	require.NoError(t, m.rename("b.go", "renamed.go"))
	assert.Equal(t, []string{"a.go", "renamed.go", "c.go"}, m.Files())

	moved, ok := m.Table("renamed.go")
	require.True(t, ok)
	assert.True(t, moved.Has("run"))
}

func TestCodeMapRenameConflict(t *testing.T) {
	m := NewCodeMap()
	m.ensure("a.go")
	m.ensure("b.go")

	err := m.rename("a.go", "b.go")
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, []string{"a.go", "b.go"}, m.Files())

	require.ErrorIs(t, m.rename("ghost.go", "new.go"), ErrNotFound)
}

func TestDefinitionListVisible(t *testing.T) {
	list := DefinitionList{
		{Record: rec("a.go", 1)},
		{Record: rec("a.go", 2), Hidden: true},
		{Record: rec("b.go", 3)},
	}

	visible := list.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, rec("a.go", 1), visible[0].Record)
	assert.Equal(t, rec("b.go", 3), visible[1].Record)

	assert.Equal(t, 1, list.Index(rec("a.go", 2)))
	assert.Equal(t, -1, list.Index(rec("ghost.go", 9)))
}

func TestCodeMapJSONRoundTrip(t *testing.T) {
	m := NewCodeMap()
	first := m.ensure("src/main.go")
	first.set("run", DefinitionList{
		{Record: query.Record{Path: "src/main.go", Line: 10, Kind: "func", Signature: "func run() error"}},
		{Record: rec("src/alt.go", 4), Hidden: true},
	})
	second := m.ensure("lib/util.py")
	second.set("helper", DefinitionList{})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var loaded CodeMap
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, []string{"src/main.go", "lib/util.py"}, loaded.Files())

	table, ok := loaded.Table("src/main.go")
	require.True(t, ok)
	list, ok := table.Definitions("run")
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "func run() error", list[0].Record.Signature)
	assert.True(t, list[1].Hidden)

	table, ok = loaded.Table("lib/util.py")
	require.True(t, ok)
	list, ok = table.Definitions("helper")
	require.True(t, ok)
	assert.Empty(t, list)
}
