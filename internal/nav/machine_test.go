package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/query"
)

const proj = "/p"

type stubService map[string][]query.Record

func (s stubService) Definitions(name string) ([]query.Record, error) {
	return s[name], nil
}

func rec(path string, line int) query.Record {
	return query.Record{Path: path, Line: line}
}

func newMachine(service stubService) *Machine {
	return &Machine{Session: codemap.NewSession(), Query: service}
}

// seed populates the session with two files and leaves the cursor at the
// file list.
func seed(t *testing.T, m *Machine) {
	t.Helper()
	m.Session.AddSymbol(proj, "main.go", "run", []query.Record{rec("main.go", 10), rec("alt.go", 3)})
	m.Session.AddSymbol(proj, "main.go", "stop", []query.Record{rec("main.go", 40)})
	m.Session.AddSymbol(proj, "util.go", "helper", []query.Record{rec("util.go", 7)})
}

func TestForwardDescends(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)

	require.NoError(t, m.Forward(proj, "main.go"))
	p := m.Session.Position(proj)
	assert.Equal(t, codemap.DepthSymbols, p.Depth)
	assert.Equal(t, "main.go", p.File)

	require.NoError(t, m.Forward(proj, "run"))
	assert.Equal(t, codemap.DepthDefinitions, p.Depth)
	assert.Equal(t, "run", p.Symbol)
}

func TestForwardEmptySelectionIsNoOp(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)

	require.NoError(t, m.Forward(proj, ""))
	require.NoError(t, m.Forward(proj, "  "))
	assert.Equal(t, codemap.DepthFiles, m.Session.Position(proj).Depth)
}

func TestForwardUnknownKey(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)

	assert.ErrorIs(t, m.Forward(proj, "ghost.go"), codemap.ErrNotFound)
	assert.Equal(t, codemap.DepthFiles, m.Session.Position(proj).Depth)
}

func TestForwardAtDefinitionsJumpsWithoutDescending(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)
	var opened []query.Record
	m.Open = func(record query.Record) error {
		opened = append(opened, record)
		return nil
	}

	require.NoError(t, m.Forward(proj, "main.go"))
	require.NoError(t, m.Forward(proj, "run"))
	require.NoError(t, m.Forward(proj, "2"))

	p := m.Session.Position(proj)
	assert.Equal(t, codemap.DepthDefinitions, p.Depth)
	require.NotNil(t, p.Def)
	assert.Equal(t, rec("alt.go", 3), *p.Def)
	assert.Equal(t, []query.Record{rec("alt.go", 3)}, opened)

	assert.ErrorIs(t, m.Forward(proj, "9"), codemap.ErrNotFound)
}

func TestBackwardStopsAtFileList(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)
	require.NoError(t, m.Forward(proj, "main.go"))
	require.NoError(t, m.Forward(proj, "run"))

	m.Backward(proj)
	assert.Equal(t, codemap.DepthSymbols, m.Session.Position(proj).Depth)
	m.Backward(proj)
	m.Backward(proj)
	assert.Equal(t, codemap.DepthFiles, m.Session.Position(proj).Depth)
}

func TestSeeSymbolQueriesAndPositions(t *testing.T) {
	m := newMachine(stubService{"run": {rec("main.go", 10)}})

	require.NoError(t, m.SeeSymbol(proj, "main.go", "run"))

	list, err := m.Session.Definitions(proj, "main.go", "run")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Hidden)

	p := m.Session.Position(proj)
	assert.Equal(t, codemap.DepthDefinitions, p.Depth)
	assert.Equal(t, "main.go", p.File)
	assert.Equal(t, "run", p.Symbol)
	assert.True(t, m.Session.Disk(proj).Dirty)
}

func TestSeeSymbolNoResults(t *testing.T) {
	m := newMachine(stubService{})

	err := m.SeeSymbol(proj, "main.go", "ghost")
	require.ErrorIs(t, err, codemap.ErrNotFound)
	assert.Empty(t, m.Session.FileList(proj))
	assert.Equal(t, codemap.DepthFiles, m.Session.Position(proj).Depth)
}

func TestSeeSymbolAlreadyMappedSkipsQuery(t *testing.T) {
	m := newMachine(stubService{}) // would return zero results
	m.Session.AddSymbol(proj, "main.go", "run", []query.Record{rec("main.go", 10)})

	require.NoError(t, m.SeeSymbol(proj, "main.go", "run"))
	assert.Equal(t, codemap.DepthDefinitions, m.Session.Position(proj).Depth)
}

func TestSeeFile(t *testing.T) {
	m := newMachine(nil)
	seed(t, m)

	require.NoError(t, m.SeeFile(proj, "util.go"))
	p := m.Session.Position(proj)
	assert.Equal(t, codemap.DepthSymbols, p.Depth)
	assert.Equal(t, "util.go", p.File)

	assert.ErrorIs(t, m.SeeFile(proj, "ghost.go"), codemap.ErrNotFound)
}

func TestUpdateRefreshesEverySymbol(t *testing.T) {
	m := newMachine(stubService{
		"run":    {rec("main.go", 12)},
		"stop":   {rec("main.go", 40)},
		"helper": {},
	})
	seed(t, m)
	require.NoError(t, m.Session.SetHidden(proj, "main.go", "run", rec("main.go", 10), true))
	m.Session.Position(proj).SetDefinition("main.go", "run", rec("main.go", 10))

	require.NoError(t, m.Update(proj))

	list, err := m.Session.Definitions(proj, "main.go", "run")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec("main.go", 12), list[0].Record)
	assert.False(t, list[0].Hidden) // hidden flags reset by the refresh

	helper, err := m.Session.Definitions(proj, "util.go", "helper")
	require.NoError(t, err)
	assert.Empty(t, helper)

	p := m.Session.Position(proj)
	assert.Nil(t, p.Def) // stale record reference cleared
	assert.Equal(t, "run", p.Symbol)
	assert.True(t, m.Session.Disk(proj).Dirty)
}
