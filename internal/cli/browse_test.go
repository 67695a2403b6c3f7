package cli

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/nav"
	"github.com/codemap-dev/codemap/internal/query"
	"github.com/codemap-dev/codemap/internal/state"
)

const proj = "/p"

type stubService map[string][]query.Record

func (s stubService) Definitions(name string) ([]query.Record, error) {
	return s[name], nil
}

func newTestBrowser(t *testing.T, service query.Service, script string) (*browser, *bytes.Buffer) {
	t.Helper()
	session := codemap.NewSession()
	out := &bytes.Buffer{}
	return &browser{
		session: session,
		machine: &nav.Machine{Session: session, Query: service},
		project: proj,
		root:    proj,
		path:    filepath.Join(t.TempDir(), "map.json"),
		in:      bufio.NewReader(strings.NewReader(script)),
		out:     out,
	}, out
}

func TestBrowseSeeMarkHideShowAll(t *testing.T) {
	service := stubService{"run": {
		{Path: "main.go", Line: 10, Kind: "func"},
		{Path: "alt.go", Line: 3, Kind: "func"},
	}}
	b, out := newTestBrowser(t, service, strings.Join([]string{
		"see run",
		"mark 1",
		"hide",
		"show-all",
		"quit",
	}, "\n")+"\n")

	require.NoError(t, b.run())

	list, err := b.session.Definitions(proj, "main.go", "run")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Hidden)
	assert.False(t, list[1].Hidden)
	assert.Contains(t, out.String(), "unhid 1 definition(s)")

	p := b.session.Position(proj)
	assert.Equal(t, codemap.DepthDefinitions, p.Depth)
	assert.Equal(t, "main.go", p.File)
	assert.Equal(t, "run", p.Symbol)
}

func TestBrowseDeleteAsksAndAbortsOnNo(t *testing.T) {
	b, out := newTestBrowser(t, stubService{}, strings.Join([]string{
		"mark 1",
		"delete",
		"n", // refuse the delete confirmation
		"quit",
	}, "\n")+"\n")
	b.session.AddSymbol(proj, "main.go", "run", []query.Record{{Path: "main.go", Line: 10}})

	require.NoError(t, b.run())

	assert.Equal(t, []string{"main.go"}, b.session.FileList(proj))
	assert.Contains(t, out.String(), "aborted")
}

func TestBrowseDeleteProceedsOnYes(t *testing.T) {
	b, _ := newTestBrowser(t, stubService{}, strings.Join([]string{
		"mark 1",
		"delete",
		"y",
		"quit",
	}, "\n")+"\n")
	b.session.AddSymbol(proj, "main.go", "run", []query.Record{{Path: "main.go", Line: 10}})
	b.session.AddSymbol(proj, "util.go", "helper", []query.Record{{Path: "util.go", Line: 2}})

	require.NoError(t, b.run())

	assert.Equal(t, []string{"util.go"}, b.session.FileList(proj))
}

func TestBrowseExitOffersSaveForDirtyBackedMap(t *testing.T) {
	backing := filepath.Join(t.TempDir(), "map.json")
	b, out := newTestBrowser(t, stubService{}, "quit\ny\n")
	b.session.AddSymbol(proj, "main.go", "run", []query.Record{{Path: "main.go", Line: 10}})
	b.session.Disk(proj).BackingPath = backing

	require.NoError(t, b.run())

	assert.Contains(t, out.String(), "saved "+backing)
	_, err := os.Stat(backing)
	require.NoError(t, err)
	assert.False(t, b.session.Disk(proj).Dirty)
}

func TestBrowseExitSkipsCleanAndUnbackedMaps(t *testing.T) {
	b, out := newTestBrowser(t, stubService{}, "quit\n")
	b.session.AddSymbol(proj, "main.go", "run", []query.Record{{Path: "main.go", Line: 10}})

	require.NoError(t, b.run())

	// Dirty but never saved: no prompt, no write. Only an explicit save
	// puts a never-saved map on disk.
	assert.NotContains(t, out.String(), "[y/N]")
	_, err := os.Stat(b.path)
	assert.True(t, os.IsNotExist(err))
}

func TestBrowseRangeKeep(t *testing.T) {
	service := stubService{"run": {
		{Path: "main.go", Line: 10},
		{Path: "alt.go", Line: 3},
		{Path: "third.go", Line: 8},
	}}
	b, _ := newTestBrowser(t, service, strings.Join([]string{
		"see run",
		"range 1 2",
		"keep",
		"quit",
	}, "\n")+"\n")

	require.NoError(t, b.run())

	list, err := b.session.Definitions(proj, "main.go", "run")
	require.NoError(t, err)
	require.Len(t, list, 3)
	visible := list.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, query.Record{Path: "main.go", Line: 10}, visible[0].Record)
	assert.Equal(t, query.Record{Path: "alt.go", Line: 3}, visible[1].Record)
}

func TestBrowseSaveAndReload(t *testing.T) {
	service := stubService{"run": {{Path: "main.go", Line: 10}}}
	b, out := newTestBrowser(t, service, strings.Join([]string{
		"see run",
		"save",
		"quit",
	}, "\n")+"\n")

	require.NoError(t, b.run())
	assert.Contains(t, out.String(), "saved "+b.path)

	restored := codemap.NewSession()
	project, err := state.Load(restored, b.path)
	require.NoError(t, err)
	assert.Equal(t, proj, project)
	assert.Equal(t, []string{"main.go"}, restored.FileList(proj))
}

func TestBrowseMissingMarksForDeletion(t *testing.T) {
	b, out := newTestBrowser(t, stubService{}, strings.Join([]string{
		"missing",
		"delete",
		"y",
		"quit",
	}, "\n")+"\n")
	b.session.AddSymbol(proj, "ghost.go", "run", []query.Record{{Path: "ghost.go", Line: 1}})
	b.session.AddSymbol(proj, "real.go", "helper", []query.Record{{Path: "real.go", Line: 2}})
	b.machine.Stat = func(path string) bool { return path == filepath.Join(proj, "real.go") }

	require.NoError(t, b.run())

	assert.Contains(t, out.String(), "missing: ghost.go")
	assert.Equal(t, []string{"real.go"}, b.session.FileList(proj))
}
