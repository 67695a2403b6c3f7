package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBuildIndexAnswersExactMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/util.go", "package a\n\nfunc Helper() {}\n")
	writeFile(t, root, "b/other.go", "package b\n\nfunc Helper() {}\n\nfunc Single() {}\n")
	writeFile(t, root, "notes.txt", "Helper")

	index, err := BuildIndex(root, NewDefaultRegistry())
	require.NoError(t, err)

	records, err := index.Definitions("Helper")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Files are scanned in sorted path order.
	assert.Equal(t, "a/util.go", records[0].Path)
	assert.Equal(t, "b/other.go", records[1].Path)
	assert.Equal(t, 3, records[0].Line)

	records, err = index.Definitions("Single")
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = index.Definitions("Nothing")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = index.Definitions("   ")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildIndexHonorsGitignoreAndSkipDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n")
	writeFile(t, root, "keep.go", "package a\n\nfunc Kept() {}\n")
	writeFile(t, root, "generated/skip.go", "package a\n\nfunc Skipped() {}\n")
	writeFile(t, root, "node_modules/dep/index.js", "function Skipped() {}\n")

	index, err := BuildIndex(root, NewDefaultRegistry())
	require.NoError(t, err)

	records, err := index.Definitions("Kept")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = index.Definitions("Skipped")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildIndexCrossLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "def process():\n    pass\n")
	writeFile(t, root, "app.ts", "export function process(): void {}\n")

	index, err := BuildIndex(root, NewDefaultRegistry())
	require.NoError(t, err)

	records, err := index.Definitions("process")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "app.py", records[0].Path)
	assert.Equal(t, "app.ts", records[1].Path)
}
