package cli

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/query"
)

func TestRelKey(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, "src/main.go", relKey(root, filepath.Join(root, "src", "main.go")))
	assert.Equal(t, "/outside/file.go", relKey(root, "/outside/file.go"))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "whatever\n", want: false},
		{input: "", want: false}, // EOF aborts
	}

	for _, tt := range tests {
		out := &bytes.Buffer{}
		got := confirm(bufio.NewReader(strings.NewReader(tt.input)), out, "sure?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "sure? [y/N]")
	}
}

func TestDescribeEntry(t *testing.T) {
	entry := codemap.Entry{
		Record: query.Record{Path: "a.go", Line: 12, Kind: "func", Signature: "func Run()"},
		Hidden: true,
	}
	assert.Equal(t, "a.go:12 [func] func Run() (hidden)", describeEntry(entry))

	bare := codemap.Entry{Record: query.Record{Path: "b.py", Line: 3}}
	assert.Equal(t, "b.py:3", describeEntry(bare))
}
