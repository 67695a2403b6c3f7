package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/editor"
	"github.com/codemap-dev/codemap/internal/nav"
	"github.com/codemap-dev/codemap/internal/query"
	"github.com/codemap-dev/codemap/internal/state"
)

const defaultSnapshotName = ".codemap.json"

func resolveRoot(cmd *cobra.Command) (string, error) {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return "", fmt.Errorf("failed to read --root flag: %w", err)
	}
	if root != "" {
		return filepath.Abs(root)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return editor.ProjectRoot(cwd), nil
}

func snapshotPath(cmd *cobra.Command, root string) (string, error) {
	path, err := cmd.Flags().GetString("map")
	if err != nil {
		return "", fmt.Errorf("failed to read --map flag: %w", err)
	}
	if path == "" {
		path = os.Getenv("CODEMAP_FILE")
	}
	if path == "" {
		path = filepath.Join(root, defaultSnapshotName)
	}
	return path, nil
}

// openSession builds the session for a command: an existing snapshot is
// loaded, a missing one starts the project empty.
func openSession(root, path string) (*codemap.Session, string, error) {
	session := codemap.NewSession()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return session, root, nil
		}
		return nil, "", fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	project, err := state.Load(session, path)
	if err != nil {
		return nil, "", err
	}
	return session, project, nil
}

func newMachine(session *codemap.Session, root string) (*nav.Machine, error) {
	index, err := query.BuildIndex(root, query.NewDefaultRegistry())
	if err != nil {
		return nil, err
	}
	opener := editor.NewOpener()
	return &nav.Machine{
		Session: session,
		Query:   index,
		Open: func(record query.Record) error {
			path := record.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			return opener.OpenLocation(path, record.Line)
		},
	}, nil
}

// confirm asks a yes/no question; anything but an explicit yes aborts.
func confirm(in *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// relKey converts path into the map's file-key form: project-relative when
// the path sits under the project root, absolute otherwise.
func relKey(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs
	}
	return rel
}

func describeEntry(entry codemap.Entry) string {
	out := fmt.Sprintf("%s:%d", entry.Record.Path, entry.Record.Line)
	if entry.Record.Kind != "" {
		out += " [" + entry.Record.Kind + "]"
	}
	if entry.Record.Signature != "" {
		out += " " + entry.Record.Signature
	}
	if entry.Hidden {
		out += " (hidden)"
	}
	return out
}
