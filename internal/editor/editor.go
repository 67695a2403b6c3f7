// Package editor is the boundary to the host text editor: opening a
// definition location and resolving which project a path belongs to.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Opener launches the configured editor on a file location.
type Opener struct {
	// Command is the editor binary, resolved from CODEMAP_EDITOR, then
	// EDITOR, then "vi".
	Command string
}

// NewOpener resolves the editor command from the environment.
func NewOpener() *Opener {
	command := os.Getenv("CODEMAP_EDITOR")
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = "vi"
	}
	return &Opener{Command: command}
}

// OpenLocation opens path at line in the editor, blocking until it exits.
// The +line convention is understood by vi, vim, nano, emacs and friends.
func (o *Opener) OpenLocation(path string, line int) error {
	args := []string{path}
	if line > 0 {
		args = []string{fmt.Sprintf("+%d", line), path}
	}

	cmd := exec.Command(o.Command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open %s:%d with %s: %w", path, line, o.Command, err)
	}
	return nil
}

// ProjectRoot walks up from path to the nearest directory containing a
// repository or module marker. It falls back to the starting directory when
// no marker is found.
func ProjectRoot(path string) string {
	dir, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	start := dir
	for {
		for _, marker := range []string{".git", "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
