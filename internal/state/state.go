// Package state persists code map snapshots: one JSON file per saved map,
// carrying the project root, the full map and the cursor position. It also
// implements the dirty-tracking protocol around those files.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/codemap-dev/codemap/internal/codemap"
)

const CurrentSnapshotVersion = "1"

// Snapshot is the on-disk form of one project's map. The map field encodes
// as ordered entry arrays so insertion order round-trips exactly.
type Snapshot struct {
	Version     string            `json:"version"`
	ProjectRoot string            `json:"project_root"`
	Map         *codemap.CodeMap  `json:"map"`
	Position    *codemap.Position `json:"position"`
}

// Save writes the project's map and position to path, clears the dirty flag
// and records path as the backing file.
func Save(session *codemap.Session, project, path string) error {
	snapshot := Snapshot{
		Version:     CurrentSnapshotVersion,
		ProjectRoot: project,
		Map:         session.Map(project),
		Position:    session.Position(project),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	disk := session.Disk(project)
	disk.Dirty = false
	disk.BackingPath = path
	return nil
}

// Load reads a snapshot from path and installs it into the session,
// replacing any in-memory map for that project. It returns the project root
// the snapshot belongs to.
//
// A snapshot missing its project root or position is rejected as corrupted;
// an empty map is legitimate.
func Load(session *codemap.Session, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return "", fmt.Errorf("%s: %v: %w", path, err, codemap.ErrCorrupted)
	}
	if snapshot.ProjectRoot == "" {
		return "", fmt.Errorf("%s: missing project_root: %w", path, codemap.ErrCorrupted)
	}
	if snapshot.Position == nil {
		return "", fmt.Errorf("%s: missing position: %w", path, codemap.ErrCorrupted)
	}

	session.Restore(snapshot.ProjectRoot, snapshot.Map, snapshot.Position, path)
	return snapshot.ProjectRoot, nil
}

// UnsavedProjects returns the projects whose map has diverged from a known
// backing file, sorted for stable prompting. Maps that were never saved or
// loaded have no backing path and are not reported.
func UnsavedProjects(session *codemap.Session) []string {
	out := make([]string, 0)
	for _, project := range session.Projects() {
		disk := session.Disk(project)
		if disk.Dirty && disk.BackingPath != "" {
			out = append(out, project)
		}
	}
	sort.Strings(out)
	return out
}
