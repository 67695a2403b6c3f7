package query

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"__pycache__":  {},
	"venv":         {},
	".venv":        {},
	"dist":         {},
	"build":        {},
	"vendor":       {},
}

// Index answers exact-match definition queries from a one-shot scan of a
// project tree. Records are returned in scan order: files sorted by path,
// definitions in source order within each file.
type Index struct {
	byName map[string][]Record
}

// BuildIndex scans root for supported source files and extracts every
// definition. Files matched by the project's .gitignore are skipped.
func BuildIndex(root string, registry *Registry) (*Index, error) {
	files, err := collectFiles(root, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	// Parse concurrently, but keep results slotted by file order so the
	// index is deterministic.
	results := make([][]fileDefinition, len(files))
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for i, relPath := range files {
		i, relPath := i, relPath
		group.Go(func() error {
			extractor, ok := registry.ExtractorForFile(relPath)
			if !ok {
				return nil
			}
			content, err := os.ReadFile(filepath.Join(root, relPath))
			if err != nil {
				return err
			}
			defs, err := extractor.Extract(relPath, content)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", relPath, err)
			}
			out := make([]fileDefinition, 0, len(defs))
			for _, def := range defs {
				out = append(out, fileDefinition{path: relPath, def: def})
			}
			results[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	index := &Index{byName: make(map[string][]Record)}
	for _, fileDefs := range results {
		for _, fd := range fileDefs {
			index.byName[fd.def.Name] = append(index.byName[fd.def.Name], Record{
				Path:      fd.path,
				Line:      fd.def.Line,
				Kind:      fd.def.Kind,
				Signature: fd.def.Signature,
			})
		}
	}
	return index, nil
}

// Definitions returns every definition of name, in scan order.
func (ix *Index) Definitions(name string) ([]Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return append([]Record(nil), ix.byName[name]...), nil
}

type fileDefinition struct {
	path string
	def  Definition
}

func collectFiles(root string, registry *Registry) ([]string, error) {
	matcher := loadGitignore(root)

	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.MatchesPath(relPath) {
			return nil
		}
		if _, ok := registry.ExtractorForFile(path); !ok {
			return nil
		}

		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	matcher, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return matcher
}
