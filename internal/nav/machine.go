// Package nav implements the depth-indexed traversal over a session's code
// maps: the forward/backward cursor walk, the see-symbol and see-file entry
// points, and the bulk operations that hide, delete or keep map items.
package nav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/query"
)

// Machine drives navigation for one session. Query answers definition
// lookups; Open is the external jump action invoked when the user selects a
// definition, typically opening the location in an editor.
type Machine struct {
	Session *codemap.Session
	Query   query.Service
	Open    func(record query.Record) error

	// Stat overrides the on-disk existence check used by MarkMissing;
	// nil means os.Stat.
	Stat func(path string) bool
}

// Forward descends one level from the cursor. At the file and symbol lists
// the selected key becomes the new position; at the definition list the
// selection (a 1-based index into the visible definitions) triggers the
// external jump without changing depth. An empty selection is a no-op.
func (m *Machine) Forward(project, selected string) error {
	selected = strings.TrimSpace(selected)
	if selected == "" {
		return nil
	}

	p := m.Session.Position(project)
	switch p.Depth {
	case codemap.DepthFiles:
		files := m.Session.FileList(project)
		if !contains(files, selected) {
			return fmt.Errorf("file %q: %w", selected, codemap.ErrNotFound)
		}
		p.EnterFile(selected)
		return nil

	case codemap.DepthSymbols:
		symbols, err := m.Session.SymbolList(project, p.File)
		if err != nil {
			return err
		}
		if !contains(symbols, selected) {
			return fmt.Errorf("symbol %q: %w", selected, codemap.ErrNotFound)
		}
		p.EnterSymbol(p.File, selected)
		return nil

	default:
		record, err := m.visibleRecord(project, selected)
		if err != nil {
			return err
		}
		p.SetDefinition(p.File, p.Symbol, record)
		if m.Open != nil {
			return m.Open(record)
		}
		return nil
	}
}

// Backward ascends one level. A no-op at the file list.
func (m *Machine) Backward(project string) {
	p := m.Session.Position(project)
	if p.Depth > codemap.DepthFiles {
		p.Depth--
	}
}

// SeeSymbol brings name under file into the map, querying for its
// definitions if it is not already present, and places the cursor on its
// definition list. Zero query results fail with not-found and change
// nothing.
func (m *Machine) SeeSymbol(project, file, name string) error {
	table, ok := m.Session.Map(project).Table(file)
	if !ok || !table.Has(name) {
		records, err := m.Query.Definitions(name)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no definition found for %q: %w", name, codemap.ErrNotFound)
		}
		m.Session.AddSymbol(project, file, name, records)
	}

	m.Session.Position(project).EnterSymbol(file, name)
	return nil
}

// SeeFile places the cursor on file's symbol list. The file must already be
// in the map.
func (m *Machine) SeeFile(project, file string) error {
	if _, ok := m.Session.Map(project).Table(file); !ok {
		return fmt.Errorf("file %q not in map, add a symbol first: %w", file, codemap.ErrNotFound)
	}
	m.Session.Position(project).EnterFile(file)
	return nil
}

// Update re-queries every symbol in the project's map and replaces each
// definition list. It is a destructive whole-map refresh: hidden flags reset
// and the current definition is cleared, because old records carry no stable
// identity across a re-query.
func (m *Machine) Update(project string) error {
	for _, file := range m.Session.FileList(project) {
		symbols, err := m.Session.SymbolList(project, file)
		if err != nil {
			return err
		}
		for _, symbol := range symbols {
			if err := m.Session.RefreshSymbol(project, file, symbol, m.Query); err != nil {
				return err
			}
		}
	}

	m.Session.Position(project).ClearFrom(codemap.DepthDefinitions)
	m.Session.MarkDirty(project)
	return nil
}

// visibleRecord resolves a 1-based index into the visible definitions at the
// cursor's file/symbol.
func (m *Machine) visibleRecord(project, selected string) (query.Record, error) {
	p := m.Session.Position(project)
	list, err := m.Session.Definitions(project, p.File, p.Symbol)
	if err != nil {
		return query.Record{}, err
	}
	visible := list.Visible()

	n, err := strconv.Atoi(selected)
	if err != nil || n < 1 || n > len(visible) {
		return query.Record{}, fmt.Errorf("definition %q: %w", selected, codemap.ErrNotFound)
	}
	return visible[n-1].Record, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
