package codemap

import (
	"fmt"

	"github.com/codemap-dev/codemap/internal/query"
)

// DiskState tracks how a project's map relates to its saved snapshot.
type DiskState struct {
	// Dirty is set whenever the in-memory map or position diverges from the
	// last load or save.
	Dirty bool

	// BackingPath is the snapshot file last saved to or loaded from; empty
	// until the map has touched disk once.
	BackingPath string
}

// Session owns all per-project map state for one interactive process: the
// code maps, cursor positions and disk states, each keyed by project root.
// Entries are created lazily on first use and live for the process lifetime.
//
// A Session is not safe for concurrent use; it serves exactly one
// interactive actor.
type Session struct {
	maps      map[string]*CodeMap
	positions map[string]*Position
	disk      map[string]*DiskState
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		maps:      make(map[string]*CodeMap),
		positions: make(map[string]*Position),
		disk:      make(map[string]*DiskState),
	}
}

// Projects returns every project the session holds a map for. Order is not
// defined; callers sort when they need determinism.
func (s *Session) Projects() []string {
	out := make([]string, 0, len(s.maps))
	for project := range s.maps {
		out = append(out, project)
	}
	return out
}

// Map returns the project's code map, creating it on first use.
func (s *Session) Map(project string) *CodeMap {
	m, ok := s.maps[project]
	if !ok {
		m = NewCodeMap()
		s.maps[project] = m
	}
	return m
}

// Position returns the project's cursor, creating it at the file list on
// first use.
func (s *Session) Position(project string) *Position {
	p, ok := s.positions[project]
	if !ok {
		p = &Position{}
		s.positions[project] = p
	}
	return p
}

// Disk returns the project's disk state, creating it on first use.
func (s *Session) Disk(project string) *DiskState {
	d, ok := s.disk[project]
	if !ok {
		d = &DiskState{}
		s.disk[project] = d
	}
	return d
}

// MarkDirty flags the project as diverged from its snapshot.
func (s *Session) MarkDirty(project string) {
	s.Disk(project).Dirty = true
}

// Restore replaces the project's map and position with a loaded snapshot and
// resets its disk state to clean with the given backing path.
func (s *Session) Restore(project string, m *CodeMap, p *Position, backingPath string) {
	if m == nil {
		m = NewCodeMap()
	}
	if p == nil {
		p = &Position{}
	}
	s.maps[project] = m
	s.positions[project] = p
	s.disk[project] = &DiskState{BackingPath: backingPath}
}

// FileList returns the project's file paths in insertion order. An unknown
// project yields an empty list and creates nothing.
func (s *Session) FileList(project string) []string {
	m, ok := s.maps[project]
	if !ok {
		return nil
	}
	return m.Files()
}

// SymbolList returns the symbol names under file in insertion order.
func (s *Session) SymbolList(project, file string) ([]string, error) {
	table, err := s.table(project, file)
	if err != nil {
		return nil, err
	}
	return table.Names(), nil
}

// Definitions returns the definition list for symbol under file.
func (s *Session) Definitions(project, file, symbol string) (DefinitionList, error) {
	table, err := s.table(project, file)
	if err != nil {
		return nil, err
	}
	list, ok := table.Definitions(symbol)
	if !ok {
		return nil, fmt.Errorf("symbol %q in %s: %w", symbol, file, ErrNotFound)
	}
	return list, nil
}

// AddSymbol inserts symbol under file with all records unhidden, preserving
// record order and dropping duplicates. Adding a symbol that is already
// present is a no-op.
func (s *Session) AddSymbol(project, file, symbol string, records []query.Record) {
	table := s.Map(project).ensure(file)
	if table.Has(symbol) {
		return
	}

	list := make(DefinitionList, 0, len(records))
	for _, record := range records {
		if list.Index(record) >= 0 {
			continue
		}
		list = append(list, Entry{Record: record})
	}
	table.set(symbol, list)
	s.MarkDirty(project)
}

// SetHidden flips the hidden flag on one definition record.
func (s *Session) SetHidden(project, file, symbol string, record query.Record, hidden bool) error {
	list, err := s.Definitions(project, file, symbol)
	if err != nil {
		return err
	}
	i := list.Index(record)
	if i < 0 {
		return fmt.Errorf("definition %s:%d: %w", record.Path, record.Line, ErrNotFound)
	}
	list[i].Hidden = hidden
	s.MarkDirty(project)
	return nil
}

// RemoveFile deletes file and its whole symbol subtree. Irreversible;
// callers gate it behind confirmation.
func (s *Session) RemoveFile(project, file string) error {
	m, ok := s.maps[project]
	if !ok || !m.remove(file) {
		return fmt.Errorf("file %q: %w", file, ErrNotFound)
	}
	s.MarkDirty(project)
	return nil
}

// RemoveSymbol deletes symbol and its definition list from file.
func (s *Session) RemoveSymbol(project, file, symbol string) error {
	table, err := s.table(project, file)
	if err != nil {
		return err
	}
	if !table.remove(symbol) {
		return fmt.Errorf("symbol %q in %s: %w", symbol, file, ErrNotFound)
	}
	s.MarkDirty(project)
	return nil
}

// RenameFile moves file's subtree to a new key, keeping its position in the
// file order.
func (s *Session) RenameFile(project, oldFile, newFile string) error {
	m, ok := s.maps[project]
	if !ok {
		return fmt.Errorf("file %q: %w", oldFile, ErrNotFound)
	}
	if err := m.rename(oldFile, newFile); err != nil {
		return fmt.Errorf("rename %q to %q: %w", oldFile, newFile, err)
	}
	if p := s.Position(project); p.File == oldFile {
		p.File = newFile
	}
	s.MarkDirty(project)
	return nil
}

// RefreshSymbol re-queries symbol and replaces its definition list wholesale.
// All hidden flags reset to false: record identity cannot be trusted across
// a re-query, so prior hide annotations are discarded.
func (s *Session) RefreshSymbol(project, file, symbol string, service query.Service) error {
	table, err := s.table(project, file)
	if err != nil {
		return err
	}
	if !table.Has(symbol) {
		return fmt.Errorf("symbol %q in %s: %w", symbol, file, ErrNotFound)
	}

	records, err := service.Definitions(symbol)
	if err != nil {
		return fmt.Errorf("query for %q: %w", symbol, err)
	}

	list := make(DefinitionList, 0, len(records))
	for _, record := range records {
		if list.Index(record) >= 0 {
			continue
		}
		list = append(list, Entry{Record: record})
	}
	table.set(symbol, list)
	s.MarkDirty(project)
	return nil
}

func (s *Session) table(project, file string) (*SymbolTable, error) {
	m, ok := s.maps[project]
	if !ok {
		return nil, fmt.Errorf("file %q: %w", file, ErrNotFound)
	}
	table, ok := m.Table(file)
	if !ok {
		return nil, fmt.Errorf("file %q: %w", file, ErrNotFound)
	}
	return table, nil
}
