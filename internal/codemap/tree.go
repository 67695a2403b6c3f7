package codemap

import (
	"encoding/json"

	"github.com/codemap-dev/codemap/internal/query"
)

// Entry is one definition row: the query record plus its soft-delete flag.
// A hidden entry stays in storage and can be restored; it is only excluded
// from the visible subset.
type Entry struct {
	Record query.Record `json:"record"`
	Hidden bool         `json:"hidden,omitempty"`
}

// DefinitionList is an ordered list of definition entries with unique records.
type DefinitionList []Entry

// Visible returns the entries whose hidden flag is not set.
func (l DefinitionList) Visible() []Entry {
	out := make([]Entry, 0, len(l))
	for _, entry := range l {
		if !entry.Hidden {
			out = append(out, entry)
		}
	}
	return out
}

// Index returns the position of record in the list, or -1.
func (l DefinitionList) Index(record query.Record) int {
	for i, entry := range l {
		if entry.Record == record {
			return i
		}
	}
	return -1
}

// SymbolTable is an insertion-ordered mapping from symbol name to its
// definition list.
type SymbolTable struct {
	names []string
	defs  map[string]DefinitionList
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{defs: make(map[string]DefinitionList)}
}

// Names returns the symbol names in insertion order.
func (t *SymbolTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.names)
}

// Has reports whether name is present.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.defs[name]
	return ok
}

// Definitions returns the definition list for name.
func (t *SymbolTable) Definitions(name string) (DefinitionList, bool) {
	list, ok := t.defs[name]
	return list, ok
}

func (t *SymbolTable) set(name string, list DefinitionList) {
	if _, ok := t.defs[name]; !ok {
		t.names = append(t.names, name)
	}
	t.defs[name] = list
}

func (t *SymbolTable) remove(name string) bool {
	if _, ok := t.defs[name]; !ok {
		return false
	}
	delete(t.defs, name)
	for i, existing := range t.names {
		if existing == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	return true
}

type symbolEntry struct {
	Name        string         `json:"name"`
	Definitions DefinitionList `json:"definitions"`
}

// MarshalJSON encodes the table as an array of entries so insertion order
// survives the round trip.
func (t *SymbolTable) MarshalJSON() ([]byte, error) {
	entries := make([]symbolEntry, 0, len(t.names))
	for _, name := range t.names {
		entries = append(entries, symbolEntry{Name: name, Definitions: t.defs[name]})
	}
	return json.Marshal(entries)
}

func (t *SymbolTable) UnmarshalJSON(data []byte) error {
	var entries []symbolEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*t = *NewSymbolTable()
	for _, entry := range entries {
		if t.Has(entry.Name) {
			continue
		}
		t.set(entry.Name, entry.Definitions)
	}
	return nil
}

// CodeMap is an insertion-ordered mapping from file path to its symbol table.
type CodeMap struct {
	paths []string
	files map[string]*SymbolTable
}

// NewCodeMap creates an empty code map.
func NewCodeMap() *CodeMap {
	return &CodeMap{files: make(map[string]*SymbolTable)}
}

// Files returns the file paths in insertion order.
func (m *CodeMap) Files() []string {
	return append([]string(nil), m.paths...)
}

// Len returns the number of files in the map.
func (m *CodeMap) Len() int {
	return len(m.paths)
}

// Table returns the symbol table for path.
func (m *CodeMap) Table(path string) (*SymbolTable, bool) {
	table, ok := m.files[path]
	return table, ok
}

func (m *CodeMap) ensure(path string) *SymbolTable {
	if table, ok := m.files[path]; ok {
		return table
	}
	table := NewSymbolTable()
	m.paths = append(m.paths, path)
	m.files[path] = table
	return table
}

func (m *CodeMap) remove(path string) bool {
	if _, ok := m.files[path]; !ok {
		return false
	}
	delete(m.files, path)
	for i, existing := range m.paths {
		if existing == path {
			m.paths = append(m.paths[:i], m.paths[i+1:]...)
			break
		}
	}
	return true
}

// rename moves the table at oldPath to newPath, keeping its slot in the
// file order.
func (m *CodeMap) rename(oldPath, newPath string) error {
	if _, ok := m.files[newPath]; ok {
		return ErrConflict
	}
	table, ok := m.files[oldPath]
	if !ok {
		return ErrNotFound
	}
	delete(m.files, oldPath)
	m.files[newPath] = table
	for i, existing := range m.paths {
		if existing == oldPath {
			m.paths[i] = newPath
			break
		}
	}
	return nil
}

type fileEntry struct {
	Path    string       `json:"path"`
	Symbols *SymbolTable `json:"symbols"`
}

func (m *CodeMap) MarshalJSON() ([]byte, error) {
	entries := make([]fileEntry, 0, len(m.paths))
	for _, path := range m.paths {
		entries = append(entries, fileEntry{Path: path, Symbols: m.files[path]})
	}
	return json.Marshal(entries)
}

func (m *CodeMap) UnmarshalJSON(data []byte) error {
	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*m = *NewCodeMap()
	for _, entry := range entries {
		if _, ok := m.files[entry.Path]; ok {
			continue
		}
		table := entry.Symbols
		if table == nil {
			table = NewSymbolTable()
		}
		m.paths = append(m.paths, entry.Path)
		m.files[entry.Path] = table
	}
	return nil
}
