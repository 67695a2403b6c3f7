package nav

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/query"
)

// Selection is the set of items a bulk operation targets: map keys at the
// file and symbol lists, definition records at the definition list.
// Operations never care how the set was chosen; Pick encodes the fallback.
type Selection struct {
	Keys    []string
	Records []query.Record
}

// Empty reports whether the selection targets nothing.
func (sel Selection) Empty() bool {
	return len(sel.Keys) == 0 && len(sel.Records) == 0
}

// Pick resolves the three-tier selection fallback shared by every bulk
// operation: an active region wins, then explicitly marked items, then the
// single item under the cursor.
func Pick(region, marked, cursor Selection) Selection {
	if !region.Empty() {
		return region
	}
	if !marked.Empty() {
		return marked
	}
	return cursor
}

// Hide soft-deletes the selected definitions. Only valid at the definition
// list; hidden entries stay in storage and come back via ShowAll.
func (m *Machine) Hide(project string, sel Selection) error {
	p := m.Session.Position(project)
	if p.Depth != codemap.DepthDefinitions {
		return fmt.Errorf("hide applies to definitions only: %w", codemap.ErrUsage)
	}

	list, err := m.Session.Definitions(project, p.File, p.Symbol)
	if err != nil {
		return err
	}
	for _, record := range sel.Records {
		if list.Index(record) < 0 {
			return fmt.Errorf("definition %s:%d: %w", record.Path, record.Line, codemap.ErrNotFound)
		}
	}

	for _, record := range sel.Records {
		if err := m.Session.SetHidden(project, p.File, p.Symbol, record, true); err != nil {
			return err
		}
		if p.Def != nil && *p.Def == record {
			p.Def = nil
		}
	}
	return nil
}

// Delete hard-removes the selected files or symbols and their subtrees.
// Definitions are never hard-deleted, only hidden. Callers confirm with the
// user before invoking.
func (m *Machine) Delete(project string, sel Selection) error {
	p := m.Session.Position(project)

	switch p.Depth {
	case codemap.DepthFiles:
		files := m.Session.FileList(project)
		for _, key := range sel.Keys {
			if !contains(files, key) {
				return fmt.Errorf("file %q: %w", key, codemap.ErrNotFound)
			}
		}
		for _, key := range sel.Keys {
			if err := m.Session.RemoveFile(project, key); err != nil {
				return err
			}
		}
		if contains(sel.Keys, p.File) {
			p.ClearFrom(codemap.DepthFiles)
		}
		return nil

	case codemap.DepthSymbols:
		symbols, err := m.Session.SymbolList(project, p.File)
		if err != nil {
			return err
		}
		for _, key := range sel.Keys {
			if !contains(symbols, key) {
				return fmt.Errorf("symbol %q: %w", key, codemap.ErrNotFound)
			}
		}
		for _, key := range sel.Keys {
			if err := m.Session.RemoveSymbol(project, p.File, key); err != nil {
				return err
			}
		}
		if contains(sel.Keys, p.Symbol) {
			p.ClearFrom(codemap.DepthSymbols)
		}
		return nil

	default:
		return fmt.Errorf("definitions can only be hidden, not deleted: %w", codemap.ErrUsage)
	}
}

// Keep is the inverse bulk operation: at the definition list it hides every
// definition not selected; above it, it deletes every key not selected.
// An empty selection, or one covering the whole list, is rejected before
// anything mutates.
func (m *Machine) Keep(project string, sel Selection) error {
	if sel.Empty() {
		return fmt.Errorf("nothing selected: %w", codemap.ErrUsage)
	}

	p := m.Session.Position(project)
	if p.Depth == codemap.DepthDefinitions {
		list, err := m.Session.Definitions(project, p.File, p.Symbol)
		if err != nil {
			return err
		}
		drop := Selection{}
		for _, entry := range list.Visible() {
			if !containsRecord(sel.Records, entry.Record) {
				drop.Records = append(drop.Records, entry.Record)
			}
		}
		if drop.Empty() {
			return fmt.Errorf("nothing left to hide: %w", codemap.ErrUsage)
		}
		return m.Hide(project, drop)
	}

	var keys []string
	if p.Depth == codemap.DepthFiles {
		keys = m.Session.FileList(project)
	} else {
		var err error
		keys, err = m.Session.SymbolList(project, p.File)
		if err != nil {
			return err
		}
	}

	drop := Selection{}
	for _, key := range keys {
		if !contains(sel.Keys, key) {
			drop.Keys = append(drop.Keys, key)
		}
	}
	if drop.Empty() {
		return fmt.Errorf("nothing left to delete: %w", codemap.ErrUsage)
	}
	return m.Delete(project, drop)
}

// ShowAll clears the hidden flag on every definition of symbol under file
// and returns the records that were re-shown, so the caller can re-mark
// them in its view.
func (m *Machine) ShowAll(project, file, symbol string) ([]query.Record, error) {
	list, err := m.Session.Definitions(project, file, symbol)
	if err != nil {
		return nil, err
	}

	shown := make([]query.Record, 0)
	for _, entry := range list {
		if !entry.Hidden {
			continue
		}
		if err := m.Session.SetHidden(project, file, symbol, entry.Record, false); err != nil {
			return nil, err
		}
		shown = append(shown, entry.Record)
	}
	return shown, nil
}

// MarkMissing returns the keys at the cursor's level that no longer resolve:
// at the file list, files absent from disk; at the symbol list, symbols the
// query service no longer finds. The caller marks the returned keys.
func (m *Machine) MarkMissing(project string) ([]string, error) {
	p := m.Session.Position(project)

	switch p.Depth {
	case codemap.DepthFiles:
		missing := make([]string, 0)
		for _, file := range m.Session.FileList(project) {
			if !m.fileExists(project, file) {
				missing = append(missing, file)
			}
		}
		return missing, nil

	case codemap.DepthSymbols:
		symbols, err := m.Session.SymbolList(project, p.File)
		if err != nil {
			return nil, err
		}
		missing := make([]string, 0)
		for _, symbol := range symbols {
			records, err := m.Query.Definitions(symbol)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				missing = append(missing, symbol)
			}
		}
		return missing, nil

	default:
		return nil, fmt.Errorf("missing applies to files and symbols only: %w", codemap.ErrUsage)
	}
}

func (m *Machine) fileExists(project, file string) bool {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(project, file)
	}
	if m.Stat != nil {
		return m.Stat(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

func containsRecord(records []query.Record, want query.Record) bool {
	for _, record := range records {
		if record == want {
			return true
		}
	}
	return false
}
