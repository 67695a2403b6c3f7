package codemap

import "github.com/codemap-dev/codemap/internal/query"

// Browsing depths: the three levels of the map hierarchy.
const (
	DepthFiles       = 0
	DepthSymbols     = 1
	DepthDefinitions = 2
)

// Position is the cursor state for one project: which file, symbol and
// definition the user is on, and how deep in the hierarchy they are.
//
// Updates are "sticky": re-entering the file or symbol the cursor already
// points at preserves the deeper fields, so the user returns to the exact
// sub-position they left.
type Position struct {
	File   string        `json:"file,omitempty"`
	Symbol string        `json:"symbol,omitempty"`
	Def    *query.Record `json:"definition,omitempty"`
	Depth  int           `json:"depth"`
}

// Reset returns the cursor to the file list.
func (p *Position) Reset() {
	p.Depth = DepthFiles
}

// EnterFile points the cursor at file. Deeper fields are cleared only when
// file differs from the stored one.
func (p *Position) EnterFile(file string) {
	if p.File != file {
		p.File = file
		p.Symbol = ""
		p.Def = nil
	}
	p.Depth = DepthSymbols
}

// EnterSymbol points the cursor at symbol under file, likewise sticky.
func (p *Position) EnterSymbol(file, symbol string) {
	p.EnterFile(file)
	if p.Symbol != symbol {
		p.Symbol = symbol
		p.Def = nil
	}
	p.Depth = DepthDefinitions
}

// SetDefinition records the definition under the cursor. Unlike the file and
// symbol fields this is unconditional; depth stays at the definition list.
func (p *Position) SetDefinition(file, symbol string, record query.Record) {
	p.EnterSymbol(file, symbol)
	p.Def = &record
}

// ClearFrom nulls the position fields at and below depth, so references to
// removed keys are never read. Depth itself is untouched.
func (p *Position) ClearFrom(depth int) {
	if depth <= DepthFiles {
		p.File = ""
	}
	if depth <= DepthSymbols {
		p.Symbol = ""
	}
	if depth <= DepthDefinitions {
		p.Def = nil
	}
}
