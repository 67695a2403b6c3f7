package query

// Record identifies one definition location. Records are immutable value
// objects; two records are the same definition iff they are equal.
type Record struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Kind      string `json:"kind,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Service answers exact-match definition lookups by symbol name.
type Service interface {
	// Definitions returns every known definition of name, possibly none.
	Definitions(name string) ([]Record, error)
}

// Definition is one extracted symbol definition within a single file.
type Definition struct {
	Name      string
	Kind      string
	Line      int
	Signature string
}

// Extractor defines the interface each language must implement.
type Extractor interface {
	// Language returns the language name (e.g., "go", "python")
	Language() string

	// Extensions returns file extensions this extractor handles
	Extensions() []string

	// Extract parses source code and returns its definitions in source order.
	Extract(filename string, content []byte) ([]Definition, error)
}
