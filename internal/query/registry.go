package query

import (
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds all registered language extractors
type Registry struct {
	extractors map[string]Extractor // language name -> extractor
	extToLang  map[string]string    // extension -> language name
}

// NewRegistry creates a new extractor registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with all supported language extractors
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewGoExtractor())
	r.Register(NewPythonExtractor())
	r.Register(NewTypeScriptExtractor())

	return r
}

// Register adds a language extractor to the registry
func (r *Registry) Register(e Extractor) {
	lang := e.Language()
	r.extractors[lang] = e
	for _, ext := range e.Extensions() {
		r.extToLang[ext] = lang
	}
}

// ExtractorForFile returns the appropriate extractor for a file
func (r *Registry) ExtractorForFile(filename string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	extractor, ok := r.extractors[lang]
	return extractor, ok
}

// SupportedExtensions returns all supported file extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
