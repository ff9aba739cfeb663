// Package extractor turns stored files into text records. The format is
// chosen by the file's extension, matched exactly and case-sensitively.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrExtractionFailed wraps decoding failures of a supported file.
var ErrExtractionFailed = errors.New("extraction failed")

// Metadata keys attached by the built-in extractors.
const (
	MetaSource      = "source"
	MetaPage        = "page"
	MetaTotalPages  = "total_pages"
	MetaHeadingPath = "heading_path"
)

// Record is one unit of extracted text with its provenance.
type Record struct {
	Text     string
	Metadata map[string]any
}

// Extractor decodes one file format.
type Extractor interface {
	// Extract reads the file at path and returns its records. An empty file
	// may produce records with empty text.
	Extract(ctx context.Context, path string) ([]Record, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) ([]Record, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) ([]Record, error) {
	return f(ctx, path)
}

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// NewDefaultRegistry returns a registry with .txt, .pdf and .md registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".txt", Text{})
	r.Register(".pdf", PDF{})
	r.Register(".md", NewMarkdown())
	return r
}

// Register binds ext (including the leading dot) to e, replacing any
// previous binding.
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[ext] = e
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[filepath.Ext(path)]
	return ok
}

// Extract dispatches path to the extractor for its extension.
//
// A missing file or an unregistered extension yields (nil, nil): there is
// nothing to extract. Decoding failures of a supported file are returned as errors.
func (r *Registry) Extract(ctx context.Context, path string) ([]Record, error) {
	e, ok := r.byExt[filepath.Ext(path)]
	if !ok {
		return nil, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return nil, nil
	}

	records, err := e.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, filepath.Base(path), err)
	}
	return records, nil
}

func sourceMeta(path string) map[string]any {
	return map[string]any{MetaSource: filepath.Base(path)}
}
