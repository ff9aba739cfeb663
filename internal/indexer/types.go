package indexer

import "docuchunk/internal/storage"

// Chunk is a window of extracted text and the metadata of the record it came from.
type Chunk struct {
	Text     string
	Metadata map[string]any
}

// Options controls one processing run.
type Options struct {
	ChunkSize int  // Max runes per chunk
	Overlap   int  // Runes shared by consecutive chunks of one record
	Reset     bool // Delete the project's existing chunks first
}

// Result reports what a processing run stored.
type Result struct {
	Project  *storage.ProjectRecord
	Files    int // Files that produced at least one chunk
	Deleted  int // Chunks removed by a reset
	Inserted int // Chunks persisted
}
