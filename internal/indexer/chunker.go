package indexer

import (
	"errors"
	"fmt"
	"maps"

	"docuchunk/internal/extractor"
)

// ErrInvalidChunkConfig is returned for a non-positive chunk size, a negative
// overlap, or an overlap that is not smaller than the chunk size.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// Chunker cuts text into fixed-size windows measured in runes. Consecutive
// windows of the same record share exactly overlap runes, so dropping the
// first overlap runes of every window after the first and concatenating the
// rest reproduces the record text.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the window configuration.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk_size=%d overlap_size=%d", ErrInvalidChunkConfig, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the windows of text. Empty text yields no windows and text
// no longer than the chunk size yields exactly one.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := c.size - c.overlap
	windows := make([]string, 0, expectedWindows(len(runes), c.size, c.overlap))

	for start := 0; ; start += step {
		end := min(start+c.size, len(runes))
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}

// Chunk splits every record independently. Each chunk gets its own copy of
// the record's metadata.
func (c *Chunker) Chunk(records []extractor.Record) []Chunk {
	var chunks []Chunk
	for _, r := range records {
		for _, w := range c.Split(r.Text) {
			chunks = append(chunks, Chunk{
				Text:     w,
				Metadata: maps.Clone(r.Metadata),
			})
		}
	}
	return chunks
}

// expectedWindows is ceil((n-overlap)/(size-overlap)) for n > size.
func expectedWindows(n, size, overlap int) int {
	switch {
	case n == 0:
		return 0
	case n <= size:
		return 1
	}
	step := size - overlap
	return (n - overlap + step - 1) / step
}
