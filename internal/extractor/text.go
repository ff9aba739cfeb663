package extractor

import (
	"context"
	"errors"
	"os"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned for text files that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// Text reads a UTF-8 text file as a single record.
type Text struct{}

// Extract implements Extractor.
func (Text) Extract(_ context.Context, path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}

	return []Record{{
		Text:     string(content),
		Metadata: sourceMeta(path),
	}}, nil
}
