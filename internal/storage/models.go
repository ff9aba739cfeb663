package storage

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidProjectID is returned for project identifiers that are not alphanumeric.
	ErrInvalidProjectID = errors.New("project id must be alphanumeric")
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateProjectID reports whether id is a usable project identifier.
func ValidateProjectID(id string) error {
	if !projectIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}

// ProjectRecord is a project namespace. ID is the internal record key chunks
// reference; ProjectID is the client-facing alphanumeric identifier.
type ProjectRecord struct {
	ID        string
	ProjectID string
	CreatedAt time.Time
}

// ChunkRecord is one stored slice of extracted document text.
type ChunkRecord struct {
	ID         string         // UUID, assigned on insert when empty
	ProjectRef string         // ProjectRecord.ID of the owning project
	FileID     string         // Stored name of the source file
	Order      int            // 1-based position within the file's emitted sequence
	Seq        int64          // Project-wide insertion sequence, assigned by the store
	Text       string         // Chunk text
	Metadata   map[string]any // Copied from the extracted record the chunk came from
	CreatedAt  time.Time
}
