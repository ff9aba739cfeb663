package filestore

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docuchunk/internal/storage"
)

const (
	// TokenLength is the length of the random prefix of every stored name.
	TokenLength = 12
	// maxAllocAttempts bounds the collision retry loop in Allocate.
	maxAllocAttempts = 10

	tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	// ErrAllocationExhausted is returned when Allocate keeps colliding with
	// existing files. With 36^12 possible tokens this indicates a broken random
	// source or a corrupted project directory.
	ErrAllocationExhausted = errors.New("unique file name allocation exhausted")
	// ErrInvalidFileID is returned when a file identifier is not a plain stored name.
	ErrInvalidFileID = errors.New("invalid file id")
)

// Manager owns the on-disk layout: one directory per project under a root,
// holding files named <token>_<sanitized-original-name>.
type Manager struct {
	root     string
	newToken func() (string, error)
}

// NewManager creates a Manager rooted at root. The root is created lazily
// together with the first project directory.
func NewManager(root string) *Manager {
	return &Manager{
		root:     root,
		newToken: randomToken,
	}
}

// Root returns the storage root directory.
func (m *Manager) Root() string {
	return m.root
}

// ProjectDir returns the directory for projectID, creating it if absent.
// Concurrent calls for the same project are safe: an existing directory is not an error.
func (m *Manager) ProjectDir(projectID string) (string, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return "", err
	}

	dir := filepath.Join(m.root, projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	return dir, nil
}

// Allocate reserves a new, previously unused path for an upload of
// originalName into the project. It returns the full path and the stored name,
// which doubles as the file identifier.
//
// The name is reserved by creating an empty file with O_EXCL, so two concurrent
// allocations can never both win the same name. The upload writer later
// truncates and fills the reserved file.
func (m *Manager) Allocate(projectID, originalName string) (path, storedName string, err error) {
	dir, err := m.ProjectDir(projectID)
	if err != nil {
		return "", "", err
	}

	cleaned := SanitizeName(originalName)

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		token, err := m.newToken()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate file token: %w", err)
		}

		storedName = token + "_" + cleaned
		path = filepath.Join(dir, storedName)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("failed to reserve %s: %w", storedName, err)
		}
		if err := f.Close(); err != nil {
			return "", "", fmt.Errorf("failed to reserve %s: %w", storedName, err)
		}
		return path, storedName, nil
	}

	return "", "", fmt.Errorf("%w after %d attempts in project %s", ErrAllocationExhausted, maxAllocAttempts, projectID)
}

// FilePath resolves a stored file identifier inside the project directory.
// The identifier must be a bare file name; anything that could escape the
// project directory is rejected. The file itself is not required to exist.
func (m *Manager) FilePath(projectID, fileID string) (string, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return "", err
	}
	if fileID == "" || fileID == "." || fileID == ".." ||
		strings.ContainsAny(fileID, `/\`) || filepath.Base(fileID) != fileID {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileID, fileID)
	}
	return filepath.Join(m.root, projectID, fileID), nil
}

// ListFiles returns the stored names in the project directory, sorted.
// A project that has never received an upload has no files.
func (m *Manager) ListFiles(projectID string) ([]string, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(m.root, projectID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// randomToken returns TokenLength characters drawn uniformly from [a-z0-9].
func randomToken() (string, error) {
	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength*2)

	// Rejection sampling keeps the distribution uniform: 252 is the largest
	// multiple of 36 that fits in a byte.
	for len(out) < TokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}
