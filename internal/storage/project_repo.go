package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_project_store.go -package=mocks docuchunk/internal/storage ProjectStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProjectStore defines the interface for project storage operations.
type ProjectStore interface {
	// GetOrCreate returns the project with the given identifier, creating it on first reference.
	// Returns ErrInvalidProjectID if the identifier is not alphanumeric.
	GetOrCreate(ctx context.Context, projectID string) (*ProjectRecord, error)
}

// ProjectRepo provides methods for project operations.
// It implements the ProjectStore interface.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// GetOrCreate gets an existing project by identifier, or creates it if it doesn't exist.
// Concurrent callers racing on the same identifier all receive the same record.
func (r *ProjectRepo) GetOrCreate(ctx context.Context, projectID string) (*ProjectRecord, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	project, err := r.getByProjectID(ctx, projectID)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// The unique index on project_id arbitrates concurrent creators; the loser's
	// insert is a no-op and the re-read below returns the winner's row.
	_, err = r.db.ExecContext(ctx, r.db.rebind(
		"INSERT INTO projects (id, project_id, created_at) VALUES (?, ?, ?) ON CONFLICT (project_id) DO NOTHING"),
		uuid.New().String(), projectID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return r.getByProjectID(ctx, projectID)
}

func (r *ProjectRepo) getByProjectID(ctx context.Context, projectID string) (*ProjectRecord, error) {
	var project ProjectRecord
	err := r.db.QueryRowContext(ctx, r.db.rebind(
		"SELECT id, project_id, created_at FROM projects WHERE project_id = ?"),
		projectID,
	).Scan(&project.ID, &project.ProjectID, &project.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return &project, nil
}
