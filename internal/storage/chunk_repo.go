package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docuchunk/internal/storage ChunkStore,ChunkReplacer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// InsertMany persists chunks in the given sequence, preserving each Order.
	// It returns the number of records actually written.
	InsertMany(ctx context.Context, chunks []*ChunkRecord) (int, error)
	// DeleteByProject removes every chunk owned by the project record and
	// returns the number removed.
	DeleteByProject(ctx context.Context, projectRef string) (int, error)
	// ListByProject returns the project's chunks in insertion order.
	ListByProject(ctx context.Context, projectRef string) ([]*ChunkRecord, error)
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// ChunkReplacer is implemented by stores that can swap all of a project's
// chunks atomically. Callers should prefer it over DeleteByProject followed by
// InsertMany, which leaves a window where the project has no chunks.
type ChunkReplacer interface {
	ReplaceByProject(ctx context.Context, projectRef string, chunks []*ChunkRecord) (deleted, inserted int, err error)
}

var (
	_ ChunkStore    = (*ChunkRepo)(nil)
	_ ChunkReplacer = (*ChunkRepo)(nil)
)

// ChunkRepo provides methods for chunk operations on SQLite or PostgreSQL.
// It implements the ChunkStore and ChunkReplacer interfaces.
type ChunkRepo struct {
	db *DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

const insertChunkSQL = "INSERT INTO chunks (id, project_ref, file_id, chunk_order, seq, text, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"

// InsertMany inserts chunks in a single transaction.
// Chunks without an ID get a fresh UUID; the ID is written back to the record.
func (r *ChunkRepo) InsertMany(ctx context.Context, chunks []*ChunkRecord) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		n, err := r.insertTx(ctx, tx, chunks)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// DeleteByProject deletes all chunks for a given project record.
// Used to reset a project before re-processing a file.
func (r *ChunkRepo) DeleteByProject(ctx context.Context, projectRef string) (int, error) {
	result, err := r.db.ExecContext(ctx, r.db.rebind("DELETE FROM chunks WHERE project_ref = ?"), projectRef)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks by project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted chunks: %w", err)
	}
	return int(n), nil
}

// ReplaceByProject deletes the project's chunks and inserts the new ones in one transaction.
func (r *ChunkRepo) ReplaceByProject(ctx context.Context, projectRef string, chunks []*ChunkRecord) (deleted, inserted int, err error) {
	err = r.db.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM chunks WHERE project_ref = ?"), projectRef)
		if err != nil {
			return fmt.Errorf("failed to delete chunks by project: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted chunks: %w", err)
		}
		deleted = int(n)

		inserted, err = r.insertTx(ctx, tx, chunks)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, inserted, nil
}

// ListByProject returns all chunks for a project in the order they were inserted.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListByProject(ctx context.Context, projectRef string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		"SELECT id, project_ref, file_id, chunk_order, seq, text, metadata, created_at FROM chunks WHERE project_ref = ? ORDER BY seq"),
		projectRef,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []*ChunkRecord{}
	for rows.Next() {
		var chunk ChunkRecord
		var metadata string
		if err := rows.Scan(&chunk.ID, &chunk.ProjectRef, &chunk.FileID, &chunk.Order, &chunk.Seq, &chunk.Text, &metadata, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
		}
		chunks = append(chunks, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// Ping checks the database connection.
func (r *ChunkRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// insertTx writes chunks after the highest sequence already stored for their
// project, so a listing returns them in exactly this order. Concurrent writers to
// one project are expected to hold the project lock; the unique (project_ref, seq)
// index rejects the loser otherwise.
func (r *ChunkRepo) insertTx(ctx context.Context, tx *sql.Tx, chunks []*ChunkRecord) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	next := make(map[string]int64)

	stmt, err := tx.PrepareContext(ctx, r.db.rebind(insertChunkSQL))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	now := time.Now().UTC()
	inserted := 0
	for _, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = uuid.New().String()
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = now
		}
		metadata, err := encodeMetadata(chunk.Metadata)
		if err != nil {
			return 0, err
		}

		seq, ok := next[chunk.ProjectRef]
		if !ok {
			if seq, err = r.maxSeq(ctx, tx, chunk.ProjectRef); err != nil {
				return 0, err
			}
		}
		seq++
		next[chunk.ProjectRef] = seq
		chunk.Seq = seq

		result, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.ProjectRef, chunk.FileID, chunk.Order, chunk.Seq, chunk.Text, metadata, chunk.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert chunk %d: %w", chunk.Order, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted chunk: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *ChunkRepo) maxSeq(ctx context.Context, tx *sql.Tx, projectRef string) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		r.db.rebind("SELECT COALESCE(MAX(seq), 0) FROM chunks WHERE project_ref = ?"), projectRef,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read chunk sequence: %w", err)
	}
	return seq, nil
}

func encodeMetadata(metadata map[string]any) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode chunk metadata: %w", err)
	}
	return string(raw), nil
}
