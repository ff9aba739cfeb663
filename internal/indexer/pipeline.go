package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docuchunk/internal/contextutil"
	"docuchunk/internal/extractor"
	"docuchunk/internal/filestore"
	"docuchunk/internal/lock"
	"docuchunk/internal/storage"
)

// ErrNothingToProcess is returned when a file is missing, has an unsupported
// format, or produces no chunks.
var ErrNothingToProcess = errors.New("nothing to process")

// Errors wrapped by Ping to tell the failing backend apart.
var (
	ErrStoreUnavailable = errors.New("chunk store unavailable")
	ErrLockUnavailable  = errors.New("lock backend unavailable")
)

// Pipeline turns stored files into persisted chunks: extract, chunk, store.
type Pipeline struct {
	files     *filestore.Manager
	extractor extractor.Extractor
	projects  storage.ProjectStore
	chunks    storage.ChunkStore
	locker    lock.Locker
	lockTTL   time.Duration
	lockWait  time.Duration
}

// Deps holds the collaborators of a Pipeline.
type Deps struct {
	Files     *filestore.Manager
	Extractor extractor.Extractor // Defaults to extractor.NewDefaultRegistry()
	Projects  storage.ProjectStore
	Chunks    storage.ChunkStore
	Locker    lock.Locker // Defaults to an in-process lock
	LockTTL   time.Duration
	LockWait  time.Duration
}

// NewPipeline creates a processing pipeline.
func NewPipeline(deps Deps) *Pipeline {
	p := &Pipeline{
		files:     deps.Files,
		extractor: deps.Extractor,
		projects:  deps.Projects,
		chunks:    deps.Chunks,
		locker:    deps.Locker,
		lockTTL:   deps.LockTTL,
		lockWait:  deps.LockWait,
	}
	if p.extractor == nil {
		p.extractor = extractor.NewDefaultRegistry()
	}
	if p.locker == nil {
		p.locker = lock.NewLocal()
	}
	if p.lockTTL <= 0 {
		p.lockTTL = 30 * time.Second
	}
	if p.lockWait < 0 {
		p.lockWait = 0
	}
	return p
}

// ProcessFile extracts and chunks one stored file and persists the chunks
// under the project. Orders run 1..n in emission order.
//
// With opts.Reset the project's existing chunks are replaced. Stores that
// implement storage.ChunkReplacer do this in one transaction; for the others
// the delete and insert run back to back under the project lock, and a crash
// between them leaves the project with no chunks.
func (p *Pipeline) ProcessFile(ctx context.Context, projectID, fileID string, opts Options) (*Result, error) {
	chunker, err := NewChunker(opts.ChunkSize, opts.Overlap)
	if err != nil {
		return nil, err
	}

	path, err := p.files.FilePath(projectID, fileID)
	if err != nil {
		return nil, err
	}

	project, err := p.projects.GetOrCreate(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	records, err := p.chunkFile(ctx, chunker, project, path, fileID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToProcess, fileID)
	}

	result := &Result{Project: project, Files: 1}
	if err := p.store(ctx, project, records, opts.Reset, result); err != nil {
		return nil, err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "processed file",
		"project_id", projectID,
		"file_id", fileID,
		"chunks", len(records),
		"inserted", result.Inserted,
		"deleted", result.Deleted,
	)
	return result, nil
}

// ProcessProject processes every stored file of the project. Files that yield
// nothing are skipped; each file's chunks are ordered from 1. With opts.Reset
// the existing chunks are replaced once by the combined result.
func (p *Pipeline) ProcessProject(ctx context.Context, projectID string, opts Options) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunker, err := NewChunker(opts.ChunkSize, opts.Overlap)
	if err != nil {
		return nil, err
	}

	fileIDs, err := p.files.ListFiles(projectID)
	if err != nil {
		return nil, err
	}

	project, err := p.projects.GetOrCreate(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	result := &Result{Project: project}
	var all []*storage.ChunkRecord
	for _, fileID := range fileIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := p.files.FilePath(projectID, fileID)
		if err != nil {
			return nil, err
		}
		records, err := p.chunkFile(ctx, chunker, project, path, fileID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to process file", "project_id", projectID, "file_id", fileID, "error", err)
			continue
		}
		if len(records) == 0 {
			logger.WarnContext(ctx, "no chunks generated", "project_id", projectID, "file_id", fileID)
			continue
		}
		result.Files++
		all = append(all, records...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w: project %s has no processable files", ErrNothingToProcess, projectID)
	}

	if err := p.store(ctx, project, all, opts.Reset, result); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "processed project",
		"project_id", projectID,
		"files", result.Files,
		"skipped", len(fileIDs)-result.Files,
		"inserted", result.Inserted,
		"deleted", result.Deleted,
	)
	return result, nil
}

// ListChunks returns the project's stored chunks in order with their statistics.
func (p *Pipeline) ListChunks(ctx context.Context, projectID string) (*storage.ProjectRecord, []*storage.ChunkRecord, ChunkStats, error) {
	project, err := p.projects.GetOrCreate(ctx, projectID)
	if err != nil {
		return nil, nil, ChunkStats{}, fmt.Errorf("failed to get project: %w", err)
	}

	chunks, err := p.chunks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, nil, ChunkStats{}, fmt.Errorf("failed to list chunks: %w", err)
	}
	return project, chunks, ComputeChunkStats(chunks), nil
}

// Ping checks the chunk store and the lock backend.
func (p *Pipeline) Ping(ctx context.Context) error {
	var errs []error
	if err := p.chunks.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	if err := p.locker.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrLockUnavailable, err))
	}
	return errors.Join(errs...)
}

// chunkFile extracts path and turns its chunks into records ordered from 1.
// An absent extraction yields no records.
func (p *Pipeline) chunkFile(ctx context.Context, chunker *Chunker, project *storage.ProjectRecord, path, fileID string) ([]*storage.ChunkRecord, error) {
	extracted, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	chunks := chunker.Chunk(extracted)
	records := make([]*storage.ChunkRecord, 0, len(chunks))
	for i, c := range chunks {
		records = append(records, &storage.ChunkRecord{
			ProjectRef: project.ID,
			FileID:     fileID,
			Order:      i + 1,
			Text:       c.Text,
			Metadata:   c.Metadata,
		})
	}
	return records, nil
}

// store persists records under the project lock, replacing existing chunks when reset is set.
func (p *Pipeline) store(ctx context.Context, project *storage.ProjectRecord, records []*storage.ChunkRecord, reset bool, result *Result) error {
	logger := contextutil.LoggerFromContext(ctx)

	err := lock.WithLock(ctx, p.locker, lock.ProjectKey(project.ProjectID), p.lockTTL, p.lockWait, func(ctx context.Context) error {
		if !reset {
			inserted, err := p.chunks.InsertMany(ctx, records)
			if err != nil {
				return fmt.Errorf("failed to insert chunks (%d of %d written): %w", inserted, len(records), err)
			}
			result.Inserted = inserted
			return nil
		}

		if replacer, ok := p.chunks.(storage.ChunkReplacer); ok {
			deleted, inserted, err := replacer.ReplaceByProject(ctx, project.ID, records)
			if err != nil {
				return fmt.Errorf("failed to replace chunks: %w", err)
			}
			result.Deleted, result.Inserted = deleted, inserted
			return nil
		}

		deleted, err := p.chunks.DeleteByProject(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("failed to delete chunks: %w", err)
		}
		result.Deleted = deleted

		inserted, err := p.chunks.InsertMany(ctx, records)
		if err != nil {
			logger.ErrorContext(ctx, "insert after reset failed, project may hold only part of the new chunks",
				"project_id", project.ProjectID, "deleted", deleted, "inserted", inserted, "expected", len(records), "error", err)
			return fmt.Errorf("failed to insert chunks (%d of %d written): %w", inserted, len(records), err)
		}
		result.Inserted = inserted
		return nil
	})
	if err != nil {
		return err
	}

	if result.Inserted != len(records) {
		logger.WarnContext(ctx, "partial chunk insert",
			"project_id", project.ProjectID, "expected", len(records), "inserted", result.Inserted)
	}
	return nil
}
