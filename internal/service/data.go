package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_data_service.go -package=mocks docuchunk/internal/service DataService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"docuchunk/internal/config"
	"docuchunk/internal/contextutil"
	"docuchunk/internal/extractor"
	"docuchunk/internal/filestore"
	"docuchunk/internal/indexer"
	"docuchunk/internal/lock"
	"docuchunk/internal/storage"
)

// UploadRequest is one inbound file.
type UploadRequest struct {
	ProjectID   string
	Filename    string
	ContentType string
	Size        int64 // Declared size in bytes
	Body        io.Reader
}

// UploadResponse describes the stored file.
type UploadResponse struct {
	Signal    Signal `json:"signal"`
	FileID    string `json:"file_id"`
	FilePath  string `json:"file_path"`
	ProjectID string `json:"project_id"`
}

// ProcessRequest asks for a stored file to be chunked. An empty FileID
// processes every file of the project. Zero sizes use the configured defaults.
type ProcessRequest struct {
	ProjectID   string
	FileID      string
	ChunkSize   int
	OverlapSize int
	DoReset     bool
}

// ProcessResponse reports the stored chunks.
type ProcessResponse struct {
	Signal         Signal `json:"signal"`
	InsertedChunks int    `json:"inserted_chunks"`
	DeletedChunks  int    `json:"deleted_chunks"`
	ProcessedFiles int    `json:"processed_files"`
}

// ChunkView is a stored chunk as returned to clients.
type ChunkView struct {
	Order     int            `json:"order"`
	FileID    string         `json:"file_id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// ChunksResponse lists a project's chunks.
type ChunksResponse struct {
	ProjectID string             `json:"project_id"`
	Chunks    []ChunkView        `json:"chunks"`
	Stats     indexer.ChunkStats `json:"stats"`
}

// DataService handles uploads and their processing into chunks.
type DataService interface {
	// Upload validates and stores a file under the project.
	Upload(ctx context.Context, req UploadRequest) (UploadResponse, error)
	// Process chunks a stored file (or all of the project's files) into the chunk store.
	Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error)
	// ListChunks returns the project's chunks in order.
	ListChunks(ctx context.Context, projectID string) (ChunksResponse, error)
	// Health checks the backing stores.
	Health(ctx context.Context) error
}

type dataService struct {
	cfg      *config.Config
	files    *filestore.Manager
	projects storage.ProjectStore
	pipeline *indexer.Pipeline
}

// NewDataService creates a DataService.
func NewDataService(cfg *config.Config, files *filestore.Manager, projects storage.ProjectStore, pipeline *indexer.Pipeline) DataService {
	return &dataService{
		cfg:      cfg,
		files:    files,
		projects: projects,
		pipeline: pipeline,
	}
}

// Upload runs validation, allocation and the streaming write in that order.
// A failed write removes the partial file so its identifier cannot be processed.
func (s *dataService) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := storage.ValidateProjectID(req.ProjectID); err != nil {
		return UploadResponse{Signal: SignalProjectIDInvalid}, signalError(SignalProjectIDInvalid, err)
	}
	if req.Body == nil {
		return UploadResponse{Signal: SignalFileUploadFailed}, signalError(SignalFileUploadFailed, &ValidationError{Field: "file", Message: "is required"})
	}

	if err := filestore.Validate(req.ContentType, req.Size, s.cfg.FileAllowedTypes, s.cfg.FileMaxSizeMB); err != nil {
		signal := rejectionSignal(err)
		logger.InfoContext(ctx, "upload rejected", "project_id", req.ProjectID, "content_type", req.ContentType, "size", req.Size, "signal", signal)
		return UploadResponse{Signal: signal}, signalError(signal, err)
	}

	project, err := s.projects.GetOrCreate(ctx, req.ProjectID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get project", "project_id", req.ProjectID, "error", err)
		return UploadResponse{Signal: SignalFileUploadFailed}, signalError(SignalFileUploadFailed, err)
	}

	path, fileID, err := s.files.Allocate(project.ProjectID, req.Filename)
	if err != nil {
		logger.ErrorContext(ctx, "failed to allocate file path", "project_id", req.ProjectID, "filename", req.Filename, "error", err)
		return UploadResponse{Signal: SignalFileUploadFailed}, signalError(SignalFileUploadFailed, err)
	}

	// The declared size is advisory; one byte past the limit proves the body lied.
	limit := s.cfg.MaxUploadBytes()
	written, err := filestore.WriteStream(ctx, io.LimitReader(req.Body, limit+1), path, s.cfg.FileDefaultChunkSize)
	if err == nil && written > limit {
		err = &filestore.RejectedError{
			Reason: filestore.ReasonSizeExceeded,
			Detail: fmt.Sprintf("body exceeds limit of %d bytes", limit),
		}
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.WarnContext(ctx, "failed to remove partial upload", "path", path, "error", rmErr)
		}
		var rejected *filestore.RejectedError
		if errors.As(err, &rejected) {
			return UploadResponse{Signal: SignalFileSizeExceeded}, signalError(SignalFileSizeExceeded, err)
		}
		logger.ErrorContext(ctx, "error while uploading file", "project_id", req.ProjectID, "file_id", fileID, "written", written, "error", err)
		return UploadResponse{Signal: SignalFileUploadFailed}, signalError(SignalFileUploadFailed, err)
	}

	logger.InfoContext(ctx, "file uploaded", "project_id", req.ProjectID, "file_id", fileID, "bytes", written)
	return UploadResponse{
		Signal:    SignalFileUploadSuccess,
		FileID:    fileID,
		FilePath:  path,
		ProjectID: project.ProjectID,
	}, nil
}

// Process chunks the requested file or, without a file ID, the whole project.
func (s *dataService) Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := storage.ValidateProjectID(req.ProjectID); err != nil {
		return ProcessResponse{Signal: SignalProjectIDInvalid}, signalError(SignalProjectIDInvalid, err)
	}

	opts := indexer.Options{
		ChunkSize: req.ChunkSize,
		Overlap:   req.OverlapSize,
		Reset:     req.DoReset,
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = s.cfg.ChunkSize
	}
	if opts.Overlap == 0 && req.ChunkSize == 0 {
		opts.Overlap = s.cfg.ChunkOverlap
	}

	var (
		result *indexer.Result
		err    error
	)
	if req.FileID == "" {
		result, err = s.pipeline.ProcessProject(ctx, req.ProjectID, opts)
	} else {
		result, err = s.pipeline.ProcessFile(ctx, req.ProjectID, req.FileID, opts)
	}
	if err != nil {
		signal := processSignal(err)
		if signal == "" {
			logger.ErrorContext(ctx, "failed to process file", "project_id", req.ProjectID, "file_id", req.FileID, "error", err)
			return ProcessResponse{Signal: SignalFileProcessFailed}, WrapError(err, "failed to process file")
		}
		logger.WarnContext(ctx, "file not processed", "project_id", req.ProjectID, "file_id", req.FileID, "signal", signal, "error", err)
		return ProcessResponse{Signal: signal}, signalError(signal, err)
	}

	return ProcessResponse{
		Signal:         SignalFileProcessSuccess,
		InsertedChunks: result.Inserted,
		DeletedChunks:  result.Deleted,
		ProcessedFiles: result.Files,
	}, nil
}

// ListChunks returns the project's chunks and their length statistics.
func (s *dataService) ListChunks(ctx context.Context, projectID string) (ChunksResponse, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return ChunksResponse{}, signalError(SignalProjectIDInvalid, err)
	}

	project, chunks, stats, err := s.pipeline.ListChunks(ctx, projectID)
	if err != nil {
		return ChunksResponse{}, WrapError(err, "failed to list chunks")
	}

	views := make([]ChunkView, 0, len(chunks))
	for _, c := range chunks {
		views = append(views, ChunkView{
			Order:     c.Order,
			FileID:    c.FileID,
			Text:      c.Text,
			Metadata:  c.Metadata,
			CreatedAt: c.CreatedAt,
		})
	}
	return ChunksResponse{
		ProjectID: project.ProjectID,
		Chunks:    views,
		Stats:     stats,
	}, nil
}

// Health pings the chunk store and the lock backend.
func (s *dataService) Health(ctx context.Context) error {
	return s.pipeline.Ping(ctx)
}

func rejectionSignal(err error) Signal {
	var rejected *filestore.RejectedError
	if errors.As(err, &rejected) && rejected.Reason == filestore.ReasonSizeExceeded {
		return SignalFileSizeExceeded
	}
	return SignalFileTypeNotSupported
}

// processSignal maps pipeline errors to the signal the client sees. Errors
// with no client-facing cause return "".
func processSignal(err error) Signal {
	switch {
	case errors.Is(err, storage.ErrInvalidProjectID):
		return SignalProjectIDInvalid
	case errors.Is(err, indexer.ErrInvalidChunkConfig):
		return SignalChunkConfigInvalid
	case errors.Is(err, lock.ErrProjectBusy):
		return SignalProjectBusy
	case errors.Is(err, indexer.ErrNothingToProcess),
		errors.Is(err, extractor.ErrExtractionFailed),
		errors.Is(err, filestore.ErrInvalidFileID):
		return SignalFileProcessFailed
	}
	return ""
}
