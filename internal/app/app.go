// Package app wires configuration into a ready DataService for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"docuchunk/internal/config"
	"docuchunk/internal/filestore"
	"docuchunk/internal/indexer"
	"docuchunk/internal/lock"
	"docuchunk/internal/service"
	"docuchunk/internal/storage"
	"docuchunk/internal/storage/mongostore"
)

// App holds the running service and the resources behind it.
type App struct {
	Config  *config.Config
	Service service.DataService

	closers []io.Closer
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", cfg.AppName, "version", cfg.AppVersion)
}

// New opens the configured chunk store and lock backend and builds the data service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	projects, chunks, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	locker, err := a.openLocker(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := os.MkdirAll(cfg.FilesDir, 0755); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create files directory: %w", err)
	}
	files := filestore.NewManager(cfg.FilesDir)

	pipeline := indexer.NewPipeline(indexer.Deps{
		Files:    files,
		Projects: projects,
		Chunks:   chunks,
		Locker:   locker,
		LockTTL:  cfg.LockTTL,
		LockWait: cfg.LockWait,
	})

	a.Service = service.NewDataService(cfg, files, projects, pipeline)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (storage.ProjectStore, storage.ChunkStore, error) {
	cfg := a.Config

	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		a.closers = append(a.closers, store)
		slog.Info("Chunk store initialized", "backend", cfg.StoreBackend, "database", cfg.MongoDatabase)
		return store.Projects(), store.Chunks(), nil

	case config.BackendPostgres:
		db, err := storage.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		a.closers = append(a.closers, db)
		if err := storage.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Chunk store initialized", "backend", cfg.StoreBackend)
		return storage.NewProjectRepo(db), storage.NewChunkRepo(db), nil

	default:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, db)
		if err := storage.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Chunk store initialized", "backend", config.BackendSQLite, "path", cfg.DBPath)
		return storage.NewProjectRepo(db), storage.NewChunkRepo(db), nil
	}
}

func (a *App) openLocker(ctx context.Context) (lock.Locker, error) {
	if a.Config.RedisURL == "" {
		slog.Debug("Using in-process project lock")
		return lock.NewLocal(), nil
	}

	locker, err := lock.NewRedisFromURL(a.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis lock: %w", err)
	}
	a.closers = append(a.closers, locker)
	if err := locker.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	slog.Info("Using redis project lock")
	return locker, nil
}

// Close releases every resource opened by New, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
