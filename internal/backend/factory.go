package backend

import (
	"context"
	"fmt"

	"fazenda/internal/log"
	"fazenda/internal/store"
	"fazenda/internal/store/memory"
	"fazenda/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	categories, members := store.SeedTaxonomy(dataDir(config))
	repo, err := storage.NewSQLiteRepository(ctx, config.SQLiteDSN, categories, members, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "dsn", config.SQLiteDSN)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dir := dataDir(config)
	s := memory.NewFromFiles(dir, memory.WithLogger(f.logger))

	f.logger.Info("Initialized memory backend", "data_directory", dir)

	return &BackendResult{
		Backend: s,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

func dataDir(config Config) string {
	if config.DataDirectory == "" {
		return "data"
	}
	return config.DataDirectory
}
