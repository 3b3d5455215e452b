package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"renewme/internal/core"
	"renewme/internal/storage"
	"renewme/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		now:    time.Now,
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
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedSamples {
		seeded, err := seedIfEmpty(ctx, repo, f.now())
		if err != nil {
			repo.Close()
			return nil, err
		}
		if seeded > 0 {
			f.logger.InfoContext(ctx, "Seeded sample subscriptions", "count", seeded)
		}
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var opts []memory.Option
	if config.SeedSamples {
		opts = append(opts, memory.WithSamples(f.now))
	}

	if config.DataFile == "" {
		f.logger.Info("Initialized memory backend without persistence")
		return &BackendResult{Store: memory.New(nil, opts...)}, nil
	}

	f.logger.Info("Initialized memory backend", "data_file", config.DataFile)
	return &BackendResult{Store: memory.NewFromFile(config.DataFile, opts...)}, nil
}

func seedIfEmpty(ctx context.Context, repo *storage.SQLiteRepository, now time.Time) (int, error) {
	subs, err := repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) > 0 {
		return 0, nil
	}
	samples := core.SampleSubscriptions(now)
	if err := repo.Save(ctx, samples); err != nil {
		return 0, fmt.Errorf("seed subscriptions: %w", err)
	}
	return len(samples), nil
}
