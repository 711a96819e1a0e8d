package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tranxledger/internal/amqp"
	"tranxledger/internal/cache"
	"tranxledger/internal/core"
	"tranxledger/internal/history"
	"tranxledger/internal/services"
	"tranxledger/internal/storage"
	"tranxledger/internal/storage/memory"
)

var (
	_ history.Store = (*storage.SQLiteRepository)(nil)
	_ history.Store = (*memory.Store)(nil)
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// StoreFactory implements Factory.StoreFactory
func (f *DefaultFactory) StoreFactory(config Config) (history.StoreFactory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.sqliteStore(config), nil
	case MemoryBackend:
		return f.memoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) sqliteStore(config Config) history.StoreFactory {
	return func(ctx context.Context) (history.Store, error) {
		if config.FixtureImage != "" {
			seeded, err := storage.SeedImage(config.FixtureImage, config.SQLiteDBPath)
			if err != nil {
				return nil, fmt.Errorf("failed to seed fixture image: %w", err)
			}
			if seeded {
				f.logger.Info("Seeded ledger from fixture image", "image", config.FixtureImage)
			}
		}

		repo, err := storage.NewSQLiteRepository(ctx, config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	}
}

func (f *DefaultFactory) memoryStore() history.StoreFactory {
	return func(context.Context) (history.Store, error) {
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	}
}

// CreateLedger implements Factory.CreateLedger
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (*BackendResult, error) {
	open, err := f.StoreFactory(config)
	if err != nil {
		return nil, err
	}

	size := config.HistoryCacheSize
	if size <= 0 {
		size = 64
	}
	results := cache.NewLRU[[]core.Tranx](size, config.HistoryCacheTTL)
	h := history.New(history.WithResultCache(results))

	if err := h.Init(ctx, open); err != nil {
		return nil, fmt.Errorf("initialize tranx history: %w", err)
	}

	// AMQP is optional
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = client
		}
	}

	svc := services.NewLedgerService(h, publisher)

	return &BackendResult{
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}
