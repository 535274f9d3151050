package backend

import (
	"context"
	"fmt"
	"log/slog"

	"nomadprices/internal/amqp"
	"nomadprices/internal/core"
	"nomadprices/internal/entries"
	"nomadprices/internal/entries/memory"
	"nomadprices/internal/services"
	"nomadprices/internal/storage"
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

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store entries.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := f.seed(ctx, store, config); err != nil {
		if c, ok := store.(interface{ Close() error }); ok {
			c.Close()
		}
		return nil, err
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.EventPublisher
	if client := f.createPublisher(config); client != nil {
		publisher = client
	}

	svc := services.NewEntryService(store, publisher)
	return &BackendResult{
		Store:   store,
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (entries.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "dsn", config.SQLiteDSN)
	return repo, nil
}

// createPublisher connects to the broker when one is configured. A broker
// that cannot be reached disables events instead of failing startup.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func (f *DefaultFactory) seed(ctx context.Context, store entries.Store, config Config) error {
	var list []core.PriceEntry
	switch {
	case config.SeedFile != "":
		loaded, err := entries.LoadSeed(config.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		list = loaded
	case config.SeedDemo:
		list = entries.DefaultSeed()
	default:
		return nil
	}

	// A shared in-memory SQLite database may already hold this session's
	// entries.
	if n, err := store.Len(ctx); err != nil {
		return fmt.Errorf("count entries: %w", err)
	} else if n > 0 {
		f.logger.Info("Store already populated, skipping seed", "entries", n)
		return nil
	}

	if err := entries.Seed(ctx, store, list); err != nil {
		return err
	}
	f.logger.Info("Seeded entry store", "entries", len(list), "source", seedSource(config))
	return nil
}

func seedSource(config Config) string {
	if config.SeedFile != "" {
		return config.SeedFile
	}
	return "demo"
}
