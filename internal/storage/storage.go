package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/repository"
	"github.com/0finn0the0human0/springbootTraining/internal/storage/db"
)

// Store bundles the product repository of the configured driver with its health check.
type Store struct {
	Products repository.ProductRepository
	Health   db.HealthChecker

	close func() error
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.close()
}

// Open connects the store selected by storeCfg.Driver and brings its schema up to date.
func Open(ctx context.Context, storeCfg config.Store, pgCfg config.Postgres, logger *slog.Logger) (*Store, error) {
	switch storeCfg.Driver {
	case config.StoreDriverPostgres:
		return openPgx(ctx, pgCfg, logger)
	case config.StoreDriverGorm:
		return openGorm(storeCfg, pgCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %d", storeCfg.Driver)
	}
}

func openPgx(ctx context.Context, pgCfg config.Postgres, logger *slog.Logger) (*Store, error) {
	pool, err := db.NewPgxPool(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := db.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	client := db.NewClient(pool)
	return &Store{
		Products: repository.NewProductRepository(client),
		Health:   client,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func openGorm(storeCfg config.Store, pgCfg config.Postgres, logger *slog.Logger) (*Store, error) {
	gormDB, err := db.NewGormDB(storeCfg, pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	return &Store{
		Products: repository.NewGormProductRepository(gormDB),
		Health:   db.NewGormClient(gormDB),
		close:    sqlDB.Close,
	}, nil
}
