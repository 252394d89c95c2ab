package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/model"
)

const (
	GormDialectPostgres = "postgres"
	GormDialectSQLite   = "sqlite"
)

// NewGormDB opens a gorm connection for the configured dialect and migrates the product schema.
func NewGormDB(storeCfg config.Store, pgCfg config.Postgres, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(storeCfg.GormDialect) {
	case GormDialectPostgres:
		dialector = postgres.Open(connectionString(pgCfg))
	case GormDialectSQLite:
		dialector = sqlite.Open(storeCfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown gorm dialect: %s", storeCfg.GormDialect)
	}

	gormDB, err := OpenGorm(dialector, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if dialector.Name() == GormDialectPostgres {
		sqlDB.SetMaxOpenConns(int(pgCfg.MaxConns))
		sqlDB.SetMaxIdleConns(int(pgCfg.MinConns))
		sqlDB.SetConnMaxLifetime(pgCfg.MaxConnLifetime)
		sqlDB.SetConnMaxIdleTime(pgCfg.MaxConnIdleTime)
	}

	return gormDB, nil
}

// OpenGorm opens dialector with driver errors translated to gorm errors and runs AutoMigrate.
// SQLite is limited to a single connection so concurrent writers serialize.
func OpenGorm(dialector gorm.Dialector, logger *slog.Logger) (*gorm.DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s: %w", dialector.Name(), err)
	}

	if dialector.Name() == GormDialectSQLite {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := gormDB.AutoMigrate(&model.Product{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return gormDB, nil
}

var _ HealthChecker = (*GormClient)(nil)

// GormClient exposes health checks for a gorm connection.
type GormClient struct {
	*gorm.DB
}

func NewGormClient(db *gorm.DB) *GormClient {
	return &GormClient{db}
}

func (c *GormClient) IsHealthy(ctx context.Context) (bool, error) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return false, fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}
