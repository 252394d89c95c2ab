package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/log"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/internal/storage"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

// App holds the dependencies a command runs against.
type App struct {
	Products  service.ProductService
	Validator validator.Validator

	// Close is called once the command returns. It may be nil.
	Close func() error
}

// Opener builds the App for a single command invocation.
type Opener func(ctx context.Context) (*App, error)

// Config is the environment read by the command line tool.
type Config struct {
	Log        config.Log
	Postgres   config.Postgres
	Store      config.Store
	Validation config.Validation
}

// OpenFromEnv loads Config from the environment and connects the configured store.
// Logs go to stderr so stdout only carries command output.
func OpenFromEnv(ctx context.Context) (*App, error) {
	cfg, err := config.New[Config]()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(log.NewHandler(os.Stderr, cfg.Log))

	v, err := validator.NewDefaultValidator(validator.WithFailFast(cfg.Validation.FailFast))
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Store, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Counters are process local; nothing scrapes a one-shot command.
	metrics := service.NewMetrics(prometheus.NewRegistry())

	return &App{
		Products:  service.NewProductService(logger, store.Products, metrics),
		Validator: v,
		Close:     store.Close,
	}, nil
}
