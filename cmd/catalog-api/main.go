package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/http"
	"github.com/0finn0the0human0/springbootTraining/internal/log"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/internal/storage"
	"github.com/0finn0the0human0/springbootTraining/internal/telemetry"
	"github.com/0finn0the0human0/springbootTraining/pkg/cmdutil"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running catalog api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log        config.Log
		Postgres   config.Postgres
		Store      config.Store
		HTTP       config.HTTP
		Otel       config.Otel
		Validation config.Validation
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	store, err := storage.Open(ctx, cfg.Store, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "error closing store", slog.Any("error", err))
		}
	}()

	requestValidator, err := validator.NewDefaultValidator(validator.WithFailFast(cfg.Validation.FailFast))
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	productService := service.NewProductService(logger, store.Products, service.NewMetrics(prometheus.DefaultRegisterer))

	svc := http.New(cfg.HTTP, logger, requestValidator, productService, store.Health)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}

	logger.InfoContext(ctx, "http service started",
		slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)),
		slog.String("store_driver", cfg.Store.Driver.String()),
	)

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
