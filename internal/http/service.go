package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/0finn0the0human0/springbootTraining/internal/apperr"
	"github.com/0finn0the0human0/springbootTraining/internal/config"
	"github.com/0finn0the0human0/springbootTraining/internal/http/apierr"
	"github.com/0finn0the0human0/springbootTraining/internal/http/metric"
	"github.com/0finn0the0human0/springbootTraining/internal/http/middleware"
	"github.com/0finn0the0human0/springbootTraining/internal/http/swagger"
	"github.com/0finn0the0human0/springbootTraining/internal/service"
	"github.com/0finn0the0human0/springbootTraining/internal/storage/db"
	"github.com/0finn0the0human0/springbootTraining/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	validator  validator.Validator
	productSvc service.ProductService
	health     db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

// handlerFunc is an http handler whose returned error is rendered by handleResponseError.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	validator validator.Validator,
	productSvc service.ProductService,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		validator:  validator,
		productSvc: productSvc,
		health:     health,
	}
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Handler())
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.validator, s.productSvc)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.handle(products.ListProducts))
		r.Post("/", s.handle(products.CreateProduct))
		r.Get("/search", s.handle(products.SearchProducts))
		r.Get("/{id}", s.handle(products.GetProduct))
		r.Put("/{id}", s.handle(products.UpdateProduct))
		r.Delete("/{id}", s.handle(products.DeleteProduct))
	})

	web := newWebHandler(s.logger, s.validator, s.productSvc)
	r.Get("/", web.ShowForm)
	r.Post("/", web.SubmitSearch)

	r.Get(middleware.HealthPath, s.handle(s.healthz))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}))

	r.NotFound(s.handle(func(_ http.ResponseWriter, _ *http.Request) error {
		return errRouteNotFound
	}))
	r.MethodNotAllowed(s.handle(func(_ http.ResponseWriter, _ *http.Request) error {
		return errMethodNotAllowed
	}))
}

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if ok, err := s.health.IsHealthy(ctx); !ok || err != nil {
		return apperr.UnavailableErr.WrapParent(err)
	}

	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := encodeJSON(w, res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
