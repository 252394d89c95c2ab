package log

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
)

// NewSlogLogger creates a new slog logger writing to the configured output and
// installs it as the default logger.
func NewSlogLogger(cfg config.Log) *slog.Logger {
	log := slog.New(NewHandler(cfg.Output.Writer(), cfg))
	slog.SetDefault(log)

	return log
}

// NewHandler builds the configured JSON or tint handler on w, enriched with
// correlation and trace ids taken from the record context.
func NewHandler(w io.Writer, cfg config.Log) slog.Handler {
	var handler slog.Handler

	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.RFC3339,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}

	return newContextHandler(handler)
}
