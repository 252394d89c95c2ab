package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/0finn0the0human0/springbootTraining/pkg/correlationid"
)

var _ slog.Handler = contextHandler{}

// attrsFromContext returns the attributes a record context contributes.
type attrsFromContext func(ctx context.Context) []slog.Attr

// contextHandler appends request scoped attributes to every record before
// passing it to next.
type contextHandler struct {
	next    slog.Handler
	sources []attrsFromContext
}

func newContextHandler(next slog.Handler) contextHandler {
	return contextHandler{
		next:    next,
		sources: []attrsFromContext{correlationAttrs, traceAttrs},
	}
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, source := range h.sources {
		r.AddAttrs(source(ctx)...)
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: h.next.WithAttrs(attrs), sources: h.sources}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name), sources: h.sources}
}

func correlationAttrs(ctx context.Context) []slog.Attr {
	id, ok := correlationid.FromContext(ctx)
	if !ok {
		return nil
	}
	return []slog.Attr{slog.String("correlation_id", id)}
}

func traceAttrs(ctx context.Context) []slog.Attr {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	}
}
