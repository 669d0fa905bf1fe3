package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With derives a context carrying a logger enriched with the given fields.
// Handlers pick it up via From so per-request fields like the trace ID
// follow a payment session through every log line it produces.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From extracts the request-scoped logger, falling back to the process
// logger when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
