package logger

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	scopedLoggerKey contextKey = iota
	traceIDKey
)

// With scopes the context logger with extra key/value pairs.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, scopedLoggerKey, From(ctx).With(fields...))
}

// WithTraceID records the request trace id and tags the scoped logger with it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return With(ctx, "trace_id", traceID)
}

// TraceID returns the trace id of the request that produced ctx, if any.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// From falls back to the process logger when ctx carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(scopedLoggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
