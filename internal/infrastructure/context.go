package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDContextKey is the key for storing trace ID in context
	TraceIDContextKey contextKey = "trace_id"
	// FileIDContextKey holds the session id a request works on
	FileIDContextKey contextKey = "file_id"
)

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID returns ctx unchanged when it carries a trace ID and
// otherwise attaches a fresh UUID. Work started outside a request, such as
// a sweep run, uses it to correlate its log lines.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, uuid.NewString())
	}
	return ctx
}

// WithFileID tags the context with a session id. Empty ids are ignored.
func WithFileID(ctx context.Context, fileID string) context.Context {
	if fileID == "" {
		return ctx
	}
	return context.WithValue(ctx, FileIDContextKey, fileID)
}

// GetFileID retrieves the session id from context
func GetFileID(ctx context.Context) string {
	if id, ok := ctx.Value(FileIDContextKey).(string); ok {
		return id
	}
	return ""
}
