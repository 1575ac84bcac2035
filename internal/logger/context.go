package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
	requestKey   contextKey = "request_info"
)

// requestInfo is filled in by handlers further down the chain so the access
// log written by HTTPMiddleware can include it.
type requestInfo struct {
	userID int64
}

// GenerateRequestID creates a new unique request ID
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a logger instance in context
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithUser returns a context whose logger carries user_id, and records the
// user on the surrounding request's access log entry.
func WithUser(ctx context.Context, userID int64) context.Context {
	if info, ok := ctx.Value(requestKey).(*requestInfo); ok {
		info.userID = userID
	}
	return WithLogger(ctx, FromContext(ctx).With("user_id", userID))
}

// FromContext returns a logger from context, or the default logger.
// The returned logger always includes the request ID if present.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}

	l := Default()
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		l = l.With("request_id", requestID)
	}
	return l
}

// Ctx is a convenience alias for FromContext
func Ctx(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}
