package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	memberIDKey  contextKey = "member_id"
)

// WithContext returns a new context carrying the given logger.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context. Code paths that run
// outside a request scope get a no-op logger instead of nil.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context and returns a logger
// that stamps it on every entry.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithMemberID stores the authenticated member's ID in the context and
// returns a logger that stamps it on every entry.
func WithMemberID(ctx context.Context, logger *zap.Logger, memberID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, memberIDKey, memberID)
	enriched := logger.With(zap.String("member_id", memberID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from the context, if any.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetMemberID retrieves the authenticated member's ID from the context.
func GetMemberID(ctx context.Context) string {
	if memberID, ok := ctx.Value(memberIDKey).(string); ok {
		return memberID
	}
	return ""
}
