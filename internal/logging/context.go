package logging

import (
	"context"
	"log/slog"
	"strings"
)

type sessionIDKey struct{}

// ContextWithSessionID tags ctx with an encoding session identifier.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDKey{}, strings.TrimSpace(id))
}

// SessionIDFromContext returns the session identifier stored in ctx.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := SessionIDFromContext(ctx); ok {
		return logger.With(String(FieldSessionID, id))
	}
	return logger
}
