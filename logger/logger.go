package logger

import (
	"context"

	"go.uber.org/zap"
)

// represents production
const PROD = "production"

// New builds the process logger: JSON production config in production,
// human-readable development config otherwise.
func New(env string) (*zap.Logger, error) {
	if env == PROD {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

type contextKey string

const (
	loggerKey contextKey = "logger"
)

// WithLogger - attach a logger to exiting context and returns context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx - returns a logger from context
func FromCtx(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
