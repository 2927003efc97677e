package common

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/utpal74/track-my-tasks-api/logger"
	"go.uber.org/zap"
)

// FailOnError stops the process when a startup step returned err.
func FailOnError(ctx context.Context, msg string, err error) {
	logIfError(ctx, msg, err, nil)
}

// FailIfServerErrored stops the process unless the server was closed on purpose.
func FailIfServerErrored(ctx context.Context, msg string, err error) {
	logIfError(ctx, msg, err, func(err error) bool {
		return !errors.Is(err, http.ErrServerClosed)
	})
}

// CloseWithTimeout runs closeFn with its own deadline and logs the outcome.
// It is meant for shutdown, after the serving context is already done.
func CloseWithTimeout(ctx context.Context, name string, timeout time.Duration, closeFn func(context.Context) error) error {
	log := logger.FromCtx(ctx).With(zap.String("resource", name))

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := closeFn(closeCtx); err != nil {
		log.Error("error while closing", zap.Error(err))
		return err
	}
	log.Info("closed")
	return nil
}

func logIfError(ctx context.Context, msg string, err error, shouldLog func(error) bool) {
	logger := logger.FromCtx(ctx)
	if err != nil && (shouldLog == nil || shouldLog(err)) {
		logger.Fatal(msg, zap.Error(err))
	}
}
