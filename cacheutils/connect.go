package cacheutils

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/utpal74/track-my-tasks-api/logger"
	"go.uber.org/zap"
)

// Options describes how to reach Redis.
type Options struct {
	URL           string
	TLSServerName string
	Production    bool
}

// Connect returns a valid connection with redis instance
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	logger := logger.FromCtx(ctx)

	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// TLS is only forced in production; local setups talk plain TCP.
	if opts.Production && opts.TLSServerName != "" {
		logger.Info("Attempt redis connection in production mode")
		opt.TLSConfig = &tls.Config{
			ServerName: opts.TLSServerName,
			MinVersion: tls.VersionTLS12,
		}
	}
	client := redis.NewClient(opt)
	logger.Info("Redis client initialized",
		zap.String("Addr", opt.Addr),
		zap.Bool("TLS", opt.TLSConfig != nil),
	)

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	logger.Info("got response from redis client", zap.String("Redis ping response:", pong))
	return client, nil
}
