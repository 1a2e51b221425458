package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient creates a new Redis client and verifies it with a single ping.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithRetry(ctx, redisURL, 0, zerolog.Nop())
}

// NewClientWithRetry creates a Redis client, pinging with exponential backoff
// for up to maxElapsed. Zero means a single attempt.
func NewClientWithRetry(ctx context.Context, redisURL string, maxElapsed time.Duration, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ping := func() error {
		return client.Ping(ctx).Err()
	}

	if maxElapsed > 0 {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 200 * time.Millisecond
		policy.MaxElapsedTime = maxElapsed

		err = backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
			logger.Warn().Err(err).Str("target", "redis").Dur("retry_in", wait).Msg("connection attempt failed")
		})
	} else {
		err = ping()
	}

	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
