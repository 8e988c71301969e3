package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aevon-lab/geopresence/internal/core/retry"
	"github.com/redis/go-redis/v9"
)

const connectPingTimeout = 2 * time.Second

// ClientOptions configures the shared connection pool.
type ClientOptions struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	OpTimeout    time.Duration
	ConnectRetry retry.Policy
}

// NewClient creates the process-wide Redis client and verifies connectivity.
// Expects a redis:// or rediss:// URL, e.g. "redis://localhost:6379/0".
//
// go-redis checks a connection out of the pool per command or pipeline and
// returns it on success and on error, so callers never hold one across calls.
func NewClient(ctx context.Context, opts ClientOptions) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = opts.DialTimeout
	}
	if opts.OpTimeout > 0 {
		redisOpts.ReadTimeout = opts.OpTimeout
		redisOpts.WriteTimeout = opts.OpTimeout
	}

	client := redis.NewClient(redisOpts)

	slog.Info("[Redis] Connection pool configured",
		"addr", redisOpts.Addr,
		"db", redisOpts.DB,
		"pool_size", redisOpts.PoolSize,
	)

	pong, err := retry.DoValue(ctx, opts.ConnectRetry, func(ctx context.Context) (string, error) {
		pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
		defer cancel()
		pong, err := client.Ping(pingCtx).Result()
		if isAuthError(err) {
			return "", retry.Permanent(err)
		}
		return pong, err
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	slog.Info("[Redis] Connected", "addr", redisOpts.Addr, "reply", pong)
	return client, nil
}

// isAuthError reports whether the server rejected the credentials. Retrying
// with the same credentials cannot succeed.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"NOAUTH", "WRONGPASS", "invalid password"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
