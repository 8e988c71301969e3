package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aevon-lab/geopresence/internal/core/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxRequests = 100
	defaultWindow      = 60 * time.Second
	defaultLimiterKey  = "rate_limit"
)

var _ storage.RateLimiter = (*SlidingWindowLimiter)(nil)

// SlidingWindowLimiter counts attempts per key in a sorted set scored by
// millisecond timestamp.
type SlidingWindowLimiter struct {
	client      redis.UniversalClient
	maxRequests int
	window      time.Duration
	keyPrefix   string
	opTimeout   time.Duration
}

// LimiterOption configures a SlidingWindowLimiter.
type LimiterOption func(*SlidingWindowLimiter)

// WithMaxRequests sets the number of admissions allowed per window.
func WithMaxRequests(n int) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		if n > 0 {
			l.maxRequests = n
		}
	}
}

// WithWindow sets the trailing window length. Sub-second windows are rounded up to 1s.
func WithWindow(d time.Duration) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		if d > 0 {
			l.window = d.Truncate(time.Second)
			if l.window < time.Second {
				l.window = time.Second
			}
		}
	}
}

// WithKeyPrefix namespaces the limiter keys.
func WithKeyPrefix(prefix string) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// WithTimeout bounds each Redis round trip.
func WithTimeout(d time.Duration) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		if d > 0 {
			l.opTimeout = d
		}
	}
}

// NewSlidingWindowLimiter defaults to 100 requests per 60 seconds.
func NewSlidingWindowLimiter(client redis.UniversalClient, opts ...LimiterOption) *SlidingWindowLimiter {
	if client == nil {
		panic("redisstore: client must not be nil")
	}
	l := &SlidingWindowLimiter{
		client:      client,
		maxRequests: defaultMaxRequests,
		window:      defaultWindow,
		keyPrefix:   defaultLimiterKey,
		opTimeout:   defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SlidingWindowLimiter) MaxRequests() int { return l.maxRequests }

func (l *SlidingWindowLimiter) Window() time.Duration { return l.window }

func (l *SlidingWindowLimiter) redisKey(key string) string {
	return l.keyPrefix + ":" + key
}

// Admit records the attempt and decides admission against the count that was
// in the window before it. Purge, count, oldest lookup, insert and expiry run
// in one MULTI/EXEC, so concurrent attempts on the same key serialize.
//
// The attempt is recorded even when denied, which keeps the window slightly
// pessimistic under sustained overload.
func (l *SlidingWindowLimiter) Admit(ctx context.Context, key string, now time.Time) (storage.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	redisKey := l.redisKey(key)
	nowMs := now.UnixMilli()
	windowMs := l.window.Milliseconds()
	// unique per attempt so same-millisecond attempts are all counted
	member := strconv.FormatInt(nowMs, 10) + ":" + uuid.NewString()

	var (
		card   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(nowMs-windowMs, 10))
		card = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowMs), Member: member})
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return storage.Decision{}, fmt.Errorf("rate limit check for %s: %w", key, err)
	}

	count := int(card.Val())
	if count < l.maxRequests {
		return storage.Decision{Allowed: true, Count: count, Remaining: l.maxRequests - count - 1}, nil
	}

	return storage.Decision{
		Allowed:    false,
		RetryAfter: l.retryAfter(oldest.Val(), nowMs),
		Count:      count,
	}, nil
}

// retryAfter is the whole seconds until the oldest attempt leaves the window:
// floor(oldest + window - now) + 1, never more than the window itself.
func (l *SlidingWindowLimiter) retryAfter(oldest []redis.Z, nowMs int64) int {
	windowSecs := int(l.window / time.Second)
	if len(oldest) == 0 {
		return windowSecs
	}

	remainingMs := int64(oldest[0].Score) + l.window.Milliseconds() - nowMs
	if remainingMs < 0 {
		remainingMs = 0
	}
	retry := int(remainingMs/1000) + 1
	if retry > windowSecs {
		retry = windowSecs
	}
	return retry
}

// Remaining purges expired attempts and reports how many admissions are left.
func (l *SlidingWindowLimiter) Remaining(ctx context.Context, key string, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	redisKey := l.redisKey(key)
	nowMs := now.UnixMilli()

	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(nowMs-l.window.Milliseconds(), 10))
		card = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit remaining for %s: %w", key, err)
	}

	return max(0, l.maxRequests-int(card.Val())), nil
}
