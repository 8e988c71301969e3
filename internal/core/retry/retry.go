package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds an exponential-backoff retry loop.
type Policy struct {
	MaxAttempts int           // total attempts including the first; <= 0 means 1
	BaseDelay   time.Duration // delay before the second attempt
	Multiplier  float64       // growth factor between delays
	MaxDelay    time.Duration // cap on a single delay; 0 means uncapped
	Jitter      bool          // randomize each delay by +/-50%
}

// DefaultPolicy is the startup connection policy:
// 4 attempts, 100ms base, doubling, capped at 2s, with jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    2 * time.Second,
		Jitter:      true,
	}
}

// Permanent marks err as non-retryable. Do returns the wrapped error immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = time.Millisecond
	}
	eb.Multiplier = p.Multiplier
	if eb.Multiplier < 1 {
		eb.Multiplier = 1
	}
	eb.MaxInterval = p.MaxDelay
	if eb.MaxInterval <= 0 {
		eb.MaxInterval = time.Duration(1<<63 - 1)
	}
	eb.RandomizationFactor = 0
	if p.Jitter {
		eb.RandomizationFactor = 0.5
	}
	// attempts bound the loop, not wall time
	eb.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Do runs op until it succeeds, returns a Permanent error, the attempts are
// exhausted or ctx is done. The last error from op is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			return op(ctx)
		},
		p.backOff(ctx),
		func(err error, next time.Duration) {
			slog.Warn("Operation failed, retrying",
				"attempt", attempt,
				"max_attempts", p.MaxAttempts,
				"next_delay", next,
				"error", err,
			)
		},
	)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
