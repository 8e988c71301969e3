package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	boom := errors.New("still down")
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestDo_PermanentErrorIsNotRetried(t *testing.T) {
	bad := errors.New("bad credentials")
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	})

	require.ErrorIs(t, err, bad)
	require.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func(ctx context.Context) error {
		calls++
		return errors.New("nope")
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 10, BaseDelay: time.Hour, Multiplier: 2}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := DoValue(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("flaky")
		}
		return "PONG", nil
	})

	require.NoError(t, err)
	require.Equal(t, "PONG", v)
}
