package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCleaner struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeCleaner) Cleanup(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return 0, err
	}
	return 1, nil
}

func (f *fakeCleaner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduler_SweepsOnStartTickAndShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	tickerTrap := mClock.Trap().TickerFunc(TickerTag)
	defer tickerTrap.Close()

	// the first tick fails; the loop must keep going
	cleaner := &fakeCleaner{errs: []error{nil, errors.New("connection reset")}}
	sched := NewScheduler(30*time.Second, cleaner, mClock)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sched.Start(runCtx) }()

	tickerTrap.MustWait(ctx).MustRelease(ctx)
	require.Equal(t, 1, cleaner.Calls(), "initial sweep runs before the ticker starts")

	mClock.Advance(30 * time.Second).MustWait(ctx)
	require.Equal(t, 2, cleaner.Calls())

	mClock.Advance(30 * time.Second).MustWait(ctx)
	require.Equal(t, 3, cleaner.Calls())

	stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("scheduler did not stop")
	}
	require.Equal(t, 4, cleaner.Calls(), "final sweep runs on shutdown")
}

func TestNewScheduler_Defaults(t *testing.T) {
	sched := NewScheduler(0, &fakeCleaner{}, nil)
	require.Equal(t, defaultInterval, sched.interval)
	require.NotNil(t, sched.clock)

	require.Panics(t, func() { NewScheduler(time.Second, nil, nil) })
}
