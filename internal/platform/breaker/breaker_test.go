package breaker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errDownstream = errors.New("downstream unavailable")

func failing(context.Context) error { return errDownstream }
func succeeding(context.Context) error { return nil }

func newTestBreaker(clock *fakeClock, threshold, halfOpen int) *Breaker {
	return New(Options{
		Name:                "test",
		FailureThreshold:    threshold,
		ResetTimeout:        10 * time.Second,
		HalfOpenMaxAttempts: halfOpen,
		Now:                 clock.Now,
	})
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 3, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(ctx, failing), errDownstream)
	}
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.False(t, called, "wrapped call must not run while open")
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 3, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, failing)
	}
	clock.Advance(9 * time.Second)
	assert.ErrorIs(t, b.Execute(ctx, succeeding), ErrOpen)

	clock.Advance(time.Second)
	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return errDownstream
	})
	assert.True(t, called, "call after reset timeout is admitted as a trial")
	assert.ErrorIs(t, err, errDownstream)
	assert.Equal(t, Open, b.State())

	assert.ErrorIs(t, b.Execute(ctx, succeeding), ErrOpen)
}

func TestBreakerHalfOpenSuccessesClose(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 2, 2)
	ctx := context.Background()

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	require.Equal(t, Open, b.State())

	clock.Advance(10 * time.Second)
	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, HalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 3, 1)
	ctx := context.Background()

	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)
	require.NoError(t, b.Execute(ctx, succeeding))
	_ = b.Execute(ctx, failing)
	_ = b.Execute(ctx, failing)

	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 2, b.Failures())
}

func TestBreakerHalfOpenAdmissionIsBounded(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 1, 2)
	ctx := context.Background()

	_ = b.Execute(ctx, failing)
	clock.Advance(10 * time.Second)

	release := make(chan struct{})
	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(ctx, func(context.Context) error {
				admitted.Add(1)
				<-release
				return nil
			})
			if errors.Is(err, ErrOpen) {
				rejected.Add(1)
			}
		}()
	}

	assert.Eventually(t, func() bool {
		return admitted.Load() == 2 && rejected.Load() == 4
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(2), admitted.Load())
	assert.Equal(t, Closed, b.State())
}

func TestExecuteWithFallback(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 1, 1)
	ctx := context.Background()

	var seen []error
	fallback := func(_ context.Context, err error) error {
		seen = append(seen, err)
		return nil
	}

	require.NoError(t, b.ExecuteWithFallback(ctx, failing, fallback))
	require.NoError(t, b.ExecuteWithFallback(ctx, succeeding, fallback))

	require.Len(t, seen, 2)
	assert.ErrorIs(t, seen[0], errDownstream)
	assert.ErrorIs(t, seen[1], ErrOpen)
}

func TestCallReturnsValue(t *testing.T) {
	b := New(Options{Name: "value"})
	got, err := Call(context.Background(), b, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestDefaults(t *testing.T) {
	b := New(Options{})
	assert.Equal(t, DefaultFailureThreshold, b.opts.FailureThreshold)
	assert.Equal(t, DefaultResetTimeout, b.opts.ResetTimeout)
	assert.Equal(t, DefaultHalfOpenMaxAttempts, b.opts.HalfOpenMaxAttempts)
	assert.Equal(t, Closed, b.State())
}

func TestBreakerPanickingTrialReleasesHalfOpenSlot(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 1, 1)
	ctx := context.Background()

	_ = b.Execute(ctx, failing)
	clock.Advance(10 * time.Second)

	assert.PanicsWithValue(t, "driver exploded", func() {
		_ = b.Execute(ctx, func(context.Context) error { panic("driver exploded") })
	})
	assert.Equal(t, Open, b.State(), "a panicking trial counts as a failure")

	clock.Advance(10 * time.Second)
	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, Closed, b.State())
}

func TestBreakerPanicCountsAsFailureWhileClosed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 2, 1)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = b.Execute(ctx, func(context.Context) error { panic("boom") })
	})
	assert.Equal(t, 1, b.Failures())
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 2, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		err := b.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreakerCancelledTrialFreesSlot(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock, 1, 1)
	ctx := context.Background()

	_ = b.Execute(ctx, failing)
	clock.Advance(10 * time.Second)

	err := b.Execute(ctx, func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, HalfOpen, b.State())

	require.NoError(t, b.Execute(ctx, succeeding))
	assert.Equal(t, Closed, b.State())
}
