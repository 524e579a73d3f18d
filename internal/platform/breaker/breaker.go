package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/cashbook_backend/internal/apperrors"
)

// State is the position of a breaker in its CLOSED -> OPEN -> HALF_OPEN cycle.
type State string

const (
	Closed   State = "CLOSED"
	Open     State = "OPEN"
	HalfOpen State = "HALF_OPEN"
)

// ErrOpen is returned without invoking the wrapped call while the breaker refuses traffic.
// It wraps apperrors.ErrServiceUnavailable so request boundaries render it as a 503.
var ErrOpen = fmt.Errorf("circuit breaker is open: %w", apperrors.ErrServiceUnavailable)

const (
	DefaultFailureThreshold    = 5
	DefaultResetTimeout        = 30 * time.Second
	DefaultHalfOpenMaxAttempts = 3
)

// Options configures a Breaker. Zero values fall back to the defaults above.
type Options struct {
	Name                string
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxAttempts int
	// Now is the clock; tests replace it.
	Now    func() time.Time
	Logger *slog.Logger
}

// Breaker guards a flaky dependency. It is safe for concurrent use.
type Breaker struct {
	opts Options

	mu                sync.Mutex
	state             State
	failures          int
	halfOpenSuccesses int
	halfOpenInFlight  int
	lastFailure       time.Time
	// generation changes on every state transition so results of calls
	// admitted under an earlier state are discarded.
	generation uint64
}

// New builds a closed breaker.
func New(opts Options) *Breaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = DefaultResetTimeout
	}
	if opts.HalfOpenMaxAttempts <= 0 {
		opts.HalfOpenMaxAttempts = DefaultHalfOpenMaxAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	return &Breaker{opts: opts, state: Closed}
}

func (b *Breaker) Name() string { return b.opts.Name }

// State reports the current state without advancing it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures reports the consecutive failure count while CLOSED.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Execute runs fn if the breaker admits it and records the outcome.
// When the breaker refuses the call fn is not invoked and ErrOpen is returned.
// A panic in fn counts as a failure and is re-raised.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	gen, err := b.admit()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			b.record(gen, fmt.Errorf("%s: panic: %v", b.opts.Name, p))
			panic(p)
		}
		b.record(gen, err)
	}()
	return fn(ctx)
}

// ExecuteWithFallback behaves like Execute but hands any failure, including ErrOpen, to fallback.
func (b *Breaker) ExecuteWithFallback(ctx context.Context, fn func(ctx context.Context) error, fallback func(ctx context.Context, err error) error) error {
	err := b.Execute(ctx, fn)
	if err != nil && fallback != nil {
		return fallback(ctx, err)
	}
	return err
}

// Call is Execute for functions that produce a value.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = fn(ctx)
		return callErr
	})
	return result, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return b.generation, nil
	case Open:
		if b.opts.Now().Sub(b.lastFailure) < b.opts.ResetTimeout {
			return 0, fmt.Errorf("%s: %w", b.opts.Name, ErrOpen)
		}
		b.transition(HalfOpen)
	}

	// HALF_OPEN: trial calls in flight plus successes never exceed the attempt budget.
	if b.halfOpenInFlight+b.halfOpenSuccesses >= b.opts.HalfOpenMaxAttempts {
		return 0, fmt.Errorf("%s: %w", b.opts.Name, ErrOpen)
	}
	b.halfOpenInFlight++
	return b.generation, nil
}

func (b *Breaker) record(gen uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		return
	}

	// The caller gave up; that says nothing about the dependency.
	if errors.Is(err, context.Canceled) {
		if b.state == HalfOpen {
			b.halfOpenInFlight--
		}
		return
	}

	switch b.state {
	case Closed:
		if err == nil {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = b.opts.Now()
		if b.failures >= b.opts.FailureThreshold {
			b.transition(Open)
		}
	case HalfOpen:
		b.halfOpenInFlight--
		if err != nil {
			b.lastFailure = b.opts.Now()
			b.transition(Open)
			return
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.opts.HalfOpenMaxAttempts {
			b.transition(Closed)
		}
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.generation++
	b.halfOpenSuccesses = 0
	b.halfOpenInFlight = 0
	if to == Closed {
		b.failures = 0
	}

	logAttrs := []any{
		slog.String("breaker", b.opts.Name),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	}
	if to == Open {
		b.opts.Logger.Warn("Circuit breaker opened", append(logAttrs, slog.Int("failures", b.failures))...)
		return
	}
	b.opts.Logger.Info("Circuit breaker state changed", logAttrs...)
}
