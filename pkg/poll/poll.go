// Package poll provides the bounded wait and retry primitives used by the
// browser layer and page objects. Both are stateless between calls: each
// invocation runs its own loop against the supplied configuration.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotYetSatisfied signals that a predicate did not match on this
// evaluation and polling should continue. Predicates return it (bare or
// wrapped) instead of a result; any other error aborts the wait.
var ErrNotYetSatisfied = errors.New("condition not yet satisfied")

// ErrTimeout is matched by errors.Is against the *TimeoutError returned
// when a wait deadline passes.
var ErrTimeout = errors.New("wait timed out")

// Config controls a single wait or retry loop.
type Config struct {
	// Timeout is the wall-clock budget for a wait loop.
	Timeout time.Duration

	// Interval is the polling cadence for waits and the fixed
	// inter-attempt delay for retries.
	Interval time.Duration

	// MaxAttempts bounds the number of evaluations. Zero means no
	// attempt bound for waits; retries fall back to DefaultMaxAttempts.
	MaxAttempts int
}

// Defaults applied when a Config field is zero.
const (
	DefaultTimeout     = 20 * time.Second
	DefaultInterval    = 500 * time.Millisecond
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 1 * time.Second
)

// DefaultConfig returns the process defaults for wait loops.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (c Config) withWaitDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// TimeoutError reports a wait that exhausted its deadline or attempt budget
// without the predicate matching.
type TimeoutError struct {
	What     string
	Elapsed  time.Duration
	Attempts int
	LastErr  error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %v (%d attempts)", e.Elapsed.Round(time.Millisecond), e.Attempts)
	if e.What != "" {
		msg = fmt.Sprintf("%s: %s", e.What, msg)
	}
	if e.LastErr != nil && !errors.Is(e.LastErr, ErrNotYetSatisfied) {
		msg = fmt.Sprintf("%s: last error: %v", msg, e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Predicate evaluates external state once. It returns the result when the
// condition holds, ErrNotYetSatisfied to keep polling, or any other error
// to abort the wait.
type Predicate[T any] func(ctx context.Context) (T, error)

// Until evaluates pred at cfg.Interval cadence until it yields a result,
// cfg.Timeout elapses, or cfg.MaxAttempts evaluations have been made.
//
// The attempt in flight when the deadline passes always completes, so the
// loop may overrun the window by at most one interval. A predicate that is
// already satisfied returns on the first evaluation without sleeping.
func Until[T any](ctx context.Context, cfg Config, pred Predicate[T]) (T, error) {
	var zero T
	cfg = cfg.withWaitDefaults()

	start := time.Now()
	deadline := start.Add(cfg.Timeout)
	attempts := 0
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := pred(ctx)
		attempts++
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotYetSatisfied) {
			return zero, err
		}
		lastErr = err

		if !time.Now().Before(deadline) {
			return zero, &TimeoutError{Elapsed: time.Since(start), Attempts: attempts, LastErr: lastErr}
		}
		if cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts {
			return zero, &TimeoutError{Elapsed: time.Since(start), Attempts: attempts, LastErr: lastErr}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}
}

// UntilNamed is Until with a description included in timeout errors.
func UntilNamed[T any](ctx context.Context, what string, cfg Config, pred Predicate[T]) (T, error) {
	v, err := Until(ctx, cfg, pred)
	var te *TimeoutError
	if errors.As(err, &te) {
		te.What = what
	}
	return v, err
}
