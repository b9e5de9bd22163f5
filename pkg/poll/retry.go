package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is matched by errors.Is against the *ExhaustedError returned
// when every retry attempt failed transiently.
var ErrExhausted = errors.New("retry attempts exhausted")

// ExhaustedError reports a retried action that failed on every attempt.
type ExhaustedError struct {
	Step     string
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Step, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// transienter is implemented by errors that are expected to self-resolve
// shortly (element staleness, not-yet-interactable). Only these are retried.
type transienter interface {
	Transient() bool
}

// IsTransient reports whether err, or any error in its chain, marks itself
// as transient.
func IsTransient(err error) bool {
	for err != nil {
		if t, ok := err.(transienter); ok && t.Transient() {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Reporter receives per-attempt audit records from Retry. It is never used
// for control flow.
type Reporter interface {
	Step(step string, status string, details string)
}

// Attempt statuses emitted to the Reporter.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

type nopReporter struct{}

func (nopReporter) Step(string, string, string) {}

// RetryOption adjusts Retry behavior.
type RetryOption func(*retrySettings)

type retrySettings struct {
	reporter Reporter
}

// WithReporter routes per-attempt outcomes to r.
func WithReporter(r Reporter) RetryOption {
	return func(s *retrySettings) {
		if r != nil {
			s.reporter = r
		}
	}
}

// Retry executes action up to cfg.MaxAttempts times, sleeping cfg.Interval
// between attempts. Only transient failures (IsTransient) are retried;
// any other error returns unchanged from the attempt that produced it.
//
// The action must resolve its element fresh on each attempt rather than
// holding a handle across attempts.
func Retry(ctx context.Context, step string, cfg Config, action func(ctx context.Context) error, opts ...RetryOption) error {
	settings := retrySettings{reporter: nopReporter{}}
	for _, opt := range opts {
		opt(&settings)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := cfg.Interval
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := action(ctx)
		if err == nil {
			settings.reporter.Step(step, StatusPass, fmt.Sprintf("attempt %d/%d", attempt, maxAttempts))
			return nil
		}

		if !IsTransient(err) {
			settings.reporter.Step(step, StatusFail, fmt.Sprintf("attempt %d/%d: %v", attempt, maxAttempts, err))
			return err
		}

		settings.reporter.Step(step, StatusFail, fmt.Sprintf("attempt %d/%d: %v", attempt, maxAttempts, err))
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Step: step, Attempts: maxAttempts, LastErr: lastErr}
}
