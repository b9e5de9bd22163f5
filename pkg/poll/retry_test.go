package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyError marks itself transient, mirroring the browser layer's
// staleness and not-interactable failures.
type flakyError struct{ msg string }

func (e *flakyError) Error() string   { return e.msg }
func (e *flakyError) Transient() bool { return true }

type recordingReporter struct {
	mu    sync.Mutex
	steps []string
}

func (r *recordingReporter) Step(step, status, details string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, status)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	reporter := &recordingReporter{}
	calls := 0

	err := Retry(context.Background(), "click login", Config{MaxAttempts: 3, Interval: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return nil
		}, WithReporter(reporter))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{StatusPass}, reporter.steps)
}

func TestRetryRecoversFromTransient(t *testing.T) {
	reporter := &recordingReporter{}
	calls := 0

	err := Retry(context.Background(), "click submit", Config{MaxAttempts: 3, Interval: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return &flakyError{msg: "element is stale"}
			}
			return nil
		}, WithReporter(reporter))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Every attempt is logged: two failures then the pass.
	assert.Equal(t, []string{StatusFail, StatusFail, StatusPass}, reporter.steps)
}

func TestRetryExhausted(t *testing.T) {
	reporter := &recordingReporter{}
	calls := 0
	cause := &flakyError{msg: "not interactable"}

	err := Retry(context.Background(), "type email", Config{MaxAttempts: 3, Interval: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return cause
		}, WithReporter(reporter))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrExhausted)

	var ee *ExhaustedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "type email", ee.Step)
	assert.Equal(t, 3, ee.Attempts)
	assert.Equal(t, cause, ee.LastErr)
	assert.Equal(t, 3, reporter.count())
}

func TestRetryPermanentErrorNotRetried(t *testing.T) {
	reporter := &recordingReporter{}
	calls := 0
	boom := errors.New("login rejected: invalid credentials")

	err := Retry(context.Background(), "login", Config{MaxAttempts: 3, Interval: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return boom
		}, WithReporter(reporter))

	require.Error(t, err)
	assert.Equal(t, boom, err, "permanent errors must propagate unchanged, not wrapped")
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{StatusFail}, reporter.steps)
}

func TestRetryDelayBetweenAttempts(t *testing.T) {
	delay := 40 * time.Millisecond
	calls := 0
	start := time.Now()

	err := Retry(context.Background(), "click", Config{MaxAttempts: 3, Interval: delay},
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return &flakyError{msg: "stale"}
			}
			return nil
		})
	elapsed := time.Since(start)

	require.NoError(t, err)
	// fail, sleep, fail, sleep, pass: two full delays.
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}

func TestRetryNoDelayAfterFinalAttempt(t *testing.T) {
	delay := 200 * time.Millisecond
	start := time.Now()

	err := Retry(context.Background(), "click", Config{MaxAttempts: 2, Interval: delay},
		func(ctx context.Context) error {
			return &flakyError{msg: "stale"}
		})
	elapsed := time.Since(start)

	require.Error(t, err)
	// One inter-attempt delay only; no sleep after the last failure.
	assert.Less(t, elapsed, 2*delay)
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, "click", Config{MaxAttempts: 5, Interval: 5 * time.Second},
		func(ctx context.Context) error {
			return &flakyError{msg: "stale"}
		})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryDefaults(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), "click", Config{Interval: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return &flakyError{msg: "stale"}
		})

	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.True(t, IsTransient(&flakyError{msg: "stale"}))

	wrapped := &wrapError{cause: &flakyError{msg: "stale"}}
	assert.True(t, IsTransient(wrapped), "transience must be found through the unwrap chain")
}

type wrapError struct{ cause error }

func (e *wrapError) Error() string { return "wrapped: " + e.cause.Error() }
func (e *wrapError) Unwrap() error { return e.cause }
