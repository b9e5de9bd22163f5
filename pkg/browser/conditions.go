package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/probo/pkg/poll"
)

// Waiter composes poll.Until with an Accessor. Each For* call is one
// independent poll loop; callers build compound conditions (for example
// "present then clickable") by sequencing calls.
type Waiter struct {
	acc Accessor
	cfg poll.Config
}

// NewWaiter returns a Waiter using cfg for every wait it runs.
func NewWaiter(acc Accessor, cfg poll.Config) *Waiter {
	return &Waiter{acc: acc, cfg: cfg}
}

// WithTimeout returns a copy of the Waiter using the given wait budget.
func (w *Waiter) WithTimeout(cfg poll.Config) *Waiter {
	return &Waiter{acc: w.acc, cfg: cfg}
}

// asPollErr translates the accessor's not-found signal into the poll
// package's continue signal. Permanent accessor errors pass through and
// abort the wait.
func asPollErr(err error) error {
	if errors.Is(err, ErrNoElement) {
		return fmt.Errorf("%v: %w", err, poll.ErrNotYetSatisfied)
	}
	return err
}

// ForPresent waits until loc matches an element in the document.
func (w *Waiter) ForPresent(ctx context.Context, loc Locator) error {
	_, err := poll.UntilNamed(ctx, fmt.Sprintf("wait for %s present", loc), w.cfg,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, asPollErr(w.acc.Present(ctx, loc))
		})
	return err
}

// ForVisible waits until loc matches a rendered, visible element.
func (w *Waiter) ForVisible(ctx context.Context, loc Locator) error {
	_, err := poll.UntilNamed(ctx, fmt.Sprintf("wait for %s visible", loc), w.cfg,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, asPollErr(w.acc.Visible(ctx, loc))
		})
	return err
}

// ForClickable waits until loc matches a visible, enabled element.
func (w *Waiter) ForClickable(ctx context.Context, loc Locator) error {
	_, err := poll.UntilNamed(ctx, fmt.Sprintf("wait for %s clickable", loc), w.cfg,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, asPollErr(w.acc.Clickable(ctx, loc))
		})
	return err
}

// ForText waits until the element at loc contains substr and returns the
// full text.
func (w *Waiter) ForText(ctx context.Context, loc Locator, substr string) (string, error) {
	return poll.UntilNamed(ctx, fmt.Sprintf("wait for %q in %s", substr, loc), w.cfg,
		func(ctx context.Context) (string, error) {
			if err := w.acc.Present(ctx, loc); err != nil {
				return "", asPollErr(err)
			}
			text, err := w.acc.Text(ctx, loc)
			if err != nil {
				if poll.IsTransient(err) {
					return "", fmt.Errorf("%v: %w", err, poll.ErrNotYetSatisfied)
				}
				return "", err
			}
			if !strings.Contains(text, substr) {
				return "", fmt.Errorf("text %q: %w", text, poll.ErrNotYetSatisfied)
			}
			return text, nil
		})
}

// ForURLContains waits until the current location contains part and returns
// the full URL.
func (w *Waiter) ForURLContains(ctx context.Context, part string) (string, error) {
	return poll.UntilNamed(ctx, fmt.Sprintf("wait for url containing %q", part), w.cfg,
		func(ctx context.Context) (string, error) {
			url, err := w.acc.Location(ctx)
			if err != nil {
				return "", err
			}
			if !strings.Contains(url, part) {
				return "", fmt.Errorf("at %s: %w", url, poll.ErrNotYetSatisfied)
			}
			return url, nil
		})
}

// ForPageLoad waits until document.readyState reports complete.
func (w *Waiter) ForPageLoad(ctx context.Context) error {
	_, err := poll.UntilNamed(ctx, "wait for page load", w.cfg,
		func(ctx context.Context) (struct{}, error) {
			state, err := w.acc.ReadyState(ctx)
			if err != nil {
				return struct{}{}, err
			}
			if state != "complete" {
				return struct{}{}, fmt.Errorf("readyState %s: %w", state, poll.ErrNotYetSatisfied)
			}
			return struct{}{}, nil
		})
	return err
}

// ForGone waits until loc no longer matches any element (spinners, modals).
func (w *Waiter) ForGone(ctx context.Context, loc Locator) error {
	_, err := poll.UntilNamed(ctx, fmt.Sprintf("wait for %s gone", loc), w.cfg,
		func(ctx context.Context) (struct{}, error) {
			err := w.acc.Present(ctx, loc)
			if errors.Is(err, ErrNoElement) {
				return struct{}{}, nil
			}
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, fmt.Errorf("%s still present: %w", loc, poll.ErrNotYetSatisfied)
		})
	return err
}
