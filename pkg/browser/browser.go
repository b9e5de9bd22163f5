// Package browser defines the capability set the harness needs from a
// browser automation backend, the error taxonomy for element interaction,
// and a chromedp-backed implementation.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoElement reports that a locator currently matches no element. Wait
// loops absorb it and keep polling; it never reaches a test directly.
var ErrNoElement = errors.New("no element matches locator")

// ErrUnsupportedBrowser is returned by the session factory for browsers
// chromedp cannot drive.
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// TransientKind names the two interaction failure classes eligible for
// retry. Everything else is permanent.
type TransientKind string

const (
	KindStale           TransientKind = "stale-element"
	KindNotInteractable TransientKind = "not-interactable"
)

// TransientError wraps an interaction failure that is expected to
// self-resolve shortly. poll.Retry retries these and nothing else.
type TransientError struct {
	Kind    TransientKind
	Locator Locator
	Cause   error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Locator, e.Cause)
}

// Transient marks the error as retryable for poll.IsTransient.
func (e *TransientError) Transient() bool { return true }

func (e *TransientError) Unwrap() error { return e.Cause }

// NotFound wraps ErrNoElement with the locator that failed to resolve.
func NotFound(loc Locator) error {
	return fmt.Errorf("%s: %w", loc, ErrNoElement)
}

// Accessor is the capability set any automation backend must provide.
// Presence, visibility and clickability checks return ErrNoElement while
// the condition does not hold so callers can poll; interactions return
// *TransientError for staleness and not-yet-interactable failures and
// plain errors for everything else.
type Accessor interface {
	// Navigation and document state.
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	ReadyState(ctx context.Context) (string, error)

	// Element state queries.
	Present(ctx context.Context, loc Locator) error
	Visible(ctx context.Context, loc Locator) error
	Clickable(ctx context.Context, loc Locator) error

	// Interactions.
	Click(ctx context.Context, loc Locator) error
	SendKeys(ctx context.Context, loc Locator, text string) error
	Clear(ctx context.Context, loc Locator) error

	// Element inspection.
	Text(ctx context.Context, loc Locator) (string, error)
	Attribute(ctx context.Context, loc Locator, name string) (string, bool, error)

	// Document-level operations.
	Evaluate(ctx context.Context, expr string, res any) error
	SetViewport(ctx context.Context, width, height int) error
	Screenshot(ctx context.Context) ([]byte, error)
	ClearStorage(ctx context.Context) error
}
