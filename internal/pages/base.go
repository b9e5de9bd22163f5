// Package pages implements page objects for the IoT Platform UI. Each page
// is a locator table plus flows built on the wait and retry primitives.
package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/probo/internal/common"
	"github.com/ternarybob/probo/internal/report"
	"github.com/ternarybob/probo/pkg/browser"
	"github.com/ternarybob/probo/pkg/poll"
)

// Locators shared across pages.
var (
	LoadingSpinner = browser.Css(".loading-spinner")
	ErrorMessage   = browser.Css(".error-message")
	SuccessMessage = browser.Css(".success-message")
	AlertMessage   = browser.Css(".alert")
	ModalDialog    = browser.Css(".modal")
	CloseButton    = browser.XPath(`//button[contains(@class, 'close') or contains(text(), 'Close')]`)
)

// Page is the base page object: accessor, waiters and retry config wired
// from one harness configuration.
type Page struct {
	acc      browser.Accessor
	waiter   *browser.Waiter
	short    *browser.Waiter
	pageLoad *browser.Waiter
	retryCfg poll.Config
	sink     report.Sink
	baseURL  string
	shots    *browser.ScreenshotUtil
}

// NewPage wires a base page from the harness config. shots may be nil when
// screenshot capture is disabled.
func NewPage(acc browser.Accessor, cfg *common.Config, sink report.Sink, shots *browser.ScreenshotUtil) *Page {
	if sink == nil {
		sink = report.NewLoggerSink(common.GetLogger())
	}
	return &Page{
		acc:      acc,
		waiter:   browser.NewWaiter(acc, cfg.WaitConfig()),
		short:    browser.NewWaiter(acc, cfg.ShortWaitConfig()),
		pageLoad: browser.NewWaiter(acc, cfg.PageLoadConfig()),
		retryCfg: cfg.RetryConfig(),
		sink:     sink,
		baseURL:  strings.TrimRight(cfg.Target.BaseURL, "/"),
		shots:    shots,
	}
}

// Accessor exposes the underlying browser accessor for page-specific code.
func (p *Page) Accessor() browser.Accessor { return p.acc }

// Waiter exposes the explicit-wait waiter.
func (p *Page) Waiter() *browser.Waiter { return p.waiter }

// URL joins a path onto the configured base URL. Absolute URLs pass
// through unchanged.
func (p *Page) URL(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return p.baseURL + path
}

// NavigateTo opens the given path and waits for the document to finish
// loading.
func (p *Page) NavigateTo(ctx context.Context, path string) error {
	url := p.URL(path)
	if err := p.acc.Navigate(ctx, url); err != nil {
		p.sink.Step("navigate to "+url, report.StatusFail, err.Error())
		return err
	}
	if err := p.WaitForPageLoad(ctx); err != nil {
		p.sink.Step("navigate to "+url, report.StatusFail, err.Error())
		return err
	}
	p.sink.Step("navigate to "+url, report.StatusPass, "")
	return nil
}

// WaitForPageLoad waits for document.readyState == complete.
func (p *Page) WaitForPageLoad(ctx context.Context) error {
	return p.pageLoad.ForPageLoad(ctx)
}

// Click waits for the element to become clickable, then clicks it with
// retry on transient failures. The element is re-resolved on every attempt.
func (p *Page) Click(ctx context.Context, step string, loc browser.Locator) error {
	return poll.Retry(ctx, step, p.retryCfg, func(ctx context.Context) error {
		if err := p.waiter.ForClickable(ctx, loc); err != nil {
			return err
		}
		return p.acc.Click(ctx, loc)
	}, poll.WithReporter(p.sink))
}

// TypeInto waits for the element, optionally clears it, then sends text
// with retry on transient failures.
func (p *Page) TypeInto(ctx context.Context, step string, loc browser.Locator, text string, clearFirst bool) error {
	return poll.Retry(ctx, step, p.retryCfg, func(ctx context.Context) error {
		if err := p.waiter.ForPresent(ctx, loc); err != nil {
			return err
		}
		if clearFirst {
			if err := p.acc.Clear(ctx, loc); err != nil {
				return err
			}
		}
		return p.acc.SendKeys(ctx, loc, text)
	}, poll.WithReporter(p.sink))
}

// TextOf waits for the element and returns its text content.
func (p *Page) TextOf(ctx context.Context, loc browser.Locator) (string, error) {
	if err := p.waiter.ForPresent(ctx, loc); err != nil {
		return "", err
	}
	return p.acc.Text(ctx, loc)
}

// AttributeOf waits for the element and returns the named attribute.
func (p *Page) AttributeOf(ctx context.Context, loc browser.Locator, name string) (string, error) {
	if err := p.waiter.ForPresent(ctx, loc); err != nil {
		return "", err
	}
	value, _, err := p.acc.Attribute(ctx, loc, name)
	return value, err
}

// IsPresent reports whether loc appears within the short wait budget.
func (p *Page) IsPresent(ctx context.Context, loc browser.Locator) bool {
	return p.short.ForPresent(ctx, loc) == nil
}

// IsVisible reports whether loc becomes visible within the short wait
// budget.
func (p *Page) IsVisible(ctx context.Context, loc browser.Locator) bool {
	return p.short.ForVisible(ctx, loc) == nil
}

// IsClickable reports whether loc becomes clickable within the short wait
// budget.
func (p *Page) IsClickable(ctx context.Context, loc browser.Locator) bool {
	return p.short.ForClickable(ctx, loc) == nil
}

// ErrorText returns the visible error message, or "" when none appears.
func (p *Page) ErrorText(ctx context.Context) string {
	if !p.IsPresent(ctx, ErrorMessage) {
		return ""
	}
	text, err := p.acc.Text(ctx, ErrorMessage)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// CurrentURL returns the browser's current location.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	return p.acc.Location(ctx)
}

// VerifyTitle checks the document title against want.
func (p *Page) VerifyTitle(ctx context.Context, want string) error {
	title, err := p.acc.Title(ctx)
	if err != nil {
		return err
	}
	if title != want {
		return fmt.Errorf("unexpected page title: want %q, got %q", want, title)
	}
	return nil
}

// VerifyURLContains waits for the location to contain part.
func (p *Page) VerifyURLContains(ctx context.Context, part string) error {
	_, err := p.waiter.ForURLContains(ctx, part)
	return err
}

// Screenshot captures the page when a screenshot util is wired; it is a
// no-op otherwise so flows can call it unconditionally.
func (p *Page) Screenshot(ctx context.Context, name string) {
	if p.shots == nil {
		return
	}
	if _, err := p.shots.Capture(ctx, name); err != nil {
		p.sink.Step("screenshot "+name, report.StatusFail, err.Error())
	}
}

// PageSource returns the current document HTML for offline analysis.
func (p *Page) PageSource(ctx context.Context) (string, error) {
	return p.acc.PageSource(ctx)
}
