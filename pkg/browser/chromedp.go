package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Options configures a browser session. Values are translated into exec
// allocator flags; the zero value gets sensible defaults from withDefaults.
type Options struct {
	Browser       string // chrome, chromium, edge
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	UserAgent     string
	ExecPath      string // explicit browser binary, overrides Browser lookup
	NoSandbox     bool
	DisableGPU    bool
	ActionTimeout time.Duration // per-interaction budget
}

func (o Options) withDefaults() Options {
	if o.Browser == "" {
		o.Browser = "chrome"
	}
	if o.WindowWidth <= 0 {
		o.WindowWidth = 1920
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = 1080
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 5 * time.Second
	}
	return o
}

// Binary names probed per browser choice when ExecPath is not set.
var browserBinaries = map[string][]string{
	"chrome":   {"google-chrome", "chromium", "chromium-browser"},
	"chromium": {"chromium", "chromium-browser"},
	"edge":     {"microsoft-edge", "msedge"},
}

// Session drives a single browser instance over the Chrome DevTools
// Protocol. It is not safe for concurrent use; each test run owns exactly
// one Session for its duration.
type Session struct {
	ctx           context.Context
	actionTimeout time.Duration
	cancels       []context.CancelFunc
}

var _ Accessor = (*Session)(nil)

// NewSession starts a browser per opts and returns a Session bound to it.
// Close must be called to release the browser process.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	if _, ok := browserBinaries[opts.Browser]; !ok && opts.ExecPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBrowser, opts.Browser)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.DisableGPU {
		allocOpts = append(allocOpts, chromedp.Flag("disable-gpu", true))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:           browserCtx,
		actionTimeout: opts.ActionTimeout,
		cancels:       []context.CancelFunc{cancelAlloc, cancelBrowser},
	}

	// Start the browser process now so a missing binary fails here rather
	// than inside the first test step.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start %s: %w", opts.Browser, err)
	}

	return s, nil
}

// Context exposes the underlying chromedp context for callers that need to
// register CDP event listeners (see ConsoleWatcher).
func (s *Session) Context() context.Context { return s.ctx }

// Close releases the browser process and all derived contexts.
func (s *Session) Close() {
	_ = chromedp.Cancel(s.ctx)
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := mergeContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// runBounded applies the per-interaction timeout on top of the caller's
// context so a missing node cannot block a step indefinitely.
func (s *Session) runBounded(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := mergeContext(s.ctx, ctx)
	defer cancel()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, s.actionTimeout)
	defer cancelTimeout()
	return chromedp.Run(runCtx, actions...)
}

// mergeContext derives from the session context but honors cancellation of
// the caller's context.
func mergeContext(sessionCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(sessionCtx)
	if callerCtx == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(callerCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := s.runBounded(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *Session) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := s.run(ctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
		return "", err
	}
	return state, nil
}

// Element states reported by the stateScript probe.
const (
	stateAbsent       = "absent"
	stateHidden       = "hidden"
	stateDisabled     = "disabled"
	stateInteractable = "interactable"
)

func jsElement(loc Locator) string {
	switch loc.Strategy {
	case StrategyID:
		return fmt.Sprintf(`document.getElementById(%q)`, loc.Selector)
	case StrategyXPath:
		return fmt.Sprintf(`document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, loc.Selector)
	default:
		return fmt.Sprintf(`document.querySelector(%q)`, loc.Selector)
	}
}

func stateScript(loc Locator) string {
	return fmt.Sprintf(`
		(() => {
			const el = %s;
			if (!el) return %q;
			const style = window.getComputedStyle(el);
			const rect = el.getBoundingClientRect();
			if (style.display === "none" || style.visibility === "hidden" || rect.width === 0 || rect.height === 0) return %q;
			if (el.disabled) return %q;
			return %q;
		})()
	`, jsElement(loc), stateAbsent, stateHidden, stateDisabled, stateInteractable)
}

// elementState probes the element without blocking: the script runs against
// the current document and returns immediately.
func (s *Session) elementState(ctx context.Context, loc Locator) (string, error) {
	var state string
	if err := s.run(ctx, chromedp.Evaluate(stateScript(loc), &state)); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", loc, err)
	}
	return state, nil
}

func (s *Session) Present(ctx context.Context, loc Locator) error {
	state, err := s.elementState(ctx, loc)
	if err != nil {
		return err
	}
	if state == stateAbsent {
		return NotFound(loc)
	}
	return nil
}

func (s *Session) Visible(ctx context.Context, loc Locator) error {
	state, err := s.elementState(ctx, loc)
	if err != nil {
		return err
	}
	if state == stateAbsent || state == stateHidden {
		return NotFound(loc)
	}
	return nil
}

func (s *Session) Clickable(ctx context.Context, loc Locator) error {
	state, err := s.elementState(ctx, loc)
	if err != nil {
		return err
	}
	if state != stateInteractable {
		return NotFound(loc)
	}
	return nil
}

// query maps a Locator onto a chromedp selector and query option.
func query(loc Locator) (string, chromedp.QueryOption) {
	switch loc.Strategy {
	case StrategyID:
		return "#" + loc.Selector, chromedp.ByQuery
	case StrategyXPath:
		return loc.Selector, chromedp.BySearch
	default:
		return loc.Selector, chromedp.ByQuery
	}
}

func (s *Session) Click(ctx context.Context, loc Locator) error {
	sel, opt := query(loc)
	if err := s.runBounded(ctx, chromedp.Click(sel, opt)); err != nil {
		return classify(err, loc)
	}
	return nil
}

func (s *Session) SendKeys(ctx context.Context, loc Locator, text string) error {
	sel, opt := query(loc)
	if err := s.runBounded(ctx, chromedp.SendKeys(sel, text, opt)); err != nil {
		return classify(err, loc)
	}
	return nil
}

func (s *Session) Clear(ctx context.Context, loc Locator) error {
	sel, opt := query(loc)
	if err := s.runBounded(ctx, chromedp.Clear(sel, opt)); err != nil {
		return classify(err, loc)
	}
	return nil
}

func (s *Session) Text(ctx context.Context, loc Locator) (string, error) {
	sel, opt := query(loc)
	var text string
	if err := s.runBounded(ctx, chromedp.Text(sel, &text, opt)); err != nil {
		return "", classify(err, loc)
	}
	return text, nil
}

func (s *Session) Attribute(ctx context.Context, loc Locator, name string) (string, bool, error) {
	sel, opt := query(loc)
	var value string
	var ok bool
	if err := s.runBounded(ctx, chromedp.AttributeValue(sel, name, &value, &ok, opt)); err != nil {
		return "", false, classify(err, loc)
	}
	return value, ok, nil
}

func (s *Session) Evaluate(ctx context.Context, expr string, res any) error {
	return s.run(ctx, chromedp.Evaluate(expr, res))
}

func (s *Session) SetViewport(ctx context.Context, width, height int) error {
	return s.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// ClearStorage drops cookies, localStorage and sessionStorage so a fresh
// login can follow a failed logout.
func (s *Session) ClearStorage(ctx context.Context) error {
	return s.run(ctx,
		storage.ClearCookies(),
		chromedp.Evaluate(`window.localStorage.clear(); window.sessionStorage.clear(); true`, nil),
	)
}

// classify maps chromedp failures onto the harness error taxonomy. Node
// resolution races and interaction deadlines are the two transient classes;
// everything else is permanent and returned as-is.
func classify(err error, loc Locator) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "detached") ||
		strings.Contains(msg, "does not belong to the document") ||
		strings.Contains(msg, "could not find node"):
		return &TransientError{Kind: KindStale, Locator: loc, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransientError{Kind: KindNotInteractable, Locator: loc, Cause: err}
	default:
		return err
	}
}
