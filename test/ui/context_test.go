// context.go - Shared UI test context and helpers.
// NOTE: This is NOT a test file - it contains shared test infrastructure.

package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/probo/internal/common"
	"github.com/ternarybob/probo/internal/pages"
	"github.com/ternarybob/probo/internal/report"
	"github.com/ternarybob/probo/pkg/browser"
)

// DefaultTestTimeout bounds a single UI test end to end.
const DefaultTestTimeout = 3 * time.Minute

// UITestContext holds shared state for UI tests: one browser session, the
// page objects bound to it, and the step recorder for the run.
type UITestContext struct {
	T       *testing.T
	Ctx     context.Context
	Config  *common.Config
	Session *browser.Session
	Console *browser.ConsoleWatcher
	Steps   *report.Recorder

	Login     *pages.LoginPage
	Dashboard *pages.DashboardPage

	resultsDir string
	shots      *browser.ScreenshotUtil
	cleanup    []func()
}

// NewUITestContext starts a browser session and wires the page objects.
// Tests are skipped when the target application was not reachable in
// TestMain.
func NewUITestContext(t *testing.T, timeout time.Duration) *UITestContext {
	if skipReason != "" {
		t.Skip(skipReason)
	}

	cfg, err := common.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	resultsDir := os.Getenv("TEST_RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = filepath.Join(cfg.Output.ResultsBaseDir, "adhoc")
	}
	logger := common.InitLogger(cfg, resultsDir)

	ctx, cancelTimeout := context.WithTimeout(context.Background(), timeout)

	session, err := browser.NewSession(ctx, browser.Options{
		Browser:      cfg.Browser.Name,
		Headless:     cfg.Browser.Headless,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
		UserAgent:    cfg.Browser.UserAgent,
		ExecPath:     cfg.Browser.ExecPath,
		NoSandbox:    cfg.Browser.NoSandbox,
		DisableGPU:   cfg.Browser.DisableGPU,
	})
	if err != nil {
		cancelTimeout()
		t.Fatalf("Failed to start browser: %v", err)
	}

	console := browser.WatchConsole(session)

	shots, err := browser.NewScreenshotUtil(session, filepath.Join(resultsDir, "screenshots"))
	if err != nil {
		t.Logf("Warning: screenshot capture disabled: %v", err)
		shots = nil
	}

	recorder := report.NewRecorder()
	sink := report.Multi{report.NewLoggerSink(logger), recorder}

	page := pages.NewPage(session, cfg, sink, shots)

	utc := &UITestContext{
		T:          t,
		Ctx:        ctx,
		Config:     cfg,
		Session:    session,
		Console:    console,
		Steps:      recorder,
		Login:      pages.NewLoginPage(page),
		Dashboard:  pages.NewDashboardPage(page),
		resultsDir: resultsDir,
		shots:      shots,
	}

	// Cleanup functions run in reverse order (LIFO).
	utc.cleanup = append(utc.cleanup, cancelTimeout)
	utc.cleanup = append(utc.cleanup, session.Close)

	return utc
}

// Cleanup releases the browser and writes the step report. Call with defer.
func (utc *UITestContext) Cleanup() {
	if utc.T.Failed() {
		utc.T.Log("=== TEST RESULT: FAIL ===")
		utc.FailureScreenshot(utc.T.Name())
	} else {
		utc.T.Log("=== TEST RESULT: PASS ===")
	}

	stepsFile := filepath.Join(utc.resultsDir, sanitizeFilename(utc.T.Name())+"_steps.json")
	if err := utc.Steps.WriteJSON(stepsFile); err != nil {
		utc.T.Logf("Warning: failed to write step report: %v", err)
	}

	for i := len(utc.cleanup) - 1; i >= 0; i-- {
		utc.cleanup[i]()
	}
}

// FailureScreenshot captures the current page state for debugging. Errors
// are logged, never fatal, since this runs on an already-failing test.
func (utc *UITestContext) FailureScreenshot(name string) {
	if utc.shots == nil {
		return
	}
	// Use a fresh context: the test context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if path, err := utc.shots.CaptureFailure(ctx, sanitizeFilename(name)); err != nil {
		utc.T.Logf("Warning: failed to capture failure screenshot: %v", err)
	} else {
		utc.T.Logf("Failure screenshot: %s", path)
	}
}

// RequireNoConsoleErrors fails the test when the page logged errors or
// threw uncaught exceptions.
func (utc *UITestContext) RequireNoConsoleErrors() {
	utc.T.Helper()
	errs := utc.Console.Errors()
	if len(errs) > 0 {
		utc.T.Errorf("Page logged %d console error(s):\n%s", len(errs), utc.Console.Summary())
	}
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
