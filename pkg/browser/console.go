package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ConsoleEntry is one console message or uncaught exception observed in the
// page.
type ConsoleEntry struct {
	Level   string
	Message string
}

// ConsoleWatcher collects console output from a Session via CDP runtime
// events. Attach it before navigating; events arrive on chromedp's
// listener goroutine so access is mutex-guarded.
type ConsoleWatcher struct {
	mu      sync.Mutex
	entries []ConsoleEntry
}

// WatchConsole registers a watcher on the session and returns it.
func WatchConsole(s *Session) *ConsoleWatcher {
	w := &ConsoleWatcher{}
	chromedp.ListenTarget(s.Context(), func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			parts := make([]string, 0, len(e.Args))
			for _, arg := range e.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				}
			}
			w.add(string(e.Type), strings.Join(parts, " "))
		case *runtime.EventExceptionThrown:
			w.add("exception", e.ExceptionDetails.Error())
		}
	})
	return w
}

func (w *ConsoleWatcher) add(level, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, ConsoleEntry{Level: level, Message: message})
}

// Entries returns a copy of everything observed so far.
func (w *ConsoleWatcher) Entries() []ConsoleEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ConsoleEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Errors returns only error-level messages and uncaught exceptions.
func (w *ConsoleWatcher) Errors() []ConsoleEntry {
	var out []ConsoleEntry
	for _, e := range w.Entries() {
		if e.Level == "error" || e.Level == "exception" {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears collected entries, typically between navigations.
func (w *ConsoleWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
}

// Summary renders entries for test failure messages.
func (w *ConsoleWatcher) Summary() string {
	entries := w.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.Level, e.Message))
	}
	return strings.Join(lines, "\n")
}
