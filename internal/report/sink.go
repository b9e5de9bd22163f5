// Package report provides the step audit sink consumed by the retry
// executor and page objects. Sinks record what happened; they never drive
// control flow.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// Step statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusInfo = "info"
	StatusSkip = "skip"
)

// Sink accepts (step, status, details) tuples. It matches poll.Reporter.
type Sink interface {
	Step(step string, status string, details string)
}

// LoggerSink writes step outcomes through an arbor logger.
type LoggerSink struct {
	logger arbor.ILogger
}

// NewLoggerSink returns a sink logging at info for passes and warn for
// failures.
func NewLoggerSink(logger arbor.ILogger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Step(step string, status string, details string) {
	event := s.logger.Info()
	if status == StatusFail {
		event = s.logger.Warn()
	}
	event.Str("step", step).Str("status", status).Str("details", details).Msg("test step")
}

// Entry is one recorded step with its timestamp.
type Entry struct {
	Step      string    `json:"step"`
	Status    string    `json:"status"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder keeps step entries in memory for assertions and JSON export.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Step(step string, status string, details string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Step:      step,
		Status:    status,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// Entries returns a copy of the recorded steps.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of entries with the given status, or all
// entries when status is empty.
func (r *Recorder) Count(status string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == "" {
		return len(r.entries)
	}
	n := 0
	for _, e := range r.entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// WriteJSON saves the recorded steps to path.
func (r *Recorder) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r.Entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal step entries: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write step report: %w", err)
	}
	return nil
}

// Multi fans one step out to several sinks.
type Multi []Sink

func (m Multi) Step(step string, status string, details string) {
	for _, s := range m {
		s.Step(step, status, details)
	}
}
