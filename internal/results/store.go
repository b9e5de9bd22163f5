// Package results persists smoke-run history in an embedded Badger store
// so the runner can report trends across invocations.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// Run statuses.
const (
	RunStatusPassed = "passed"
	RunStatusFailed = "failed"
)

// RunRecord is one completed smoke-test run.
type RunRecord struct {
	ID          string `badgerhold:"key"`
	Suite       string
	Browser     string
	Environment string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Passed      int
	Failed      int
	Skipped     int
	OutputDir   string
}

// Duration returns the wall-clock time of the run.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store wraps a badgerhold database of run records.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens (or creates) the run-history database at path.
func Open(path string, logger arbor.ILogger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // arbor handles logging

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Run history database opened")

	return &Store{store: store, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// SaveRun upserts a run record.
func (s *Store) SaveRun(run *RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if err := s.store.Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(id string) (*RunRecord, error) {
	var run RunRecord
	if err := s.store.Get(id, &run); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(limit int) ([]*RunRecord, error) {
	var runs []*RunRecord
	query := badgerhold.Where("ID").Ne("")
	if err := s.store.Find(&runs, query); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Summary aggregates pass/fail counts across stored runs.
type Summary struct {
	TotalRuns  int
	PassedRuns int
	FailedRuns int
	LastRun    *RunRecord
}

// Summarize computes a Summary over the full history.
func (s *Store) Summarize() (*Summary, error) {
	runs, err := s.ListRuns(0)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalRuns: len(runs)}
	for _, r := range runs {
		switch r.Status {
		case RunStatusPassed:
			summary.PassedRuns++
		case RunStatusFailed:
			summary.FailedRuns++
		}
	}
	if len(runs) > 0 {
		summary.LastRun = runs[0]
	}
	return summary, nil
}
