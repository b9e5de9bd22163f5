package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history"), arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(id string, started time.Time, status string) *RunRecord {
	return &RunRecord{
		ID:          id,
		Suite:       "ui",
		Browser:     "chrome",
		Environment: "local",
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
		Status:      status,
		Passed:      12,
		Failed:      0,
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTestStore(t)

	run := record("run_abc", time.Now(), RunStatusPassed)
	require.NoError(t, store.SaveRun(run))

	got, err := store.GetRun("run_abc")
	require.NoError(t, err)
	assert.Equal(t, "ui", got.Suite)
	assert.Equal(t, RunStatusPassed, got.Status)
	assert.Equal(t, 90*time.Second, got.Duration())
}

func TestSaveRunRequiresID(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.SaveRun(&RunRecord{}))
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetRun("run_missing")
	assert.Error(t, err)
}

func TestListRunsRecentFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.SaveRun(record("run_1", base, RunStatusPassed)))
	require.NoError(t, store.SaveRun(record("run_2", base.Add(10*time.Minute), RunStatusFailed)))
	require.NoError(t, store.SaveRun(record("run_3", base.Add(20*time.Minute), RunStatusPassed)))

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run_3", runs[0].ID)
	assert.Equal(t, "run_1", runs[2].ID)

	limited, err := store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSummarize(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.SaveRun(record("run_1", base, RunStatusPassed)))
	require.NoError(t, store.SaveRun(record("run_2", base.Add(time.Minute), RunStatusFailed)))

	summary, err := store.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRuns)
	assert.Equal(t, 1, summary.PassedRuns)
	assert.Equal(t, 1, summary.FailedRuns)
	require.NotNil(t, summary.LastRun)
	assert.Equal(t, "run_2", summary.LastRun.ID)
}

func TestUpsertOverwrites(t *testing.T) {
	store := openTestStore(t)

	run := record("run_x", time.Now(), RunStatusFailed)
	require.NoError(t, store.SaveRun(run))

	run.Status = RunStatusPassed
	require.NoError(t, store.SaveRun(run))

	got, err := store.GetRun("run_x")
	require.NoError(t, err)
	assert.Equal(t, RunStatusPassed, got.Status)
}
