package iocache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/githours/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryAnalysisStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAnalysisStoreNoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"threshold": "4h"})
	assert.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.EndRun(1, time.Now(), 10, 2.5))
	assert.NoError(t, store.RecordContributorHours(1, schema.ContributorHours{Contributor: "Alice"}))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Close())
}

func TestAnalysisStoreRejectsRedis(t *testing.T) {
	_, err := NewAnalysisStore(schema.RedisBackend, "redis://localhost:6379")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported analysis backend")
}

func TestAnalysisStoreSQLiteLifecycle(t *testing.T) {
	store := newMemoryAnalysisStore(t)
	recorded := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return recorded }

	start := time.Date(2024, time.June, 1, 11, 59, 58, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"threshold": "4h", "repos": []string{"/a"}})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	first := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	last := time.Date(2024, time.May, 20, 17, 0, 0, 0, time.UTC)
	rows := []schema.ContributorHours{
		{Contributor: "Bob", Hours: 1.25, Commits: 3, Sessions: 1, FirstCommit: first, LastCommit: last},
		{Contributor: "Alice", Hours: 4.5, Commits: 9, Sessions: 2, FirstCommit: first, LastCommit: last},
	}
	for _, row := range rows {
		require.NoError(t, store.RecordContributorHours(runID, row))
	}

	end := start.Add(2 * time.Second)
	require.NoError(t, store.EndRun(runID, end, 12, 5.75))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	_, parseErr := uuid.Parse(run.RunKey)
	assert.NoError(t, parseErr, "run key should be a uuid")
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, end.Equal(*run.EndTime))
	require.NotNil(t, run.RunDuration)
	assert.Equal(t, int64(2000), *run.RunDuration)
	require.NotNil(t, run.TotalCommits)
	assert.Equal(t, int32(12), *run.TotalCommits)
	require.NotNil(t, run.TotalHours)
	assert.InDelta(t, 5.75, *run.TotalHours, 1e-9)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"threshold":"4h","repos":["/a"]}`, *run.ConfigParams)

	stored, err := store.GetAllContributorHours()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Alice", stored[0].Contributor) // ordered by contributor
	assert.InDelta(t, 4.5, stored[0].Hours, 1e-9)
	assert.Equal(t, int32(9), stored[0].Commits)
	assert.Equal(t, int32(2), stored[0].Sessions)
	assert.True(t, recorded.Equal(stored[0].RunTime))
	assert.True(t, first.Equal(stored[0].FirstCommit))
	assert.True(t, last.Equal(stored[0].LastCommit))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.True(t, start.Equal(status.LastRunTime))
	assert.True(t, start.Equal(status.OldestRunTime))
	assert.Equal(t, 2, status.TotalContributors)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(2), status.TableSizes[contributorHoursTable])
}

func TestAnalysisStoreUnfinishedRun(t *testing.T) {
	store := newMemoryAnalysisStore(t)

	_, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDuration)
	assert.Nil(t, runs[0].TotalHours)
}

func TestAnalysisStoreEndUnknownRun(t *testing.T) {
	store := newMemoryAnalysisStore(t)

	err := store.EndRun(42, time.Now(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 42")
}

func TestAnalysisStoreDuplicateContributor(t *testing.T) {
	store := newMemoryAnalysisStore(t)
	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	row := schema.ContributorHours{Contributor: "Alice", Hours: 1}
	require.NoError(t, store.RecordContributorHours(runID, row))
	assert.Error(t, store.RecordContributorHours(runID, row))
}

func TestAnalysisStoreMultipleRunsAndClear(t *testing.T) {
	store := newMemoryAnalysisStore(t)
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	var ids []int64
	for i := range 3 {
		id, err := store.BeginRun(base.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordContributorHours(id, schema.ContributorHours{Contributor: "Alice", Hours: float64(i)}))
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.True(t, base.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, base.Equal(status.OldestRunTime))
	assert.Equal(t, 1, status.TotalContributors)

	require.NoError(t, store.Clear())
	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRuns)
	assert.Zero(t, status.TableSizes[contributorHoursTable])
}
