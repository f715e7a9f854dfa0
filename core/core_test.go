package core

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/iocache"
	"github.com/huangsam/githours/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func raw(id, author string, hour, minute int, msg string) schema.RawCommit {
	return schema.RawCommit{
		ID:          id,
		AuthorName:  author,
		AuthorEmail: author + "@example.com",
		CommittedAt: day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Unix(),
		Message:     msg,
	}
}

func testConfig(repos ...string) *contract.Config {
	return &contract.Config{
		Repos:          repos,
		Provider:       schema.LocalProvider,
		Threshold:      4 * time.Hour,
		Location:       time.UTC,
		MergeDetection: schema.PrefixMergeDetection,
		Granularity:    schema.WeekGranularity,
		Precision:      2,
		ResultLimit:    10,
		Workers:        2,
		Output:         schema.JSONOut,
	}
}

func noStores() *iocache.MockCacheManager {
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetCommitStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(nil)
	return mgr
}

func twoRepoProvider() *contract.MockCommitProvider {
	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "repo-a", []string(nil)).Return([]schema.RawCommit{
		raw("a3", "Alice", 14, 0, "After lunch"),
		raw("a2", "Alice", 9, 30, "Continue"),
		raw("a1", "Alice", 9, 0, "Start"),
	}, nil)
	provider.On("ListCommits", mock.Anything, "repo-b", []string(nil)).Return([]schema.RawCommit{
		raw("b2", "Bob", 10, 0, "Merge pull request #1"),
		raw("b1", "Bob", 9, 0, "Bob one"),
		raw("a1", "Alice", 9, 0, "Start"),
	}, nil)
	return provider
}

func TestRunAnalysis(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mgr := noStores()
	provider := twoRepoProvider()

	report, err := runAnalysis(ctx, testConfig("repo-a", "repo-b"), provider, mgr)
	require.NoError(t, err)

	// Merge commit dropped, duplicated a1 kept twice
	assert.Equal(t, 5, report.TotalCommits)
	assert.InDelta(t, 0.5, report.TotalHours, 1e-9)
	assert.InDelta(t, 0.5, report.Active["Alice"], 1e-9)
	assert.InDelta(t, 0, report.Active["Bob"], 1e-9)
	// The zero gap between the two copies of a1 still qualifies
	require.Len(t, report.Commits, 2)
	assert.Equal(t, "a1", report.Commits[0].ID)
	assert.InDelta(t, 0.5, report.Commits[0].Hours, 1e-9)
	assert.Zero(t, report.Commits[1].Hours)

	provider.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestRunAnalysisFailsFast(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	provider := new(contract.MockCommitProvider)
	provider.On("ListCommits", mock.Anything, "good", mock.Anything).Return([]schema.RawCommit{raw("a1", "Alice", 9, 0, "x")}, nil).Maybe()
	provider.On("ListCommits", mock.Anything, "missing", mock.Anything).Return(nil, contract.ErrNotARepository)

	analysis := new(iocache.MockAnalysisStore)
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetCommitStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(analysis).Maybe()

	_, err := runAnalysis(ctx, testConfig("good", "missing"), provider, mgr)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNotARepository)
	assert.Contains(t, err.Error(), `"missing"`)

	// No run is opened, so none is left unfinished
	analysis.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything)
	analysis.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	analysis.AssertNotCalled(t, "RecordContributorHours", mock.Anything, mock.Anything)
}

func TestRunAnalysisTracksRun(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg := testConfig("repo-a", "repo-b")

	analysis := new(iocache.MockAnalysisStore)
	analysis.On("BeginRun", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["threshold"] == "4h0m0s" && p["provider"] == "local" && p["timezone"] == "UTC"
	})).Return(int64(7), nil)
	analysis.On("RecordContributorHours", int64(7), mock.AnythingOfType("schema.ContributorHours")).Return(nil).Twice()
	analysis.On("EndRun", int64(7), mock.Anything, 5, mock.AnythingOfType("float64")).Return(nil)

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetCommitStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(analysis)

	_, err := runAnalysis(ctx, cfg, twoRepoProvider(), mgr)
	require.NoError(t, err)
	analysis.AssertExpectations(t)
}

func TestRunAnalysisTrackingFailuresAreWarnings(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	analysis := new(iocache.MockAnalysisStore)
	analysis.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	mgr := new(iocache.MockCacheManager)
	mgr.On("GetCommitStore").Return(nil)
	mgr.On("GetAnalysisStore").Return(analysis)

	report, err := runAnalysis(ctx, testConfig("repo-a", "repo-b"), twoRepoProvider(), mgr)
	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalCommits)
	analysis.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunAnalysisWithSQLiteStores(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	dir := t.TempDir()

	cache, err := iocache.NewCacheStore("commit_cache", schema.SQLiteBackend, filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()
	analysis, err := iocache.NewAnalysisStore(schema.SQLiteBackend, filepath.Join(dir, "analysis.db"))
	require.NoError(t, err)
	defer func() { _ = analysis.Close() }()

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetCommitStore").Return(cache)
	mgr.On("GetAnalysisStore").Return(analysis)

	provider := twoRepoProvider()
	provider.On("RepoState", mock.Anything, mock.Anything).Return("state-1", nil)

	first, err := runAnalysis(ctx, testConfig("repo-a", "repo-b"), provider, mgr)
	require.NoError(t, err)
	second, err := runAnalysis(ctx, testConfig("repo-a", "repo-b"), provider, mgr)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second run is served from the cache
	provider.AssertNumberOfCalls(t, "ListCommits", 2)

	runs, err := analysis.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.NotNil(t, runs[0].TotalCommits)
	assert.Equal(t, int32(5), *runs[0].TotalCommits)

	rows, err := analysis.GetAllContributorHours()
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestRunConfigParams(t *testing.T) {
	cfg := testConfig("a")
	params := runConfigParams(cfg)
	assert.NotContains(t, params, "start")

	cfg.StartTime = day
	params = runConfigParams(cfg)
	assert.Equal(t, "2024-03-04T00:00:00Z", params["start"])
	assert.Equal(t, []string{"a"}, params["repos"])
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(testConfig())
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	cfg := testConfig()
	cfg.Provider = schema.GitHubProvider
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "github", p.Name())

	cfg.Provider = "svn"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

type fakeSink struct {
	reports []schema.HoursReport
	errors  int
}

func (s *fakeSink) Update(report schema.HoursReport, _ time.Time, _ time.Duration) {
	s.reports = append(s.reports, report)
}

func (s *fakeSink) RecordError() { s.errors++ }

func TestRefresh(t *testing.T) {
	cfg := testConfig("/definitely/not/a/repo")
	sink := &fakeSink{}

	err := Refresh(context.Background(), cfg, noStores(), sink)
	require.Error(t, err)
	assert.Equal(t, 1, sink.errors)
	assert.Empty(t, sink.reports)
}

func TestRefreshResolvesRelativeWindow(t *testing.T) {
	repo := initRepo(t)

	tests := []struct {
		name        string
		startInput  string
		wantCommits int
	}{
		{"stale bound without raw input", "", 3},
		{"relative bound moves with the clock", "1 week ago", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(repo)
			stale := day.Add(-time.Hour)
			cfg.StartTime = stale
			cfg.StartInput = tt.startInput
			sink := &fakeSink{}

			require.NoError(t, Refresh(context.Background(), cfg, noStores(), sink))
			require.Len(t, sink.reports, 1)
			assert.Equal(t, tt.wantCommits, sink.reports[0].TotalCommits)
			assert.Equal(t, stale, cfg.StartTime)
		})
	}
}

func TestRefreshLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &fakeSink{}
	done := make(chan struct{})
	go func() {
		RefreshLoop(ctx, testConfig("/definitely/not/a/repo"), noStores(), sink, time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
	assert.Equal(t, 1, sink.errors)
}

// initRepo creates a git repository with three commits by Alice.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := t.TempDir()
	git := func(date string, args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Alice", "GIT_AUTHOR_EMAIL=alice@example.com",
			"GIT_COMMITTER_NAME=Alice", "GIT_COMMITTER_EMAIL=alice@example.com",
			"GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date,
			"GIT_CONFIG_NOSYSTEM=1", "HOME="+dir)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("2024-03-04T09:00:00Z", "init", "-q")
	for _, date := range []string{"2024-03-04T09:00:00Z", "2024-03-04T09:30:00Z", "2024-03-04T14:00:00Z"} {
		git(date, "commit", "-q", "--allow-empty", "-m", "work at "+date)
	}
	return dir
}

func TestExecuteCommandsOnLocalRepo(t *testing.T) {
	repo := initRepo(t)
	ctx := WithSuppressHeader(context.Background())

	executors := map[string]ExecutorFunc{
		"hours":   ExecuteHours,
		"commits": ExecuteCommits,
		"periods": ExecutePeriods,
		"report":  ExecuteReport,
	}
	for name, execute := range executors {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(repo)
			cfg.OutputFile = filepath.Join(t.TempDir(), name+".json")
			require.NoError(t, execute(ctx, cfg, noStores()))

			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}

	report, err := GetReport(ctx, testConfig(repo), noStores())
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCommits)
	assert.InDelta(t, 0.5, report.Active["Alice"], 1e-9)
}

func TestExecuteHoursNotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	cfg := testConfig(t.TempDir())
	err := ExecuteHours(WithSuppressHeader(context.Background()), cfg, noStores())
	assert.ErrorIs(t, err, contract.ErrNotARepository)
}
