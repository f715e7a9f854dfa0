// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/githours/schema"
)

// ErrNotARepository is returned when a repository handle does not resolve
// to a commit source. It is fatal for the whole run.
var ErrNotARepository = errors.New("not a repository")

// ErrUnknownBranch is returned when a requested branch does not exist.
var ErrUnknownBranch = errors.New("unknown branch")

// CommitProvider reads commit history from some backend.
// This allows the aggregation logic to be tested without needing a real repository.
type CommitProvider interface {
	// ListCommits returns every commit reachable from the given branches. An
	// empty branch list means all branches. Errors wrap ErrNotARepository when
	// the handle is invalid.
	ListCommits(ctx context.Context, repo string, branches []string) ([]schema.RawCommit, error)

	// RepoState returns a value that changes whenever the history changes,
	// such as the HEAD hash. It keys the retrieval cache.
	RepoState(ctx context.Context, repo string) (string, error)

	// Name identifies the provider in cache keys and logs.
	Name() string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCommitStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// AnalysisStore defines the interface for tracking runs and storing per-contributor hours.
type AnalysisStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalCommits int, totalHours float64) error

	// RecordContributorHours stores the summary row for one contributor
	RecordContributorHours(runID int64, row schema.ContributorHours) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllRuns returns every tracked run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllContributorHours returns every stored contributor row
	GetAllContributorHours() ([]schema.ContributorHoursRecord, error)

	// Clear removes all tracked data
	Clear() error

	// Close closes the underlying connection
	Close() error
}
