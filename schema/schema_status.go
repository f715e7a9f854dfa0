package schema

import "time"

// CacheStatus represents the status of the retrieval cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the run tracking store.
type AnalysisStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRuns         int              `json:"total_runs"`
	LastRunID         int64            `json:"last_run_id"`
	LastRunTime       time.Time        `json:"last_run_time"`
	OldestRunTime     time.Time        `json:"oldest_run_time"`
	TotalContributors int              `json:"total_contributors"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the githours_runs table.
type RunRecord struct {
	RunID        int64
	RunKey       string
	StartTime    time.Time
	EndTime      *time.Time
	RunDuration  *int64 // Milliseconds
	TotalCommits *int32
	TotalHours   *float64
	ConfigParams *string
}

// ContributorHoursRecord represents a row from the githours_contributor_hours table.
type ContributorHoursRecord struct {
	RunID       int64
	Contributor string
	RunTime     time.Time
	Hours       float64
	Commits     int32
	Sessions    int32
	FirstCommit time.Time
	LastCommit  time.Time
}
