// Package schema has the models and enums shared by all parts of githours.
package schema

import (
	"maps"
	"time"
)

// RawCommit is the commit shape a provider hands back before normalization.
// Parents and Branches are optional; providers fill them when they can.
type RawCommit struct {
	ID          string   `json:"id"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
	CommittedAt int64    `json:"committed_at"` // Epoch seconds
	Message     string   `json:"message"`
	Parents     []string `json:"parents,omitempty"`
	Branches    []string `json:"branches,omitempty"`
}

// CommitRecord is a normalized commit. Author is the aggregation key and is
// matched exactly, so "Alice" and "alice" are two contributors.
type CommitRecord struct {
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	ID        string    `json:"id"`
	Repo      string    `json:"repo,omitempty"`     // Repository handle the commit came from
	Branches  []string  `json:"branches,omitempty"` // Every requested branch containing the commit
	Branch    string    `json:"branch,omitempty"`   // First requested branch containing the commit
}

// ContributorTimeline holds one contributor's commits in non-decreasing
// timestamp order. Equal timestamps keep their original stream order.
type ContributorTimeline struct {
	Contributor string
	Commits     []CommitRecord
}

// ActiveWorkTime maps contributor to hours of estimated active work.
type ActiveWorkTime map[string]float64

// Clone returns an independent copy.
func (a ActiveWorkTime) Clone() ActiveWorkTime {
	out := make(ActiveWorkTime, len(a))
	maps.Copy(out, a)
	return out
}

// CommitTimeEntry is the time credited to a single commit: the gap between it
// and the same contributor's next commit, when that gap counted as work.
type CommitTimeEntry struct {
	Contributor string    `json:"contributor" yaml:"contributor"`
	Hours       float64   `json:"hours" yaml:"hours"`
	Message     string    `json:"message" yaml:"message"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	ID          string    `json:"id" yaml:"id"`
}

// PeriodBuckets partitions commits by calendar period. Week keys look like
// "2025-W1", month keys like "2024-M3" and year keys like "2024".
type PeriodBuckets struct {
	Weeks  map[string][]CommitRecord `json:"weeks"`
	Months map[string][]CommitRecord `json:"months"`
	Years  map[string][]CommitRecord `json:"years"`
}

// ContributorHours is the per-contributor summary row.
type ContributorHours struct {
	Contributor string    `json:"contributor" yaml:"contributor"`
	Hours       float64   `json:"hours" yaml:"hours"`
	Commits     int       `json:"commits" yaml:"commits"`
	Sessions    int       `json:"sessions" yaml:"sessions"`
	FirstCommit time.Time `json:"first_commit" yaml:"first_commit"`
	LastCommit  time.Time `json:"last_commit" yaml:"last_commit"`
}

// PeriodSummary counts the commits and distinct contributors in one bucket.
type PeriodSummary struct {
	Key          string `json:"key" yaml:"key"`
	Commits      int    `json:"commits" yaml:"commits"`
	Contributors int    `json:"contributors" yaml:"contributors"`
}

// HoursReport is everything a single run produces.
type HoursReport struct {
	Threshold    time.Duration      `json:"-" yaml:"-"`
	TotalCommits int                `json:"total_commits" yaml:"total_commits"`
	TotalHours   float64            `json:"total_hours" yaml:"total_hours"`
	Anomalies    int                `json:"anomalies" yaml:"anomalies"` // Negative gaps that were skipped
	Contributors []ContributorHours `json:"contributors" yaml:"contributors"`
	Active       ActiveWorkTime     `json:"-" yaml:"-"`
	Commits      []CommitTimeEntry  `json:"commits" yaml:"commits"`
	Buckets      PeriodBuckets      `json:"-" yaml:"-"`
}
