package agg

import (
	"time"

	"github.com/huangsam/githours/schema"
)

// Run computes a full report from a normalized commit stream. It has no side
// effects, so the same stream always yields the same report.
func Run(records []schema.CommitRecord, threshold time.Duration) schema.HoursReport {
	seg := Segment(BuildTimelines(records), threshold)
	return schema.HoursReport{
		Threshold:    threshold,
		TotalCommits: len(records),
		TotalHours:   seg.Total.Hours(),
		Anomalies:    seg.Anomalies,
		Contributors: seg.Contributors,
		Active:       seg.Active,
		Commits:      seg.Entries,
		Buckets:      Bucketize(records),
	}
}
