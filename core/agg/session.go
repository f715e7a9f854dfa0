package agg

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"go.uber.org/zap"
)

// DefaultThreshold is the idle gap above which a new session starts.
const DefaultThreshold = 4 * time.Hour

// walkStats summarizes one traversal of a timeline.
type walkStats struct {
	worked    time.Duration
	sessions  int
	anomalies int
}

// walkGaps visits each pair of consecutive commits. Gaps in [0, threshold]
// are work and are handed to onWork along with the earlier commit. Larger
// gaps and negative gaps end the current session and contribute nothing.
func walkGaps(commits []schema.CommitRecord, threshold time.Duration, onWork func(from schema.CommitRecord, delta time.Duration)) walkStats {
	var stats walkStats
	if len(commits) == 0 {
		return stats
	}
	stats.sessions = 1
	for i := 1; i < len(commits); i++ {
		prev, curr := commits[i-1], commits[i]
		delta := curr.Timestamp.Sub(prev.Timestamp)
		switch {
		case delta < 0:
			stats.anomalies++
			stats.sessions++
		case delta > threshold:
			stats.sessions++
		default:
			stats.worked += delta
			if onWork != nil {
				onWork(prev, delta)
			}
		}
	}
	return stats
}

// SegmentResult holds everything derived from one pass over the timelines.
type SegmentResult struct {
	Active       schema.ActiveWorkTime
	Entries      []schema.CommitTimeEntry // Hours descending, stable
	Contributors []schema.ContributorHours
	Total        time.Duration
	Anomalies    int
}

// Segment walks every timeline once and derives active work time, the time
// credited to each commit, and per-contributor summaries from the same set
// of qualifying gaps.
func Segment(timelines []schema.ContributorTimeline, threshold time.Duration) SegmentResult {
	res := SegmentResult{Active: make(schema.ActiveWorkTime, len(timelines))}

	for _, tl := range timelines {
		stats := walkGaps(tl.Commits, threshold, func(from schema.CommitRecord, delta time.Duration) {
			res.Entries = append(res.Entries, schema.CommitTimeEntry{
				Contributor: tl.Contributor,
				Hours:       delta.Hours(),
				Message:     from.Message,
				Timestamp:   from.Timestamp,
				ID:          from.ID,
			})
		})

		// Timelines are built per author, but callers may hand in several for
		// the same name, so accumulate rather than assign.
		res.Active[tl.Contributor] += stats.worked.Hours()
		res.Total += stats.worked
		res.Anomalies += stats.anomalies

		row := schema.ContributorHours{
			Contributor: tl.Contributor,
			Hours:       stats.worked.Hours(),
			Commits:     len(tl.Commits),
			Sessions:    stats.sessions,
		}
		if n := len(tl.Commits); n > 0 {
			row.FirstCommit = tl.Commits[0].Timestamp
			row.LastCommit = tl.Commits[n-1].Timestamp
		}
		res.Contributors = append(res.Contributors, row)

		if stats.anomalies > 0 {
			contract.Logger().Debug("skipped negative commit gaps",
				zap.String("contributor", tl.Contributor),
				zap.Int("count", stats.anomalies))
		}
	}

	// Equal hours keep timeline order: contributors by name first, then
	// chronological within each contributor. Ties are not globally chronological.
	slices.SortStableFunc(res.Entries, func(a, b schema.CommitTimeEntry) int {
		return cmp.Compare(b.Hours, a.Hours)
	})
	slices.SortStableFunc(res.Contributors, func(a, b schema.ContributorHours) int {
		if c := cmp.Compare(b.Hours, a.Hours); c != 0 {
			return c
		}
		return strings.Compare(a.Contributor, b.Contributor)
	})
	return res
}

// ActiveWork sums the qualifying gaps per contributor. A contributor with
// zero or one commit gets 0.
func ActiveWork(timelines []schema.ContributorTimeline, threshold time.Duration) schema.ActiveWorkTime {
	return Segment(timelines, threshold).Active
}

// TimeByCommit credits each qualifying gap to the earlier commit of the pair
// and returns the entries sorted by hours, largest first. Entries with equal
// hours keep contributor then chronological order.
func TimeByCommit(timelines []schema.ContributorTimeline, threshold time.Duration) []schema.CommitTimeEntry {
	return Segment(timelines, threshold).Entries
}
