package agg

import (
	"slices"
	"strings"

	"github.com/huangsam/githours/schema"
)

// BuildTimelines groups records by author and orders each group by
// timestamp. The sort is stable, so commits sharing a timestamp stay in
// stream order. Timelines come back sorted by contributor name.
func BuildTimelines(records []schema.CommitRecord) []schema.ContributorTimeline {
	byAuthor := make(map[string][]schema.CommitRecord)
	for _, r := range records {
		byAuthor[r.Author] = append(byAuthor[r.Author], r)
	}

	timelines := make([]schema.ContributorTimeline, 0, len(byAuthor))
	for author, commits := range byAuthor {
		slices.SortStableFunc(commits, func(a, b schema.CommitRecord) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		timelines = append(timelines, schema.ContributorTimeline{Contributor: author, Commits: commits})
	}
	slices.SortFunc(timelines, func(a, b schema.ContributorTimeline) int {
		return strings.Compare(a.Contributor, b.Contributor)
	})
	return timelines
}
