package agg

import (
	"time"

	"github.com/huangsam/githours/schema"
)

// day is the fixed date most fixtures use.
var day = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// at returns day plus the given clock time.
func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// rec builds a record for author at ts.
func rec(author string, ts time.Time, msg, id string) schema.CommitRecord {
	return schema.CommitRecord{Author: author, Email: author + "@example.com", Timestamp: ts, Message: msg, ID: id}
}

// raw builds a raw commit for author at ts.
func raw(author string, ts time.Time, msg, id string) schema.RawCommit {
	return schema.RawCommit{ID: id, AuthorName: author, AuthorEmail: author + "@example.com", CommittedAt: ts.Unix(), Message: msg}
}

// timeline wraps commits for a single contributor.
func timeline(author string, commits ...schema.CommitRecord) schema.ContributorTimeline {
	return schema.ContributorTimeline{Contributor: author, Commits: commits}
}
