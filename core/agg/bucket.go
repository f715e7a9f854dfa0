package agg

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/githours/schema"
)

// WeekKey returns the ISO 8601 week key, e.g. "2025-W1".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

// MonthKey returns the calendar month key, e.g. "2024-M3".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-M%d", t.Year(), int(t.Month()))
}

// YearKey returns the calendar year key, e.g. "2024".
func YearKey(t time.Time) string {
	return strconv.Itoa(t.Year())
}

// Bucketize partitions records by ISO week, month and year. Each record
// lands in exactly one bucket per granularity and keeps its input order.
func Bucketize(records []schema.CommitRecord) schema.PeriodBuckets {
	b := schema.PeriodBuckets{
		Weeks:  make(map[string][]schema.CommitRecord),
		Months: make(map[string][]schema.CommitRecord),
		Years:  make(map[string][]schema.CommitRecord),
	}
	for _, r := range records {
		week, month, year := WeekKey(r.Timestamp), MonthKey(r.Timestamp), YearKey(r.Timestamp)
		b.Weeks[week] = append(b.Weeks[week], r)
		b.Months[month] = append(b.Months[month], r)
		b.Years[year] = append(b.Years[year], r)
	}
	return b
}

// SummarizePeriods counts commits and distinct contributors per bucket at
// one granularity, oldest period first.
func SummarizePeriods(b schema.PeriodBuckets, g schema.Granularity) []schema.PeriodSummary {
	buckets := b.Weeks
	switch g {
	case schema.MonthGranularity:
		buckets = b.Months
	case schema.YearGranularity:
		buckets = b.Years
	}

	type keyed struct {
		summary  schema.PeriodSummary
		earliest time.Time
	}
	rows := make([]keyed, 0, len(buckets))
	for key, records := range buckets {
		authors := make(map[string]struct{})
		var earliest time.Time
		for i, r := range records {
			authors[r.Author] = struct{}{}
			if i == 0 || r.Timestamp.Before(earliest) {
				earliest = r.Timestamp
			}
		}
		rows = append(rows, keyed{
			summary:  schema.PeriodSummary{Key: key, Commits: len(records), Contributors: len(authors)},
			earliest: earliest,
		})
	}
	// Periods are disjoint, so ordering by earliest commit orders by period
	slices.SortFunc(rows, func(a, b keyed) int {
		return a.earliest.Compare(b.earliest)
	})

	out := make([]schema.PeriodSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary
	}
	return out
}
