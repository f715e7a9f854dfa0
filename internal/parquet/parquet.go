// Package parquet exports githours results and tracked runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/githours/schema"
	"github.com/parquet-go/parquet-go"
)

// Run maps to the githours_runs table.
type Run struct {
	RunID        int64      `parquet:"run_id,snappy"`
	RunKey       string     `parquet:"run_key,snappy"`
	StartTime    time.Time  `parquet:"start_time,snappy"`
	EndTime      *time.Time `parquet:"end_time,optional,snappy"`
	RunDuration  *int64     `parquet:"run_duration_ms,optional,snappy"`
	TotalCommits *int32     `parquet:"total_commits,optional,snappy"`
	TotalHours   *float64   `parquet:"total_hours,optional,snappy"`
	ConfigParams *string    `parquet:"config_params,optional,snappy"` // JSON encoded
}

// ContributorHours maps to the githours_contributor_hours table.
type ContributorHours struct {
	RunID       int64     `parquet:"run_id,snappy"`
	Contributor string    `parquet:"contributor,snappy,dict"`
	RunTime     time.Time `parquet:"run_time,snappy"`
	Hours       float64   `parquet:"hours,snappy"`
	Commits     int32     `parquet:"commits,snappy"`
	Sessions    int32     `parquet:"sessions,snappy"`
	FirstCommit time.Time `parquet:"first_commit,snappy"`
	LastCommit  time.Time `parquet:"last_commit,snappy"`
}

// Contributor is one row of the hours result.
type Contributor struct {
	Rank        int32     `parquet:"rank,snappy"`
	Contributor string    `parquet:"contributor,snappy"`
	Hours       float64   `parquet:"hours,snappy"`
	Commits     int32     `parquet:"commits,snappy"`
	Sessions    int32     `parquet:"sessions,snappy"`
	FirstCommit time.Time `parquet:"first_commit,snappy"`
	LastCommit  time.Time `parquet:"last_commit,snappy"`
}

// CommitEntry is one row of the commit-level result.
type CommitEntry struct {
	Rank        int32     `parquet:"rank,snappy"`
	ID          string    `parquet:"id,snappy"`
	Contributor string    `parquet:"contributor,snappy,dict"`
	Hours       float64   `parquet:"hours,snappy"`
	Timestamp   time.Time `parquet:"timestamp,snappy"`
	Message     string    `parquet:"message,snappy"`
}

// Period is one row of the period summary.
type Period struct {
	Key          string `parquet:"key,snappy"`
	Commits      int32  `parquet:"commits,snappy"`
	Contributors int32  `parquet:"contributors,snappy"`
}

// Write encodes rows to w. The schema is inferred from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush parquet footer: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertRunRecords converts stored runs for export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:        r.RunID,
			RunKey:       r.RunKey,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			RunDuration:  r.RunDuration,
			TotalCommits: r.TotalCommits,
			TotalHours:   r.TotalHours,
			ConfigParams: r.ConfigParams,
		}
	}
	return result
}

// ConvertContributorHoursRecords converts stored contributor rows for export.
func ConvertContributorHoursRecords(records []schema.ContributorHoursRecord) []ContributorHours {
	result := make([]ContributorHours, len(records))
	for i, r := range records {
		result[i] = ContributorHours(r)
	}
	return result
}

// ConvertContributors converts ranked hours results.
func ConvertContributors(rows []schema.RankedContributor) []Contributor {
	result := make([]Contributor, len(rows))
	for i, r := range rows {
		result[i] = Contributor{
			Rank:        int32(r.Rank),
			Contributor: r.Contributor,
			Hours:       r.Hours,
			Commits:     int32(r.Commits),
			Sessions:    int32(r.Sessions),
			FirstCommit: r.FirstCommit,
			LastCommit:  r.LastCommit,
		}
	}
	return result
}

// ConvertCommitEntries converts ranked commit-level results.
func ConvertCommitEntries(rows []schema.RankedCommit) []CommitEntry {
	result := make([]CommitEntry, len(rows))
	for i, r := range rows {
		result[i] = CommitEntry{
			Rank:        int32(r.Rank),
			ID:          r.ID,
			Contributor: r.Contributor,
			Hours:       r.Hours,
			Timestamp:   r.Timestamp,
			Message:     r.Message,
		}
	}
	return result
}

// ConvertPeriods converts period summaries.
func ConvertPeriods(rows []schema.PeriodSummary) []Period {
	result := make([]Period, len(rows))
	for i, r := range rows {
		result[i] = Period{Key: r.Key, Commits: int32(r.Commits), Contributors: int32(r.Contributors)}
	}
	return result
}
