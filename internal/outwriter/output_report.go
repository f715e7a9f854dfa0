package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
)

// FullReport is the JSON and YAML document of the report command.
type FullReport struct {
	Threshold    string                     `json:"threshold" yaml:"threshold"`
	Granularity  schema.Granularity         `json:"granularity" yaml:"granularity"`
	TotalCommits int                        `json:"total_commits" yaml:"total_commits"`
	TotalHours   float64                    `json:"total_hours" yaml:"total_hours"`
	Anomalies    int                        `json:"anomalies" yaml:"anomalies"`
	Contributors []schema.RankedContributor `json:"contributors" yaml:"contributors"`
	Commits      []schema.RankedCommit      `json:"commits" yaml:"commits"`
	Periods      []schema.PeriodSummary     `json:"periods" yaml:"periods"`
}

// NewFullReport assembles the report document. Commits are cut to the result
// limit while contributors and periods are kept whole.
func NewFullReport(report schema.HoursReport, periods []schema.PeriodSummary, cfg *contract.Config) FullReport {
	if periods == nil {
		periods = []schema.PeriodSummary{}
	}
	return FullReport{
		Threshold:    report.Threshold.String(),
		Granularity:  cfg.Granularity,
		TotalCommits: report.TotalCommits,
		TotalHours:   report.TotalHours,
		Anomalies:    report.Anomalies,
		Contributors: schema.RankContributors(report.Contributors),
		Commits:      limitRows(schema.RankCommits(report.Commits), cfg.ResultLimit),
		Periods:      periods,
	}
}

// WriteFullReport outputs hours, commits and periods together.
// Text prints the three tables in sequence; CSV and Parquet are not supported.
func WriteFullReport(report schema.HoursReport, periods []schema.PeriodSummary, cfg *contract.Config, duration time.Duration) error {
	doc := NewFullReport(report, periods, cfg)
	fmtFloat, fmtInt := createFormatters(cfg.Precision)

	return writeResults(cfg, "report", resultWriters{
		text: func(w io.Writer) error {
			if err := writeHoursTable(w, report, doc.Contributors, cfg, fmtFloat, fmtInt); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w)
			if err := writeCommitsTable(w, report, doc.Commits, cfg, fmtFloat, fmtInt); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w)
			if err := writePeriodsTable(w, doc.Periods, cfg, fmtInt); err != nil {
				return err
			}
			writeFooter(w, cfg, duration)
			return nil
		},
		data: doc,
	})
}
