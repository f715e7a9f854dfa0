// Package outwriter renders githours results as tables, CSV, JSON, YAML or Parquet.
package outwriter

import (
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteHours prints the per-contributor hours of a report.
func (ow *OutWriter) WriteHours(report schema.HoursReport, cfg *contract.Config, duration time.Duration) error {
	return WriteHoursResults(report, cfg, duration)
}

// WriteCommits prints the commit-level attribution of a report.
func (ow *OutWriter) WriteCommits(report schema.HoursReport, cfg *contract.Config, duration time.Duration) error {
	return WriteCommitResults(report, cfg, duration)
}

// WritePeriods prints the period summaries at the configured granularity.
func (ow *OutWriter) WritePeriods(periods []schema.PeriodSummary, cfg *contract.Config, duration time.Duration) error {
	return WritePeriodResults(periods, cfg, duration)
}

// WriteReport prints hours, commits and periods together.
func (ow *OutWriter) WriteReport(report schema.HoursReport, periods []schema.PeriodSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteFullReport(report, periods, cfg, duration)
}
