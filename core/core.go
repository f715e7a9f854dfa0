// Package core wires providers, caching, aggregation and output together for
// each githours command.
package core

import (
	"context"
	"time"

	"github.com/huangsam/githours/core/agg"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/outwriter"
	"github.com/huangsam/githours/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteHours prints active work hours per contributor.
// It serves as the main entry point for the 'hours' command.
func ExecuteHours(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteHours(report, cfg, time.Since(start))
}

// ExecuteCommits prints the commits that account for the most active time.
// It serves as the main entry point for the 'commits' command.
func ExecuteCommits(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteCommits(report, cfg, time.Since(start))
}

// ExecutePeriods prints commit and contributor counts per period.
// It serves as the main entry point for the 'periods' command.
func ExecutePeriods(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	periods := agg.SummarizePeriods(report.Buckets, cfg.Granularity)
	return outwriter.NewOutWriter().WritePeriods(periods, cfg, time.Since(start))
}

// ExecuteReport prints hours, commits and periods in one document.
// It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := GetReport(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	periods := agg.SummarizePeriods(report.Buckets, cfg.Granularity)
	return outwriter.NewOutWriter().WriteReport(report, periods, cfg, time.Since(start))
}

// ReportSink receives the report of each refresh.
type ReportSink interface {
	Update(report schema.HoursReport, at time.Time, took time.Duration)
	RecordError()
}

// Refresh computes one report for a long-running process and hands it to
// sink. Relative window bounds are resolved against the current time, so the
// window slides between refreshes. Errors are counted on the sink and returned.
func Refresh(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, sink ReportSink) error {
	start := time.Now()
	runCfg := cfg.Clone()
	if err := runCfg.ResolveWindow(start); err != nil {
		sink.RecordError()
		return err
	}
	report, err := GetReport(WithSuppressHeader(ctx), runCfg, mgr)
	if err != nil {
		sink.RecordError()
		return err
	}
	sink.Update(report, time.Now(), time.Since(start))
	return nil
}

// RefreshLoop refreshes immediately and then on every interval until ctx is
// done. Failed refreshes are logged and the loop keeps going.
func RefreshLoop(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, sink ReportSink, interval time.Duration) {
	refresh := func() {
		if err := Refresh(ctx, cfg, mgr, sink); err != nil && ctx.Err() == nil {
			contract.LogWarn("Refresh failed", err)
		}
	}
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
