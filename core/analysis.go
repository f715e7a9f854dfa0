package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/githours/core/agg"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/internal/githubapi"
	"github.com/huangsam/githours/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/huangsam/githours/core"

// NewProvider returns the commit provider selected by the config.
func NewProvider(cfg *contract.Config) (contract.CommitProvider, error) {
	switch cfg.Provider {
	case schema.GitHubProvider:
		return githubapi.NewProvider(cfg.GitHub, cfg.Window())
	case schema.LocalProvider, "":
		return contract.NewLocalGitClient(cfg.Window()), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// GetReport computes the hours report for the configured repositories.
func GetReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.HoursReport, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return schema.HoursReport{}, err
	}
	return runAnalysis(ctx, cfg, provider, mgr)
}

// runAnalysis performs retrieval, aggregation and run tracking.
// Retrieval errors abort before a run is recorded.
func runAnalysis(ctx context.Context, cfg *contract.Config, provider contract.CommitProvider, mgr contract.CacheManager) (schema.HoursReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "core.runAnalysis")
	defer span.End()

	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg)
	}

	started := time.Now()

	// --- 1. Retrieval (with caching) ---
	if store := mgr.GetCommitStore(); store != nil {
		provider = agg.NewCachedProvider(provider, store, cfg.Window())
	}
	records, err := agg.Combine(ctx, provider, cfg.Repos, agg.CombineOptions{
		Branches: cfg.Branches,
		Location: cfg.Location,
		IsMerge:  agg.MergePredicateFor(cfg.MergeDetection),
		Workers:  cfg.Workers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return schema.HoursReport{}, err
	}

	// --- 2. Begin run tracking (if configured) ---
	// A run is only opened once retrieval succeeded, so no run is left without an end.
	analysisStore := mgr.GetAnalysisStore()
	if analysisStore != nil {
		runID, err := analysisStore.BeginRun(started, runConfigParams(cfg))
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 3. Aggregation ---
	report := agg.Run(records, cfg.Threshold)
	span.SetAttributes(
		attribute.Int("commits", report.TotalCommits),
		attribute.Int("contributors", len(report.Contributors)),
		attribute.Float64("hours", report.TotalHours))
	if report.Anomalies > 0 {
		contract.Logger().Info("skipped out-of-order commit gaps", zap.Int("count", report.Anomalies))
	}

	// --- 4. End run tracking ---
	if runID, ok := getRunID(ctx); ok && analysisStore != nil {
		recordRun(analysisStore, runID, report)
	}
	return report, nil
}

// recordRun stores the contributor rows and closes the run. Failures are
// warnings since the report itself is already complete.
func recordRun(store contract.AnalysisStore, runID int64, report schema.HoursReport) {
	for _, row := range report.Contributors {
		if err := store.RecordContributorHours(runID, row); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record hours for %s", row.Contributor), err)
		}
	}
	if err := store.EndRun(runID, time.Now(), report.TotalCommits, report.TotalHours); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// runConfigParams is the config snapshot stored with a tracked run.
func runConfigParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"repos":           cfg.Repos,
		"branches":        cfg.Branches,
		"provider":        string(cfg.Provider),
		"threshold":       cfg.Threshold.String(),
		"merge_detection": string(cfg.MergeDetection),
		"workers":         cfg.Workers,
	}
	if cfg.Location != nil {
		params["timezone"] = cfg.Location.String()
	}
	if !cfg.StartTime.IsZero() {
		params["start"] = cfg.StartTime.Format(contract.DateTimeFormat)
	}
	if !cfg.EndTime.IsZero() {
		params["end"] = cfg.EndTime.Format(contract.DateTimeFormat)
	}
	return params
}

// logRunHeader prints a one-line summary of the run to stderr.
func logRunHeader(cfg *contract.Config) {
	window := "all history"
	if !cfg.StartTime.IsZero() || !cfg.EndTime.IsZero() {
		window = fmt.Sprintf("%s to %s", formatBound(cfg.StartTime, "beginning"), formatBound(cfg.EndTime, "now"))
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Repos: %s | Threshold: %v | Window: %s\n",
		strings.Join(cfg.Repos, ", "), cfg.Threshold, window)
}

func formatBound(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.Format(contract.DateTimeFormat)
}
