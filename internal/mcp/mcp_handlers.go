package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/core/agg"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.CacheManager
	resolver contract.RepoResolver
}

// configFor applies the per-call arguments to a copy of the base config.
func (h *toolHandler) configFor(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if repos := contract.SplitList(request.GetString("repos", "")); len(repos) > 0 {
		if err := contract.RevalidateRepos(ctx, cfg, h.resolver, repos); err != nil {
			return nil, err
		}
	}
	if branches := request.GetString("branches", ""); branches != "" {
		cfg.Branches = contract.SplitList(branches)
	}
	if err := contract.RevalidateTimeSettings(cfg,
		request.GetString("threshold", ""),
		request.GetString("start", ""),
		request.GetString("end", "")); err != nil {
		return nil, err
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	return cfg, nil
}

func (h *toolHandler) handleGetContributorHours(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	rows := schema.RankContributors(report.Contributors)
	if len(rows) > cfg.ResultLimit {
		rows = rows[:cfg.ResultLimit]
	}
	return jsonResult(map[string]any{
		"threshold":     cfg.Threshold.String(),
		"total_commits": report.TotalCommits,
		"total_hours":   report.TotalHours,
		"anomalies":     report.Anomalies,
		"contributors":  rows,
	})
}

func (h *toolHandler) handleGetCommitTimes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	rows := schema.RankCommits(report.Commits)
	if len(rows) > cfg.ResultLimit {
		rows = rows[:cfg.ResultLimit]
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleGetPeriodBuckets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(ctx, request)
	if err == nil {
		err = contract.RevalidateGranularity(cfg, request.GetString("granularity", ""))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"granularity": cfg.Granularity,
		"periods":     agg.SummarizePeriods(report.Buckets, cfg.Granularity),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
