// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/githours/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the githours MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"githours",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		mgr:      mgr,
		resolver: contract.NewLocalGitClient(contract.Window{}),
	}

	// --- 1. Tool: get_contributor_hours ---
	s.AddTool(mcp.NewTool("get_contributor_hours",
		append(windowOptions(),
			mcp.WithDescription("Estimate active work hours per contributor from commit history."),
			mcp.WithNumber("limit", mcp.Description("Limit the number of contributors returned.")),
		)...,
	), h.handleGetContributorHours)

	// --- 2. Tool: get_commit_times ---
	s.AddTool(mcp.NewTool("get_commit_times",
		append(windowOptions(),
			mcp.WithDescription("List the commits credited with the most active work time."),
			mcp.WithNumber("limit", mcp.Description("Limit the number of commits returned.")),
		)...,
	), h.handleGetCommitTimes)

	// --- 3. Tool: get_period_buckets ---
	s.AddTool(mcp.NewTool("get_period_buckets",
		append(windowOptions(),
			mcp.WithDescription("Count commits and contributors per calendar week, month or year."),
			mcp.WithString("granularity", mcp.Description("Bucket size. Defaults to 'week'."), mcp.Enum("week", "month", "year")),
		)...,
	), h.handleGetPeriodBuckets)

	return s
}

// windowOptions are the arguments every tool accepts.
func windowOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("repos", mcp.Description("Comma-separated repositories: local paths, or owner/name for the github provider. Defaults to the configured repositories.")),
		mcp.WithString("branches", mcp.Description("Comma-separated branches. Empty means all branches.")),
		mcp.WithString("threshold", mcp.Description("Largest gap between commits that counts as work (e.g., '4h', '90 minutes').")),
		mcp.WithString("start", mcp.Description("Only commits after this point (ISO8601 or 'N units ago').")),
		mcp.WithString("end", mcp.Description("Only commits before this point (ISO8601 or 'N units ago').")),
	}
}

// StartMCPServer starts the githours MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
