package cmd

import (
	"github.com/huangsam/githours/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo...]",
	Short: "Start the githours MCP server",
	Long: `Launch an MCP server on stdio so AI agents can ask for work hour estimates.

Tools:
  get_contributor_hours - hours, commits and sessions per contributor
  get_commit_times      - commits credited with the most work time
  get_period_buckets    - commit and contributor counts per period

The repositories given here are the defaults; each tool call may override them.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
