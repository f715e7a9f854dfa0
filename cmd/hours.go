package cmd

import (
	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/internal/contract"
	"github.com/spf13/cobra"
)

// hoursCmd estimates active work hours per contributor.
var hoursCmd = &cobra.Command{
	Use:   "hours [repo...]",
	Short: "Show estimated active work hours per contributor.",
	Long: `Estimate how many hours each contributor actively worked.

Commits are grouped by author name and sorted by time. Every gap between two
consecutive commits that is no longer than --threshold counts as work; longer
gaps end a session and count for nothing. Merge commits are ignored.

Several repositories can be given at once. Their commits are combined before
the estimate, so one person working across repositories gets a single total.

Examples:
  # Hours for the current repository
  githours hours

  # Several repositories, a tighter session threshold
  githours hours ~/src/api ~/src/web --threshold 2h

  # Only the main branch over the last quarter
  githours hours --branches main --start "3 months ago"

  # A GitHub repository instead of a local clone
  GITHOURS_GITHUB_TOKEN=... githours hours --provider github acme/app

  # Export to CSV
  githours hours --output csv --output-file hours.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHours(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run hours analysis", err)
		}
	},
}
