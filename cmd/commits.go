package cmd

import (
	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/internal/contract"
	"github.com/spf13/cobra"
)

// commitsCmd lists the commits credited with the most work time.
var commitsCmd = &cobra.Command{
	Use:   "commits [repo...]",
	Short: "Show the commits that account for the most active time.",
	Long: `Rank commits by the work time credited to them.

A commit is credited with the gap up to the same author's next commit when
that gap is within --threshold. The last commit of a session gets nothing.

Examples:
  # Top 10 most time-consuming commits
  githours commits --limit 10

  # As JSON for further processing
  githours commits --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCommits(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run commits analysis", err)
		}
	},
}
