package cmd

import (
	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/internal/contract"
	"github.com/spf13/cobra"
)

// periodsCmd counts commits per calendar period.
var periodsCmd = &cobra.Command{
	Use:   "periods [repo...]",
	Short: "Show commit and contributor counts per week, month or year.",
	Long: `Bucket commits by calendar period in the configured --timezone.

Weeks follow ISO 8601 and are keyed like 2025-W1, months like 2024-M3 and
years like 2024.

Examples:
  # Weekly activity
  githours periods

  # Monthly activity in a specific time zone
  githours periods --granularity month --timezone Europe/Berlin`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePeriods(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run periods analysis", err)
		}
	},
}
