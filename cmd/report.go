package cmd

import (
	"github.com/huangsam/githours/core"
	"github.com/huangsam/githours/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd prints hours, commits and periods together.
var reportCmd = &cobra.Command{
	Use:   "report [repo...]",
	Short: "Show hours, top commits and periods in one document.",
	Long: `Run a single analysis and print every view of it.

Text output prints the three tables one after another. JSON and YAML output
produce one document; CSV and Parquet are not supported here.

Examples:
  # Everything for the current repository
  githours report

  # A machine-readable snapshot
  githours report --output yaml --output-file report.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run report", err)
		}
	},
}
