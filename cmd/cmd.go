// Package cmd defines the command-line interface for githours.
package cmd

import (
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(hoursCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("threshold", contract.DefaultThreshold, "Largest gap between two commits that still counts as work (e.g. 4h, 90 minutes)")
	flags.String("branches", "", "Comma-separated branches to read (default: all branches)")
	flags.String("provider", string(schema.LocalProvider), "Commit source: local or github")
	flags.String("timezone", "Local", "Time zone used for period buckets (IANA name, Local or UTC)")
	flags.String("merge-detection", string(schema.PrefixMergeDetection), "Merge commit detection: prefix or parents")
	flags.String("start", "", "Start date in ISO8601 or time ago")
	flags.String("end", "", "End date in ISO8601 or time ago")
	flags.IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for hours")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.Int("workers", contract.DefaultWorkers, "Number of repositories fetched concurrently")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.NoneBackend), "Commit cache backend: sqlite or mysql or postgresql or redis or none")
	flags.String("cache-db-connect", "", "Connection string for the cache backend (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("analysis-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	flags.String("analysis-db-connect", "", "Connection string for run tracking (must differ from cache-db-connect)")
	flags.String("github-token", "", "GitHub token for the github provider (prefer GITHOURS_GITHUB_TOKEN)")
	flags.String("github-api-url", "", "GitHub API base URL for GitHub Enterprise")
	flags.Int64("github-app-id", 0, "GitHub App ID for installation auth")
	flags.Int64("github-installation-id", 0, "GitHub App installation ID")
	flags.String("github-private-key", "", "Path to the GitHub App private key")
	flags.Float64("github-rate-limit", contract.DefaultGitHubRateLimit, "Maximum GitHub API requests per second")
	flags.String("log-level", "off", "Diagnostic log level: off, debug, info, warn or error")
	flags.Bool("trace", false, "Log OpenTelemetry spans for each run")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of periodsCmd and reportCmd to Viper
	periodsCmd.Flags().String("granularity", string(schema.WeekGranularity), "Period size: week or month or year")
	reportCmd.Flags().AddFlag(periodsCmd.Flags().Lookup("granularity"))
	if err := viper.BindPFlags(periodsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding periods flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address for the metrics HTTP server")
	serveCmd.Flags().String("refresh", contract.DefaultRefresh, "How often the report is recomputed")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
