package contract

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/githours/schema"
)

// Default values for configuration.
const (
	DefaultThreshold       = "4h"
	DefaultResultLimit     = 25
	MaxResultLimit         = 1000
	DefaultPrecision       = 2
	DefaultGitHubRateLimit = 10.0 // Requests per second
	DefaultListenAddr      = ":9185"
	DefaultRefresh         = "15m"
)

// DefaultWorkers is the default number of concurrent repository fetches.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// GitHubConfig holds settings for the GitHub commit provider.
type GitHubConfig struct {
	Token          string // Please use env var as this is plaintext
	APIURL         string // Empty means api.github.com
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	RateLimit      float64
}

// UsesApp reports whether GitHub App installation auth is configured.
func (g GitHubConfig) UsesApp() bool {
	return g.AppID > 0 && g.InstallationID > 0 && g.PrivateKeyPath != ""
}

// Config holds the runtime configuration for a run.
// This struct is the "final, validated" config.
type Config struct {
	Repos          []string // Resolved repository handles, in input order
	Branches       []string // Empty means all branches
	Provider       schema.ProviderKind
	Threshold      time.Duration
	Location       *time.Location
	MergeDetection schema.MergeDetection
	StartTime      time.Time // Zero means unbounded
	EndTime        time.Time // Zero means unbounded
	StartInput     string    // Raw start bound, kept so relative bounds can be re-resolved
	EndInput       string    // Raw end bound

	ResultLimit int
	Granularity schema.Granularity
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Workers     int
	UseColors   bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	GitHub GitHubConfig

	LogLevel   string
	Trace      bool
	ListenAddr string
	Refresh    time.Duration
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Threshold         string `mapstructure:"threshold"`
	Branches          string `mapstructure:"branches"`
	Provider          string `mapstructure:"provider"`
	Timezone          string `mapstructure:"timezone"`
	MergeDetection    string `mapstructure:"merge-detection"`
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Limit             int    `mapstructure:"limit"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Workers           int    `mapstructure:"workers"`
	Color             string `mapstructure:"color"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	LogLevel          string `mapstructure:"log-level"`
	Trace             bool   `mapstructure:"trace"`

	// --- GitHub provider ---
	GitHubToken          string  `mapstructure:"github-token"`
	GitHubAPIURL         string  `mapstructure:"github-api-url"`
	GitHubAppID          int64   `mapstructure:"github-app-id"`
	GitHubInstallationID int64   `mapstructure:"github-installation-id"`
	GitHubPrivateKey     string  `mapstructure:"github-private-key"`
	GitHubRateLimit      float64 `mapstructure:"github-rate-limit"`

	// --- Fields from periodsCmd.Flags() ---
	Granularity string `mapstructure:"granularity"`

	// --- Fields from serveCmd.Flags() ---
	Listen  string `mapstructure:"listen"`
	Refresh string `mapstructure:"refresh"`
}

// RepoResolver turns a local path into the root of its repository.
type RepoResolver interface {
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Repos = slices.Clone(c.Repos)
	clone.Branches = slices.Clone(c.Branches)
	return &clone
}

// ResolveWindow re-parses the raw window bounds against now. Bounds without a
// raw input keep their current value.
func (c *Config) ResolveWindow(now time.Time) error {
	var err error
	if c.StartInput != "" {
		if c.StartTime, err = ParseTimePoint(c.StartInput, now); err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
	}
	if c.EndInput != "" {
		if c.EndTime, err = ParseTimePoint(c.EndInput, now); err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
	}
	if !c.StartTime.IsZero() && !c.EndTime.IsZero() && c.StartTime.After(c.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", c.StartTime.Format(DateTimeFormat), c.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// Window returns the provider time window for this config.
func (c *Config) Window() Window {
	return Window{Since: c.StartTime, Until: c.EndTime}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, resolver RepoResolver, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeSettings(cfg, input); err != nil {
		return err
	}
	if err := processGitHubConfig(cfg, input); err != nil {
		return err
	}
	if err := resolveRepos(ctx, cfg, resolver, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the networked backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// Cache and analysis must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-time, non-path fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel
	cfg.Trace = input.Trace
	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	cfg.Branches = SplitList(input.Branches)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Provider = schema.ProviderKind(strings.ToLower(input.Provider))
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be local, github", input.Provider)
	}

	cfg.MergeDetection = schema.MergeDetection(strings.ToLower(input.MergeDetection))
	if _, ok := schema.ValidMergeDetections[cfg.MergeDetection]; !ok {
		return fmt.Errorf("invalid merge detection '%s'. must be prefix, parents", input.MergeDetection)
	}

	cfg.Granularity = schema.Granularity(strings.ToLower(input.Granularity))
	if cfg.Granularity == "" {
		cfg.Granularity = schema.WeekGranularity
	}
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("invalid granularity '%s'. must be week, month, year", input.Granularity)
	}

	return validateBackendConfigs(cfg, input)
}

// processTimeSettings handles threshold, time zone, refresh and the optional window.
func processTimeSettings(cfg *Config, input *ConfigRawInput) error {
	threshold, err := ParseDuration(input.Threshold)
	if err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}
	cfg.Threshold = threshold

	loc, err := LoadLocation(input.Timezone)
	if err != nil {
		return err
	}
	cfg.Location = loc

	refreshStr := input.Refresh
	if refreshStr == "" {
		refreshStr = DefaultRefresh
	}
	refresh, err := ParseDuration(refreshStr)
	if err != nil {
		return fmt.Errorf("invalid refresh: %w", err)
	}
	cfg.Refresh = refresh

	cfg.StartInput = strings.TrimSpace(input.Start)
	cfg.EndInput = strings.TrimSpace(input.End)
	return cfg.ResolveWindow(time.Now())
}

// processGitHubConfig copies provider settings and checks the auth combination.
func processGitHubConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.GitHub = GitHubConfig{
		Token:          input.GitHubToken,
		APIURL:         strings.TrimSpace(input.GitHubAPIURL),
		AppID:          input.GitHubAppID,
		InstallationID: input.GitHubInstallationID,
		PrivateKeyPath: input.GitHubPrivateKey,
		RateLimit:      input.GitHubRateLimit,
	}
	if cfg.GitHub.RateLimit <= 0 {
		cfg.GitHub.RateLimit = DefaultGitHubRateLimit
	}
	if cfg.Provider != schema.GitHubProvider {
		return nil
	}
	partialApp := cfg.GitHub.AppID > 0 || cfg.GitHub.InstallationID > 0 || cfg.GitHub.PrivateKeyPath != ""
	if partialApp && !cfg.GitHub.UsesApp() {
		return fmt.Errorf("github app auth needs github-app-id, github-installation-id and github-private-key together")
	}
	return nil
}

// resolveRepos validates every repository handle. Local paths are resolved
// to their repository root; GitHub handles must look like owner/name.
func resolveRepos(ctx context.Context, cfg *Config, resolver RepoResolver, input *ConfigRawInput) error {
	args := input.RepoArgs
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg.Repos = make([]string, 0, len(args))
	for _, arg := range args {
		if cfg.Provider == schema.GitHubProvider {
			owner, name, ok := strings.Cut(strings.Trim(arg, "/"), "/")
			if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
				return fmt.Errorf("%w: github repository must be owner/name, got %q", ErrNotARepository, arg)
			}
			cfg.Repos = append(cfg.Repos, owner+"/"+name)
			continue
		}

		absPath, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		root, err := resolver.GetRepoRoot(ctx, filepath.Clean(absPath))
		if err != nil {
			return err
		}
		cfg.Repos = append(cfg.Repos, root)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateRepos replaces the repositories of an already validated config,
// resolving them the same way ProcessAndValidate does.
func RevalidateRepos(ctx context.Context, cfg *Config, resolver RepoResolver, args []string) error {
	return resolveRepos(ctx, cfg, resolver, &ConfigRawInput{RepoArgs: args})
}

// RevalidateTimeSettings applies threshold and window overrides to an already
// validated config. Empty values leave the current setting alone.
func RevalidateTimeSettings(cfg *Config, threshold, start, end string) error {
	if threshold != "" {
		d, err := ParseDuration(threshold)
		if err != nil {
			return fmt.Errorf("invalid threshold: %w", err)
		}
		cfg.Threshold = d
	}

	if start != "" {
		cfg.StartInput = start
	}
	if end != "" {
		cfg.EndInput = end
	}
	return cfg.ResolveWindow(time.Now())
}

// RevalidateGranularity applies a period granularity override.
func RevalidateGranularity(cfg *Config, granularity string) error {
	if granularity == "" {
		return nil
	}
	g := schema.Granularity(strings.ToLower(granularity))
	if _, ok := schema.ValidGranularities[g]; !ok {
		return fmt.Errorf("invalid granularity '%s'. must be week, month, year", granularity)
	}
	cfg.Granularity = g
	return nil
}
