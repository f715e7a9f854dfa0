package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// ProviderKind represents where commits are read from.
	ProviderKind string

	// MergeDetection represents how merge commits are recognized.
	MergeDetection string

	// Granularity represents a period bucket size.
	Granularity string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"  // default
)

// All commit providers supported.
const (
	LocalProvider  ProviderKind = "local" // default
	GitHubProvider ProviderKind = "github"
)

// All merge detection strategies supported.
const (
	PrefixMergeDetection MergeDetection = "prefix" // default
	ParentMergeDetection MergeDetection = "parents"
)

// All period granularities supported.
const (
	WeekGranularity  Granularity = "week" // default
	MonthGranularity Granularity = "month"
	YearGranularity  Granularity = "year"
)

// DefaultMergePrefix is the message prefix that marks a merge commit.
const DefaultMergePrefix = "Merge"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid analysis backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid commit providers.
var ValidProviders = map[ProviderKind]struct{}{
	LocalProvider:  {},
	GitHubProvider: {},
}

// ValidMergeDetections lists all valid merge detection strategies.
var ValidMergeDetections = map[MergeDetection]struct{}{
	PrefixMergeDetection: {},
	ParentMergeDetection: {},
}

// ValidGranularities lists all valid period granularities.
var ValidGranularities = map[Granularity]struct{}{
	WeekGranularity:  {},
	MonthGranularity: {},
	YearGranularity:  {},
}
