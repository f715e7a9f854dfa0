package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
)

// commitTable is the name of the table (or Redis key prefix) for cached commit lists.
const commitTable = "commit_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// NewCommitStore opens the commit cache for any supported backend.
func NewCommitStore(backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if backend == schema.RedisBackend {
		store, err := NewRedisCacheStore(commitTable, connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewCacheStore(commitTable, backend, connStr)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// InitStores initializes the global manager. An empty backend leaves that
// store unset so callers skip it entirely.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var commitStore contract.CacheStore
		if cacheBackend != "" {
			store, err := NewCommitStore(cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize commit caching: %w", err)
				return
			}
			commitStore = store
		}

		var analysisStore contract.AnalysisStore
		if analysisBackend != "" {
			store, err := NewAnalysisStore(analysisBackend, analysisConnStr)
			if err != nil {
				if commitStore != nil {
					_ = commitStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
				return
			}
			analysisStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.commits = commitStore
		Manager.analysis = analysisStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.commits != nil {
			_ = Manager.commits.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache removes every cached commit list for the backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the table.
// For Redis, it deletes the indexed hashes.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend:
		return clearSQLTables("mysql", connStr, commitTable)
	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", connStr, commitTable)
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(commitTable, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearAnalysis removes all run tracking data for the backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the run tables.
func ClearAnalysis(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend:
		return clearSQLTables("mysql", connStr, contributorHoursTable, runsTable)
	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", connStr, contributorHoursTable, runsTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported analysis backend for clearing: %s", backend)
	}
}

// removeSQLiteFile deletes a SQLite database file; a missing file is fine.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(driverName, connStr string, tableNames ...string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, tableName := range tableNames {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", tableName, err)
		}
	}
	return nil
}
