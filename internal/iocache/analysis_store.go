package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
)

// Table names for run tracking.
const (
	runsTable             = "githours_runs"
	contributorHoursTable = "githours_contributor_hours"
)

// AnalysisStoreImpl records each run and the per-contributor hours it produced.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore opens the run tracking store. The none backend returns a
// store that records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend, now: time.Now}, nil
	}
	if _, ok := schema.ValidAnalysisBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported analysis backend: %s", backend)
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend, now: time.Now}, nil
}

// createAnalysisTables creates the run tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{contributorHoursTable, getCreateContributorHoursQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for githours_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_key CHAR(36) NOT NULL UNIQUE,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_commits INT,
				total_hours DOUBLE,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_key UUID NOT NULL UNIQUE,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_commits INT,
				total_hours DOUBLE PRECISION,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_key TEXT NOT NULL UNIQUE,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_commits INTEGER,
				total_hours REAL,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateContributorHoursQuery returns the CREATE TABLE query for githours_contributor_hours.
func getCreateContributorHoursQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(contributorHoursTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				contributor VARCHAR(255) NOT NULL,
				run_time DATETIME(6) NOT NULL,
				hours DOUBLE NOT NULL,
				commits INT NOT NULL,
				sessions INT NOT NULL,
				first_commit DATETIME(6) NOT NULL,
				last_commit DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, contributor)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				contributor TEXT NOT NULL,
				run_time TIMESTAMPTZ NOT NULL,
				hours DOUBLE PRECISION NOT NULL,
				commits INT NOT NULL,
				sessions INT NOT NULL,
				first_commit TIMESTAMPTZ NOT NULL,
				last_commit TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, contributor)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				contributor TEXT NOT NULL,
				run_time TEXT NOT NULL,
				hours REAL NOT NULL,
				commits INTEGER NOT NULL,
				sessions INTEGER NOT NULL,
				first_commit TEXT NOT NULL,
				last_commit TEXT NOT NULL,
				PRIMARY KEY (run_id, contributor)
			);
		`, quoted)
	}
}

// BeginRun creates a new run and returns its ID. The none backend returns 0.
func (as *AnalysisStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, as.backend)
	runKey := uuid.NewString()
	ph := strings.Join(placeholders(as.backend, 3), ", ")

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_key, start_time, config_params) VALUES (%s) RETURNING run_id`, quoted, ph)
		err = as.db.QueryRow(query, runKey, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_key, start_time, config_params) VALUES (%s)`, quoted, ph)
		var result sql.Result
		result, err = as.db.Exec(query, runKey, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun stores the completion time, duration and totals of a run.
func (as *AnalysisStoreImpl) EndRun(runID int64, endTime time.Time, totalCommits int, totalHours float64) error {
	if as.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, as.backend)
	ph := placeholders(as.backend, 5)

	started := timeScanner{backend: as.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, ph[0])
	if err := as.db.QueryRow(query, runID).Scan(started.target()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := started.value()
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_commits = %s, total_hours = %s WHERE run_id = %s`,
		quoted, ph[0], ph[1], ph[2], ph[3], ph[4])
	durationMs := endTime.Sub(startTime).Milliseconds()
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalCommits, totalHours, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordContributorHours stores one contributor summary row for a run.
func (as *AnalysisStoreImpl) RecordContributorHours(runID int64, row schema.ContributorHours) error {
	if as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, contributor, run_time, hours, commits, sessions, first_commit, last_commit)
		VALUES (%s)
	`, quoteTableName(contributorHoursTable, as.backend), strings.Join(placeholders(as.backend, 8), ", "))

	_, err := as.db.Exec(query,
		runID, row.Contributor, formatTime(as.now(), as.backend),
		row.Hours, row.Commits, row.Sessions,
		formatTime(row.FirstCommit, as.backend), formatTime(row.LastCommit, as.backend))
	if err != nil {
		return fmt.Errorf("failed to insert contributor hours for %q: %w", row.Contributor, err)
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: as.backend}
		row := as.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastTime

		oldest := timeScanner{backend: as.backend}
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
		status.OldestRunTime = oldestTime

		query := fmt.Sprintf("SELECT COUNT(DISTINCT contributor) FROM %s", quoteTableName(contributorHoursTable, as.backend))
		if err := as.db.QueryRow(query).Scan(&status.TotalContributors); err != nil {
			return status, fmt.Errorf("failed to get total contributors: %w", err)
		}
	}

	for _, table := range []string{runsTable, contributorHoursTable} {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves every tracked run ordered by ID.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_key, start_time, end_time, run_duration_ms, total_commits, total_hours, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: as.backend}
		end := nullTimeScanner{backend: as.backend}
		if err := rows.Scan(&record.RunID, &record.RunKey, start.target(), end.target(),
			&record.RunDuration, &record.TotalCommits, &record.TotalHours, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.StartTime, err = start.value(); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllContributorHours retrieves every stored contributor row ordered by
// run then contributor.
func (as *AnalysisStoreImpl) GetAllContributorHours() ([]schema.ContributorHoursRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, contributor, run_time, hours, commits, sessions, first_commit, last_commit
		FROM %s ORDER BY run_id, contributor`, quoteTableName(contributorHoursTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributor hours: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ContributorHoursRecord
	for rows.Next() {
		var record schema.ContributorHoursRecord
		runTime := timeScanner{backend: as.backend}
		first := timeScanner{backend: as.backend}
		last := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.RunID, &record.Contributor, runTime.target(), &record.Hours,
			&record.Commits, &record.Sessions, first.target(), last.target()); err != nil {
			return nil, fmt.Errorf("failed to scan contributor hours: %w", err)
		}
		if record.RunTime, err = runTime.value(); err != nil {
			return nil, fmt.Errorf("failed to parse run_time: %w", err)
		}
		if record.FirstCommit, err = first.value(); err != nil {
			return nil, fmt.Errorf("failed to parse first_commit: %w", err)
		}
		if record.LastCommit, err = last.value(); err != nil {
			return nil, fmt.Errorf("failed to parse last_commit: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributor hours: %w", err)
	}
	return results, nil
}

// Clear deletes every tracked run and contributor row.
func (as *AnalysisStoreImpl) Clear() error {
	if as.db == nil {
		return nil
	}
	for _, table := range []string{contributorHoursTable, runsTable} {
		if _, err := as.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(table, as.backend))); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}
