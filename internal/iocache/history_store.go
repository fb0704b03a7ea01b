package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// Table names for validation history.
const (
	runsTable     = "storecheck_validation_runs"
	findingsTable = "storecheck_findings"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tables when they are missing.
// The statements match migration version 1 so that later migrations apply cleanly.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{findingsTable, getCreateFindingsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for storecheck_validation_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				source VARCHAR(1024) NOT NULL,
				extension_name TEXT,
				extension_version TEXT,
				digest CHAR(64) NOT NULL,
				score INT,
				critical_count INT,
				error_count INT,
				warning_count INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				source TEXT NOT NULL,
				extension_name TEXT,
				extension_version TEXT,
				digest TEXT NOT NULL,
				score INT,
				critical_count INT,
				error_count INT,
				warning_count INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				source TEXT NOT NULL,
				extension_name TEXT,
				extension_version TEXT,
				digest TEXT NOT NULL,
				score INTEGER,
				critical_count INTEGER,
				error_count INTEGER,
				warning_count INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateFindingsQuery returns the CREATE TABLE query for storecheck_findings.
func getCreateFindingsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(findingsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ordinal INT NOT NULL,
				category VARCHAR(32) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				severity VARCHAR(16) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL,
				requirement TEXT NOT NULL,
				suggestion TEXT,
				PRIMARY KEY (run_id, ordinal)
			);
		`, quotedTableName)

	default: // SQLite and PostgreSQL
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ordinal INTEGER NOT NULL,
				category TEXT NOT NULL,
				kind TEXT NOT NULL,
				severity TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				requirement TEXT NOT NULL,
				suggestion TEXT,
				PRIMARY KEY (run_id, ordinal)
			);
		`, quotedTableName)
	}
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// BeginRun creates a new validation run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(meta schema.RunMetadata) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(meta.ConfigParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	args := []any{
		formatTime(meta.StartTime, hs.backend),
		meta.Source,
		nullableString(meta.Extension),
		nullableString(meta.Version),
		meta.Digest,
		string(configJSON),
	}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, extension_name, extension_version, digest, config_params)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, extension_name, extension_version, digest, config_params)
			VALUES (?, ?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert validation run: %w", err)
	}
	return runID, nil
}

// RecordFindings stores the findings of a run in one transaction, keeping report order.
func (hs *HistoryStoreImpl) RecordFindings(runID int64, findings []schema.Finding) error {
	if hs.backend == schema.NoneBackend || hs.db == nil || len(findings) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(hs.backend, fmt.Sprintf(`INSERT INTO %s (run_id, ordinal, category, kind, severity, title, message, requirement, suggestion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(findingsTable, hs.backend)))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range findings {
		if _, err := stmt.Exec(runID, i, string(f.Category), string(f.Kind), string(f.Severity),
			f.Title, f.Message, f.Requirement, nullableString(f.Suggestion)); err != nil {
			return fmt.Errorf("failed to insert finding %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// EndRun updates the run with its duration, score and summary counts.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, report schema.Report) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)

	var rawStart any
	query := rebind(hs.backend, fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName))
	if err := hs.db.QueryRow(query, runID).Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := parseTime(rawStart)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	summary := schema.Summarize(report)
	updateQuery := rebind(hs.backend, fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, score = ?,
		critical_count = ?, error_count = ?, warning_count = ? WHERE run_id = ?`, quotedTableName))
	_, err = hs.db.Exec(updateQuery,
		formatTime(endTime, hs.backend),
		endTime.Sub(startTime).Milliseconds(),
		report.Score,
		summary.Critical,
		summary.Errors,
		summary.Warnings,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update validation run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var rawLast any
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &rawLast); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := parseTime(rawLast)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		var rawOldest any
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(oldestRunQuery).Scan(&rawOldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestRunTime, err := parseTime(rawOldest)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	for _, table := range []string{runsTable, findingsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFindings = int(status.TableSizes[findingsTable])

	return status, nil
}

// GetAllRuns retrieves all validation runs from the store, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, source, extension_name, extension_version,
		digest, score, critical_count, error_count, warning_count, config_params FROM %s ORDER BY run_id`,
		quoteTableName(runsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var rawStart, rawEnd any
		if err := rows.Scan(&record.RunID, &rawStart, &rawEnd, &record.RunDurationMs, &record.Source,
			&record.Extension, &record.Version, &record.Digest, &record.Score, &record.CriticalCount,
			&record.ErrorCount, &record.WarningCount, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan validation run: %w", err)
		}

		if record.StartTime, err = parseTime(rawStart); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if rawEnd != nil {
			endTime, err := parseTime(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation runs: %w", err)
	}
	return results, nil
}

// GetAllFindings retrieves all recorded findings ordered by run and ordinal.
func (hs *HistoryStoreImpl) GetAllFindings() ([]schema.FindingRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, ordinal, category, kind, severity, title, message, requirement, suggestion
		FROM %s ORDER BY run_id, ordinal`, quoteTableName(findingsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FindingRecord
	for rows.Next() {
		var record schema.FindingRecord
		if err := rows.Scan(&record.RunID, &record.Ordinal, &record.Category, &record.Kind, &record.Severity,
			&record.Title, &record.Message, &record.Requirement, &record.Suggestion); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}
	return results, nil
}
