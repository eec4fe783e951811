package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tabular-hq/verdict/pkg/execution"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/executions.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements execution.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "execution.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, execution.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite execution storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return execution.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return execution.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return execution.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return execution.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return execution.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return execution.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists one execution record.
func (s *SQLiteStorage) Append(ctx context.Context, record *execution.Record) error {
	outputResult, _ := json.Marshal(record.OutputResult)
	matchedRuleIDs, _ := json.Marshal(record.MatchedRuleIDs)
	inputData, _ := json.Marshal(record.InputData)

	var auditVal interface{}
	if record.Audit != nil {
		auditJSON, err := json.Marshal(record.Audit)
		if err != nil {
			return execution.NewStorageError("sqlite", "marshal_audit", err)
		}
		auditVal = string(auditJSON)
	}

	var errorMessageVal, errorDetailsVal interface{}
	if record.ErrorMessage != "" {
		errorMessageVal = record.ErrorMessage
	}
	if record.ErrorDetails != "" {
		errorDetailsVal = record.ErrorDetails
	}

	query := `
		INSERT INTO executions (
			id, decision_id, decision_key, decision_version,
			status, output_result, matched_rule_ids, matched_count, execution_time_ms,
			input_data,
			process_instance_id, activity_id, task_id, tenant_id,
			error_message, error_details,
			audit,
			create_time
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.DecisionID, record.DecisionKey, record.DecisionVersion,
		string(record.Status), string(outputResult), string(matchedRuleIDs), record.MatchedCount, record.ExecutionTimeMs,
		string(inputData),
		record.ProcessInstanceID, record.ActivityID, record.TaskID, record.TenantID,
		errorMessageVal, errorDetailsVal,
		auditVal,
		record.CreateTime.UTC(),
	)
	if err != nil {
		return execution.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query retrieves execution records matching the query filters, newest
// first, along with the total match count before pagination.
func (s *SQLiteStorage) Query(ctx context.Context, query *execution.Query) ([]*execution.Record, int64, error) {
	total, err := s.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	whereClause, args := buildWhereClause(query)
	page, size := normalizePage(query.Page, query.Size)
	sqlQuery := selectColumns + " FROM executions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY create_time DESC, id DESC"
	sqlQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, execution.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*execution.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, 0, execution.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, execution.NewStorageError("sqlite", "query", err)
	}

	return records, total, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *execution.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM executions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, execution.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Stats aggregates history for one decision id. A decision with no history
// yields all-zero statistics.
func (s *SQLiteStorage) Stats(ctx context.Context, decisionID string) (*execution.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(execution_time_ms), 0),
			COALESCE(MAX(execution_time_ms), 0)
		FROM executions WHERE decision_id = ?
	`

	stats := &execution.Stats{}
	err := s.db.QueryRowContext(ctx, query,
		string(execution.StatusSuccess),
		string(execution.StatusFailed),
		string(execution.StatusNoMatch),
		decisionID,
	).Scan(
		&stats.TotalCount,
		&stats.SuccessCount,
		&stats.FailedCount,
		&stats.NoMatchCount,
		&stats.AvgDurationMs,
		&stats.MaxDurationMs,
	)
	if err != nil {
		return nil, execution.NewStorageError("sqlite", "stats", err)
	}

	return stats, nil
}

// Delete removes execution records matching the query filters, ignoring
// pagination. Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *execution.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM executions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, execution.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, execution.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return execution.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite execution storage closed")
	return nil
}

// selectColumns lists the record columns in scanRow order. SELECT * would
// break silently if the schema gained a column.
const selectColumns = `SELECT
	id, decision_id, decision_key, decision_version,
	status, output_result, matched_rule_ids, matched_count, execution_time_ms,
	input_data,
	process_instance_id, activity_id, task_id, tenant_id,
	error_message, error_details,
	audit,
	create_time`

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *execution.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.DecisionID != "" {
		conditions = append(conditions, "decision_id = ?")
		args = append(args, query.DecisionID)
	}
	if query.DecisionKey != "" {
		conditions = append(conditions, "decision_key = ?")
		args = append(args, query.DecisionKey)
	}
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.ProcessInstanceID != "" {
		conditions = append(conditions, "process_instance_id = ?")
		args = append(args, query.ProcessInstanceID)
	}
	if query.TenantID != "" {
		conditions = append(conditions, "tenant_id = ?")
		args = append(args, query.TenantID)
	}
	if query.StartTime != nil {
		conditions = append(conditions, "create_time >= ?")
		args = append(args, query.StartTime.UTC())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "create_time <= ?")
		args = append(args, query.EndTime.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// normalizePage applies the pagination defaults: page 1, size 20.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return page, size
}

// scanRow scans a database row into an execution.Record.
func scanRow(row *sql.Rows) (*execution.Record, error) {
	var record execution.Record
	var status string
	var outputResult, matchedRuleIDs, inputData string
	var errorMessageVal, errorDetailsVal, auditVal sql.NullString

	err := row.Scan(
		&record.ID, &record.DecisionID, &record.DecisionKey, &record.DecisionVersion,
		&status, &outputResult, &matchedRuleIDs, &record.MatchedCount, &record.ExecutionTimeMs,
		&inputData,
		&record.ProcessInstanceID, &record.ActivityID, &record.TaskID, &record.TenantID,
		&errorMessageVal, &errorDetailsVal,
		&auditVal,
		&record.CreateTime,
	)
	if err != nil {
		return nil, err
	}

	record.Status = execution.Status(status)
	if errorMessageVal.Valid {
		record.ErrorMessage = errorMessageVal.String
	}
	if errorDetailsVal.Valid {
		record.ErrorDetails = errorDetailsVal.String
	}

	if outputResult != "" && outputResult != "null" {
		json.Unmarshal([]byte(outputResult), &record.OutputResult)
	}
	if matchedRuleIDs != "" && matchedRuleIDs != "null" {
		json.Unmarshal([]byte(matchedRuleIDs), &record.MatchedRuleIDs)
	}
	if inputData != "" && inputData != "null" {
		json.Unmarshal([]byte(inputData), &record.InputData)
	}
	if auditVal.Valid && auditVal.String != "" {
		audit := &execution.AuditContainer{}
		if err := json.Unmarshal([]byte(auditVal.String), audit); err == nil {
			record.Audit = audit
		}
	}

	record.CreateTime = record.CreateTime.UTC()

	return &record, nil
}
