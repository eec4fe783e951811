package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"tabular-hq/verdict/pkg/dmn"
)

// SQLiteStore persists decisions in a SQLite database. It runs in WAL mode
// with a single writer connection and checkpoints the log periodically, so a
// crash loses at most the un-checkpointed tail the WAL still replays.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	closeOnce          sync.Once

	saveStmt          *sql.Stmt
	findByIDStmt      *sql.Stmt
	findByKeyStmt     *sql.Stmt
	findPublishedStmt *sql.Stmt
	deleteStmt        *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite decision store.
type SQLiteStoreConfig struct {
	// Path is the SQLite database file.
	Path string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes.
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) a decision store with default
// settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens a decision store with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.Path,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		decision_key TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL,
		tenant_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		hit_policy TEXT NOT NULL,
		aggregation TEXT NOT NULL DEFAULT '',
		inputs TEXT NOT NULL,
		outputs TEXT NOT NULL,
		rules TEXT NOT NULL,
		rule_count INTEGER NOT NULL,
		publish_time INTEGER,
		create_time INTEGER NOT NULL,
		update_time INTEGER NOT NULL,
		UNIQUE (decision_key, tenant_id, version)
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_key ON decisions(decision_key, tenant_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_status ON decisions(status);
	CREATE INDEX IF NOT EXISTS idx_decisions_create_time ON decisions(create_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

const decisionColumns = `id, decision_key, name, description, category, version, tenant_id,
	status, hit_policy, aggregation, inputs, outputs, rules, rule_count,
	publish_time, create_time, update_time`

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO decisions (` + decisionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			decision_key = excluded.decision_key,
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			version = excluded.version,
			tenant_id = excluded.tenant_id,
			status = excluded.status,
			hit_policy = excluded.hit_policy,
			aggregation = excluded.aggregation,
			inputs = excluded.inputs,
			outputs = excluded.outputs,
			rules = excluded.rules,
			rule_count = excluded.rule_count,
			publish_time = excluded.publish_time,
			update_time = excluded.update_time
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.findByIDStmt, err = s.db.Prepare(`
		SELECT ` + decisionColumns + ` FROM decisions WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare find-by-id statement: %w", err)
	}

	s.findByKeyStmt, err = s.db.Prepare(`
		SELECT ` + decisionColumns + ` FROM decisions
		WHERE decision_key = ? AND (? = '' OR tenant_id = ?) AND (? = 0 OR version = ?)
		ORDER BY version DESC LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare find-by-key statement: %w", err)
	}

	s.findPublishedStmt, err = s.db.Prepare(`
		SELECT ` + decisionColumns + ` FROM decisions
		WHERE decision_key = ? AND (? = '' OR tenant_id = ?) AND status = ?
		ORDER BY version DESC LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare find-published statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM decisions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// FindByID returns the decision version with the given id, or (nil, nil).
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*dmn.Decision, error) {
	row := s.findByIDStmt.QueryRowContext(ctx, id)
	return scanDecision(row)
}

// FindByKey returns one version of a decision key. Version 0 selects the
// highest version regardless of status; an empty tenant matches any tenant.
func (s *SQLiteStore) FindByKey(ctx context.Context, key, tenantID string, version int) (*dmn.Decision, error) {
	row := s.findByKeyStmt.QueryRowContext(ctx, key, tenantID, tenantID, version, version)
	return scanDecision(row)
}

// FindHighestPublishedByKey returns the published version with the highest
// version number, or (nil, nil).
func (s *SQLiteStore) FindHighestPublishedByKey(ctx context.Context, key, tenantID string) (*dmn.Decision, error) {
	row := s.findPublishedStmt.QueryRowContext(ctx, key, tenantID, tenantID, string(dmn.StatusPublished))
	return scanDecision(row)
}

// Save inserts or replaces one decision version, keyed by its id.
func (s *SQLiteStore) Save(ctx context.Context, decision *dmn.Decision) error {
	if decision == nil || decision.ID == "" {
		return ErrMissingID
	}

	inputsJSON, err := json.Marshal(decision.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal inputs: %w", err)
	}
	outputsJSON, err := json.Marshal(decision.Outputs)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}
	rulesJSON, err := json.Marshal(decision.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	var publishTime sql.NullInt64
	if decision.PublishTime != nil {
		publishTime = sql.NullInt64{Int64: decision.PublishTime.UnixNano(), Valid: true}
	}

	_, err = s.saveStmt.ExecContext(ctx,
		decision.ID,
		decision.DecisionKey,
		decision.Name,
		decision.Description,
		decision.Category,
		decision.Version,
		decision.TenantID,
		string(decision.Status),
		string(decision.HitPolicy),
		string(decision.Aggregation),
		string(inputsJSON),
		string(outputsJSON),
		string(rulesJSON),
		decision.RuleCount,
		publishTime,
		decision.CreateTime.UnixNano(),
		decision.UpdateTime.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// Delete removes one decision version by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("failed to delete decision: %w", err)
	}
	return nil
}

// Query returns the matching page ordered by create time descending plus the
// total match count.
func (s *SQLiteStore) Query(ctx context.Context, filter *Filter, page, size int) ([]*dmn.Decision, int64, error) {
	page, size = NormalizePage(page, size)
	where, args := buildWhereClause(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM decisions" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count decisions: %w", err)
	}

	pageQuery := "SELECT " + decisionColumns + " FROM decisions" + where +
		" ORDER BY create_time DESC, id DESC LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []*dmn.Decision{}
	for rows.Next() {
		d, err := scanDecisionRow(rows)
		if err != nil {
			return nil, 0, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}
	return decisions, total, nil
}

// Close stops the checkpoint loop and closes the database. Close is
// idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{
			s.saveStmt, s.findByIDStmt, s.findByKeyStmt, s.findPublishedStmt, s.deleteStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

// buildWhereClause renders the filter as a WHERE fragment (with a leading
// space) and its argument list.
func buildWhereClause(filter *Filter) (string, []any) {
	if filter == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if filter.ID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.DecisionKey != "" {
		conditions = append(conditions, "decision_key = ?")
		args = append(args, filter.DecisionKey)
	}
	if filter.Name != "" {
		conditions = append(conditions, "name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.TenantID != "" {
		conditions = append(conditions, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.Version > 0 {
		conditions = append(conditions, "version = ?")
		args = append(args, filter.Version)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row *sql.Row) (*dmn.Decision, error) {
	d, err := scanDecisionRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func scanDecisionRow(scanner rowScanner) (*dmn.Decision, error) {
	var (
		d           dmn.Decision
		status      string
		hitPolicy   string
		aggregation string
		inputsJSON  string
		outputsJSON string
		rulesJSON   string
		publishTime sql.NullInt64
		createTime  int64
		updateTime  int64
	)

	err := scanner.Scan(
		&d.ID, &d.DecisionKey, &d.Name, &d.Description, &d.Category,
		&d.Version, &d.TenantID, &status, &hitPolicy, &aggregation,
		&inputsJSON, &outputsJSON, &rulesJSON, &d.RuleCount,
		&publishTime, &createTime, &updateTime,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan decision: %w", err)
	}

	d.Status = dmn.DecisionStatus(status)
	d.HitPolicy = dmn.HitPolicy(hitPolicy)
	d.Aggregation = dmn.Aggregation(aggregation)
	if publishTime.Valid {
		t := time.Unix(0, publishTime.Int64)
		d.PublishTime = &t
	}
	d.CreateTime = time.Unix(0, createTime)
	d.UpdateTime = time.Unix(0, updateTime)

	if err := json.Unmarshal([]byte(inputsJSON), &d.Inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(outputsJSON), &d.Outputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outputs: %w", err)
	}
	if err := json.Unmarshal([]byte(rulesJSON), &d.Rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	return &d, nil
}
