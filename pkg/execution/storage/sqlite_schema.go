package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the execution database schema.
const Schema = `
-- Execution records table
CREATE TABLE IF NOT EXISTS executions (
    id TEXT PRIMARY KEY,

    -- Decision identity
    decision_id TEXT NOT NULL,
    decision_key TEXT,
    decision_version INTEGER,

    -- Outcome
    status TEXT NOT NULL,
    output_result TEXT,
    matched_rule_ids TEXT,
    matched_count INTEGER NOT NULL,
    execution_time_ms INTEGER NOT NULL,

    -- Input snapshot
    input_data TEXT,

    -- Caller context
    process_instance_id TEXT,
    activity_id TEXT,
    task_id TEXT,
    tenant_id TEXT,

    -- Error info
    error_message TEXT,
    error_details TEXT,

    -- Audit trail
    audit TEXT,

    create_time TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_executions_decision_id ON executions(decision_id);
CREATE INDEX IF NOT EXISTS idx_executions_decision_key ON executions(decision_key);
CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status);
CREATE INDEX IF NOT EXISTS idx_executions_process_instance_id ON executions(process_instance_id);
CREATE INDEX IF NOT EXISTS idx_executions_tenant_id ON executions(tenant_id);
CREATE INDEX IF NOT EXISTS idx_executions_create_time ON executions(create_time);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
