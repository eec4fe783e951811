package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultEngineStrictMode  = true
	DefaultEngineForceDMN11  = false
	DefaultEngineEnableAudit = true

	// Decision store defaults
	DefaultDecisionStoreBackend      = "memory"
	DefaultDecisionSQLitePath        = "data/decisions.db"
	DefaultDecisionSQLiteCheckpoint  = 5 * time.Minute
	DefaultDecisionSQLiteBusyTimeout = 5 * time.Second

	// Execution store defaults
	DefaultExecutionStoreEnabled       = true
	DefaultExecutionStoreBackend       = "sqlite"
	DefaultExecutionSQLitePath         = "data/executions.db"
	DefaultExecutionSQLiteMaxOpenConns = 10
	DefaultExecutionSQLiteMaxIdleConns = 5
	DefaultExecutionSQLiteWALMode      = true
	DefaultExecutionSQLiteBusyTimeout  = 5 * time.Second

	// Retention defaults
	DefaultRetentionDays        = 90
	DefaultRetentionSchedule    = "0 3 * * *"
	DefaultRetentionArchive     = false
	DefaultRetentionArchivePath = "data/archives/"
	DefaultRetentionMaxRecords  = int64(0)

	// Source defaults
	DefaultSourcePath        = ""
	DefaultSourceTenantID    = ""
	DefaultSourceAutoPublish = true
	DefaultSourceWatch       = false
	DefaultSourceDebounce    = 100 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingAddSource = false
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills zero-valued string, numeric, and duration fields
// with their documented defaults. It is idempotent and safe to call on a
// hand-built Config.
//
// Boolean fields are not touched: false is indistinguishable from unset,
// so their defaults come from the DefaultConfig baseline that LoadConfig
// unmarshals over.
func ApplyDefaults(cfg *Config) {
	// Decision store defaults
	if cfg.DecisionStore.Backend == "" {
		cfg.DecisionStore.Backend = DefaultDecisionStoreBackend
	}
	if cfg.DecisionStore.SQLite.Path == "" {
		cfg.DecisionStore.SQLite.Path = DefaultDecisionSQLitePath
	}
	if cfg.DecisionStore.SQLite.CheckpointInterval == 0 {
		cfg.DecisionStore.SQLite.CheckpointInterval = DefaultDecisionSQLiteCheckpoint
	}
	if cfg.DecisionStore.SQLite.BusyTimeout == 0 {
		cfg.DecisionStore.SQLite.BusyTimeout = DefaultDecisionSQLiteBusyTimeout
	}

	// Execution store defaults
	if cfg.ExecutionStore.Backend == "" {
		cfg.ExecutionStore.Backend = DefaultExecutionStoreBackend
	}
	if cfg.ExecutionStore.SQLite.Path == "" {
		cfg.ExecutionStore.SQLite.Path = DefaultExecutionSQLitePath
	}
	if cfg.ExecutionStore.SQLite.MaxOpenConns == 0 {
		cfg.ExecutionStore.SQLite.MaxOpenConns = DefaultExecutionSQLiteMaxOpenConns
	}
	if cfg.ExecutionStore.SQLite.MaxIdleConns == 0 {
		cfg.ExecutionStore.SQLite.MaxIdleConns = DefaultExecutionSQLiteMaxIdleConns
	}
	if cfg.ExecutionStore.SQLite.BusyTimeout == 0 {
		cfg.ExecutionStore.SQLite.BusyTimeout = DefaultExecutionSQLiteBusyTimeout
	}

	// Retention defaults. Days and MaxRecords are left alone: zero is
	// meaningful (disabled / unlimited) and the DefaultConfig baseline
	// already carries the 90-day default.
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultRetentionArchivePath
	}

	// Source defaults
	if cfg.Source.DebounceInterval == 0 {
		cfg.Source.DebounceInterval = DefaultSourceDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
