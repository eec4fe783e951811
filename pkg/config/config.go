package config

import "time"

// Config is the root configuration for the decision engine and its
// supporting subsystems. It is loaded from a YAML file via LoadConfig,
// with optional VERDICT_* environment overrides via
// LoadConfigWithEnvOverrides.
type Config struct {
	// Engine holds default evaluation behavior.
	Engine EngineConfig `yaml:"engine"`

	// DecisionStore configures where decision definitions live.
	DecisionStore DecisionStoreConfig `yaml:"decision_store"`

	// ExecutionStore configures execution-record persistence.
	ExecutionStore ExecutionStoreConfig `yaml:"execution_store"`

	// Retention configures pruning of old execution records.
	Retention RetentionConfig `yaml:"retention"`

	// Source configures loading decisions from DMN files on disk.
	Source SourceConfig `yaml:"source"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig holds the default evaluation options. Per-request options
// still take precedence at execution time.
type EngineConfig struct {
	// StrictMode surfaces hit-policy violations as errors instead of
	// applying the handler's documented fallback.
	// Default: true
	StrictMode bool `yaml:"strict_mode"`

	// ForceDMN11 applies DMN 1.1 COLLECT semantics: matches with
	// identical outputs collapse before aggregation.
	// Default: false
	ForceDMN11 bool `yaml:"force_dmn11"`

	// EnableAudit attaches per-rule audit trails to results and
	// execution records.
	// Default: true
	EnableAudit bool `yaml:"enable_audit"`
}

// DecisionStoreConfig configures the decision definition store.
type DecisionStoreConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend. Only used when Backend
	// is "sqlite".
	SQLite DecisionSQLiteConfig `yaml:"sqlite"`
}

// DecisionSQLiteConfig configures the SQLite decision store.
type DecisionSQLiteConfig struct {
	// Path is the SQLite database file.
	// Default: "data/decisions.db"
	Path string `yaml:"path"`

	// CheckpointInterval is how often the WAL is checkpointed.
	// Default: 5 minutes
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ExecutionStoreConfig configures execution-record persistence.
type ExecutionStoreConfig struct {
	// Enabled turns execution recording on or off. When disabled the
	// engine evaluates without writing history.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend. Only used when Backend
	// is "sqlite".
	SQLite ExecutionSQLiteConfig `yaml:"sqlite"`
}

// ExecutionSQLiteConfig configures the SQLite execution store.
type ExecutionSQLiteConfig struct {
	// Path is the SQLite database file.
	// Default: "data/executions.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures pruning of old execution records.
type RetentionConfig struct {
	// Days is how long execution records are kept. Zero disables
	// age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete exports records as JSON before deletion.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory archives are written to.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`

	// MaxRecords caps the total number of records, pruning oldest
	// first. Zero means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// SourceConfig configures loading decisions from DMN XML files.
type SourceConfig struct {
	// Path is a DMN file or a directory of .dmn/.xml files. Empty
	// disables the file source.
	// Default: ""
	Path string `yaml:"path"`

	// TenantID is assigned to every decision loaded from Path.
	// Default: ""
	TenantID string `yaml:"tenant_id"`

	// AutoPublish publishes imported decisions immediately instead of
	// leaving them in draft.
	// Default: true
	AutoPublish bool `yaml:"auto_publish"`

	// Watch re-imports the source when files under Path change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file events into one reload.
	// Default: 100 milliseconds
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on or off.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are exposed on when a caller
	// serves them.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// DefaultConfig returns a fully-populated configuration with every field
// set to its documented default. Loading starts from this baseline so
// boolean fields keep their defaults unless the file or environment
// explicitly sets them.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			StrictMode:  DefaultEngineStrictMode,
			ForceDMN11:  DefaultEngineForceDMN11,
			EnableAudit: DefaultEngineEnableAudit,
		},
		DecisionStore: DecisionStoreConfig{
			Backend: DefaultDecisionStoreBackend,
			SQLite: DecisionSQLiteConfig{
				Path:               DefaultDecisionSQLitePath,
				CheckpointInterval: DefaultDecisionSQLiteCheckpoint,
				BusyTimeout:        DefaultDecisionSQLiteBusyTimeout,
			},
		},
		ExecutionStore: ExecutionStoreConfig{
			Enabled: DefaultExecutionStoreEnabled,
			Backend: DefaultExecutionStoreBackend,
			SQLite: ExecutionSQLiteConfig{
				Path:         DefaultExecutionSQLitePath,
				MaxOpenConns: DefaultExecutionSQLiteMaxOpenConns,
				MaxIdleConns: DefaultExecutionSQLiteMaxIdleConns,
				WALMode:      DefaultExecutionSQLiteWALMode,
				BusyTimeout:  DefaultExecutionSQLiteBusyTimeout,
			},
		},
		Retention: RetentionConfig{
			Days:                DefaultRetentionDays,
			PruneSchedule:       DefaultRetentionSchedule,
			ArchiveBeforeDelete: DefaultRetentionArchive,
			ArchivePath:         DefaultRetentionArchivePath,
			MaxRecords:          DefaultRetentionMaxRecords,
		},
		Source: SourceConfig{
			Path:             DefaultSourcePath,
			TenantID:         DefaultSourceTenantID,
			AutoPublish:      DefaultSourceAutoPublish,
			Watch:            DefaultSourceWatch,
			DebounceInterval: DefaultSourceDebounce,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:     DefaultLoggingLevel,
				Format:    DefaultLoggingFormat,
				AddSource: DefaultLoggingAddSource,
			},
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
				Path:    DefaultMetricsPath,
			},
		},
	}
}
