package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Parsing starts from the DefaultConfig baseline, so fields absent from
// the file keep their documented defaults. The result is validated before
// being returned. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention VERDICT_SECTION_FIELD (e.g. VERDICT_ENGINE_STRICT_MODE) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file over the default baseline
// 2. Apply environment variable overrides
// 3. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparseable numeric, boolean, or duration values are
// ignored and the previous value stands.
func applyEnvOverrides(cfg *Config) {
	// Engine overrides
	if val := os.Getenv("VERDICT_ENGINE_STRICT_MODE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.StrictMode = b
		}
	}
	if val := os.Getenv("VERDICT_ENGINE_FORCE_DMN11"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.ForceDMN11 = b
		}
	}
	if val := os.Getenv("VERDICT_ENGINE_ENABLE_AUDIT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.EnableAudit = b
		}
	}

	// Decision store overrides
	if val := os.Getenv("VERDICT_DECISION_STORE_BACKEND"); val != "" {
		cfg.DecisionStore.Backend = val
	}
	if val := os.Getenv("VERDICT_DECISION_STORE_SQLITE_PATH"); val != "" {
		cfg.DecisionStore.SQLite.Path = val
	}
	if val := os.Getenv("VERDICT_DECISION_STORE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.DecisionStore.SQLite.BusyTimeout = d
		}
	}

	// Execution store overrides
	if val := os.Getenv("VERDICT_EXECUTION_STORE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.ExecutionStore.Enabled = b
		}
	}
	if val := os.Getenv("VERDICT_EXECUTION_STORE_BACKEND"); val != "" {
		cfg.ExecutionStore.Backend = val
	}
	if val := os.Getenv("VERDICT_EXECUTION_STORE_SQLITE_PATH"); val != "" {
		cfg.ExecutionStore.SQLite.Path = val
	}
	if val := os.Getenv("VERDICT_EXECUTION_STORE_SQLITE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.ExecutionStore.SQLite.MaxOpenConns = i
		}
	}
	if val := os.Getenv("VERDICT_EXECUTION_STORE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.ExecutionStore.SQLite.BusyTimeout = d
		}
	}

	// Retention overrides
	if val := os.Getenv("VERDICT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.Days = i
		}
	}
	if val := os.Getenv("VERDICT_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Retention.PruneSchedule = val
	}
	if val := os.Getenv("VERDICT_RETENTION_ARCHIVE_BEFORE_DELETE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.ArchiveBeforeDelete = b
		}
	}
	if val := os.Getenv("VERDICT_RETENTION_ARCHIVE_PATH"); val != "" {
		cfg.Retention.ArchivePath = val
	}
	if val := os.Getenv("VERDICT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Retention.MaxRecords = i
		}
	}

	// Source overrides
	if val := os.Getenv("VERDICT_SOURCE_PATH"); val != "" {
		cfg.Source.Path = val
	}
	if val := os.Getenv("VERDICT_SOURCE_TENANT_ID"); val != "" {
		cfg.Source.TenantID = val
	}
	if val := os.Getenv("VERDICT_SOURCE_AUTO_PUBLISH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Source.AutoPublish = b
		}
	}
	if val := os.Getenv("VERDICT_SOURCE_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Source.Watch = b
		}
	}
	if val := os.Getenv("VERDICT_SOURCE_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Source.DebounceInterval = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("VERDICT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("VERDICT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("VERDICT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("VERDICT_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
