package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes content to a temp config file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "verdict.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  strict_mode: false
  force_dmn11: true

decision_store:
  backend: "sqlite"
  sqlite:
    path: "./test-decisions.db"

execution_store:
  enabled: true
  backend: "sqlite"
  sqlite:
    path: "./test-executions.db"
    max_open_conns: 20
    busy_timeout: "10s"

retention:
  days: 30
  max_records: 5000

source:
  path: "./decisions"
  tenant_id: "acme"
  watch: true
  debounce_interval: "250ms"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.StrictMode {
		t.Error("expected strict mode false from file")
	}
	if !cfg.Engine.ForceDMN11 {
		t.Error("expected force_dmn11 true from file")
	}
	if cfg.DecisionStore.Backend != "sqlite" {
		t.Errorf("expected decision store backend %q, got %q", "sqlite", cfg.DecisionStore.Backend)
	}
	if cfg.ExecutionStore.SQLite.Path != "./test-executions.db" {
		t.Errorf("expected execution db path %q, got %q", "./test-executions.db", cfg.ExecutionStore.SQLite.Path)
	}
	if cfg.ExecutionStore.SQLite.MaxOpenConns != 20 {
		t.Errorf("expected max open conns %d, got %d", 20, cfg.ExecutionStore.SQLite.MaxOpenConns)
	}
	if cfg.ExecutionStore.SQLite.BusyTimeout != 10*time.Second {
		t.Errorf("expected busy timeout %v, got %v", 10*time.Second, cfg.ExecutionStore.SQLite.BusyTimeout)
	}
	if cfg.Retention.Days != 30 {
		t.Errorf("expected retention days %d, got %d", 30, cfg.Retention.Days)
	}
	if cfg.Retention.MaxRecords != 5000 {
		t.Errorf("expected max records %d, got %d", 5000, cfg.Retention.MaxRecords)
	}
	if cfg.Source.TenantID != "acme" {
		t.Errorf("expected tenant %q, got %q", "acme", cfg.Source.TenantID)
	}
	if cfg.Source.DebounceInterval != 250*time.Millisecond {
		t.Errorf("expected debounce %v, got %v", 250*time.Millisecond, cfg.Source.DebounceInterval)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_AbsentFieldsKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, `
source:
  path: "./decisions"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Booleans with true defaults survive a file that never mentions them.
	if !cfg.Engine.StrictMode {
		t.Error("expected default strict mode true")
	}
	if !cfg.Engine.EnableAudit {
		t.Error("expected default enable_audit true")
	}
	if !cfg.ExecutionStore.Enabled {
		t.Error("expected default execution store enabled")
	}
	if !cfg.ExecutionStore.SQLite.WALMode {
		t.Error("expected default WAL mode true")
	}
	if !cfg.Source.AutoPublish {
		t.Error("expected default auto_publish true")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected default metrics enabled")
	}

	if cfg.DecisionStore.Backend != DefaultDecisionStoreBackend {
		t.Errorf("expected default decision backend %q, got %q", DefaultDecisionStoreBackend, cfg.DecisionStore.Backend)
	}
	if cfg.Retention.Days != DefaultRetentionDays {
		t.Errorf("expected default retention days %d, got %d", DefaultRetentionDays, cfg.Retention.Days)
	}
	if cfg.Retention.PruneSchedule != DefaultRetentionSchedule {
		t.Errorf("expected default schedule %q, got %q", DefaultRetentionSchedule, cfg.Retention.PruneSchedule)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected default level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_ExplicitFalseSurvives(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  strict_mode: false
  enable_audit: false

execution_store:
  enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.StrictMode {
		t.Error("explicit strict_mode: false was overwritten")
	}
	if cfg.Engine.EnableAudit {
		t.Error("explicit enable_audit: false was overwritten")
	}
	if cfg.ExecutionStore.Enabled {
		t.Error("explicit execution_store.enabled: false was overwritten")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/verdict.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  strict_mode: true
  invalid yaml here: [
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `
decision_store:
  backend: "postgres"

telemetry:
  logging:
    level: "invalid"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError in error chain, got %T: %v", err, err)
	}
	if len(validationErr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(validationErr.Errors), validationErr)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	path := writeConfigFile(t, `
decision_store:
  backend: "memory"

source:
  path: "./decisions"
  tenant_id: "file-tenant"

telemetry:
  logging:
    level: "info"
`)

	os.Setenv("VERDICT_DECISION_STORE_BACKEND", "sqlite")
	os.Setenv("VERDICT_SOURCE_TENANT_ID", "env-tenant")
	os.Setenv("VERDICT_TELEMETRY_LOGGING_LEVEL", "debug")
	defer func() {
		os.Unsetenv("VERDICT_DECISION_STORE_BACKEND")
		os.Unsetenv("VERDICT_SOURCE_TENANT_ID")
		os.Unsetenv("VERDICT_TELEMETRY_LOGGING_LEVEL")
	}()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.DecisionStore.Backend != "sqlite" {
		t.Errorf("expected backend %q from env, got %q", "sqlite", cfg.DecisionStore.Backend)
	}
	if cfg.Source.TenantID != "env-tenant" {
		t.Errorf("expected tenant %q from env, got %q", "env-tenant", cfg.Source.TenantID)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected level %q from env, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_TypedValues(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  strict_mode: true

retention:
  days: 90

source:
  path: "./decisions"
  debounce_interval: "100ms"
`)

	os.Setenv("VERDICT_ENGINE_STRICT_MODE", "false")
	os.Setenv("VERDICT_RETENTION_DAYS", "14")
	os.Setenv("VERDICT_RETENTION_MAX_RECORDS", "100000")
	os.Setenv("VERDICT_SOURCE_DEBOUNCE_INTERVAL", "2s")
	os.Setenv("VERDICT_EXECUTION_STORE_SQLITE_MAX_OPEN_CONNS", "42")
	defer func() {
		os.Unsetenv("VERDICT_ENGINE_STRICT_MODE")
		os.Unsetenv("VERDICT_RETENTION_DAYS")
		os.Unsetenv("VERDICT_RETENTION_MAX_RECORDS")
		os.Unsetenv("VERDICT_SOURCE_DEBOUNCE_INTERVAL")
		os.Unsetenv("VERDICT_EXECUTION_STORE_SQLITE_MAX_OPEN_CONNS")
	}()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.StrictMode {
		t.Error("expected strict mode false from env")
	}
	if cfg.Retention.Days != 14 {
		t.Errorf("expected retention days %d from env, got %d", 14, cfg.Retention.Days)
	}
	if cfg.Retention.MaxRecords != 100000 {
		t.Errorf("expected max records %d from env, got %d", 100000, cfg.Retention.MaxRecords)
	}
	if cfg.Source.DebounceInterval != 2*time.Second {
		t.Errorf("expected debounce %v from env, got %v", 2*time.Second, cfg.Source.DebounceInterval)
	}
	if cfg.ExecutionStore.SQLite.MaxOpenConns != 42 {
		t.Errorf("expected max open conns %d from env, got %d", 42, cfg.ExecutionStore.SQLite.MaxOpenConns)
	}
}

func TestLoadConfigWithEnvOverrides_UnparseableValuesIgnored(t *testing.T) {
	path := writeConfigFile(t, `
retention:
  days: 90
`)

	os.Setenv("VERDICT_RETENTION_DAYS", "not-a-number")
	os.Setenv("VERDICT_ENGINE_STRICT_MODE", "not-a-bool")
	defer func() {
		os.Unsetenv("VERDICT_RETENTION_DAYS")
		os.Unsetenv("VERDICT_ENGINE_STRICT_MODE")
	}()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Retention.Days != 90 {
		t.Errorf("unparseable env value should be ignored, got days %d", cfg.Retention.Days)
	}
	if !cfg.Engine.StrictMode {
		t.Error("unparseable bool env value should be ignored")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	path := writeConfigFile(t, `
telemetry:
  logging:
    level: "info"
`)

	os.Setenv("VERDICT_TELEMETRY_LOGGING_LEVEL", "shouting")
	defer os.Unsetenv("VERDICT_TELEMETRY_LOGGING_LEVEL")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error for invalid env level")
	}
	if !strings.Contains(err.Error(), "environment overrides") {
		t.Errorf("expected env override validation error, got: %v", err)
	}
}
