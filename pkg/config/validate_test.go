package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecisionStore.Backend = "postgres"
	cfg.Retention.Days = -1
	cfg.Telemetry.Logging.Level = "shouting"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(validationErr.Errors), validationErr)
	}
	if !strings.Contains(validationErr.Error(), "validation failed with 3 errors") {
		t.Errorf("error message should mention the error count: %s", validationErr.Error())
	}
}

func TestValidate_DecisionStore(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantError  bool
		errorField string
	}{
		{
			name:   "memory backend",
			mutate: func(cfg *Config) { cfg.DecisionStore.Backend = "memory" },
		},
		{
			name: "sqlite backend with path",
			mutate: func(cfg *Config) {
				cfg.DecisionStore.Backend = "sqlite"
				cfg.DecisionStore.SQLite.Path = "./decisions.db"
			},
		},
		{
			name:       "unknown backend",
			mutate:     func(cfg *Config) { cfg.DecisionStore.Backend = "redis" },
			wantError:  true,
			errorField: "decision_store.backend",
		},
		{
			name: "sqlite backend without path",
			mutate: func(cfg *Config) {
				cfg.DecisionStore.Backend = "sqlite"
				cfg.DecisionStore.SQLite.Path = ""
			},
			wantError:  true,
			errorField: "decision_store.sqlite.path",
		},
		{
			name: "negative busy timeout",
			mutate: func(cfg *Config) {
				cfg.DecisionStore.Backend = "sqlite"
				cfg.DecisionStore.SQLite.BusyTimeout = -1
			},
			wantError:  true,
			errorField: "decision_store.sqlite.busy_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			checkValidation(t, cfg, tt.wantError, tt.errorField)
		})
	}
}

func TestValidate_ExecutionStore(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantError  bool
		errorField string
	}{
		{
			name:   "default sqlite backend",
			mutate: func(cfg *Config) {},
		},
		{
			name:   "memory backend",
			mutate: func(cfg *Config) { cfg.ExecutionStore.Backend = "memory" },
		},
		{
			name:       "unknown backend",
			mutate:     func(cfg *Config) { cfg.ExecutionStore.Backend = "dynamo" },
			wantError:  true,
			errorField: "execution_store.backend",
		},
		{
			name: "disabled store skips backend checks",
			mutate: func(cfg *Config) {
				cfg.ExecutionStore.Enabled = false
				cfg.ExecutionStore.Backend = "dynamo"
			},
		},
		{
			name:       "sqlite without path",
			mutate:     func(cfg *Config) { cfg.ExecutionStore.SQLite.Path = "" },
			wantError:  true,
			errorField: "execution_store.sqlite.path",
		},
		{
			name: "idle conns exceed open conns",
			mutate: func(cfg *Config) {
				cfg.ExecutionStore.SQLite.MaxOpenConns = 2
				cfg.ExecutionStore.SQLite.MaxIdleConns = 5
			},
			wantError:  true,
			errorField: "execution_store.sqlite.max_idle_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			checkValidation(t, cfg, tt.wantError, tt.errorField)
		})
	}
}

func TestValidate_Retention(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantError  bool
		errorField string
	}{
		{
			name:   "defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name: "zero days and empty schedule disable pruning",
			mutate: func(cfg *Config) {
				cfg.Retention.Days = 0
				cfg.Retention.PruneSchedule = ""
			},
		},
		{
			name:       "negative days",
			mutate:     func(cfg *Config) { cfg.Retention.Days = -7 },
			wantError:  true,
			errorField: "retention.days",
		},
		{
			name:       "negative max records",
			mutate:     func(cfg *Config) { cfg.Retention.MaxRecords = -1 },
			wantError:  true,
			errorField: "retention.max_records",
		},
		{
			name:       "invalid cron expression",
			mutate:     func(cfg *Config) { cfg.Retention.PruneSchedule = "every day at 3" },
			wantError:  true,
			errorField: "retention.prune_schedule",
		},
		{
			name:   "hourly cron expression",
			mutate: func(cfg *Config) { cfg.Retention.PruneSchedule = "0 * * * *" },
		},
		{
			name: "archive enabled without path",
			mutate: func(cfg *Config) {
				cfg.Retention.ArchiveBeforeDelete = true
				cfg.Retention.ArchivePath = ""
			},
			wantError:  true,
			errorField: "retention.archive_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			checkValidation(t, cfg, tt.wantError, tt.errorField)
		})
	}
}

func TestValidate_Source(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantError  bool
		errorField string
	}{
		{
			name:   "empty source disabled",
			mutate: func(cfg *Config) {},
		},
		{
			name: "watch with path",
			mutate: func(cfg *Config) {
				cfg.Source.Path = "./decisions"
				cfg.Source.Watch = true
			},
		},
		{
			name:       "watch without path",
			mutate:     func(cfg *Config) { cfg.Source.Watch = true },
			wantError:  true,
			errorField: "source.watch",
		},
		{
			name:       "negative debounce",
			mutate:     func(cfg *Config) { cfg.Source.DebounceInterval = -1 },
			wantError:  true,
			errorField: "source.debounce_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			checkValidation(t, cfg, tt.wantError, tt.errorField)
		})
	}
}

func TestValidate_Telemetry(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantError  bool
		errorField string
	}{
		{
			name:   "defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:   "warn level accepted",
			mutate: func(cfg *Config) { cfg.Telemetry.Logging.Level = "warn" },
		},
		{
			name:   "uppercase level accepted",
			mutate: func(cfg *Config) { cfg.Telemetry.Logging.Level = "DEBUG" },
		},
		{
			name:       "unknown level",
			mutate:     func(cfg *Config) { cfg.Telemetry.Logging.Level = "verbose" },
			wantError:  true,
			errorField: "telemetry.logging.level",
		},
		{
			name:       "unknown format",
			mutate:     func(cfg *Config) { cfg.Telemetry.Logging.Format = "xml" },
			wantError:  true,
			errorField: "telemetry.logging.format",
		},
		{
			name:       "metrics path without slash",
			mutate:     func(cfg *Config) { cfg.Telemetry.Metrics.Path = "metrics" },
			wantError:  true,
			errorField: "telemetry.metrics.path",
		},
		{
			name: "bad metrics path ignored when disabled",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.Enabled = false
				cfg.Telemetry.Metrics.Path = "metrics"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			checkValidation(t, cfg, tt.wantError, tt.errorField)
		})
	}
}

// checkValidation asserts the validation outcome and, for failures, that
// the expected field is named.
func checkValidation(t *testing.T, cfg *Config, wantError bool, errorField string) {
	t.Helper()

	err := Validate(cfg)
	if !wantError {
		if err != nil {
			t.Errorf("expected valid config, got: %v", err)
		}
		return
	}

	if err == nil {
		t.Fatal("expected validation error")
	}
	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, fieldErr := range validationErr.Errors {
		if fieldErr.Field == errorField {
			return
		}
	}
	t.Errorf("expected error on field %q, got: %v", errorField, err)
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "retention.days", Message: "must be non-negative"}
	want := "retention.days: must be non-negative"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{{Field: "a", Message: "b"}}}
	if !strings.Contains(err.Error(), "a: b") {
		t.Errorf("single error message malformed: %s", err.Error())
	}
	if strings.Contains(err.Error(), "errors:") {
		t.Errorf("single error should not use the multi-error format: %s", err.Error())
	}
}
