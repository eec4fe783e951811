// Package config provides configuration management for the decision
// engine.
//
// It loads YAML configuration files with environment variable overrides,
// applies documented defaults, and validates the result before handing it
// to callers.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("verdict.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("verdict.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention VERDICT_SECTION_FIELD.
// For example:
//
//   - VERDICT_ENGINE_STRICT_MODE overrides engine.strict_mode
//   - VERDICT_EXECUTION_STORE_SQLITE_PATH overrides execution_store.sqlite.path
//   - VERDICT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file values.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Defaults (DefaultConfig baseline)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide access, the package keeps an optional singleton:
//
//	// At application startup
//	if err := config.Initialize("verdict.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// A minimal configuration file:
//
//	engine:
//	  strict_mode: true
//
//	decision_store:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/decisions.db"
//
//	execution_store:
//	  enabled: true
//	  backend: "sqlite"
//
//	source:
//	  path: "./decisions"
//	  watch: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
