// Package logging builds structured slog loggers from configuration.
//
// # Overview
//
// The package maps the telemetry.logging configuration section onto Go's
// standard log/slog package:
//
//   - JSON and text output formats
//   - Configurable minimum level (debug, info, warn, error)
//   - Optional file:line source annotation
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("decision published",
//	    "decision_key", "loan-grade",
//	    "version", 3,
//	)
//
// Components scope their loggers with With("component", ...), so output
// from the engine, the stores and the file watcher can be filtered by
// origin while sharing one handler.
//
// Init installs the logger as the process default as well, which covers
// constructors that fall back to slog.Default() when no logger is passed.
package logging
