// Package telemetry provides observability for the Verdict decision engine.
//
// # Components
//
//   - logging: structured slog loggers built from configuration
//   - metrics: Prometheus collectors for evaluations and store operations
//
// # Usage
//
//	cfg := config.MustGetConfig()
//
//	logger, err := logging.Init(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//	if err != nil {
//	    return err
//	}
//
//	registry := prometheus.NewRegistry()
//	evalMetrics := metrics.NewEvaluationMetrics(registry)
//
// Both subpackages are independent: embedders that only want logs never
// touch the Prometheus registry, and metrics work with any slog setup.
package telemetry
