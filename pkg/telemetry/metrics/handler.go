package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the registry in Prometheus
// exposition format. Mount it at the path configured in
// telemetry.metrics.path (typically "/metrics"):
//
//	registry := prometheus.NewRegistry()
//	evalMetrics := metrics.NewEvaluationMetrics(registry)
//	http.Handle("/metrics", metrics.Handler(registry))
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}
