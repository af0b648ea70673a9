// Package observability provides structured logging, Prometheus metrics, and
// health checks for the pkgindex registry.
//
// # Logging
//
// Structured JSON logging via stdlib slog:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("webhook_id", id).Info("delivery recorded")
//
// # Metrics
//
// Prometheus metrics cover HTTP traffic, API key gate decisions, usage
// metering, and webhook delivery outcomes:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	router.Handle("/metrics", metrics.Handler())
//
// # Health
//
// Liveness and readiness probes for the Postgres key/endpoint stores and the
// Redis usage counter store:
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	router.HandleFunc("/healthz", checker.Liveness)
//	router.HandleFunc("/readyz", checker.Readiness)
package observability
