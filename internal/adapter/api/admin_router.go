package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/V4T54L/rentwise/internal/adapter/api/handler"
)

// NewAdminRouter creates the operator-facing router: metrics, liveness and
// database readiness. It is served on its own port.
func NewAdminRouter(gatherer prometheus.Gatherer, db handler.Pinger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	health := handler.NewHealthHandler(db, logger)

	r.Get("/health", health.HealthCheck)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
