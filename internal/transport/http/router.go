// Package httptransport assembles the HTTP surface: route registration,
// shared middleware, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epiaudit/internal/platform/middleware"
)

// Registrar registers a module's routes on the shared router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires the shared middleware stack, operational endpoints, and
// every module's routes. A nil limiter leaves rate limiting off.
func NewRouter(logger *slog.Logger, limiter middleware.RequestLimiter, modules ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RateLimit(limiter, logger))
	r.Use(middleware.ReferenceTime)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, m := range modules {
		m.Register(r)
	}
	return r
}
