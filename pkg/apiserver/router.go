// Package apiserver exposes a Core over a small HTTP surface for
// `veilfsctl serve`: liveness/readiness probes and Prometheus metrics,
// served without a token, plus a route group gated by a single
// process-lifetime bearer token (rather than the teacher's multi-user JWT
// directory) that mounts no routes.
package apiserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/veilfs/internal/logger"
	"github.com/marmos91/veilfs/pkg/evfs"
)

// NewRouter builds the chi router serving `core`. registry may be nil,
// in which case /metrics is not mounted.
func NewRouter(core *evfs.Core, tokens *TokenService, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	health := &healthHandler{core: core, startedAt: time.Now()}
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireBearer(tokens))
		// Operational routes beyond health/metrics would mount here;
		// the CLI drives the Core directly, so there are none yet.
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("serve request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
