package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marmos91/veilfs/internal/cli/health"
	"github.com/marmos91/veilfs/pkg/evfs"
)

// HealthCheckTimeout bounds how long a readiness probe waits on the Core.
const HealthCheckTimeout = 5 * time.Second

func writeHealth(w http.ResponseWriter, status int, resp health.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// healthHandler serves liveness and readiness probes over a single Core.
// startedAt backs the uptime reported to `veilfsctl status`.
type healthHandler struct {
	core      *evfs.Core
	startedAt time.Time
}

func (h *healthHandler) response(status string, errMsg string) health.Response {
	resp := health.Response{Status: status, Timestamp: time.Now().UTC().Format(time.RFC3339), Error: errMsg}
	resp.Data.Service = "veilfs"
	resp.Data.StartedAt = h.startedAt.UTC().Format(time.RFC3339)
	uptime := time.Since(h.startedAt)
	resp.Data.Uptime = uptime.String()
	resp.Data.UptimeSec = int64(uptime.Seconds())
	return resp
}

// Liveness handles GET /healthz. Always 200 while the process is up.
func (h *healthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, h.response("healthy", ""))
}

// Readiness handles GET /readyz: resolves the root path under the Core's
// own lock/crypto/storage chain, surfacing any adapter outage.
func (h *healthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	if _, err := h.core.Exists(ctx, "/"); err != nil {
		writeHealth(w, http.StatusServiceUnavailable, h.response("unhealthy", err.Error()))
		return
	}
	writeHealth(w, http.StatusOK, h.response("healthy", ""))
}
