// Package httptransport assembles the public HTTP surface: the attestation and
// governance routes plus the operational endpoints.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar is implemented by the per-domain handlers.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter mounts the domain handlers and the operational endpoints. The
// domain handlers carry their own middleware chains; /healthz and /metrics
// stay outside them so probes and scrapers skip auth.
func NewRouter(handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
