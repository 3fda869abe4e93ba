package export

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/exporter"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// RegisterRoutes adds all export endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, svc *exporter.Service, pool *worker.Pool) {
	h := &Handler{store: s, exporter: svc, pool: pool}

	mux.HandleFunc("POST /api/v1/export", h.Create)
	mux.HandleFunc("GET /api/v1/export/formats", h.Formats)
	mux.HandleFunc("GET /api/v1/export/{export_id}", h.Get)
	mux.HandleFunc("GET /api/v1/export/{export_id}/download", h.Download)
}
