package analyze

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// RegisterRoutes adds all analysis endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, pool *worker.Pool) {
	h := &Handler{store: s, pool: pool}

	mux.HandleFunc("POST /api/v1/analyze/v2/upload", h.Upload)
	mux.HandleFunc("GET /api/v1/analyze/v2/results", h.List)
	mux.HandleFunc("GET /api/v1/analyze/v2/results/{analysis_id}", h.Get)
	mux.HandleFunc("GET /api/v1/analyze/v2/correlations/{analysis_id}", h.Correlations)
}
