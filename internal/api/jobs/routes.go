// Package jobs exposes the background job status endpoints.
package jobs

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/store"
)

// RegisterRoutes registers the job endpoints on the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /api/v1/jobs", h.List)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}", h.Get)
}
