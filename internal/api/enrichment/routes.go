package enrichment

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/enrich"
)

// RegisterRoutes adds all enrichment endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, svc *enrich.Service) {
	h := &Handler{enricher: svc}

	mux.HandleFunc("POST /api/v1/enrichment/enrich", h.Enrich)
	mux.HandleFunc("GET /api/v1/enrichment/providers", h.Providers)
	mux.HandleFunc("GET /api/v1/enrichment/cache/stats", h.CacheStats)
	mux.HandleFunc("DELETE /api/v1/enrichment/cache", h.PurgeCache)
}
