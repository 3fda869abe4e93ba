package knowledge

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// RegisterRoutes adds all knowledge-base endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, pool *worker.Pool) {
	h := &Handler{store: s, pool: pool}

	mux.HandleFunc("POST /api/v1/knowledge/documents", h.Upload)
	mux.HandleFunc("GET /api/v1/knowledge/documents", h.List)
	mux.HandleFunc("GET /api/v1/knowledge/documents/{document_id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/knowledge/documents/{document_id}", h.Delete)
	mux.HandleFunc("GET /api/v1/knowledge/search", h.Search)
	mux.HandleFunc("POST /api/v1/knowledge/ask", h.Ask)
	mux.HandleFunc("GET /api/v1/knowledge/graph", h.Graph)
}
