package templates

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/store"
)

// RegisterRoutes adds all template endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /api/v1/templates", h.List)
	mux.HandleFunc("POST /api/v1/templates", h.Create)
	mux.HandleFunc("POST /api/v1/templates/import", h.Import)
	mux.HandleFunc("GET /api/v1/templates/categories", h.Categories)
	mux.HandleFunc("GET /api/v1/templates/{template_id}", h.Get)
	mux.HandleFunc("PUT /api/v1/templates/{template_id}", h.Replace)
	mux.HandleFunc("DELETE /api/v1/templates/{template_id}", h.Delete)
	mux.HandleFunc("POST /api/v1/templates/{template_id}/duplicate", h.Duplicate)
	mux.HandleFunc("GET /api/v1/templates/{template_id}/export", h.Export)
}
