package design

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/store"
)

// RegisterRoutes adds all brand kit and design asset endpoints to the given
// mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /api/v1/design/brand-kits", h.List)
	mux.HandleFunc("POST /api/v1/design/brand-kits", h.Create)
	mux.HandleFunc("GET /api/v1/design/brand-kits/{brand_kit_id}", h.Get)
	mux.HandleFunc("PUT /api/v1/design/brand-kits/{brand_kit_id}", h.Replace)
	mux.HandleFunc("DELETE /api/v1/design/brand-kits/{brand_kit_id}", h.Delete)
	mux.HandleFunc("POST /api/v1/design/brand-kits/{brand_kit_id}/logo", h.UploadLogo)
	mux.HandleFunc("GET /api/v1/design/brand-kits/{brand_kit_id}/export", h.Export)

	mux.HandleFunc("GET /api/v1/design/assets", h.ListAssets)
	mux.HandleFunc("GET /api/v1/design/assets/{asset_id}", h.GetAsset)
}
