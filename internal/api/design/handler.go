package design

import (
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// maxLogoBytes bounds logo uploads.
const maxLogoBytes = 8 << 20

// Handler handles brand kit and design asset HTTP requests.
type Handler struct {
	store *store.Store
}

// List handles GET /api/v1/design/brand-kits.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	kits, total, err := h.store.BrandKits.List(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, kits, total, limit, offset)
}

// Create handles POST /api/v1/design/brand-kits.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.BrandKitInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "name"))
		return
	}

	kit, err := h.store.BrandKits.Create(r.Context(), in)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, kit)
}

// Get handles GET /api/v1/design/brand-kits/{brand_kit_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	kit, err := h.store.BrandKits.Get(r.Context(), r.PathValue("brand_kit_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Brand kit")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, kit)
}

// Replace handles PUT /api/v1/design/brand-kits/{brand_kit_id}.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var in domain.BrandKitInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if in.Name == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "name"))
		return
	}

	kit, err := h.store.BrandKits.Replace(r.Context(), r.PathValue("brand_kit_id"), in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Brand kit")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, kit)
}

// Delete handles DELETE /api/v1/design/brand-kits/{brand_kit_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.BrandKits.Delete(r.Context(), r.PathValue("brand_kit_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Brand kit")
			return
		}
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo handles POST /api/v1/design/brand-kits/{brand_kit_id}/logo.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	kitID := r.PathValue("brand_kit_id")

	if _, err := h.store.BrandKits.Get(r.Context(), kitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Brand kit")
			return
		}
		api.WriteInternal(w)
		return
	}

	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		api.WriteValidationError(w, api.FieldInvalid("body", "file",
			"Input should be a valid multipart form", "value_error"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteValidationError(w, api.FieldRequired("body", "file"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset, err := h.store.BrandKits.AddAsset(r.Context(), header.Filename, contentType, "logo", kitID, data)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	if err := h.store.BrandKits.SetLogo(r.Context(), kitID, asset.URL); err != nil {
		api.WriteInternal(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, domain.LogoUpload{
		AssetID:  asset.ID,
		LogoURL:  asset.URL,
		FileName: asset.FileName,
	})
}

// Export handles GET /api/v1/design/brand-kits/{brand_kit_id}/export. The
// response nests the same brand kit representation the GET endpoint serves.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" {
		api.WriteValidationError(w, api.FieldInvalid("query", "format",
			"Input should be 'json'", "enum"))
		return
	}

	kit, err := h.store.BrandKits.Get(r.Context(), r.PathValue("brand_kit_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Brand kit")
			return
		}
		api.WriteInternal(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, domain.BrandKitExport{BrandKit: kit, Format: format})
}

// ListAssets handles GET /api/v1/design/assets. Assets default to a larger
// page than other collections.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 100)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	assets, total, err := h.store.BrandKits.ListAssets(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, assets, total, limit, offset)
}

// GetAsset handles GET /api/v1/design/assets/{asset_id}, serving the stored
// bytes with their original content type.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, data, err := h.store.BrandKits.GetAsset(r.Context(), r.PathValue("asset_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Asset")
			return
		}
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", asset.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
