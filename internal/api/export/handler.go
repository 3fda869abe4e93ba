package export

import (
	"context"
	"errors"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/exporter"
	"github.com/atelierhq/atelier/internal/render"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// Handler handles export HTTP requests.
type Handler struct {
	store    *store.Store
	exporter *exporter.Service
	pool     *worker.Pool
}

// exportableTypes are the resources the export endpoint accepts.
var exportableTypes = map[string]bool{
	domain.ResourceTemplate: true,
	domain.ResourceBrandKit: true,
	domain.ResourceDocument: true,
	domain.ResourceAnalysis: true,
	domain.ResourceWorkflow: true,
}

// Create handles POST /api/v1/export. Rendering is synchronous unless
// background=true hands it to the worker pool.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	background, bgDetail := api.BackgroundFlag(r)
	if bgDetail != nil {
		api.WriteValidationError(w, *bgDetail)
		return
	}

	var in domain.ExportInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if in.Format == "" {
		in.Format = "json"
	}

	var details []api.ValidationDetail
	switch {
	case in.ResourceType == "":
		details = append(details, api.FieldRequired("body", "resource_type"))
	case !exportableTypes[in.ResourceType]:
		details = append(details, api.FieldInvalid("body", "resource_type",
			"Input should be 'template', 'brand_kit', 'document', 'analysis' or 'workflow'", "enum"))
	}
	if in.ResourceID == "" {
		details = append(details, api.FieldRequired("body", "resource_id"))
	}
	if !render.Supported(in.Format) {
		details = append(details, api.FieldInvalid("body", "format",
			"Input should be 'json', 'csv', 'markdown' or 'html'", "enum"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	if background {
		job, err := h.pool.Submit(r.Context(), "export.render", func(ctx context.Context) (string, error) {
			exp, err := h.exporter.Run(ctx, in)
			if err != nil {
				return "", err
			}
			return exp.ID, nil
		})
		if err != nil {
			api.WriteInternal(w)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, job)
		return
	}

	exp, err := h.exporter.Run(r.Context(), in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Resource")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, exp)
}

// Formats handles GET /api/v1/export/formats.
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, render.Formats())
}

// Get handles GET /api/v1/export/{export_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	exp, err := h.store.Exports.Get(r.Context(), r.PathValue("export_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Export")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, exp)
}

// Download handles GET /api/v1/export/{export_id}/download, serving the
// rendered bytes with the format's content type.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := h.store.Exports.Data(r.Context(), r.PathValue("export_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Export")
			return
		}
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
