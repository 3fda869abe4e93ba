package templates

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/render"
	"github.com/atelierhq/atelier/internal/store"
)

// maxImportBytes bounds multipart template imports.
const maxImportBytes = 16 << 20

// Handler handles template HTTP requests.
type Handler struct {
	store *store.Store
}

// List handles GET /api/v1/templates.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	opts := domain.TemplateListOpts{
		Limit:    limit,
		Offset:   offset,
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	templates, total, err := h.store.Templates.List(r.Context(), opts)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, templates, total, limit, offset)
}

// Create handles POST /api/v1/templates.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}

	var details []api.ValidationDetail
	if in.Name == "" {
		details = append(details, api.FieldRequired("body", "name"))
	}
	if len(in.Definition) == 0 {
		details = append(details, api.FieldRequired("body", "definition"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	tpl, err := h.store.Templates.Create(r.Context(), in)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, tpl)
}

// Get handles GET /api/v1/templates/{template_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.store.Templates.Get(r.Context(), r.PathValue("template_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Template")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, tpl)
}

// Replace handles PUT /api/v1/templates/{template_id}.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	var details []api.ValidationDetail
	if in.Name == "" {
		details = append(details, api.FieldRequired("body", "name"))
	}
	if len(in.Definition) == 0 {
		details = append(details, api.FieldRequired("body", "definition"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	tpl, err := h.store.Templates.Replace(r.Context(), r.PathValue("template_id"), in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Template")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, tpl)
}

// Delete handles DELETE /api/v1/templates/{template_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Templates.Delete(r.Context(), r.PathValue("template_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Template")
			return
		}
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/v1/templates/import. The file part carries the
// JSON template definition; every other file part is stored as an artifact.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
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

	definition, err := io.ReadAll(file)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	if !json.Valid(definition) {
		api.WriteValidationError(w, api.FieldInvalid("body", "file",
			"file must contain a JSON template definition", "value_error"))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, path.Ext(header.Filename))
	}

	tpl, err := h.store.Templates.Create(r.Context(), domain.TemplateInput{
		Name:        name,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Definition:  definition,
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}

	artifacts := map[string]string{}
	for part, headers := range r.MultipartForm.File {
		if part == "file" || len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			api.WriteInternal(w)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			api.WriteInternal(w)
			return
		}
		storagePath := "templates/" + tpl.ID + "/" + part
		if err := h.store.Templates.AddArtifact(r.Context(), tpl.ID, part, storagePath, data); err != nil {
			api.WriteInternal(w)
			return
		}
		artifacts[part] = storagePath
	}

	api.WriteJSON(w, http.StatusOK, domain.TemplateImportResult{
		TemplateID: tpl.ID,
		Artifacts:  artifacts,
	})
}

// Duplicate handles POST /api/v1/templates/{template_id}/duplicate. The new
// name arrives form-encoded.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		api.WriteValidationError(w, api.FieldInvalid("body", "name",
			"Input should be a valid form body", "value_error"))
		return
	}
	name := r.PostFormValue("name")
	if name == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "name"))
		return
	}

	tpl, err := h.store.Templates.Duplicate(r.Context(), r.PathValue("template_id"), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Template")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, tpl)
}

// exportFormats are the formats a template can be exported into directly.
var exportFormats = map[string]bool{"json": true, "markdown": true, "html": true}

// Export handles GET /api/v1/templates/{template_id}/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if !exportFormats[format] {
		api.WriteValidationError(w, api.FieldInvalid("query", "format",
			"Input should be 'json', 'markdown' or 'html'", "enum"))
		return
	}

	tpl, err := h.store.Templates.Get(r.Context(), r.PathValue("template_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Template")
			return
		}
		api.WriteInternal(w)
		return
	}

	data, err := render.Resource(format, tpl.Name, tpl)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Categories handles GET /api/v1/templates/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Templates.Categories(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, categories)
}
