package knowledge

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/knowledge"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// maxDocumentBytes bounds document uploads.
const maxDocumentBytes = 32 << 20

// Handler handles knowledge-base HTTP requests.
type Handler struct {
	store *store.Store
	pool  *worker.Pool
}

// Upload handles POST /api/v1/knowledge/documents. Ingestion chunks the text
// and indexes it; with background=true the chunking runs on the worker pool.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	background, bgDetail := api.BackgroundFlag(r)
	if bgDetail != nil {
		api.WriteValidationError(w, *bgDetail)
		return
	}

	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
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

	text, err := io.ReadAll(file)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	doc, err := h.store.Documents.Create(r.Context(), title, header.Filename, contentType, int64(len(text)))
	if err != nil {
		api.WriteInternal(w)
		return
	}

	index := func(ctx context.Context) (string, error) {
		chunks := knowledge.ChunkText(string(text))
		if len(chunks) == 0 {
			_ = h.store.Documents.SetFailed(ctx, doc.ID)
			return doc.ID, errors.New("document contains no indexable text")
		}
		if err := h.store.Documents.SetIndexed(ctx, doc.ID, chunks); err != nil {
			return doc.ID, err
		}
		return doc.ID, nil
	}

	if background {
		job, err := h.pool.Submit(r.Context(), "knowledge.index", index)
		if err != nil {
			api.WriteInternal(w)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, job)
		return
	}

	if _, err := index(r.Context()); err != nil {
		// The document row stays in failed state for inspection.
		api.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	indexed, err := h.store.Documents.Get(r.Context(), doc.ID)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, indexed)
}

// List handles GET /api/v1/knowledge/documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	docs, total, err := h.store.Documents.List(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, docs, total, limit, offset)
}

// Get handles GET /api/v1/knowledge/documents/{document_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Documents.Get(r.Context(), r.PathValue("document_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Document")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/knowledge/documents/{document_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Documents.Delete(r.Context(), r.PathValue("document_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Document")
			return
		}
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/v1/knowledge/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		api.WriteValidationError(w, api.FieldRequired("query", "q"))
		return
	}
	limit, _, details := api.Pagination(r, 10)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	chunks, err := h.store.Documents.AllChunks(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	results := knowledge.Search(chunks, query, limit)
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

// Ask handles POST /api/v1/knowledge/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if !api.DecodeJSON(w, r, &body) {
		return
	}
	if body.Question == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "question"))
		return
	}
	if body.TopK <= 0 {
		body.TopK = 4
	}

	chunks, err := h.store.Documents.AllChunks(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, knowledge.Answer(chunks, body.Question, body.TopK))
}

// Graph handles GET /api/v1/knowledge/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	limit, _, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	chunks, err := h.store.Documents.AllChunks(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, knowledge.Graph(chunks, limit))
}
