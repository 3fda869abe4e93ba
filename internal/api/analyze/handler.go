package analyze

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/atelierhq/atelier/internal/analyze"
	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 64 << 20

// Handler handles dataset analysis HTTP requests.
type Handler struct {
	store *store.Store
	pool  *worker.Pool
}

// Upload handles POST /api/v1/analyze/v2/upload. The CSV is profiled column
// by column and a correlation matrix is computed over the numeric columns;
// background=true moves the computation onto the worker pool.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	background, bgDetail := api.BackgroundFlag(r)
	if bgDetail != nil {
		api.WriteValidationError(w, *bgDetail)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
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

	analysis, err := h.store.Analyses.Create(r.Context(), header.Filename)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	run := func(ctx context.Context) (string, error) {
		result, err := analyze.CSV(bytes.NewReader(data))
		if err != nil {
			_ = h.store.Analyses.Fail(ctx, analysis.ID, err.Error())
			return analysis.ID, err
		}
		if err := h.store.Analyses.Complete(ctx, analysis.ID, result.RowCount, result.Columns, result.Matrix); err != nil {
			return analysis.ID, err
		}
		return analysis.ID, nil
	}

	if background {
		job, err := h.pool.Submit(r.Context(), "analyze.csv", run)
		if err != nil {
			api.WriteInternal(w)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, job)
		return
	}

	if _, err := run(r.Context()); err != nil {
		api.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	completed, err := h.store.Analyses.Get(r.Context(), analysis.ID)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, completed)
}

// List handles GET /api/v1/analyze/v2/results.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	analyses, total, err := h.store.Analyses.List(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, analyses, total, limit, offset)
}

// Get handles GET /api/v1/analyze/v2/results/{analysis_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.store.Analyses.Get(r.Context(), r.PathValue("analysis_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Analysis")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, analysis)
}

// Correlations handles GET /api/v1/analyze/v2/correlations/{analysis_id}.
func (h *Handler) Correlations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("analysis_id")

	matrix, err := h.store.Analyses.Matrix(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Analysis")
			return
		}
		api.WriteInternal(w)
		return
	}
	if matrix == nil {
		// Fewer than two numeric columns: an empty matrix, no pairs.
		matrix = &domain.CorrelationMatrix{Columns: []string{}, Values: [][]float64{}}
	}

	api.WriteJSON(w, http.StatusOK, domain.Correlations{
		AnalysisID: id,
		Matrix:     *matrix,
		Pairs:      analyze.Pairs(matrix),
	})
}
