package jobs

import (
	"errors"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// Handler handles job HTTP requests.
type Handler struct {
	store *store.Store
}

var jobStatuses = map[string]bool{
	domain.JobQueued:    true,
	domain.JobRunning:   true,
	domain.JobSucceeded: true,
	domain.JobFailed:    true,
}

// List handles GET /api/v1/jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	status := r.URL.Query().Get("status")
	if status != "" && !jobStatuses[status] {
		details = append(details, api.FieldInvalid("query", "status",
			"Input should be 'queued', 'running', 'succeeded' or 'failed'", "enum"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	jobs, total, err := h.store.Jobs.List(r.Context(), domain.JobListOpts{
		Limit:  limit,
		Offset: offset,
		Status: status,
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, jobs, total, limit, offset)
}

// Get handles GET /api/v1/jobs/{job_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.Jobs.Get(r.Context(), r.PathValue("job_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Job")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, job)
}
