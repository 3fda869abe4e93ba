package workflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/scheduler"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
	"github.com/atelierhq/atelier/internal/workflow"
)

// Handler handles workflow HTTP requests.
type Handler struct {
	store     *store.Store
	engine    *workflow.Engine
	scheduler *scheduler.Scheduler
	pool      *worker.Pool
}

var (
	triggerTypes = map[string]bool{
		"":                     true, // defaults to manual
		domain.TriggerManual:   true,
		domain.TriggerSchedule: true,
		domain.TriggerWebhook:  true,
	}
	stepTypes = map[string]bool{
		domain.StepEnrich:   true,
		domain.StepExport:   true,
		domain.StepWebhook:  true,
		domain.StepDelay:    true,
		domain.StepApproval: true,
	}
)

func validate(in domain.WorkflowInput) []api.ValidationDetail {
	var details []api.ValidationDetail
	if in.Name == "" {
		details = append(details, api.FieldRequired("body", "name"))
	}
	if !triggerTypes[in.Trigger.Type] {
		details = append(details, api.FieldInvalid("body", "trigger",
			"Input should be 'manual', 'schedule' or 'webhook'", "enum"))
	}
	if in.Trigger.Type == domain.TriggerSchedule && in.Trigger.Cron == "" {
		details = append(details, api.FieldInvalid("body", "trigger",
			"schedule triggers require a cron expression", "value_error"))
	}
	for i, step := range in.Steps {
		if step.Name == "" {
			details = append(details, api.ValidationDetail{
				Loc: []any{"body", "steps", i, "name"}, Msg: "Field required", Type: "missing",
			})
		}
		if !stepTypes[step.Type] {
			details = append(details, api.ValidationDetail{
				Loc:  []any{"body", "steps", i, "type"},
				Msg:  "Input should be 'enrich', 'export', 'webhook', 'delay' or 'approval'",
				Type: "enum",
			})
		}
	}
	return details
}

// List handles GET /api/v1/workflows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	workflows, total, err := h.store.Workflows.List(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, workflows, total, limit, offset)
}

// Create handles POST /api/v1/workflows.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.WorkflowInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if details := validate(in); len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	wf, err := h.store.Workflows.Create(r.Context(), in)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	if err := h.scheduler.Refresh(r.Context()); err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, wf)
}

// Get handles GET /api/v1/workflows/{workflow_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Workflows.Get(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Workflow")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, wf)
}

// Replace handles PUT /api/v1/workflows/{workflow_id}.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var in domain.WorkflowInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}
	if details := validate(in); len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	wf, err := h.store.Workflows.Replace(r.Context(), r.PathValue("workflow_id"), in)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Workflow")
			return
		}
		api.WriteInternal(w)
		return
	}
	if err := h.scheduler.Refresh(r.Context()); err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, wf)
}

// Delete handles DELETE /api/v1/workflows/{workflow_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Workflows.Delete(r.Context(), r.PathValue("workflow_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Workflow")
			return
		}
		api.WriteInternal(w)
		return
	}
	if err := h.scheduler.Refresh(r.Context()); err != nil {
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Execute handles POST /api/v1/workflows/{workflow_id}/execute.
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	background, bgDetail := api.BackgroundFlag(r)
	if bgDetail != nil {
		api.WriteValidationError(w, *bgDetail)
		return
	}

	wf, err := h.store.Workflows.Get(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Workflow")
			return
		}
		api.WriteInternal(w)
		return
	}

	if background {
		job, err := h.pool.Submit(r.Context(), "workflow.execute", func(ctx context.Context) (string, error) {
			exec, err := h.engine.Execute(ctx, wf)
			if err != nil {
				return "", err
			}
			if exec.Status == domain.ExecutionFailed {
				return exec.ID, fmt.Errorf("execution %s failed", exec.ID)
			}
			return exec.ID, nil
		})
		if err != nil {
			api.WriteInternal(w)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, job)
		return
	}

	exec, err := h.engine.Execute(r.Context(), wf)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, exec)
}

// ListExecutions handles GET /api/v1/workflows/{workflow_id}/executions.
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	workflowID := r.PathValue("workflow_id")
	if _, err := h.store.Workflows.Get(r.Context(), workflowID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Workflow")
			return
		}
		api.WriteInternal(w)
		return
	}

	executions, total, err := h.store.Workflows.ListExecutions(r.Context(), workflowID, limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, executions, total, limit, offset)
}

// GetExecution handles GET /api/v1/workflows/executions/{execution_id}.
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	exec, err := h.store.Workflows.GetExecution(r.Context(), r.PathValue("execution_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Execution")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, exec)
}

// Approve handles POST /api/v1/workflows/executions/{execution_id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	exec, err := h.engine.Approve(r.Context(), r.PathValue("execution_id"))
	if err != nil {
		h.writeExecutionError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, exec)
}

// Reject handles POST /api/v1/workflows/executions/{execution_id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	exec, err := h.engine.Reject(r.Context(), r.PathValue("execution_id"))
	if err != nil {
		h.writeExecutionError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, exec)
}

func (h *Handler) writeExecutionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		api.WriteNotFound(w, "Execution")
	case errors.Is(err, workflow.ErrNotWaiting):
		api.WriteConflict(w, "Execution is not waiting for approval")
	default:
		api.WriteInternal(w)
	}
}

// Hook handles POST /api/v1/workflows/hooks/{token}. The token routes to the
// matching webhook-triggered workflow; the run always happens on the worker
// pool so the caller gets a fast 202.
func (h *Handler) Hook(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Workflows.GetByWebhookToken(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "Webhook")
			return
		}
		api.WriteInternal(w)
		return
	}
	if !wf.Enabled {
		api.WriteNotFound(w, "Webhook")
		return
	}

	job, err := h.pool.Submit(r.Context(), "workflow.webhook", func(ctx context.Context) (string, error) {
		exec, err := h.engine.Execute(ctx, wf)
		if err != nil {
			return "", err
		}
		return exec.ID, nil
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusAccepted, job)
}
