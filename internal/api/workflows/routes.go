package workflows

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/scheduler"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/worker"
	"github.com/atelierhq/atelier/internal/workflow"
)

// RegisterRoutes adds all workflow endpoints to the given mux.
//
// The two-segment routes ({workflow_id}/executions vs executions/{execution_id},
// {workflow_id}/execute vs hooks/{token}) overlap without either being more
// specific, which ServeMux rejects, so they share a wildcard pattern and
// dispatch on the literal segment.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, engine *workflow.Engine, sched *scheduler.Scheduler, pool *worker.Pool) {
	h := &Handler{store: s, engine: engine, scheduler: sched, pool: pool}

	mux.HandleFunc("GET /api/v1/workflows", h.List)
	mux.HandleFunc("POST /api/v1/workflows", h.Create)
	mux.HandleFunc("GET /api/v1/workflows/{workflow_id}", h.Get)
	mux.HandleFunc("PUT /api/v1/workflows/{workflow_id}", h.Replace)
	mux.HandleFunc("DELETE /api/v1/workflows/{workflow_id}", h.Delete)

	mux.HandleFunc("GET /api/v1/workflows/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		switch {
		case first == "executions":
			r.SetPathValue("execution_id", second)
			h.GetExecution(w, r)
		case second == "executions":
			r.SetPathValue("workflow_id", first)
			h.ListExecutions(w, r)
		default:
			api.WriteNotFound(w, "Workflow")
		}
	})

	mux.HandleFunc("POST /api/v1/workflows/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		switch {
		case first == "hooks":
			r.SetPathValue("token", second)
			h.Hook(w, r)
		case second == "execute":
			r.SetPathValue("workflow_id", first)
			h.Execute(w, r)
		default:
			api.WriteNotFound(w, "Workflow")
		}
	})

	mux.HandleFunc("POST /api/v1/workflows/executions/{execution_id}/approve", h.Approve)
	mux.HandleFunc("POST /api/v1/workflows/executions/{execution_id}/reject", h.Reject)
}
