package admin

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/seed"
)

// Handler serves the admin API at /_atelier/.
type Handler struct {
	db *sql.DB
}

// dataTableNames lists all data tables in foreign-key-safe deletion order.
var dataTableNames = []string{
	"api_keys",
	"document_chunks",
	"documents",
	"template_artifacts",
	"templates",
	"template_categories",
	"design_assets",
	"brand_kits",
	"analyses",
	"exports",
	"jobs",
	"workflow_executions",
	"workflows",
	"users",
}

// Reset drops all data from all tables and re-runs seeds.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, table := range dataTableNames {
		if _, err := h.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil { //nolint:gosec // table names are hardcoded constants
			api.WriteDetail(w, http.StatusInternalServerError,
				fmt.Sprintf("failed to clear table %s: %s", table, err))
			return
		}
	}

	if err := seed.Seed(ctx, h.db); err != nil {
		api.WriteDetail(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to re-seed: %s", err))
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SeedData runs seed data without dropping existing data first.
func (h *Handler) SeedData(w http.ResponseWriter, r *http.Request) {
	if err := seed.Seed(r.Context(), h.db); err != nil {
		api.WriteDetail(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to seed: %s", err))
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
