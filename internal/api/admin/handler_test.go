package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/api/admin"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/testhelpers"
)

func TestResetWipesAndReseeds(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)
	st := store.New(db)

	mux := http.NewServeMux()
	admin.RegisterRoutes(mux, db)
	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	if _, err := st.Workflows.Create(ctx, domain.WorkflowInput{Name: "Leftover"}); err != nil {
		t.Fatalf("create workflow: %v", err)
	}
	if _, err := st.Jobs.Create(ctx, "analyze.csv"); err != nil {
		t.Fatalf("create job: %v", err)
	}

	resp, err := http.Post(srv.URL+"/_atelier/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var workflows, jobs, templates int
	if err := db.QueryRow(`SELECT COUNT(*) FROM workflows`).Scan(&workflows); err != nil {
		t.Fatalf("count workflows: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM jobs`).Scan(&jobs); err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&templates); err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if workflows != 0 || jobs != 0 {
		t.Fatalf("workflows = %d, jobs = %d, want 0", workflows, jobs)
	}
	if templates == 0 {
		t.Fatal("starter templates missing after reset")
	}
}

func TestSeedLeavesDataInPlace(t *testing.T) {
	db := testhelpers.NewMigratedDB(t)
	st := store.New(db)

	mux := http.NewServeMux()
	admin.RegisterRoutes(mux, db)
	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)

	if _, err := st.Jobs.Create(context.Background(), "export.render"); err != nil {
		t.Fatalf("create job: %v", err)
	}

	resp, err := http.Post(srv.URL+"/_atelier/seed", "application/json", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var jobs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM jobs`).Scan(&jobs); err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	if jobs != 1 {
		t.Fatalf("jobs = %d, want 1", jobs)
	}
}
