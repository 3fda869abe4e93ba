// Package admin serves the local development API at /_atelier/. These
// endpoints exist so test suites can reset state between runs. They sit
// behind the same authentication as the rest of the API.
package admin

import (
	"database/sql"
	"net/http"
)

// RegisterRoutes registers the admin endpoints on the given mux.
func RegisterRoutes(mux *http.ServeMux, db *sql.DB) {
	h := &Handler{db: db}

	mux.HandleFunc("POST /_atelier/reset", h.Reset)
	mux.HandleFunc("POST /_atelier/seed", h.SeedData)
}
