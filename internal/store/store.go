// Package store provides SQLite-backed persistence for every API resource.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint is violated.
var ErrConflict = errors.New("conflict")

// Store holds all sub-stores used by the application.
type Store struct {
	DB        *sql.DB
	Users     UserStore
	Templates TemplateStore
	BrandKits BrandKitStore
	Documents DocumentStore
	Analyses  AnalysisStore
	Exports   ExportStore
	Workflows WorkflowStore
	Jobs      JobStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:        db,
		Users:     NewSQLiteUserStore(db),
		Templates: NewSQLiteTemplateStore(db),
		BrandKits: NewSQLiteBrandKitStore(db),
		Documents: NewSQLiteDocumentStore(db),
		Analyses:  NewSQLiteAnalysisStore(db),
		Exports:   NewSQLiteExportStore(db),
		Workflows: NewSQLiteWorkflowStore(db),
		Jobs:      NewSQLiteJobStore(db),
	}
}
