package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// ExportStore defines the interface for export persistence.
type ExportStore interface {
	Create(ctx context.Context, resourceType, resourceID, format string) (*domain.Export, error)
	Get(ctx context.Context, id string) (*domain.Export, error)
	Complete(ctx context.Context, id, contentType string, data []byte) error
	Fail(ctx context.Context, id, errMsg string) error
	Data(ctx context.Context, id string) (contentType string, data []byte, err error)
}

// SQLiteExportStore implements ExportStore backed by SQLite.
type SQLiteExportStore struct {
	db *sql.DB
}

// NewSQLiteExportStore creates a new SQLiteExportStore.
func NewSQLiteExportStore(db *sql.DB) *SQLiteExportStore {
	return &SQLiteExportStore{db: db}
}

// Create inserts a new export record. Exports are rendered synchronously or
// by a background job; the row starts in complete-pending limbo only long
// enough for the renderer to finish.
func (s *SQLiteExportStore) Create(ctx context.Context, resourceType, resourceID, format string) (*domain.Export, error) {
	exp := &domain.Export{
		ID:           uuid.NewString(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Format:       format,
		Status:       "pending",
		CreatedAt:    now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (id, resource_type, resource_id, format, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.ResourceType, exp.ResourceID, exp.Format, exp.Status, exp.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}
	return exp, nil
}

// Get retrieves an export by ID.
func (s *SQLiteExportStore) Get(ctx context.Context, id string) (*domain.Export, error) {
	var exp domain.Export
	err := s.db.QueryRowContext(ctx,
		`SELECT id, resource_type, resource_id, format, status, size_bytes, error, created_at
		 FROM exports WHERE id = ?`, id,
	).Scan(&exp.ID, &exp.ResourceType, &exp.ResourceID, &exp.Format, &exp.Status, &exp.SizeBytes, &exp.Error, &exp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get export: %w", err)
	}
	if exp.Status == domain.ExportComplete {
		exp.DownloadURL = "/api/v1/export/" + exp.ID + "/download"
	}
	return &exp, nil
}

// Complete stores the rendered bytes and marks the export complete.
func (s *SQLiteExportStore) Complete(ctx context.Context, id, contentType string, data []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exports SET status = ?, content_type = ?, data = ?, size_bytes = ? WHERE id = ?`,
		domain.ExportComplete, contentType, data, len(data), id,
	)
	if err != nil {
		return fmt.Errorf("complete export: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail marks an export as failed with a reason.
func (s *SQLiteExportStore) Fail(ctx context.Context, id, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE exports SET status = ?, error = ? WHERE id = ?`,
		domain.ExportFailed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("fail export: %w", err)
	}
	return nil
}

// Data returns the rendered bytes of a completed export.
func (s *SQLiteExportStore) Data(ctx context.Context, id string) (string, []byte, error) {
	var (
		contentType string
		data        []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data FROM exports WHERE id = ? AND status = ?`,
		id, domain.ExportComplete,
	).Scan(&contentType, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("get export data: %w", err)
	}
	return contentType, data, nil
}
