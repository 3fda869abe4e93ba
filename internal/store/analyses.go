package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// AnalysisStore defines the interface for analysis persistence.
type AnalysisStore interface {
	Create(ctx context.Context, fileName string) (*domain.Analysis, error)
	Get(ctx context.Context, id string) (*domain.Analysis, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Analysis, int, error)
	Complete(ctx context.Context, id string, rowCount int, columns []domain.ColumnStats, matrix *domain.CorrelationMatrix) error
	Fail(ctx context.Context, id, errMsg string) error
	Matrix(ctx context.Context, id string) (*domain.CorrelationMatrix, error)
}

// SQLiteAnalysisStore implements AnalysisStore backed by SQLite.
type SQLiteAnalysisStore struct {
	db *sql.DB
}

// NewSQLiteAnalysisStore creates a new SQLiteAnalysisStore.
func NewSQLiteAnalysisStore(db *sql.DB) *SQLiteAnalysisStore {
	return &SQLiteAnalysisStore{db: db}
}

// Create inserts a new analysis in pending state.
func (s *SQLiteAnalysisStore) Create(ctx context.Context, fileName string) (*domain.Analysis, error) {
	a := &domain.Analysis{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    domain.AnalysisPending,
		Columns:   []domain.ColumnStats{},
		CreatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, file_name, status, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.FileName, a.Status, a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}
	return a, nil
}

// Get retrieves an analysis by ID.
func (s *SQLiteAnalysisStore) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	var (
		a       domain.Analysis
		columns string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, status, row_count, column_count, columns, error, created_at
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.FileName, &a.Status, &a.RowCount, &a.ColumnCount, &columns, &a.Error, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(columns), &a.Columns); err != nil {
		a.Columns = []domain.ColumnStats{}
	}
	return &a, nil
}

// List returns a page of analyses plus the total count.
func (s *SQLiteAnalysisStore) List(ctx context.Context, limit, offset int) ([]*domain.Analysis, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, status, row_count, column_count, columns, error, created_at
		 FROM analyses ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	analyses := []*domain.Analysis{}
	for rows.Next() {
		var (
			a       domain.Analysis
			columns string
		)
		if err := rows.Scan(&a.ID, &a.FileName, &a.Status, &a.RowCount, &a.ColumnCount, &columns, &a.Error, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(columns), &a.Columns); err != nil {
			a.Columns = []domain.ColumnStats{}
		}
		analyses = append(analyses, &a)
	}
	return analyses, total, rows.Err()
}

// Complete stores the computed stats and correlation matrix.
func (s *SQLiteAnalysisStore) Complete(ctx context.Context, id string, rowCount int, columns []domain.ColumnStats, matrix *domain.CorrelationMatrix) error {
	var matrixJSON any
	if matrix != nil {
		matrixJSON = mustJSON(matrix)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, row_count = ?, column_count = ?, columns = ?, matrix = ? WHERE id = ?`,
		domain.AnalysisCompleted, rowCount, len(columns), mustJSON(columns), matrixJSON, id,
	)
	if err != nil {
		return fmt.Errorf("complete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fail marks an analysis as failed with a reason.
func (s *SQLiteAnalysisStore) Fail(ctx context.Context, id, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error = ? WHERE id = ?`,
		domain.AnalysisFailed, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("fail analysis: %w", err)
	}
	return nil
}

// Matrix loads the stored correlation matrix of a completed analysis.
func (s *SQLiteAnalysisStore) Matrix(ctx context.Context, id string) (*domain.CorrelationMatrix, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT matrix FROM analyses WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get matrix: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	var m domain.CorrelationMatrix
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return &m, nil
}
