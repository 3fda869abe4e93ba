package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// JobStore defines the interface for background job persistence.
type JobStore interface {
	Create(ctx context.Context, kind string) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, opts domain.JobListOpts) ([]*domain.Job, int, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSucceeded(ctx context.Context, id, resourceID string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// SQLiteJobStore implements JobStore backed by SQLite.
type SQLiteJobStore struct {
	db *sql.DB
}

// NewSQLiteJobStore creates a new SQLiteJobStore.
func NewSQLiteJobStore(db *sql.DB) *SQLiteJobStore {
	return &SQLiteJobStore{db: db}
}

// Create inserts a new queued job.
func (s *SQLiteJobStore) Create(ctx context.Context, kind string) (*domain.Job, error) {
	ts := now()
	j := &domain.Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    domain.JobQueued,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		j.ID, j.Kind, j.Status, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

// Get retrieves a job by ID.
func (s *SQLiteJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, resource_id, error, created_at, updated_at FROM jobs WHERE id = ?`, id,
	).Scan(&j.ID, &j.Kind, &j.Status, &j.ResourceID, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// List returns a page of jobs, optionally filtered by status, newest first.
func (s *SQLiteJobStore) List(ctx context.Context, opts domain.JobListOpts) ([]*domain.Job, int, error) {
	where := ``
	args := []any{}
	if opts.Status != "" {
		where = `WHERE status = ?`
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, resource_id, error, created_at, updated_at
		 FROM jobs `+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []*domain.Job{}
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.Kind, &j.Status, &j.ResourceID, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, total, rows.Err()
}

func (s *SQLiteJobStore) setStatus(ctx context.Context, id, status, resourceID, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, resource_id = CASE WHEN ? != '' THEN ? ELSE resource_id END, error = ?, updated_at = ? WHERE id = ?`,
		status, resourceID, resourceID, errMsg, now(), id,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRunning flips a job to running.
func (s *SQLiteJobStore) MarkRunning(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.JobRunning, "", "")
}

// MarkSucceeded flips a job to succeeded and records the produced resource.
func (s *SQLiteJobStore) MarkSucceeded(ctx context.Context, id, resourceID string) error {
	return s.setStatus(ctx, id, domain.JobSucceeded, resourceID, "")
}

// MarkFailed flips a job to failed with a reason.
func (s *SQLiteJobStore) MarkFailed(ctx context.Context, id, errMsg string) error {
	return s.setStatus(ctx, id, domain.JobFailed, "", errMsg)
}
