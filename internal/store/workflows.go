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

// WorkflowStore defines the interface for workflow and execution persistence.
type WorkflowStore interface {
	Create(ctx context.Context, in domain.WorkflowInput) (*domain.Workflow, error)
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	GetByWebhookToken(ctx context.Context, token string) (*domain.Workflow, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Workflow, int, error)
	ListScheduled(ctx context.Context) ([]*domain.Workflow, error)
	Replace(ctx context.Context, id string, in domain.WorkflowInput) (*domain.Workflow, error)
	Delete(ctx context.Context, id string) error

	CreateExecution(ctx context.Context, workflowID string) (*domain.Execution, error)
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
	ListExecutions(ctx context.Context, workflowID string, limit, offset int) ([]*domain.Execution, int, error)
	UpdateExecution(ctx context.Context, exec *domain.Execution, resumeFrom int) error
	ClaimExecution(ctx context.Context, id, from, to string) (bool, error)
	ResumeIndex(ctx context.Context, executionID string) (int, error)
}

// SQLiteWorkflowStore implements WorkflowStore backed by SQLite.
type SQLiteWorkflowStore struct {
	db *sql.DB
}

// NewSQLiteWorkflowStore creates a new SQLiteWorkflowStore.
func NewSQLiteWorkflowStore(db *sql.DB) *SQLiteWorkflowStore {
	return &SQLiteWorkflowStore{db: db}
}

// Create inserts a new workflow. Webhook-triggered workflows get a fresh
// webhook token.
func (s *SQLiteWorkflowStore) Create(ctx context.Context, in domain.WorkflowInput) (*domain.Workflow, error) {
	ts := now()
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	wf := &domain.Workflow{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Enabled:     enabled,
		Trigger:     in.Trigger,
		Steps:       in.Steps,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if wf.Trigger.Type == "" {
		wf.Trigger.Type = domain.TriggerManual
	}
	if wf.Trigger.Type == domain.TriggerWebhook && wf.Trigger.WebhookToken == "" {
		wf.Trigger.WebhookToken = uuid.NewString()
	}
	if wf.Steps == nil {
		wf.Steps = []domain.Step{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, name, description, enabled, trigger_type, trigger_cron, webhook_token, steps, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wf.ID, wf.Name, wf.Description, wf.Enabled, wf.Trigger.Type, wf.Trigger.Cron, wf.Trigger.WebhookToken,
		mustJSON(wf.Steps), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return wf, nil
}

func scanWorkflow(scan func(dest ...any) error) (*domain.Workflow, error) {
	var (
		wf    domain.Workflow
		steps string
	)
	err := scan(&wf.ID, &wf.Name, &wf.Description, &wf.Enabled,
		&wf.Trigger.Type, &wf.Trigger.Cron, &wf.Trigger.WebhookToken,
		&steps, &wf.CreatedAt, &wf.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan workflow: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &wf.Steps); err != nil {
		wf.Steps = []domain.Step{}
	}
	return &wf, nil
}

const workflowColumns = `id, name, description, enabled, trigger_type, trigger_cron, webhook_token, steps, created_at, updated_at`

// Get retrieves a workflow by ID.
func (s *SQLiteWorkflowStore) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	return scanWorkflow(row.Scan)
}

// GetByWebhookToken resolves a webhook token to its workflow.
func (s *SQLiteWorkflowStore) GetByWebhookToken(ctx context.Context, token string) (*domain.Workflow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE webhook_token = ? AND webhook_token != ''`, token)
	return scanWorkflow(row.Scan)
}

// List returns a page of workflows plus the total count.
func (s *SQLiteWorkflowStore) List(ctx context.Context, limit, offset int) ([]*domain.Workflow, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflows`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workflows: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	workflows := []*domain.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, total, rows.Err()
}

// ListScheduled returns every enabled workflow with a schedule trigger.
func (s *SQLiteWorkflowStore) ListScheduled(ctx context.Context) ([]*domain.Workflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE enabled AND trigger_type = ?`,
		domain.TriggerSchedule)
	if err != nil {
		return nil, fmt.Errorf("list scheduled workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	workflows := []*domain.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows.Scan)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// Replace updates all mutable fields of a workflow. The webhook token is
// preserved across updates so registered callers keep working.
func (s *SQLiteWorkflowStore) Replace(ctx context.Context, id string, in domain.WorkflowInput) (*domain.Workflow, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	enabled := existing.Enabled
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	trigger := in.Trigger
	if trigger.Type == "" {
		trigger.Type = domain.TriggerManual
	}
	if trigger.Type == domain.TriggerWebhook {
		trigger.WebhookToken = existing.Trigger.WebhookToken
		if trigger.WebhookToken == "" {
			trigger.WebhookToken = uuid.NewString()
		}
	} else {
		trigger.WebhookToken = ""
	}
	steps := in.Steps
	if steps == nil {
		steps = []domain.Step{}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE workflows SET name = ?, description = ?, enabled = ?, trigger_type = ?, trigger_cron = ?, webhook_token = ?, steps = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Description, enabled, trigger.Type, trigger.Cron, trigger.WebhookToken,
		mustJSON(steps), now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update workflow: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a workflow and its executions.
func (s *SQLiteWorkflowStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workflow_executions WHERE workflow_id = ?`, id); err != nil {
		return fmt.Errorf("delete executions: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateExecution inserts a new pending execution for a workflow.
func (s *SQLiteWorkflowStore) CreateExecution(ctx context.Context, workflowID string) (*domain.Execution, error) {
	exec := &domain.Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     domain.ExecutionPending,
		Steps:      []domain.StepResult{},
		StartedAt:  now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_executions (id, workflow_id, status, steps, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		exec.ID, exec.WorkflowID, exec.Status, mustJSON(exec.Steps), exec.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert execution: %w", err)
	}
	return exec, nil
}

// GetExecution retrieves an execution by ID.
func (s *SQLiteWorkflowStore) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	var (
		exec     domain.Execution
		steps    string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, workflow_id, status, steps, started_at, finished_at
		 FROM workflow_executions WHERE id = ?`, id,
	).Scan(&exec.ID, &exec.WorkflowID, &exec.Status, &steps, &exec.StartedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get execution: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &exec.Steps); err != nil {
		exec.Steps = []domain.StepResult{}
	}
	exec.FinishedAt = finished.String
	return &exec, nil
}

// ListExecutions returns a page of executions for a workflow, newest first.
func (s *SQLiteWorkflowStore) ListExecutions(ctx context.Context, workflowID string, limit, offset int) ([]*domain.Execution, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflow_executions WHERE workflow_id = ?`, workflowID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count executions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workflow_id, status, steps, started_at, finished_at
		 FROM workflow_executions WHERE workflow_id = ?
		 ORDER BY started_at DESC, id LIMIT ? OFFSET ?`,
		workflowID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	executions := []*domain.Execution{}
	for rows.Next() {
		var (
			exec     domain.Execution
			steps    string
			finished sql.NullString
		)
		if err := rows.Scan(&exec.ID, &exec.WorkflowID, &exec.Status, &steps, &exec.StartedAt, &finished); err != nil {
			return nil, 0, fmt.Errorf("scan execution: %w", err)
		}
		if err := json.Unmarshal([]byte(steps), &exec.Steps); err != nil {
			exec.Steps = []domain.StepResult{}
		}
		exec.FinishedAt = finished.String
		executions = append(executions, &exec)
	}
	return executions, total, rows.Err()
}

// UpdateExecution persists the status, step results, and resume position of
// an execution.
func (s *SQLiteWorkflowStore) UpdateExecution(ctx context.Context, exec *domain.Execution, resumeFrom int) error {
	var finished any
	if exec.FinishedAt != "" {
		finished = exec.FinishedAt
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_executions SET status = ?, steps = ?, resume_from = ?, finished_at = ? WHERE id = ?`,
		exec.Status, mustJSON(exec.Steps), resumeFrom, finished, exec.ID,
	)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimExecution atomically moves an execution from one status to another.
// It reports false when the row was not in the expected status, which is how
// concurrent approvals of the same execution are serialized.
func (s *SQLiteWorkflowStore) ClaimExecution(ctx context.Context, id, from, to string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_executions SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("claim execution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim execution: %w", err)
	}
	return n > 0, nil
}

// ResumeIndex returns the step index a waiting execution should resume from.
func (s *SQLiteWorkflowStore) ResumeIndex(ctx context.Context, executionID string) (int, error) {
	var idx int
	err := s.db.QueryRowContext(ctx,
		`SELECT resume_from FROM workflow_executions WHERE id = ?`, executionID).Scan(&idx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get resume index: %w", err)
	}
	return idx, nil
}
