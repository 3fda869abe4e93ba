// Package workflow executes workflow definitions step by step.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/enrich"
	"github.com/atelierhq/atelier/internal/exporter"
	"github.com/atelierhq/atelier/internal/metrics"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrNotWaiting is returned when approving or rejecting an execution that is
// not paused at an approval step.
var ErrNotWaiting = errors.New("execution is not waiting for approval")

// maxDelaySeconds caps how long a delay step may sleep.
const maxDelaySeconds = 60

// Engine runs workflow executions and resumes paused ones.
type Engine struct {
	store    *store.Store
	enricher *enrich.Service
	exporter *exporter.Service
	client   *http.Client
}

// NewEngine creates an Engine.
func NewEngine(st *store.Store, enricher *enrich.Service, exp *exporter.Service) *Engine {
	return &Engine{
		store:    st,
		enricher: enricher,
		exporter: exp,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Execute creates a new execution for the workflow and runs its steps. If an
// approval step is reached, the execution is persisted as waiting_approval
// and returned; Approve resumes it.
func (e *Engine) Execute(ctx context.Context, wf *domain.Workflow) (*domain.Execution, error) {
	exec, err := e.store.Workflows.CreateExecution(ctx, wf.ID)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, wf, exec, 0)
}

// Approve resumes an execution paused at an approval step.
func (e *Engine) Approve(ctx context.Context, executionID string) (*domain.Execution, error) {
	exec, err := e.store.Workflows.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if exec.Status != domain.ExecutionWaitingApproval {
		return nil, ErrNotWaiting
	}
	if err := e.claim(ctx, exec); err != nil {
		return nil, err
	}

	wf, err := e.store.Workflows.Get(ctx, exec.WorkflowID)
	if err != nil {
		return nil, err
	}
	resume, err := e.store.Workflows.ResumeIndex(ctx, exec.ID)
	if err != nil {
		return nil, err
	}

	if n := len(exec.Steps); n > 0 && exec.Steps[n-1].Status == domain.StepPending {
		exec.Steps[n-1].Status = domain.StepSucceeded
		exec.Steps[n-1].Output = json.RawMessage(`{"approved":true}`)
	}
	return e.run(ctx, wf, exec, resume)
}

// Reject finalizes an execution paused at an approval step. The remaining
// steps never run.
func (e *Engine) Reject(ctx context.Context, executionID string) (*domain.Execution, error) {
	exec, err := e.store.Workflows.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if exec.Status != domain.ExecutionWaitingApproval {
		return nil, ErrNotWaiting
	}
	if err := e.claim(ctx, exec); err != nil {
		return nil, err
	}

	if n := len(exec.Steps); n > 0 && exec.Steps[n-1].Status == domain.StepPending {
		exec.Steps[n-1].Status = domain.StepSkipped
		exec.Steps[n-1].Error = "rejected"
	}
	exec.Status = domain.ExecutionRejected
	exec.FinishedAt = now()
	if err := e.store.Workflows.UpdateExecution(ctx, exec, 0); err != nil {
		return nil, err
	}
	metrics.WorkflowExecutions.WithLabelValues(domain.ExecutionRejected).Inc()
	return exec, nil
}

// claim atomically transitions a waiting execution to running. Two callers
// can pass the status check at once; the conditional update in the store
// picks the single winner and the loser gets ErrNotWaiting.
func (e *Engine) claim(ctx context.Context, exec *domain.Execution) error {
	claimed, err := e.store.Workflows.ClaimExecution(ctx, exec.ID,
		domain.ExecutionWaitingApproval, domain.ExecutionRunning)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrNotWaiting
	}
	exec.Status = domain.ExecutionRunning
	return nil
}

func (e *Engine) run(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, from int) (*domain.Execution, error) {
	exec.Status = domain.ExecutionRunning

	for i := from; i < len(wf.Steps); i++ {
		step := wf.Steps[i]

		if step.Type == domain.StepApproval {
			exec.Steps = append(exec.Steps, domain.StepResult{
				Name:   step.Name,
				Type:   step.Type,
				Status: domain.StepPending,
			})
			exec.Status = domain.ExecutionWaitingApproval
			if err := e.store.Workflows.UpdateExecution(ctx, exec, i+1); err != nil {
				return nil, err
			}
			return exec, nil
		}

		result := e.runStep(ctx, step)
		exec.Steps = append(exec.Steps, result)

		if result.Status == domain.StepFailed {
			exec.Status = domain.ExecutionFailed
			exec.FinishedAt = now()
			if err := e.store.Workflows.UpdateExecution(ctx, exec, 0); err != nil {
				return nil, err
			}
			metrics.WorkflowExecutions.WithLabelValues(domain.ExecutionFailed).Inc()
			return exec, nil
		}
	}

	exec.Status = domain.ExecutionCompleted
	exec.FinishedAt = now()
	if err := e.store.Workflows.UpdateExecution(ctx, exec, 0); err != nil {
		return nil, err
	}
	metrics.WorkflowExecutions.WithLabelValues(domain.ExecutionCompleted).Inc()
	return exec, nil
}

func (e *Engine) runStep(ctx context.Context, step domain.Step) domain.StepResult {
	result := domain.StepResult{Name: step.Name, Type: step.Type}

	var (
		output json.RawMessage
		err    error
	)
	switch step.Type {
	case domain.StepEnrich:
		output, err = e.stepEnrich(step.Config)
	case domain.StepExport:
		output, err = e.stepExport(ctx, step.Config)
	case domain.StepWebhook:
		output, err = e.stepWebhook(ctx, step.Config)
	case domain.StepDelay:
		output, err = e.stepDelay(ctx, step.Config)
	default:
		err = fmt.Errorf("unknown step type %q", step.Type)
	}

	if err != nil {
		result.Status = domain.StepFailed
		result.Error = err.Error()
		return result
	}
	result.Status = domain.StepSucceeded
	result.Output = output
	return result
}

func (e *Engine) stepEnrich(config json.RawMessage) (json.RawMessage, error) {
	var cfg struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, fmt.Errorf("enrich config: %w", err)
	}
	if cfg.Value == "" {
		return nil, errors.New("enrich config: value is required")
	}

	enrichment, err := e.enricher.Enrich(cfg.Type, cfg.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enrichment)
}

func (e *Engine) stepExport(ctx context.Context, config json.RawMessage) (json.RawMessage, error) {
	var in domain.ExportInput
	if err := json.Unmarshal(config, &in); err != nil {
		return nil, fmt.Errorf("export config: %w", err)
	}
	if in.Format == "" {
		in.Format = "json"
	}

	exp, err := e.exporter.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	if exp.Status != domain.ExportComplete {
		return nil, fmt.Errorf("export %s failed: %s", exp.ID, exp.Error)
	}
	return json.Marshal(map[string]string{
		"export_id":    exp.ID,
		"download_url": exp.DownloadURL,
	})
}

func (e *Engine) stepWebhook(ctx context.Context, config json.RawMessage) (json.RawMessage, error) {
	var cfg struct {
		URL     string          `json:"url"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, fmt.Errorf("webhook config: %w", err)
	}
	if cfg.URL == "" {
		return nil, errors.New("webhook config: url is required")
	}
	if len(cfg.Payload) == 0 {
		cfg.Payload = json.RawMessage(`{}`)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(cfg.Payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return json.Marshal(map[string]int{"status_code": resp.StatusCode})
}

func (e *Engine) stepDelay(ctx context.Context, config json.RawMessage) (json.RawMessage, error) {
	var cfg struct {
		Seconds float64 `json:"seconds"`
	}
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, fmt.Errorf("delay config: %w", err)
	}
	if cfg.Seconds < 0 {
		return nil, errors.New("delay config: seconds must not be negative")
	}
	if cfg.Seconds > maxDelaySeconds {
		cfg.Seconds = maxDelaySeconds
	}

	select {
	case <-time.After(time.Duration(cfg.Seconds * float64(time.Second))):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return json.Marshal(map[string]float64{"seconds": cfg.Seconds})
}

func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
