package domain

import "encoding/json"

// Trigger types.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerWebhook  = "webhook"
)

// Step types.
const (
	StepEnrich   = "enrich"
	StepExport   = "export"
	StepWebhook  = "webhook"
	StepDelay    = "delay"
	StepApproval = "approval"
)

// Execution statuses.
const (
	ExecutionPending         = "pending"
	ExecutionRunning         = "running"
	ExecutionWaitingApproval = "waiting_approval"
	ExecutionCompleted       = "completed"
	ExecutionFailed          = "failed"
	ExecutionRejected        = "rejected"
)

// Step statuses.
const (
	StepPending   = "pending"
	StepSucceeded = "succeeded"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// Trigger describes how a workflow is started.
type Trigger struct {
	Type         string `json:"type"`
	Cron         string `json:"cron,omitempty"`
	WebhookToken string `json:"webhook_token,omitempty"`
}

// Step is one unit of work inside a workflow definition.
type Step struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Workflow is an automation definition.
type Workflow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Enabled     bool    `json:"enabled"`
	Trigger     Trigger `json:"trigger"`
	Steps       []Step  `json:"steps"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// WorkflowInput holds the data needed to create or replace a workflow.
type WorkflowInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Enabled     *bool   `json:"enabled"`
	Trigger     Trigger `json:"trigger"`
	Steps       []Step  `json:"steps"`
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Execution is one run of a workflow.
type Execution struct {
	ID         string       `json:"id"`
	WorkflowID string       `json:"workflow_id"`
	Status     string       `json:"status"`
	Steps      []StepResult `json:"steps"`
	StartedAt  string       `json:"started_at"`
	FinishedAt string       `json:"finished_at,omitempty"`
}
