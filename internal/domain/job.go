package domain

// Job statuses.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// Job tracks one background execution started with background=true.
type Job struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	ResourceID string `json:"resource_id,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// JobListOpts holds the parameters for listing jobs.
type JobListOpts struct {
	Limit  int
	Offset int
	Status string
}
