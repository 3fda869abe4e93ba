package domain

// Export statuses.
const (
	ExportComplete = "complete"
	ExportFailed   = "failed"
)

// Exportable resource types.
const (
	ResourceTemplate = "template"
	ResourceBrandKit = "brand_kit"
	ResourceDocument = "document"
	ResourceAnalysis = "analysis"
	ResourceWorkflow = "workflow"
)

// ExportInput is the request body for starting an export.
type ExportInput struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Format       string `json:"format"`
}

// Export represents one export of a resource into a rendered format.
type Export struct {
	ID           string `json:"id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Format       string `json:"format"`
	Status       string `json:"status"`
	SizeBytes    int64  `json:"size_bytes"`
	DownloadURL  string `json:"download_url,omitempty"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
}
