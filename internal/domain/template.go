package domain

import "encoding/json"

// Template represents a reusable content template.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags"`
	Definition  json.RawMessage `json:"definition"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// TemplateInput holds the data needed to create or replace a template.
type TemplateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Definition  json.RawMessage `json:"definition"`
}

// TemplateImportResult bundles the identifier of an imported template with
// the map of stored artifacts (part name -> storage path).
type TemplateImportResult struct {
	TemplateID string            `json:"template_id"`
	Artifacts  map[string]string `json:"artifacts"`
}

// TemplateListOpts holds the parameters for listing templates.
type TemplateListOpts struct {
	Limit    int
	Offset   int
	Category string
	Query    string
}

// Category is a named template category.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
