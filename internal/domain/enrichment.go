package domain

// Enrichment types accepted by the enrichment endpoint.
const (
	EnrichDomain  = "domain"
	EnrichEmail   = "email"
	EnrichCompany = "company"
)

// Enrichment is the result of enriching a single value.
type Enrichment struct {
	Type     string         `json:"type"`
	Value    string         `json:"value"`
	Provider string         `json:"provider"`
	Data     map[string]any `json:"data"`
	Cached   bool           `json:"cached"`
}

// EnrichInput is the request body for an enrichment call.
type EnrichInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ProviderInfo describes one registered enrichment provider.
type ProviderInfo struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CacheStats reports enrichment cache effectiveness.
type CacheStats struct {
	Entries    int    `json:"entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	MaxEntries int    `json:"max_entries"`
	TTLSeconds int    `json:"ttl_seconds"`
}
