package domain

// Document statuses.
const (
	DocumentPending = "pending"
	DocumentIndexed = "indexed"
	DocumentFailed  = "failed"
)

// Document represents an ingested knowledge-base document.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Status      string `json:"status"`
	ChunkCount  int    `json:"chunk_count"`
	CreatedAt   string `json:"created_at"`
}

// Chunk is one indexed slice of a document's text.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
}

// SearchResult is a scored chunk match for a knowledge search.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// Answer is the response to a knowledge-base question.
type Answer struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
}

// GraphEntity is a node in the knowledge graph.
type GraphEntity struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GraphRelation is a weighted co-occurrence edge between two entities.
type GraphRelation struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// KnowledgeGraph bundles entities and relations extracted from the corpus.
type KnowledgeGraph struct {
	Entities  []GraphEntity   `json:"entities"`
	Relations []GraphRelation `json:"relations"`
}
