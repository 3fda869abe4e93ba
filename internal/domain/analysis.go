package domain

// Analysis statuses.
const (
	AnalysisPending   = "pending"
	AnalysisCompleted = "completed"
	AnalysisFailed    = "failed"
)

// ColumnStats holds per-column summary statistics for an analysis.
type ColumnStats struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Mean          *float64 `json:"mean,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	StdDev        *float64 `json:"std_dev,omitempty"`
	DistinctCount int      `json:"distinct_count"`
}

// Analysis represents one dataset analysis run.
type Analysis struct {
	ID          string        `json:"id"`
	FileName    string        `json:"file_name"`
	Status      string        `json:"status"`
	RowCount    int           `json:"row_count"`
	ColumnCount int           `json:"column_count"`
	Columns     []ColumnStats `json:"columns"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

// CorrelationMatrix is a square Pearson correlation matrix over the numeric
// columns of an analysis. values[i][j] correlates columns[i] with columns[j].
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// CorrelationPair is one off-diagonal matrix entry, ranked by strength.
type CorrelationPair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
	Strength    string  `json:"strength"`
}

// Correlations bundles the correlation matrix with its ranked pair list.
type Correlations struct {
	AnalysisID string            `json:"analysis_id"`
	Matrix     CorrelationMatrix `json:"matrix"`
	Pairs      []CorrelationPair `json:"pairs"`
}
