// Package analyze computes summary statistics and Pearson correlations for
// uploaded CSV datasets.
package analyze

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/atelierhq/atelier/internal/domain"
)

// ErrEmptyDataset is returned for CSVs with no header row.
var ErrEmptyDataset = errors.New("dataset has no header row")

// Result bundles everything computed from one dataset.
type Result struct {
	RowCount int
	Columns  []domain.ColumnStats
	Matrix   *domain.CorrelationMatrix
}

// CSV reads a comma-separated dataset with a header row and computes
// per-column statistics plus a correlation matrix over the numeric columns.
func CSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make([][]string, len(header))
	rowCount := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowCount+1, err)
		}
		rowCount++
		for i := range header {
			if i < len(record) {
				cols[i] = append(cols[i], strings.TrimSpace(record[i]))
			} else {
				cols[i] = append(cols[i], "")
			}
		}
	}

	stats := make([]domain.ColumnStats, len(header))
	numeric := map[int][]float64{}
	for i, name := range header {
		stats[i] = columnStats(name, cols[i])
		if stats[i].Type == "numeric" {
			numeric[i] = parseFloats(cols[i])
		}
	}

	return &Result{
		RowCount: rowCount,
		Columns:  stats,
		Matrix:   matrix(header, numeric, rowCount),
	}, nil
}

func parseFloats(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			f = math.NaN()
		}
		out[i] = f
	}
	return out
}

// columnStats classifies a column as numeric when every non-empty value
// parses as a float, and computes mean/min/max/stddev for numeric columns.
func columnStats(name string, values []string) domain.ColumnStats {
	st := domain.ColumnStats{Name: name, Type: "text"}

	distinct := map[string]struct{}{}
	nums := []float64{}
	isNumeric := true
	for _, v := range values {
		distinct[v] = struct{}{}
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			isNumeric = false
			continue
		}
		nums = append(nums, f)
	}
	st.DistinctCount = len(distinct)

	if !isNumeric || len(nums) == 0 {
		return st
	}

	st.Type = "numeric"
	mean, minV, maxV := nums[0], nums[0], nums[0]
	sum := 0.0
	for _, f := range nums {
		sum += f
		minV = math.Min(minV, f)
		maxV = math.Max(maxV, f)
	}
	mean = sum / float64(len(nums))

	variance := 0.0
	for _, f := range nums {
		d := f - mean
		variance += d * d
	}
	variance /= float64(len(nums))
	sd := math.Sqrt(variance)

	st.Mean = &mean
	st.Min = &minV
	st.Max = &maxV
	st.StdDev = &sd
	return st
}

// matrix computes the Pearson correlation matrix over the numeric columns.
// Returns nil when fewer than two numeric columns exist.
func matrix(header []string, numeric map[int][]float64, rowCount int) *domain.CorrelationMatrix {
	idx := make([]int, 0, len(numeric))
	for i := range header {
		if _, ok := numeric[i]; ok {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 || rowCount < 2 {
		return nil
	}

	m := &domain.CorrelationMatrix{
		Columns: make([]string, len(idx)),
		Values:  make([][]float64, len(idx)),
	}
	for a, i := range idx {
		m.Columns[a] = header[i]
		m.Values[a] = make([]float64, len(idx))
		for b, j := range idx {
			m.Values[a][b] = pearson(numeric[i], numeric[j])
		}
	}
	return m
}

// pearson computes the correlation coefficient, skipping row pairs where
// either side failed to parse.
func pearson(xs, ys []float64) float64 {
	var n int
	var sumX, sumY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		n++
		sumX += xs[i]
		sumY += ys[i]
	}
	if n < 2 {
		return 0
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// Pairs flattens a correlation matrix into its unique off-diagonal entries,
// ranked by absolute coefficient.
func Pairs(m *domain.CorrelationMatrix) []domain.CorrelationPair {
	pairs := []domain.CorrelationPair{}
	if m == nil {
		return pairs
	}
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			c := m.Values[i][j]
			pairs = append(pairs, domain.CorrelationPair{
				ColumnA:     m.Columns[i],
				ColumnB:     m.Columns[j],
				Coefficient: c,
				Strength:    strength(c),
			})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Coefficient) > math.Abs(pairs[b].Coefficient)
	})
	return pairs
}

func strength(c float64) string {
	switch abs := math.Abs(c); {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	case abs >= 0.1:
		return "weak"
	default:
		return "none"
	}
}
