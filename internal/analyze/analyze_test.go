package analyze_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/atelierhq/atelier/internal/analyze"
)

const sample = `region,units,revenue
north,10,100
south,20,200
east,30,300
west,40,400
`

func TestCSVStats(t *testing.T) {
	res, err := analyze.CSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if res.RowCount != 4 {
		t.Errorf("expected 4 rows, got %d", res.RowCount)
	}
	if len(res.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(res.Columns))
	}

	region := res.Columns[0]
	if region.Type != "text" {
		t.Errorf("expected region to be text, got %s", region.Type)
	}
	if region.DistinctCount != 4 {
		t.Errorf("expected 4 distinct regions, got %d", region.DistinctCount)
	}

	units := res.Columns[1]
	if units.Type != "numeric" {
		t.Fatalf("expected units to be numeric, got %s", units.Type)
	}
	if units.Mean == nil || *units.Mean != 25 {
		t.Errorf("expected mean=25, got %v", units.Mean)
	}
	if *units.Min != 10 || *units.Max != 40 {
		t.Errorf("expected min=10 max=40, got %v/%v", *units.Min, *units.Max)
	}
}

func TestCSVPerfectCorrelation(t *testing.T) {
	res, err := analyze.CSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Matrix == nil {
		t.Fatal("expected a correlation matrix")
	}

	if len(res.Matrix.Columns) != 2 {
		t.Fatalf("expected 2 numeric columns, got %v", res.Matrix.Columns)
	}
	// revenue = 10 * units, so the correlation is exactly 1.
	if got := res.Matrix.Values[0][1]; math.Abs(got-1) > 1e-9 {
		t.Errorf("expected coefficient 1, got %f", got)
	}
	// Diagonal is self-correlation.
	if got := res.Matrix.Values[0][0]; math.Abs(got-1) > 1e-9 {
		t.Errorf("expected diagonal 1, got %f", got)
	}

	pairs := analyze.Pairs(res.Matrix)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].ColumnA != "units" || pairs[0].ColumnB != "revenue" {
		t.Errorf("unexpected pair: %+v", pairs[0])
	}
	if pairs[0].Strength != "strong" {
		t.Errorf("expected strong, got %s", pairs[0].Strength)
	}
}

func TestCSVNegativeCorrelation(t *testing.T) {
	data := `a,b
1,9
2,7
3,5
4,3
`
	res, err := analyze.CSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := res.Matrix.Values[0][1]; math.Abs(got+1) > 1e-9 {
		t.Errorf("expected coefficient -1, got %f", got)
	}
}

func TestCSVSingleNumericColumnHasNoMatrix(t *testing.T) {
	data := "name,score\na,1\nb,2\n"
	res, err := analyze.CSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Matrix != nil {
		t.Errorf("expected no matrix for one numeric column, got %v", res.Matrix.Columns)
	}
	if len(analyze.Pairs(res.Matrix)) != 0 {
		t.Error("expected no pairs")
	}
}

func TestCSVEmpty(t *testing.T) {
	if _, err := analyze.CSV(strings.NewReader("")); !errors.Is(err, analyze.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestCSVSkipsUnparsableCells(t *testing.T) {
	data := `x,y
1,2
oops,4
3,6
5,10
`
	res, err := analyze.CSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// Column x is text overall (one bad cell), so no matrix.
	if res.Columns[0].Type != "text" {
		t.Errorf("expected x to degrade to text, got %s", res.Columns[0].Type)
	}
	if res.Columns[1].Type != "numeric" {
		t.Errorf("expected y numeric, got %s", res.Columns[1].Type)
	}
}
