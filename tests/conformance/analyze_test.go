package conformance_test

import (
	"net/http"
	"testing"
)

const salesCSV = `region,revenue,spend
north,100,10
south,200,20
east,300,30
west,400,40
`

func TestCSVUploadAndCorrelations(t *testing.T) {
	resetServer(t)

	resp := doUpload(t, "/api/v1/analyze/v2/upload", "file", "sales.csv", []byte(salesCSV), nil)
	mustStatus(t, resp, http.StatusOK)
	analysis := readJSON(t, resp)
	assertStringField(t, analysis, "status", "completed")
	assertNumberField(t, analysis, "row_count", 4)
	assertNumberField(t, analysis, "column_count", 3)
	id := assertIsString(t, analysis, "id")

	resp = doRequest(t, http.MethodGet, "/api/v1/analyze/v2/correlations/"+id, nil)
	mustStatus(t, resp, http.StatusOK)
	corr := readJSON(t, resp)
	assertStringField(t, corr, "analysis_id", id)

	matrix := assertIsObject(t, corr, "matrix")
	cols := assertIsArray(t, matrix, "columns")
	if len(cols) != 2 {
		t.Fatalf("numeric columns = %d, want 2", len(cols))
	}

	pairs := assertIsArray(t, corr, "pairs")
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	pair := toObject(t, pairs[0])
	assertStringField(t, pair, "strength", "strong")
}

func TestCSVBackgroundUpload(t *testing.T) {
	resetServer(t)

	resp := doUpload(t, "/api/v1/analyze/v2/upload?background=true", "file", "sales.csv", []byte(salesCSV), nil)
	mustStatus(t, resp, http.StatusAccepted)
	job := readJSON(t, resp)
	assertStringField(t, job, "kind", "analyze.csv")

	done := waitForJob(t, assertIsString(t, job, "id"))
	assertStringField(t, done, "status", "succeeded")

	resp = doRequest(t, http.MethodGet, "/api/v1/analyze/v2/results/"+assertIsString(t, done, "resource_id"), nil)
	mustStatus(t, resp, http.StatusOK)
	analysis := readJSON(t, resp)
	assertStringField(t, analysis, "status", "completed")
}

func TestBadCSVFailsAnalysis(t *testing.T) {
	resetServer(t)

	resp := doUpload(t, "/api/v1/analyze/v2/upload", "file", "bad.csv", []byte("a,b\n1"), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	_ = resp.Body.Close()
}
