package conformance_test

import (
	"net/http"
	"testing"
)

func TestEnrichmentCaching(t *testing.T) {
	resetServer(t)

	// The cache lives in process memory and survives /_atelier/reset, so
	// start from a purged cache.
	resp0 := doRequest(t, http.MethodDelete, "/api/v1/enrichment/cache", nil)
	mustStatus(t, resp0, http.StatusNoContent)
	_ = resp0.Body.Close()

	body := map[string]string{"type": "domain", "value": "caching-check.example"}

	resp := doRequest(t, http.MethodPost, "/api/v1/enrichment/enrich", body)
	mustStatus(t, resp, http.StatusOK)
	first := readJSON(t, resp)
	if first["cached"] != false {
		t.Errorf("first lookup cached = %v, want false", first["cached"])
	}

	resp = doRequest(t, http.MethodPost, "/api/v1/enrichment/enrich", body)
	mustStatus(t, resp, http.StatusOK)
	second := readJSON(t, resp)
	if second["cached"] != true {
		t.Errorf("second lookup cached = %v, want true", second["cached"])
	}

	resp = doRequest(t, http.MethodGet, "/api/v1/enrichment/cache/stats", nil)
	mustStatus(t, resp, http.StatusOK)
	stats := readJSON(t, resp)
	assertNumberField(t, stats, "hits", 1)

	resp = doRequest(t, http.MethodDelete, "/api/v1/enrichment/cache", nil)
	mustStatus(t, resp, http.StatusNoContent)
	_ = resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/v1/enrichment/cache/stats", nil)
	mustStatus(t, resp, http.StatusOK)
	purged := readJSON(t, resp)
	assertNumberField(t, purged, "entries", 0)
}

func TestEnrichmentUnknownType(t *testing.T) {
	resetServer(t)

	resp := doRequest(t, http.MethodPost, "/api/v1/enrichment/enrich", map[string]string{
		"type": "vehicle", "value": "x",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	details := assertValidationError(t, readJSON(t, resp))
	if len(details) != 1 || details[0]["type"] != "enum" {
		t.Fatalf("details = %v", details)
	}
}
