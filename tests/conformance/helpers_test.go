package conformance_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

// authToken is the bearer token used by doRequest. It is refreshed by
// resetServer since a reset recreates the admin account.
var authToken string

// doRequest makes an HTTP request to the test server and returns the response.
// The caller is responsible for closing the response body.
func doRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, serverURL+path, bodyReader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// doForm posts urlencoded form values.
func doForm(t *testing.T, path string, values url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, serverURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// doUpload posts a multipart body with a single file part plus extra fields.
func doUpload(t *testing.T, path, field, fileName string, content []byte, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+path, &buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// readJSON reads the response body and unmarshals it into a map.
func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("unmarshal response (status %d): body=%s err=%v", resp.StatusCode, string(b), err)
	}
	return result
}

// mustStatus asserts the HTTP response has the expected status code.
func mustStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d; body=%s", expected, resp.StatusCode, string(b))
	}
}

// resetServer returns the server to its seeded state and logs in as the
// default admin. The reset endpoint itself requires credentials, and the
// reset recreates the admin account, so the token is refreshed twice: once
// to authorize the reset and once afterwards.
func resetServer(t *testing.T) {
	t.Helper()

	authToken = login(t, "admin@atelier.local", "atelier-admin")
	resp := doRequest(t, http.MethodPost, "/_atelier/reset", nil)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("reset server failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	_ = resp.Body.Close()

	authToken = login(t, "admin@atelier.local", "atelier-admin")
}

// login exchanges credentials for a bearer token.
func login(t *testing.T, email, password string) string {
	t.Helper()

	resp := doForm(t, "/api/v1/users/login", url.Values{
		"username": {email},
		"password": {password},
	})
	mustStatus(t, resp, http.StatusOK)
	body := readJSON(t, resp)
	return assertIsString(t, body, "access_token")
}

// waitForJob polls a background job until it leaves the queue.
func waitForJob(t *testing.T, jobID string) map[string]any {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp := doRequest(t, http.MethodGet, "/api/v1/jobs/"+jobID, nil)
		mustStatus(t, resp, http.StatusOK)
		job := readJSON(t, resp)

		switch job["status"] {
		case "succeeded", "failed":
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s stuck in %v", jobID, job["status"])
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// assertValidationError validates the standard 422 body shape and returns the
// detail entries.
func assertValidationError(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()

	raw, ok := body["detail"].([]any)
	if !ok {
		t.Fatalf("expected detail array, got %T: %v", body["detail"], body)
	}
	details := make([]map[string]any, 0, len(raw))
	for _, d := range raw {
		entry := toObject(t, d)
		assertFieldPresent(t, entry, "loc")
		assertFieldPresent(t, entry, "msg")
		assertFieldPresent(t, entry, "type")
		details = append(details, entry)
	}
	return details
}

// assertDetail checks the simple string-detail error body.
func assertDetail(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if body["detail"] != expected {
		t.Errorf("detail = %v, want %q", body["detail"], expected)
	}
}

// assertFieldPresent checks that a key exists in the map.
func assertFieldPresent(t *testing.T, m map[string]any, key string) {
	t.Helper()
	if _, ok := m[key]; !ok {
		t.Errorf("expected field %q to be present, got keys: %v", key, mapKeys(m))
	}
}

// assertIsString returns m[key] as a string, failing the test otherwise.
func assertIsString(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	v, ok := m[key].(string)
	if !ok {
		t.Fatalf("expected field %q to be a string, got %T (%v)", key, m[key], m[key])
	}
	return v
}

// assertStringField checks m[key] equals the expected string.
func assertStringField(t *testing.T, m map[string]any, key, expected string) {
	t.Helper()
	if got := assertIsString(t, m, key); got != expected {
		t.Errorf("field %q = %q, want %q", key, got, expected)
	}
}

// assertNumberField checks m[key] equals the expected number.
func assertNumberField(t *testing.T, m map[string]any, key string, expected float64) {
	t.Helper()
	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("expected field %q to be a number, got %T (%v)", key, m[key], m[key])
	}
	if v != expected {
		t.Errorf("field %q = %v, want %v", key, v, expected)
	}
}

// assertIsArray returns m[key] as a []any, failing the test otherwise.
func assertIsArray(t *testing.T, m map[string]any, key string) []any {
	t.Helper()
	v, ok := m[key].([]any)
	if !ok {
		t.Fatalf("expected field %q to be an array, got %T (%v)", key, m[key], m[key])
	}
	return v
}

// assertIsObject returns m[key] as a map, failing the test otherwise.
func assertIsObject(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := m[key].(map[string]any)
	if !ok {
		t.Fatalf("expected field %q to be an object, got %T (%v)", key, m[key], m[key])
	}
	return v
}

// toObject converts an any to a map, failing the test otherwise.
func toObject(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T (%v)", v, v)
	}
	return m
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
