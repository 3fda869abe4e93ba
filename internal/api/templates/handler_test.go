package templates_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/api/templates"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/testhelpers"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.New(testhelpers.NewMigratedDB(t))

	mux := http.NewServeMux()
	templates.RegisterRoutes(mux, st)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func createTemplate(t *testing.T, srv *httptest.Server, body string) domain.Template {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/templates", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("create template: status = %d: %s", resp.StatusCode, raw)
	}
	var tpl domain.Template
	if err := json.NewDecoder(resp.Body).Decode(&tpl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return tpl
}

func TestCreateAndGet(t *testing.T) {
	srv := setupServer(t)

	tpl := createTemplate(t, srv,
		`{"name":"Launch Email","category":"email","tags":["launch"],"definition":{"subject":"Hello"}}`)
	if tpl.ID == "" || tpl.Name != "Launch Email" {
		t.Fatalf("template = %+v", tpl)
	}

	resp, err := http.Get(srv.URL + "/api/v1/templates/" + tpl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/templates", "application/json",
		bytes.NewBufferString(`{"description":"missing name and definition"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var body struct {
		Detail []api.ValidationDetail `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Detail) != 2 {
		t.Fatalf("got %d details, want 2", len(body.Detail))
	}
}

func TestListFiltersAndDefaults(t *testing.T) {
	srv := setupServer(t)
	createTemplate(t, srv, `{"name":"Launch Email","category":"email","definition":{}}`)
	createTemplate(t, srv, `{"name":"Quarterly Report","category":"document","definition":{}}`)

	resp, err := http.Get(srv.URL + "/api/v1/templates?category=email")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var list struct {
		Items  []domain.Template `json:"items"`
		Total  int               `json:"total"`
		Limit  int               `json:"limit"`
		Offset int               `json:"offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("total = %d, items = %d, want 1", list.Total, len(list.Items))
	}
	if list.Limit != 50 || list.Offset != 0 {
		t.Fatalf("defaults: limit = %d, offset = %d", list.Limit, list.Offset)
	}
}

func TestListRejectsBadLimit(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/templates?limit=abc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestReplaceAndDelete(t *testing.T) {
	srv := setupServer(t)
	tpl := createTemplate(t, srv, `{"name":"Original","definition":{}}`)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/templates/"+tpl.ID,
		bytes.NewBufferString(`{"name":"Updated","definition":{"v":2}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: status = %d", resp.StatusCode)
	}
	var updated domain.Template
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "Updated" {
		t.Fatalf("name = %q", updated.Name)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/templates/"+tpl.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/templates/" + tpl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = getResp.Body.Close() }()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted: status = %d, want 404", getResp.StatusCode)
	}
}

func TestImportMultipart(t *testing.T) {
	srv := setupServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "newsletter.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte(`{"subject":"Welcome","blocks":[]}`))
	pw, err := mw.CreateFormFile("preview", "preview.png")
	if err != nil {
		t.Fatalf("create preview part: %v", err)
	}
	_, _ = pw.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	_ = mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/templates/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("import: status = %d: %s", resp.StatusCode, raw)
	}

	var result domain.TemplateImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TemplateID == "" {
		t.Fatal("expected template_id")
	}
	if result.Artifacts["preview"] != "templates/"+result.TemplateID+"/preview" {
		t.Fatalf("artifacts = %v", result.Artifacts)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/templates/" + result.TemplateID)
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	defer func() { _ = getResp.Body.Close() }()
	var tpl domain.Template
	if err := json.NewDecoder(getResp.Body).Decode(&tpl); err != nil {
		t.Fatalf("decode imported: %v", err)
	}
	if tpl.Name != "newsletter" {
		t.Fatalf("imported name = %q, want newsletter", tpl.Name)
	}
}

func TestImportRequiresFile(t *testing.T) {
	srv := setupServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "no file here")
	_ = mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/templates/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestDuplicate(t *testing.T) {
	srv := setupServer(t)
	tpl := createTemplate(t, srv, `{"name":"Original","category":"email","definition":{"v":1}}`)

	form := url.Values{"name": {"Copy of Original"}}
	resp, err := http.Post(srv.URL+"/api/v1/templates/"+tpl.ID+"/duplicate",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate: status = %d", resp.StatusCode)
	}
	var dup domain.Template
	if err := json.NewDecoder(resp.Body).Decode(&dup); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dup.ID == tpl.ID || dup.Name != "Copy of Original" || dup.Category != "email" {
		t.Fatalf("duplicate = %+v", dup)
	}
}

func TestExportFormats(t *testing.T) {
	srv := setupServer(t)
	tpl := createTemplate(t, srv, `{"name":"Launch Email","definition":{"subject":"Hello"}}`)

	resp, err := http.Get(srv.URL + "/api/v1/templates/" + tpl.ID + "/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("default format content type = %q", ct)
	}

	mdResp, err := http.Get(srv.URL + "/api/v1/templates/" + tpl.ID + "/export?format=markdown")
	if err != nil {
		t.Fatalf("export markdown: %v", err)
	}
	defer func() { _ = mdResp.Body.Close() }()
	body, _ := io.ReadAll(mdResp.Body)
	if !strings.Contains(string(body), "# Launch Email") {
		t.Fatalf("markdown export missing title: %s", body)
	}

	badResp, err := http.Get(srv.URL + "/api/v1/templates/" + tpl.ID + "/export?format=docx")
	if err != nil {
		t.Fatalf("export docx: %v", err)
	}
	defer func() { _ = badResp.Body.Close() }()
	if badResp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown format: status = %d, want 422", badResp.StatusCode)
	}
}

func TestCategoriesEmpty(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/templates/categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var categories []domain.Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("got %d categories on empty database", len(categories))
	}
}
