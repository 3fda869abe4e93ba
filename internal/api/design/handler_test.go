package design_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/api/design"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/testhelpers"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.New(testhelpers.NewMigratedDB(t))

	mux := http.NewServeMux()
	design.RegisterRoutes(mux, st)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func createKit(t *testing.T, srv *httptest.Server, body string) domain.BrandKit {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/design/brand-kits", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("create brand kit: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("create brand kit: status = %d: %s", resp.StatusCode, raw)
	}
	var kit domain.BrandKit
	if err := json.NewDecoder(resp.Body).Decode(&kit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return kit
}

func TestBrandKitCRUD(t *testing.T) {
	srv := setupServer(t)

	kit := createKit(t, srv,
		`{"name":"Acme","colors":{"primary":"#112233","secondary":"#445566"},"fonts":{"heading":"Inter","body":"Georgia"}}`)
	if kit.ID == "" || kit.Colors.Primary != "#112233" {
		t.Fatalf("kit = %+v", kit)
	}

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/design/brand-kits/"+kit.ID,
		bytes.NewBufferString(`{"name":"Acme v2","colors":{"primary":"#000000"},"fonts":{"heading":"Inter","body":"Inter"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: status = %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/design/brand-kits/"+kit.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d", delResp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/design/brand-kits/" + kit.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = getResp.Body.Close() }()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted: status = %d, want 404", getResp.StatusCode)
	}
}

func TestCreateRequiresName(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/design/brand-kits", "application/json",
		bytes.NewBufferString(`{"colors":{"primary":"#112233"}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestLogoUploadAndAsset(t *testing.T) {
	srv := setupServer(t)
	kit := createKit(t, srv, `{"name":"Acme","colors":{"primary":"#112233"},"fonts":{"heading":"Inter","body":"Inter"}}`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "logo.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	logoBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	_, _ = fw.Write(logoBytes)
	_ = mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/design/brand-kits/"+kit.ID+"/logo", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload: status = %d: %s", resp.StatusCode, raw)
	}
	var upload domain.LogoUpload
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if upload.AssetID == "" || upload.FileName != "logo.png" {
		t.Fatalf("upload = %+v", upload)
	}

	kitResp, err := http.Get(srv.URL + "/api/v1/design/brand-kits/" + kit.ID)
	if err != nil {
		t.Fatalf("get kit: %v", err)
	}
	defer func() { _ = kitResp.Body.Close() }()
	var updated domain.BrandKit
	if err := json.NewDecoder(kitResp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode kit: %v", err)
	}
	if updated.LogoURL != upload.LogoURL {
		t.Fatalf("logo_url = %q, want %q", updated.LogoURL, upload.LogoURL)
	}

	assetResp, err := http.Get(srv.URL + upload.LogoURL)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	defer func() { _ = assetResp.Body.Close() }()
	if assetResp.StatusCode != http.StatusOK {
		t.Fatalf("get asset: status = %d", assetResp.StatusCode)
	}
	served, _ := io.ReadAll(assetResp.Body)
	if !bytes.Equal(served, logoBytes) {
		t.Fatal("served asset bytes differ from upload")
	}
}

func TestExportNestsBrandKit(t *testing.T) {
	srv := setupServer(t)
	kit := createKit(t, srv, `{"name":"Acme","colors":{"primary":"#112233"},"fonts":{"heading":"Inter","body":"Inter"}}`)

	resp, err := http.Get(srv.URL + "/api/v1/design/brand-kits/" + kit.ID + "/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status = %d", resp.StatusCode)
	}

	var export domain.BrandKitExport
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if export.Format != "json" {
		t.Fatalf("format = %q, want json", export.Format)
	}
	if export.BrandKit == nil || export.BrandKit.ID != kit.ID || export.BrandKit.Colors.Primary != kit.Colors.Primary {
		t.Fatalf("nested brand kit = %+v", export.BrandKit)
	}
}

func TestAssetsDefaultLimit(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/design/assets")
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list struct {
		Items  []domain.DesignAsset `json:"items"`
		Limit  int                  `json:"limit"`
		Offset int                  `json:"offset"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Limit != 100 || list.Offset != 0 {
		t.Fatalf("defaults: limit = %d, offset = %d, want 100, 0", list.Limit, list.Offset)
	}
}
