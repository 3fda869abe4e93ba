package render_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/atelierhq/atelier/internal/render"
)

type sampleResource struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var sample = sampleResource{ID: "abc", Name: "Pitch Deck", Count: 3}

func TestResourceJSON(t *testing.T) {
	out, err := render.Resource("json", "Pitch Deck", sample)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got sampleResource
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if got != sample {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestResourceCSV(t *testing.T) {
	out, err := render.Resource("csv", "Pitch Deck", sample)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header+row, got %d lines", len(lines))
	}
	if lines[0] != "count,id,name" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "3,abc,Pitch Deck" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestResourceMarkdown(t *testing.T) {
	out, err := render.Resource("markdown", "Pitch Deck", sample)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	s := string(out)
	if !strings.HasPrefix(s, "# Pitch Deck") {
		t.Errorf("expected title heading, got %q", s[:30])
	}
	if !strings.Contains(s, "| name | Pitch Deck |") {
		t.Errorf("expected name row, got:\n%s", s)
	}
}

func TestResourceHTMLEscapes(t *testing.T) {
	hostile := sampleResource{ID: "x", Name: "<script>alert(1)</script>"}

	out, err := render.Resource("html", "Export", hostile)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Error("expected HTML-escaped output")
	}
	if !strings.Contains(string(out), "&lt;script&gt;") {
		t.Error("expected escaped script tag present")
	}
}

func TestResourceUnsupported(t *testing.T) {
	if _, err := render.Resource("xlsx", "x", sample); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFormats(t *testing.T) {
	names := map[string]bool{}
	for _, f := range render.Formats() {
		names[f.Name] = true
		if f.ContentType == "" || f.Extension == "" {
			t.Errorf("incomplete format: %+v", f)
		}
	}
	for _, want := range []string{"json", "csv", "markdown", "html"} {
		if !names[want] {
			t.Errorf("missing format %s", want)
		}
		if !render.Supported(want) {
			t.Errorf("Supported(%s) = false", want)
		}
	}
	if render.Supported("xlsx") {
		t.Error("xlsx must not be supported")
	}
	if render.ContentType("csv") != "text/csv" {
		t.Errorf("unexpected csv content type")
	}
}
