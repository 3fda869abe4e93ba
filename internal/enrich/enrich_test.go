package enrich_test

import (
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/enrich"
)

func newService(t *testing.T) *enrich.Service {
	t.Helper()
	return enrich.NewService(16, time.Minute)
}

func TestEnrichDomain(t *testing.T) {
	s := newService(t)

	res, err := s.Enrich("domain", "https://www.acme-corp.com/about")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if res.Cached {
		t.Error("first lookup must not be cached")
	}
	if res.Data["domain"] != "acme-corp.com" {
		t.Errorf("expected domain=acme-corp.com, got %v", res.Data["domain"])
	}
	if res.Data["organization"] != "Acme Corp" {
		t.Errorf("expected organization=Acme Corp, got %v", res.Data["organization"])
	}
}

func TestEnrichEmail(t *testing.T) {
	s := newService(t)

	res, err := s.Enrich("email", "jane.doe@example.com")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if res.Data["valid"] != true {
		t.Error("expected valid=true")
	}
	if res.Data["first_name"] != "Jane" {
		t.Errorf("expected first_name=Jane, got %v", res.Data["first_name"])
	}

	res, err = s.Enrich("email", "not-an-email")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if res.Data["valid"] != false {
		t.Error("expected valid=false")
	}
}

func TestEnrichCaching(t *testing.T) {
	s := newService(t)

	first, err := s.Enrich("company", "Initech")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	second, err := s.Enrich("company", "Initech")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("expected cached=false then true, got %v then %v", first.Cached, second.Cached)
	}
	if first.Data["industry"] != second.Data["industry"] {
		t.Error("cached result must match the original")
	}

	stats := s.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected hits=1 misses=1, got %d/%d", stats.Hits, stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.Entries)
	}
}

func TestEnrichUnknownType(t *testing.T) {
	s := newService(t)

	if _, err := s.Enrich("phone", "555-0100"); !errors.Is(err, enrich.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestPurge(t *testing.T) {
	s := newService(t)

	if _, err := s.Enrich("domain", "example.com"); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	s.Purge()

	stats := s.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("expected zeroed stats after purge, got %+v", stats)
	}

	res, err := s.Enrich("domain", "example.com")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if res.Cached {
		t.Error("expected cache miss after purge")
	}
}

func TestProviders(t *testing.T) {
	infos := newService(t).Providers()

	if len(infos) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(infos))
	}
	if infos[0].Type != "domain" || infos[1].Type != "email" || infos[2].Type != "company" {
		t.Errorf("unexpected provider order: %+v", infos)
	}
}
