// Package enrich resolves lookup values (domains, emails, company names)
// into structured profiles, fronted by an expirable LRU cache.
package enrich

import (
	"errors"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/atelierhq/atelier/internal/domain"
)

// ErrUnknownType is returned for enrichment types with no registered provider.
var ErrUnknownType = errors.New("unknown enrichment type")

// Provider produces enrichment data for one value type.
type Provider interface {
	Type() string
	Name() string
	Description() string
	Enrich(value string) map[string]any
}

// Service dispatches enrichment requests to providers and caches results.
type Service struct {
	providers  map[string]Provider
	order      []string
	cache      *lru.LRU[string, map[string]any]
	maxEntries int
	ttl        time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewService creates a Service with the built-in providers registered.
func NewService(maxEntries int, ttl time.Duration) *Service {
	if maxEntries < 1 {
		maxEntries = 1
	}

	s := &Service{
		providers:  map[string]Provider{},
		cache:      lru.NewLRU[string, map[string]any](maxEntries, nil, ttl),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	s.register(domainProvider{})
	s.register(emailProvider{})
	s.register(companyProvider{})
	return s
}

func (s *Service) register(p Provider) {
	s.providers[p.Type()] = p
	s.order = append(s.order, p.Type())
}

// Enrich resolves one value, serving repeated lookups from cache.
func (s *Service) Enrich(typ, value string) (*domain.Enrichment, error) {
	p, ok := s.providers[typ]
	if !ok {
		return nil, ErrUnknownType
	}

	key := typ + ":" + value
	if data, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return &domain.Enrichment{
			Type: typ, Value: value, Provider: p.Name(), Data: data, Cached: true,
		}, nil
	}

	s.misses.Add(1)
	data := p.Enrich(value)
	s.cache.Add(key, data)
	return &domain.Enrichment{
		Type: typ, Value: value, Provider: p.Name(), Data: data, Cached: false,
	}, nil
}

// Providers lists the registered providers in registration order.
func (s *Service) Providers() []domain.ProviderInfo {
	infos := make([]domain.ProviderInfo, 0, len(s.order))
	for _, typ := range s.order {
		p := s.providers[typ]
		infos = append(infos, domain.ProviderInfo{
			Type:        p.Type(),
			Name:        p.Name(),
			Description: p.Description(),
		})
	}
	return infos
}

// Stats reports cache effectiveness counters.
func (s *Service) Stats() domain.CacheStats {
	return domain.CacheStats{
		Entries:    s.cache.Len(),
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		MaxEntries: s.maxEntries,
		TTLSeconds: int(s.ttl / time.Second),
	}
}

// Purge drops every cached entry and resets the counters.
func (s *Service) Purge() {
	s.cache.Purge()
	s.hits.Store(0)
	s.misses.Store(0)
}
