package enrichment

import (
	"errors"
	"net/http"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/enrich"
)

// Handler handles enrichment HTTP requests.
type Handler struct {
	enricher *enrich.Service
}

// Enrich handles POST /api/v1/enrichment/enrich.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	var in domain.EnrichInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}

	var details []api.ValidationDetail
	if in.Type == "" {
		details = append(details, api.FieldRequired("body", "type"))
	}
	if in.Value == "" {
		details = append(details, api.FieldRequired("body", "value"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	enrichment, err := h.enricher.Enrich(in.Type, in.Value)
	if err != nil {
		if errors.Is(err, enrich.ErrUnknownType) {
			api.WriteValidationError(w, api.FieldInvalid("body", "type",
				"Input should be 'domain', 'email' or 'company'", "enum"))
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, enrichment)
}

// Providers handles GET /api/v1/enrichment/providers.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, h.enricher.Providers())
}

// CacheStats handles GET /api/v1/enrichment/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, h.enricher.Stats())
}

// PurgeCache handles DELETE /api/v1/enrichment/cache.
func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	h.enricher.Purge()
	w.WriteHeader(http.StatusNoContent)
}
