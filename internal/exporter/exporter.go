// Package exporter turns stored resources into downloadable documents.
package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/render"
	"github.com/atelierhq/atelier/internal/store"
)

// ErrUnsupportedResource is returned for resource types that cannot be
// exported.
var ErrUnsupportedResource = errors.New("unsupported resource type")

// ErrUnsupportedFormat is returned for formats the renderer does not know.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Service renders resources into export records.
type Service struct {
	store *store.Store
}

// NewService creates a Service backed by the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Run creates an export record, renders the resource, and marks the record
// complete or failed. The returned export reflects the final state.
func (s *Service) Run(ctx context.Context, in domain.ExportInput) (*domain.Export, error) {
	if !render.Supported(in.Format) {
		return nil, ErrUnsupportedFormat
	}

	title, resource, err := s.lookup(ctx, in.ResourceType, in.ResourceID)
	if err != nil {
		return nil, err
	}

	exp, err := s.store.Exports.Create(ctx, in.ResourceType, in.ResourceID, in.Format)
	if err != nil {
		return nil, err
	}

	data, err := render.Resource(in.Format, title, resource)
	if err != nil {
		if ferr := s.store.Exports.Fail(ctx, exp.ID, err.Error()); ferr != nil {
			return nil, ferr
		}
		return s.store.Exports.Get(ctx, exp.ID)
	}

	if err := s.store.Exports.Complete(ctx, exp.ID, render.ContentType(in.Format), data); err != nil {
		return nil, err
	}
	return s.store.Exports.Get(ctx, exp.ID)
}

// lookup fetches the resource to be exported. A store.ErrNotFound from here
// means the referenced resource does not exist.
func (s *Service) lookup(ctx context.Context, resourceType, id string) (string, any, error) {
	switch resourceType {
	case domain.ResourceTemplate:
		t, err := s.store.Templates.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return t.Name, t, nil
	case domain.ResourceBrandKit:
		bk, err := s.store.BrandKits.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return bk.Name, bk, nil
	case domain.ResourceDocument:
		doc, err := s.store.Documents.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return doc.Title, doc, nil
	case domain.ResourceAnalysis:
		a, err := s.store.Analyses.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return a.FileName, a, nil
	case domain.ResourceWorkflow:
		wf, err := s.store.Workflows.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return wf.Name, wf, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedResource, resourceType)
	}
}
