package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
	"github.com/atelierhq/atelier/internal/testhelpers"
)

var _ store.DocumentStore = (*store.SQLiteDocumentStore)(nil)

func setupDocumentStore(t *testing.T) *store.SQLiteDocumentStore {
	t.Helper()
	return store.NewSQLiteDocumentStore(testhelpers.NewMigratedDB(t))
}

func TestDocumentIndexing(t *testing.T) {
	s := setupDocumentStore(t)
	ctx := context.Background()

	doc, err := s.Create(ctx, "Onboarding guide", "guide.txt", "text/plain", 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Status != domain.DocumentPending {
		t.Errorf("expected pending, got %s", doc.Status)
	}

	if err := s.SetIndexed(ctx, doc.ID, []string{"chunk one", "chunk two"}); err != nil {
		t.Fatalf("set indexed: %v", err)
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.DocumentIndexed {
		t.Errorf("expected indexed, got %s", got.Status)
	}
	if got.ChunkCount != 2 {
		t.Errorf("expected chunk_count=2, got %d", got.ChunkCount)
	}

	chunks, err := s.DocumentChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Seq != 0 || chunks[1].Text != "chunk two" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestAllChunksSkipsPending(t *testing.T) {
	s := setupDocumentStore(t)
	ctx := context.Background()

	indexed, err := s.Create(ctx, "A", "a.txt", "text/plain", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetIndexed(ctx, indexed.ID, []string{"visible"}); err != nil {
		t.Fatalf("set indexed: %v", err)
	}
	if _, err := s.Create(ctx, "B", "b.txt", "text/plain", 1); err != nil {
		t.Fatalf("create pending: %v", err)
	}

	chunks, err := s.AllChunks(ctx)
	if err != nil {
		t.Fatalf("all chunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "visible" {
		t.Errorf("expected only indexed chunks, got %+v", chunks)
	}
}

func TestDocumentDelete(t *testing.T) {
	s := setupDocumentStore(t)
	ctx := context.Background()

	doc, err := s.Create(ctx, "Temp", "t.txt", "text/plain", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetIndexed(ctx, doc.ID, []string{"x"}); err != nil {
		t.Fatalf("set indexed: %v", err)
	}

	if err := s.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, doc.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	chunks, err := s.AllChunks(ctx)
	if err != nil {
		t.Fatalf("all chunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected chunks removed, got %d", len(chunks))
	}
}
