package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// DocumentStore defines the interface for knowledge-base persistence.
type DocumentStore interface {
	Create(ctx context.Context, title, fileName, contentType string, sizeBytes int64) (*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Document, int, error)
	Delete(ctx context.Context, id string) error

	SetIndexed(ctx context.Context, id string, chunks []string) error
	SetFailed(ctx context.Context, id string) error
	AllChunks(ctx context.Context) ([]domain.Chunk, error)
	DocumentChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// SQLiteDocumentStore implements DocumentStore backed by SQLite.
type SQLiteDocumentStore struct {
	db *sql.DB
}

// NewSQLiteDocumentStore creates a new SQLiteDocumentStore.
func NewSQLiteDocumentStore(db *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{db: db}
}

// Create inserts a new document in pending state.
func (s *SQLiteDocumentStore) Create(ctx context.Context, title, fileName, contentType string, sizeBytes int64) (*domain.Document, error) {
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Title:       title,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		Status:      domain.DocumentPending,
		CreatedAt:   now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, file_name, content_type, size_bytes, status, chunk_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		doc.ID, doc.Title, doc.FileName, doc.ContentType, doc.SizeBytes, doc.Status, doc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

const documentColumns = `id, title, file_name, content_type, size_bytes, status, chunk_count, created_at`

// Get retrieves a document by ID.
func (s *SQLiteDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.Status, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns a page of documents plus the total count.
func (s *SQLiteDocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []*domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.ContentType, &doc.SizeBytes, &doc.Status, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, total, rows.Err()
}

// Delete removes a document and its chunks.
func (s *SQLiteDocumentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetIndexed stores the chunked text and flips the document to indexed.
func (s *SQLiteDocumentStore) SetIndexed(ctx context.Context, id string, chunks []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear chunks: %w", err)
	}
	for i, text := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_chunks (id, document_id, seq, text) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), id, i, text,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET status = ?, chunk_count = ? WHERE id = ?`,
		domain.DocumentIndexed, len(chunks), id,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark indexed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}
	return tx.Commit()
}

// SetFailed flips the document to failed.
func (s *SQLiteDocumentStore) SetFailed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ?`, domain.DocumentFailed, id)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (s *SQLiteDocumentStore) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Seq, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// AllChunks returns every chunk of every indexed document.
func (s *SQLiteDocumentStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT c.id, c.document_id, c.seq, c.text
		 FROM document_chunks c JOIN documents d ON d.id = c.document_id
		 WHERE d.status = ? ORDER BY c.document_id, c.seq`, domain.DocumentIndexed)
}

// DocumentChunks returns the chunks of one document in order.
func (s *SQLiteDocumentStore) DocumentChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, seq, text FROM document_chunks WHERE document_id = ? ORDER BY seq`,
		documentID)
}
