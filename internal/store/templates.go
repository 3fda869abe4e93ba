package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// TemplateStore defines the interface for template persistence.
type TemplateStore interface {
	Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error)
	Get(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, opts domain.TemplateListOpts) ([]*domain.Template, int, error)
	Replace(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id, name string) (*domain.Template, error)

	AddArtifact(ctx context.Context, templateID, name, path string, data []byte) error
	Artifacts(ctx context.Context, templateID string) (map[string]string, error)

	Categories(ctx context.Context) ([]domain.Category, error)
}

// SQLiteTemplateStore implements TemplateStore backed by SQLite.
type SQLiteTemplateStore struct {
	db *sql.DB
}

// NewSQLiteTemplateStore creates a new SQLiteTemplateStore.
func NewSQLiteTemplateStore(db *sql.DB) *SQLiteTemplateStore {
	return &SQLiteTemplateStore{db: db}
}

// Create inserts a new template.
func (s *SQLiteTemplateStore) Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	ts := now()
	t := &domain.Template{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		Definition:  in.Definition,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if len(t.Definition) == 0 {
		t.Definition = json.RawMessage(`{}`)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, category, tags, definition, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.Category, mustJSON(t.Tags), string(t.Definition), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

func scanTemplate(scan func(dest ...any) error) (*domain.Template, error) {
	var (
		t    domain.Template
		tags string
		def  string
	)
	if err := scan(&t.ID, &t.Name, &t.Description, &t.Category, &tags, &def, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		t.Tags = []string{}
	}
	t.Definition = json.RawMessage(def)
	return &t, nil
}

const templateColumns = `id, name, description, category, tags, definition, created_at, updated_at`

// Get retrieves a template by ID.
func (s *SQLiteTemplateStore) Get(ctx context.Context, id string) (*domain.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return scanTemplate(row.Scan)
}

// List returns a filtered page of templates plus the total matching count.
func (s *SQLiteTemplateStore) List(ctx context.Context, opts domain.TemplateListOpts) ([]*domain.Template, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	if opts.Category != "" {
		where += ` AND category = ?`
		args = append(args, opts.Category)
	}
	if opts.Query != "" {
		where += ` AND (name LIKE ? OR description LIKE ?)`
		like := "%" + opts.Query + "%"
		args = append(args, like, like)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates `+where+` ORDER BY created_at, id LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	templates := []*domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, t)
	}
	return templates, total, rows.Err()
}

// Replace updates all mutable fields of a template.
func (s *SQLiteTemplateStore) Replace(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	def := in.Definition
	if len(def) == 0 {
		def = json.RawMessage(`{}`)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET name = ?, description = ?, category = ?, tags = ?, definition = ?, updated_at = ?
		 WHERE id = ?`,
		in.Name, in.Description, in.Category, mustJSON(tags), string(def), now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a template and its artifacts.
func (s *SQLiteTemplateStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM template_artifacts WHERE template_id = ?`, id); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicate copies an existing template under a new name.
func (s *SQLiteTemplateStore) Duplicate(ctx context.Context, id, name string) (*domain.Template, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, domain.TemplateInput{
		Name:        name,
		Description: src.Description,
		Category:    src.Category,
		Tags:        src.Tags,
		Definition:  src.Definition,
	})
}

// AddArtifact stores one named artifact blob for a template.
func (s *SQLiteTemplateStore) AddArtifact(ctx context.Context, templateID, name, path string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO template_artifacts (template_id, name, path, data) VALUES (?, ?, ?, ?)`,
		templateID, name, path, data,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// Artifacts returns the artifact name -> path map for a template.
func (s *SQLiteTemplateStore) Artifacts(ctx context.Context, templateID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, path FROM template_artifacts WHERE template_id = ? ORDER BY name`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	artifacts := map[string]string{}
	for rows.Next() {
		var name, path string
		if err := rows.Scan(&name, &path); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts[name] = path
	}
	return artifacts, rows.Err()
}

// Categories returns all seeded template categories.
func (s *SQLiteTemplateStore) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description FROM template_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
