package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/domain"
)

// UserStore defines the interface for user and API key persistence.
type UserStore interface {
	Create(ctx context.Context, email, fullName, role, passwordHash string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, int, error)
	UpdateName(ctx context.Context, id, fullName string) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	CreateKey(ctx context.Context, userID, name, prefix, keyHash string) (*domain.APIKey, error)
	ListKeys(ctx context.Context, userID string) ([]*domain.APIKey, error)
	DeleteKey(ctx context.Context, userID, keyID string) error
	GetByKeyHash(ctx context.Context, keyHash string) (*domain.User, error)
}

// SQLiteUserStore implements UserStore backed by SQLite.
type SQLiteUserStore struct {
	db *sql.DB
}

// NewSQLiteUserStore creates a new SQLiteUserStore.
func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// Create inserts a new user. Returns ErrConflict if the email is taken.
func (s *SQLiteUserStore) Create(ctx context.Context, email, fullName, role, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now(),
		PasswordHash: passwordHash,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, role, password_hash, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, TRUE, ?)`,
		u.ID, u.Email, u.FullName, u.Role, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("email %s already registered: %w", u.Email, ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQLiteUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

const userColumns = `id, email, full_name, role, password_hash, is_active, created_at`

// Get retrieves a user by ID.
func (s *SQLiteUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *SQLiteUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email)))
}

// List returns a page of users ordered by creation time, plus the total count.
func (s *SQLiteUserStore) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, total, rows.Err()
}

// UpdateName changes a user's full name.
func (s *SQLiteUserStore) UpdateName(ctx context.Context, id, fullName string) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET full_name = ? WHERE id = ?`, fullName, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a user and their API keys.
func (s *SQLiteUserStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete api keys: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateKey inserts a new API key record. The plaintext secret is never
// stored; callers persist only its hash.
func (s *SQLiteUserStore) CreateKey(ctx context.Context, userID, name, prefix, keyHash string) (*domain.APIKey, error) {
	k := &domain.APIKey{
		ID:        uuid.NewString(),
		Name:      name,
		Prefix:    prefix,
		CreatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, name, prefix, key_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		k.ID, userID, name, prefix, keyHash, k.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return k, nil
}

// ListKeys returns all API keys owned by a user, without secrets.
func (s *SQLiteUserStore) ListKeys(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, prefix, created_at FROM api_keys WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := []*domain.APIKey{}
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.Prefix, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// DeleteKey removes an API key owned by the given user.
func (s *SQLiteUserStore) DeleteKey(ctx context.Context, userID, keyID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM api_keys WHERE id = ? AND user_id = ?`, keyID, userID)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByKeyHash resolves an API key hash to its owning user.
func (s *SQLiteUserStore) GetByKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.full_name, u.role, u.password_hash, u.is_active, u.created_at
		 FROM users u JOIN api_keys k ON k.user_id = u.id
		 WHERE k.key_hash = ?`, keyHash))
}
