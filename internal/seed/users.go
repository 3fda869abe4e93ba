package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/auth"
)

const (
	adminEmail    = "admin@atelier.local"
	adminPassword = "atelier-admin"
)

// AdminUser inserts the default admin account if no users exist yet. The
// password is for local use only and should be rotated in any shared
// deployment.
func AdminUser(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, role, password_hash, is_active, created_at)
		 VALUES (?, ?, ?, 'admin', ?, TRUE, ?)`,
		uuid.NewString(), adminEmail, "Atelier Admin", hash, seedTimestamp,
	); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	return nil
}
