// Package seed inserts the standard starter data a fresh install ships with.
package seed

import (
	"context"
	"database/sql"
	"fmt"
)

// seedTimestamp is the fixed creation time stamped on all seed rows.
const seedTimestamp = "2024-01-01T00:00:00.000Z"

// Seed inserts all standard seed data into the database. It is idempotent —
// existing rows are left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	if err := AdminUser(ctx, db); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := Categories(ctx, db); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := Templates(ctx, db); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	if err := BrandKit(ctx, db); err != nil {
		return fmt.Errorf("seed brand kit: %w", err)
	}
	return nil
}
