package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const (
	defaultKitColors = `{"primary":"#1a1a2e","secondary":"#16213e","accent":"#e94560","background":"#ffffff","text":"#1a1a2e"}`
	defaultKitFonts  = `{"heading":"Inter","body":"Inter"}`
)

// BrandKit inserts the default brand kit if no kits exist yet.
func BrandKit(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brand_kits`).Scan(&count); err != nil {
		return fmt.Errorf("count brand kits: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO brand_kits (id, name, colors, fonts, is_default, created_at, updated_at)
		 VALUES (?, 'Atelier Default', ?, ?, TRUE, ?, ?)`,
		uuid.NewString(), defaultKitColors, defaultKitFonts, seedTimestamp, seedTimestamp,
	); err != nil {
		return fmt.Errorf("insert default brand kit: %w", err)
	}

	return nil
}
