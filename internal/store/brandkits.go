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

// BrandKitStore defines the interface for brand kit and design asset
// persistence.
type BrandKitStore interface {
	Create(ctx context.Context, in domain.BrandKitInput) (*domain.BrandKit, error)
	Get(ctx context.Context, id string) (*domain.BrandKit, error)
	List(ctx context.Context, limit, offset int) ([]*domain.BrandKit, int, error)
	Replace(ctx context.Context, id string, in domain.BrandKitInput) (*domain.BrandKit, error)
	Delete(ctx context.Context, id string) error
	SetLogo(ctx context.Context, id, logoURL string) error

	AddAsset(ctx context.Context, fileName, contentType, kind, brandKitID string, data []byte) (*domain.DesignAsset, error)
	GetAsset(ctx context.Context, id string) (*domain.DesignAsset, []byte, error)
	ListAssets(ctx context.Context, limit, offset int) ([]*domain.DesignAsset, int, error)
}

// SQLiteBrandKitStore implements BrandKitStore backed by SQLite.
type SQLiteBrandKitStore struct {
	db *sql.DB
}

// NewSQLiteBrandKitStore creates a new SQLiteBrandKitStore.
func NewSQLiteBrandKitStore(db *sql.DB) *SQLiteBrandKitStore {
	return &SQLiteBrandKitStore{db: db}
}

// Create inserts a new brand kit.
func (s *SQLiteBrandKitStore) Create(ctx context.Context, in domain.BrandKitInput) (*domain.BrandKit, error) {
	ts := now()
	kit := &domain.BrandKit{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Colors:    in.Colors,
		Fonts:     in.Fonts,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO brand_kits (id, name, colors, fonts, logo_url, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', FALSE, ?, ?)`,
		kit.ID, kit.Name, mustJSON(kit.Colors), mustJSON(kit.Fonts), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert brand kit: %w", err)
	}
	return kit, nil
}

func scanBrandKit(scan func(dest ...any) error) (*domain.BrandKit, error) {
	var (
		kit           domain.BrandKit
		colors, fonts string
	)
	err := scan(&kit.ID, &kit.Name, &colors, &fonts, &kit.LogoURL, &kit.IsDefault, &kit.CreatedAt, &kit.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan brand kit: %w", err)
	}
	_ = json.Unmarshal([]byte(colors), &kit.Colors)
	_ = json.Unmarshal([]byte(fonts), &kit.Fonts)
	return &kit, nil
}

const brandKitColumns = `id, name, colors, fonts, logo_url, is_default, created_at, updated_at`

// Get retrieves a brand kit by ID.
func (s *SQLiteBrandKitStore) Get(ctx context.Context, id string) (*domain.BrandKit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+brandKitColumns+` FROM brand_kits WHERE id = ?`, id)
	return scanBrandKit(row.Scan)
}

// List returns a page of brand kits plus the total count.
func (s *SQLiteBrandKitStore) List(ctx context.Context, limit, offset int) ([]*domain.BrandKit, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brand_kits`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count brand kits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+brandKitColumns+` FROM brand_kits ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brand kits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	kits := []*domain.BrandKit{}
	for rows.Next() {
		kit, err := scanBrandKit(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		kits = append(kits, kit)
	}
	return kits, total, rows.Err()
}

// Replace updates all mutable fields of a brand kit.
func (s *SQLiteBrandKitStore) Replace(ctx context.Context, id string, in domain.BrandKitInput) (*domain.BrandKit, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brand_kits SET name = ?, colors = ?, fonts = ?, updated_at = ? WHERE id = ?`,
		in.Name, mustJSON(in.Colors), mustJSON(in.Fonts), now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update brand kit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a brand kit.
func (s *SQLiteBrandKitStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brand_kits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete brand kit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLogo records the logo URL on a brand kit.
func (s *SQLiteBrandKitStore) SetLogo(ctx context.Context, id, logoURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brand_kits SET logo_url = ?, updated_at = ? WHERE id = ?`, logoURL, now(), id)
	if err != nil {
		return fmt.Errorf("set logo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAsset stores an uploaded design asset blob.
func (s *SQLiteBrandKitStore) AddAsset(ctx context.Context, fileName, contentType, kind, brandKitID string, data []byte) (*domain.DesignAsset, error) {
	asset := &domain.DesignAsset{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Kind:        kind,
		BrandKitID:  brandKitID,
		CreatedAt:   now(),
	}
	asset.URL = "/api/v1/design/assets/" + asset.ID

	var kitID any
	if brandKitID != "" {
		kitID = brandKitID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO design_assets (id, file_name, content_type, size_bytes, kind, brand_kit_id, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID, fileName, contentType, asset.SizeBytes, kind, kitID, data, asset.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert design asset: %w", err)
	}
	return asset, nil
}

// GetAsset retrieves a design asset and its raw bytes.
func (s *SQLiteBrandKitStore) GetAsset(ctx context.Context, id string) (*domain.DesignAsset, []byte, error) {
	var (
		asset domain.DesignAsset
		kitID sql.NullString
		data  []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, content_type, size_bytes, kind, brand_kit_id, data, created_at
		 FROM design_assets WHERE id = ?`, id,
	).Scan(&asset.ID, &asset.FileName, &asset.ContentType, &asset.SizeBytes, &asset.Kind, &kitID, &data, &asset.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get design asset: %w", err)
	}
	asset.BrandKitID = kitID.String
	asset.URL = "/api/v1/design/assets/" + asset.ID
	return &asset, data, nil
}

// ListAssets returns a page of design assets plus the total count.
func (s *SQLiteBrandKitStore) ListAssets(ctx context.Context, limit, offset int) ([]*domain.DesignAsset, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM design_assets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count design assets: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, content_type, size_bytes, kind, brand_kit_id, created_at
		 FROM design_assets ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list design assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assets := []*domain.DesignAsset{}
	for rows.Next() {
		var (
			asset domain.DesignAsset
			kitID sql.NullString
		)
		if err := rows.Scan(&asset.ID, &asset.FileName, &asset.ContentType, &asset.SizeBytes, &asset.Kind, &kitID, &asset.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan design asset: %w", err)
		}
		asset.BrandKitID = kitID.String
		asset.URL = "/api/v1/design/assets/" + asset.ID
		assets = append(assets, &asset)
	}
	return assets, total, rows.Err()
}
