package domain

// BrandColors holds the named color slots of a brand kit.
type BrandColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

// BrandFonts holds the font family choices of a brand kit.
type BrandFonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// BrandKit represents a brand kit resource.
type BrandKit struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Colors    BrandColors `json:"colors"`
	Fonts     BrandFonts  `json:"fonts"`
	LogoURL   string      `json:"logo_url,omitempty"`
	IsDefault bool        `json:"is_default"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// BrandKitInput holds the data needed to create or replace a brand kit.
type BrandKitInput struct {
	Name   string      `json:"name"`
	Colors BrandColors `json:"colors"`
	Fonts  BrandFonts  `json:"fonts"`
}

// BrandKitExport bundles a brand kit with the format it was exported in. The
// nested brand kit serializes exactly like the standalone resource.
type BrandKitExport struct {
	BrandKit *BrandKit `json:"brand_kit"`
	Format   string    `json:"format"`
}

// DesignAsset represents an uploaded design asset such as a logo.
type DesignAsset struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Kind        string `json:"kind"`
	BrandKitID  string `json:"brand_kit_id,omitempty"`
	URL         string `json:"url"`
	CreatedAt   string `json:"created_at"`
}

// LogoUpload is the response for a brand kit logo upload.
type LogoUpload struct {
	AssetID  string `json:"asset_id"`
	LogoURL  string `json:"logo_url"`
	FileName string `json:"file_name"`
}
