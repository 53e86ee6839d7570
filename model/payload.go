package model

// TrackPayload is a track as submitted by a client; IDs are assigned server side.
type TrackPayload struct {
	Title    string `json:"title"`
	Position string `json:"position"`
	Duration string `json:"duration"`
}

// RecordCreate is the request body for creating a record. Genres are plain
// names, created on demand when they don't exist yet.
type RecordCreate struct {
	Title         string         `json:"title"`
	Artist        string         `json:"artist"`
	ReleaseDate   *Date          `json:"release_date"`
	Label         string         `json:"label"`
	CatalogNumber string         `json:"catalog_number"`
	Format        string         `json:"format"`
	Condition     string         `json:"condition"`
	PurchaseDate  *Date          `json:"purchase_date"`
	PurchasePrice *float64       `json:"purchase_price"`
	AlbumArtURL   string         `json:"album_art_url"`
	Notes         string         `json:"notes"`
	DiscogsURL    string         `json:"discogs_url"`
	ReviewURL     string         `json:"review_url"`
	Genres        []string       `json:"genres"`
	Tracks        []TrackPayload `json:"tracks"`
}

// RecordUpdate is the request body for a partial update. Nil fields are left
// untouched; a non-nil Genres or Tracks replaces the full set.
type RecordUpdate struct {
	Title         *string         `json:"title"`
	Artist        *string         `json:"artist"`
	ReleaseDate   *Date           `json:"release_date"`
	Label         *string         `json:"label"`
	CatalogNumber *string         `json:"catalog_number"`
	Format        *string         `json:"format"`
	Condition     *string         `json:"condition"`
	PurchaseDate  *Date           `json:"purchase_date"`
	PurchasePrice *float64        `json:"purchase_price"`
	AlbumArtURL   *string         `json:"album_art_url"`
	Notes         *string         `json:"notes"`
	DiscogsURL    *string         `json:"discogs_url"`
	ReviewURL     *string         `json:"review_url"`
	Genres        *[]string       `json:"genres"`
	Tracks        *[]TrackPayload `json:"tracks"`
}
