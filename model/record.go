package model

import "time"

// Record represents a catalogued music release in the collection.
type Record struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string    `json:"title" gorm:"type:varchar(255);not null"`
	Artist        string    `json:"artist" gorm:"type:varchar(255);not null"`
	ReleaseDate   *Date     `json:"release_date" gorm:"type:date"`
	Label         string    `json:"label" gorm:"type:varchar(255)"`
	CatalogNumber string    `json:"catalog_number" gorm:"type:varchar(100)"`
	Format        string    `json:"format" gorm:"type:varchar(50)"`    // e.g. Vinyl, CD, Cassette
	Condition     string    `json:"condition" gorm:"type:varchar(50)"` // e.g. Mint, Very Good, Good
	PurchaseDate  *Date     `json:"purchase_date" gorm:"type:date"`
	PurchasePrice *float64  `json:"purchase_price"`
	AlbumArtURL   string    `json:"album_art_url" gorm:"type:varchar(500)"`
	Notes         string    `json:"notes" gorm:"type:text"`
	DiscogsURL    string    `json:"discogs_url" gorm:"type:varchar(500)"`
	ReviewURL     string    `json:"review_url" gorm:"type:varchar(500)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Genres []Genre `json:"genres" gorm:"many2many:record_genres;constraint:OnDelete:CASCADE"`
	Tracks []Track `json:"tracks" gorm:"constraint:OnDelete:CASCADE"`
}

// RecordSearchResults carries a page of matches plus the unpaginated total.
type RecordSearchResults struct {
	Results []*Record `json:"results"`
	Total   int64     `json:"total"`
}
