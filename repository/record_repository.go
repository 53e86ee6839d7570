package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waxcrate/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository defines the data operations for records.
type RecordRepository interface {
	CreateRecord(ctx context.Context, payload *model.RecordCreate) (*model.Record, error)
	GetRecordByID(ctx context.Context, id int64) (*model.Record, error)
	ListRecords(ctx context.Context, skip, limit int) ([]*model.Record, error)
	SearchRecords(ctx context.Context, query string, skip, limit int) (*model.RecordSearchResults, error)
	UpdateRecord(ctx context.Context, id int64, upd *model.RecordUpdate) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) (bool, error)
	UpdateAlbumArtURL(ctx context.Context, id int64, artURL string) error
}

// gormRecordRepository implements RecordRepository on GORM.
type gormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a record repository bound to the given DB.
func NewGormRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{db: db}
}

// CreateRecord inserts a record with its genres and tracks in one transaction.
// Genres are matched by name and created when missing.
func (r *gormRecordRepository) CreateRecord(ctx context.Context, payload *model.RecordCreate) (*model.Record, error) {
	rec := &model.Record{
		Title:         payload.Title,
		Artist:        payload.Artist,
		ReleaseDate:   payload.ReleaseDate,
		Label:         payload.Label,
		CatalogNumber: payload.CatalogNumber,
		Format:        payload.Format,
		Condition:     payload.Condition,
		PurchaseDate:  payload.PurchaseDate,
		PurchasePrice: payload.PurchasePrice,
		AlbumArtURL:   payload.AlbumArtURL,
		Notes:         payload.Notes,
		DiscogsURL:    payload.DiscogsURL,
		ReviewURL:     payload.ReviewURL,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		genres, err := findOrCreateGenres(tx, payload.Genres)
		if err != nil {
			return err
		}
		rec.Genres = genres

		for _, t := range payload.Tracks {
			rec.Tracks = append(rec.Tracks, model.Track{
				Title:    t.Title,
				Position: t.Position,
				Duration: t.Duration,
			})
		}

		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return r.GetRecordByID(ctx, rec.ID)
}

// GetRecordByID retrieves a record with genres and tracks preloaded.
// Returns (nil, nil) when the record doesn't exist.
func (r *gormRecordRepository) GetRecordByID(ctx context.Context, id int64) (*model.Record, error) {
	rec := &model.Record{}
	err := r.withAssociations(r.db.WithContext(ctx)).First(rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}

	normalizeRecord(rec)
	return rec, nil
}

// ListRecords returns a page of records ordered by id.
func (r *gormRecordRepository) ListRecords(ctx context.Context, skip, limit int) ([]*model.Record, error) {
	records := make([]*model.Record, 0)
	err := r.withAssociations(r.db.WithContext(ctx)).
		Order("records.id").
		Offset(skip).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	for _, rec := range records {
		normalizeRecord(rec)
	}
	return records, nil
}

// SearchRecords matches the query as a case-insensitive substring against
// title, artist, label, catalog number and genre names. Total counts all
// matches regardless of pagination.
func (r *gormRecordRepository) SearchRecords(ctx context.Context, query string, skip, limit int) (*model.RecordSearchResults, error) {
	pattern := "%" + query + "%"

	var total int64
	if err := r.searchQuery(ctx, pattern).Distinct("records.id").Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count search matches: %w", err)
	}

	var ids []int64
	err := r.searchQuery(ctx, pattern).
		Distinct("records.id").
		Order("records.id").
		Offset(skip).
		Limit(limit).
		Pluck("records.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	results := &model.RecordSearchResults{
		Results: make([]*model.Record, 0, len(ids)),
		Total:   total,
	}
	if len(ids) == 0 {
		return results, nil
	}

	err = r.withAssociations(r.db.WithContext(ctx)).
		Where("records.id IN ?", ids).
		Order("records.id").
		Find(&results.Results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load search results: %w", err)
	}

	for _, rec := range results.Results {
		normalizeRecord(rec)
	}
	return results, nil
}

// UpdateRecord applies a partial update. Nil payload fields are left as-is;
// a non-nil Genres or Tracks replaces the whole set. Returns (nil, nil) when
// the record doesn't exist.
func (r *gormRecordRepository) UpdateRecord(ctx context.Context, id int64, upd *model.RecordUpdate) (*model.Record, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := &model.Record{}
		if err := tx.First(rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true

		updates := buildRecordUpdates(upd)
		if len(updates) > 0 {
			if err := tx.Model(rec).Updates(updates).Error; err != nil {
				return err
			}
		}

		if upd.Genres != nil {
			genres, err := findOrCreateGenres(tx, *upd.Genres)
			if err != nil {
				return err
			}
			if err := tx.Model(rec).Association("Genres").Replace(&genres); err != nil {
				return err
			}
		}

		if upd.Tracks != nil {
			if err := tx.Where("record_id = ?", id).Delete(&model.Track{}).Error; err != nil {
				return err
			}
			for _, t := range *upd.Tracks {
				track := model.Track{
					RecordID: id,
					Title:    t.Title,
					Position: t.Position,
					Duration: t.Duration,
				}
				if err := tx.Create(&track).Error; err != nil {
					return err
				}
			}
		}

		// Replacing genres or tracks alone never writes the records row,
		// so stamp updated_at explicitly.
		if len(updates) == 0 && (upd.Genres != nil || upd.Tracks != nil) {
			if err := tx.Model(rec).Update("updated_at", time.Now()).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update record %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}

	return r.GetRecordByID(ctx, id)
}

// DeleteRecord removes a record along with its tracks and genre links.
// The genres themselves are kept. Returns false when the record doesn't exist.
func (r *gormRecordRepository) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := &model.Record{}
		if err := tx.First(rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true

		return tx.Select(clause.Associations).Delete(rec).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return found, nil
}

// UpdateAlbumArtURL sets the album art URL for a record.
func (r *gormRecordRepository) UpdateAlbumArtURL(ctx context.Context, id int64, artURL string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Record{ID: id}).
		Update("album_art_url", artURL).Error
	if err != nil {
		return fmt.Errorf("failed to update album art for record %d: %w", id, err)
	}
	return nil
}

// withAssociations preloads genres and tracks, tracks in stable order.
func (r *gormRecordRepository) withAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Genres").
		Preload("Tracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tracks.id")
		})
}

// searchQuery builds the joined query matching pattern against the
// searchable columns. Built fresh per finisher to keep clauses clean.
func (r *gormRecordRepository) searchQuery(ctx context.Context, pattern string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Record{}).
		Joins("LEFT JOIN record_genres ON record_genres.record_id = records.id").
		Joins("LEFT JOIN genres ON genres.id = record_genres.genre_id").
		Where(
			"records.title LIKE ? OR records.artist LIKE ? OR records.label LIKE ? OR records.catalog_number LIKE ? OR genres.name LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
}

// buildRecordUpdates maps the non-nil scalar fields of a partial update to
// their columns.
func buildRecordUpdates(upd *model.RecordUpdate) map[string]interface{} {
	updates := map[string]interface{}{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Artist != nil {
		updates["artist"] = *upd.Artist
	}
	if upd.ReleaseDate != nil {
		updates["release_date"] = *upd.ReleaseDate
	}
	if upd.Label != nil {
		updates["label"] = *upd.Label
	}
	if upd.CatalogNumber != nil {
		updates["catalog_number"] = *upd.CatalogNumber
	}
	if upd.Format != nil {
		updates["format"] = *upd.Format
	}
	if upd.Condition != nil {
		updates["condition"] = *upd.Condition
	}
	if upd.PurchaseDate != nil {
		updates["purchase_date"] = *upd.PurchaseDate
	}
	if upd.PurchasePrice != nil {
		updates["purchase_price"] = *upd.PurchasePrice
	}
	if upd.AlbumArtURL != nil {
		updates["album_art_url"] = *upd.AlbumArtURL
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
	}
	if upd.DiscogsURL != nil {
		updates["discogs_url"] = *upd.DiscogsURL
	}
	if upd.ReviewURL != nil {
		updates["review_url"] = *upd.ReviewURL
	}
	return updates
}

// findOrCreateGenres resolves genre names to rows, creating missing ones.
// Blank and duplicate names are skipped.
func findOrCreateGenres(tx *gorm.DB, names []string) ([]model.Genre, error) {
	genres := make([]model.Genre, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var genre model.Genre
		if err := tx.Where("name = ?", name).FirstOrCreate(&genre, model.Genre{Name: name}).Error; err != nil {
			return nil, fmt.Errorf("failed to find or create genre %q: %w", name, err)
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

// normalizeRecord replaces nil association slices so they serialize as [].
func normalizeRecord(rec *model.Record) {
	if rec.Genres == nil {
		rec.Genres = []model.Genre{}
	}
	if rec.Tracks == nil {
		rec.Tracks = []model.Track{}
	}
}
