package repository

import (
	"context"
	"errors"
	"fmt"

	"waxcrate/model"

	"gorm.io/gorm"
)

// GenreRepository defines the data operations for genres.
type GenreRepository interface {
	ListGenres(ctx context.Context, skip, limit int) ([]*model.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*model.Genre, error)
}

// gormGenreRepository implements GenreRepository on GORM.
type gormGenreRepository struct {
	db *gorm.DB
}

// NewGormGenreRepository creates a genre repository bound to the given DB.
func NewGormGenreRepository(db *gorm.DB) GenreRepository {
	return &gormGenreRepository{db: db}
}

// ListGenres returns a page of genres ordered by id.
func (r *gormGenreRepository) ListGenres(ctx context.Context, skip, limit int) ([]*model.Genre, error) {
	genres := make([]*model.Genre, 0)
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&genres).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// GetGenreByName retrieves a genre by exact name. Returns (nil, nil) when
// no genre matches.
func (r *gormGenreRepository) GetGenreByName(ctx context.Context, name string) (*model.Genre, error) {
	genre := &model.Genre{}
	err := r.db.WithContext(ctx).Where("name = ?", name).First(genre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get genre %q: %w", name, err)
	}
	return genre, nil
}
