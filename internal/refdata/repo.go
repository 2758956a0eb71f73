// Package refdata provides lookups for the curated reference entities the
// import pipeline links records to.
package refdata

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
)

// Repository resolves artists and techniques. Name lookups are
// case-insensitive exact matches and return (nil, nil) on a miss, which the
// importer treats as "leave the reference unset".
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reference-data repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ArtistByName resolves an artist by exact name, ignoring case.
func (r *Repository) ArtistByName(ctx context.Context, name string) (*models.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var artist models.Artist
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&artist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// TechniqueByName resolves a technique by exact name, ignoring case.
func (r *Repository) TechniqueByName(ctx context.Context, name string) (*models.Technique, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var technique models.Technique
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&technique).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &technique, nil
}

// CreateArtist persists a new artist.
func (r *Repository) CreateArtist(ctx context.Context, artist *models.Artist) (*models.Artist, error) {
	if err := r.db.WithContext(ctx).Create(artist).Error; err != nil {
		return nil, err
	}
	return artist, nil
}

// CreateTechnique persists a new technique.
func (r *Repository) CreateTechnique(ctx context.Context, technique *models.Technique) (*models.Technique, error) {
	if err := r.db.WithContext(ctx).Create(technique).Error; err != nil {
		return nil, err
	}
	return technique, nil
}
