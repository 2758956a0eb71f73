package artworks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
)

// Repository exposes catalog-record persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an artwork repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an artwork.
func (r *Repository) Create(ctx context.Context, artwork *models.Artwork) (*models.Artwork, error) {
	if err := r.db.WithContext(ctx).Create(artwork).Error; err != nil {
		return nil, err
	}
	return artwork, nil
}

// FindByID retrieves an artwork by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	var artwork models.Artwork
	if err := r.db.WithContext(ctx).First(&artwork, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &artwork, nil
}

// FindByFingerprint is the persisted fingerprint index consulted by the
// duplicate checker. A miss returns (nil, nil).
func (r *Repository) FindByFingerprint(ctx context.Context, fingerprint string) (*models.Artwork, error) {
	if fingerprint == "" {
		return nil, nil
	}
	var artwork models.Artwork
	err := r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("created_at ASC").
		First(&artwork).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// ListByBatch returns the records created by one import batch.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Artwork, error) {
	var rows []models.Artwork
	err := r.db.WithContext(ctx).
		Where("import_batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
