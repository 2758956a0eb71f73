package imports

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
)

// Repository persists import batches.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a batch repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new batch.
func (r *Repository) Create(ctx context.Context, batch *models.ImportBatch) (*models.ImportBatch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// FindByID retrieves a batch by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// Save writes the batch's current state, including the serialized log. The
// orchestrator calls this after every processed file so pollers observe
// monotonically increasing counters.
func (r *Repository) Save(ctx context.Context, batch *models.ImportBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// ListByCreator returns the most recent batches owned by an actor.
func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]models.ImportBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	var batches []models.ImportBatch
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
