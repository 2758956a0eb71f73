package models

import (
	"time"

	"github.com/google/uuid"
)

// Artwork is one catalog record. Rows created by the bulk importer carry the
// originating batch id and, when pixel data decoded, a perceptual
// fingerprint used for advisory duplicate detection.
type Artwork struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string            `gorm:"column:title;not null" json:"title"`
	Description   string            `gorm:"column:description" json:"description,omitempty"`
	Year          int               `gorm:"column:year" json:"year,omitempty"`
	Source        string            `gorm:"column:source" json:"source,omitempty"`
	Copyright     string            `gorm:"column:copyright" json:"copyright,omitempty"`
	Tags          []string          `gorm:"column:tags;serializer:json" json:"tags,omitempty"`
	ExifData      map[string]string `gorm:"column:exif_data;serializer:json" json:"exif_data,omitempty"`
	Fingerprint   string            `gorm:"column:fingerprint;index" json:"fingerprint,omitempty"`
	ImageKey      string            `gorm:"column:image_key" json:"image_key,omitempty"`
	ArtistID      *uuid.UUID        `gorm:"column:artist_id;type:uuid" json:"artist_id,omitempty"`
	TechniqueID   *uuid.UUID        `gorm:"column:technique_id;type:uuid" json:"technique_id,omitempty"`
	ImportBatchID *uuid.UUID        `gorm:"column:import_batch_id;type:uuid" json:"import_batch_id,omitempty"`
	CreatedByID   uuid.UUID         `gorm:"column:created_by_id;type:uuid;not null" json:"created_by_id"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Artwork) TableName() string {
	return "artworks"
}
