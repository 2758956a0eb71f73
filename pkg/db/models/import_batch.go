package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarchuk/artvault-backend/pkg/enums"
)

// ImportBatch is the unit of work for one bulk archive import. It is created
// pending by the API, mutated only by the import orchestrator, and immutable
// once it reaches a terminal status.
type ImportBatch struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status            enums.ImportBatchStatus `gorm:"column:status;not null;default:pending" json:"status"`
	ArchiveKey        string                 `gorm:"column:archive_key;not null" json:"archive_key"`
	TotalFiles        int                    `gorm:"column:total_files;not null;default:0" json:"total_files"`
	ProcessedFiles    int                    `gorm:"column:processed_files;not null;default:0" json:"processed_files"`
	SuccessfulImports int                    `gorm:"column:successful_imports;not null;default:0" json:"successful_imports"`
	FailedImports     int                    `gorm:"column:failed_imports;not null;default:0" json:"failed_imports"`
	Log               []ImportLogEntry       `gorm:"column:log;serializer:json" json:"log"`
	ErrorMessages     []string               `gorm:"column:error_messages;serializer:json" json:"error_messages"`
	CreatedByID       uuid.UUID              `gorm:"column:created_by_id;type:uuid;not null" json:"created_by_id"`
	StartedAt         *time.Time             `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt       *time.Time             `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ImportBatch) TableName() string {
	return "import_batches"
}

// ImportLogEntry captures the outcome for one file of a batch. Entries are
// append-only; they are serialized into the batch row.
type ImportLogEntry struct {
	Filename          string           `json:"filename"`
	Success           bool             `json:"success"`
	ArtworkID         *uuid.UUID       `json:"artwork_id,omitempty"`
	AttributeSources  AttributeSources `json:"attribute_sources"`
	Errors            []string         `json:"errors,omitempty"`
	Duplicate         bool             `json:"duplicate"`
	ExistingArtworkID *uuid.UUID       `json:"existing_artwork_id,omitempty"`
	ProcessedAt       time.Time        `json:"processed_at"`
}

// AttributeSources maps each catalog field populated during import to the
// tier that supplied it. The field set is fixed so new attributes require a
// schema-visible change here rather than an open-ended map.
type AttributeSources struct {
	Title       enums.AttributeSource `json:"title,omitempty"`
	Description enums.AttributeSource `json:"description,omitempty"`
	Year        enums.AttributeSource `json:"year,omitempty"`
	Source      enums.AttributeSource `json:"source,omitempty"`
	Copyright   enums.AttributeSource `json:"copyright,omitempty"`
	Tags        enums.AttributeSource `json:"tags,omitempty"`
	Artist      enums.AttributeSource `json:"artist,omitempty"`
	Technique   enums.AttributeSource `json:"technique,omitempty"`
}
