package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist is a reference-data entity resolved by name during import.
type Artist struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;unique" json:"name"`
	Bio       string    `gorm:"column:bio" json:"bio,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Artist) TableName() string {
	return "artists"
}
