package models

import (
	"time"

	"github.com/google/uuid"
)

// Technique is a reference-data entity (e.g. "oil on canvas") resolved by
// name during import.
type Technique struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Technique) TableName() string {
	return "techniques"
}
