package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Region struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Abbr      string    `gorm:"size:2;uniqueIndex;not null" json:"abbr"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Cities    []City    `gorm:"foreignKey:RegionID" json:"cities,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Region) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
