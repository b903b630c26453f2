package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	Tag       string    `gorm:"not null" json:"tag"`
}

func (t *ListingTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
