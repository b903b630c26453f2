package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingHours is the stored form of one weekday's schedule. Exactly one of
// IsClosed, Is24h, or the OpenTime/CloseTime pair is set.
type ListingHours struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	Weekday   int       `gorm:"not null" json:"weekday"` // 0=Sunday, 6=Saturday
	OpenTime  *string   `json:"open_time"`               // HH:MM:SS
	CloseTime *string   `json:"close_time"`
	Is24h     bool      `gorm:"column:is_24h;default:false" json:"is_24h"`
	IsClosed  bool      `gorm:"default:false" json:"is_closed"`
}

func (ListingHours) TableName() string {
	return "listing_hours"
}

func (h *ListingHours) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
