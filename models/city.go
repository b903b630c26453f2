package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// City slugs are unique per region, not globally.
type City struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RegionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_city_region_slug" json:"region_id"`
	Region    *Region   `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex:idx_city_region_slug" json:"slug"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *City) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
