package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Listing struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Slug               string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name               string         `gorm:"not null" json:"name"`
	Description        *string        `json:"description"`
	Phone              *string        `json:"phone"`
	Website            *string        `json:"website"`
	Address            string         `gorm:"not null" json:"address"`
	CityID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"city_id"`
	City               *City          `gorm:"foreignKey:CityID" json:"city,omitempty"`
	RegionID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"region_id"`
	Region             *Region        `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	Postcode           *string        `json:"postcode"`
	Lat                float64        `gorm:"not null" json:"lat"`
	Lng                float64        `gorm:"not null" json:"lng"`
	BaitTypes          pq.StringArray `gorm:"type:text[]" json:"bait_types"`
	Rating             *float64       `json:"rating"`
	ReviewsCount       int            `gorm:"not null;default:0" json:"reviews_count"`
	ExternalReviewsURL *string        `json:"external_reviews_url"`
	IsVerified         bool           `gorm:"default:false" json:"is_verified"`
	StaticMapURL       *string        `json:"static_map_url"`
	Hours              []ListingHours `gorm:"foreignKey:ListingID" json:"hours,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ShowsRating reports whether the rating may be rendered. A zero review
// count hides the rating even when one is stored.
func (l *Listing) ShowsRating() bool {
	return l.Rating != nil && l.ReviewsCount > 0
}
