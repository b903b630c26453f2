package database

import (
	"context"

	"livebait-directory/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// GormStore is the relational backing store used by the importer.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) RegionByCode(ctx context.Context, code string) (*models.Region, error) {
	var region models.Region
	result := s.DB.WithContext(ctx).Where("abbr = ?", code).Limit(1).Find(&region)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "region %s", code)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &region, nil
}

func (s *GormStore) FindCity(ctx context.Context, regionID uuid.UUID, slug string) (*models.City, error) {
	var city models.City
	result := s.DB.WithContext(ctx).
		Where("region_id = ? AND slug = ?", regionID, slug).
		Limit(1).Find(&city)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "city %s", slug)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &city, nil
}

func (s *GormStore) CreateCity(ctx context.Context, city *models.City) error {
	return errors.Wrapf(s.DB.WithContext(ctx).Create(city).Error, "create city %s", city.Slug)
}

func (s *GormStore) ListingExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Listing{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "check listing %s", slug)
	}
	return count > 0, nil
}

func (s *GormStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	return errors.Wrapf(s.DB.WithContext(ctx).Omit("City", "Region", "Hours").Create(listing).Error,
		"create listing %s", listing.Slug)
}

func (s *GormStore) ListingIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var listing models.Listing
	result := s.DB.WithContext(ctx).Select("id").Where("slug = ?", slug).Limit(1).Find(&listing)
	if result.Error != nil {
		return uuid.Nil, errors.Wrapf(result.Error, "fetch listing %s", slug)
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, ErrNotFound
	}
	return listing.ID, nil
}

// CreateHours inserts a listing's schedule as one batch.
func (s *GormStore) CreateHours(ctx context.Context, hours []models.ListingHours) error {
	if len(hours) == 0 {
		return nil
	}
	return errors.Wrap(s.DB.WithContext(ctx).Create(&hours).Error, "create listing hours")
}
