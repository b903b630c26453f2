package testhelpers

import (
	"testing"
	"time"

	"livebait-directory/models"

	"gorm.io/gorm"
)

// Fixture creates regions, cities and listings directly, bypassing the
// importer.
type Fixture struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixture(t *testing.T, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) Region(name, abbr, slug string) *models.Region {
	f.t.Helper()
	r := &models.Region{Name: name, Abbr: abbr, Slug: slug}
	if err := f.db.Create(r).Error; err != nil {
		f.t.Fatal(err)
	}
	return r
}

func (f *Fixture) City(region *models.Region, name, slug string) *models.City {
	f.t.Helper()
	c := &models.City{RegionID: region.ID, Name: name, Slug: slug}
	if err := f.db.Create(c).Error; err != nil {
		f.t.Fatal(err)
	}
	return c
}

// Listing stores a listing in city at lat,lng. Listings created later get
// later timestamps so ordering by created_at is stable.
func (f *Fixture) Listing(city *models.City, name, slug string, lat, lng float64) *models.Listing {
	f.t.Helper()
	var n int64
	f.db.Model(&models.Listing{}).Count(&n)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute)

	l := &models.Listing{
		Slug:      slug,
		Name:      name,
		Address:   "1 Dock St",
		CityID:    city.ID,
		RegionID:  city.RegionID,
		Lat:       lat,
		Lng:       lng,
		BaitTypes: []string{"live bait", "tackle"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := f.db.Omit("City", "Region", "Hours").Create(l).Error; err != nil {
		f.t.Fatal(err)
	}
	return l
}
