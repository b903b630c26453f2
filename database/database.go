package database

import (
	"livebait-directory/models"
	"livebait-directory/regions"
	"livebait-directory/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=livebait port=5432 sslmode=disable"

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return errors.Wrap(err, "enable pgcrypto extension")
	}

	if err := db.AutoMigrate(
		&models.Region{},
		&models.City{},
		&models.Listing{},
		&models.ListingHours{},
		&models.ListingTag{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	return nil
}

// SeedRegions creates a Region row for every allow-list entry that does not
// have one yet. Existing rows are left untouched. It returns the number of
// rows created.
func SeedRegions(db *gorm.DB, resolver *regions.Resolver, log logrus.FieldLogger) (int, error) {
	created := 0
	for _, entry := range resolver.Entries() {
		var existing models.Region
		result := db.Where("abbr = ?", entry.Code).Limit(1).Find(&existing)
		if result.Error != nil {
			return created, errors.Wrapf(result.Error, "look up region %s", entry.Code)
		}
		if result.RowsAffected > 0 {
			continue
		}

		region := models.Region{
			Name: entry.Name,
			Abbr: entry.Code,
			Slug: utils.Slugify(entry.Name),
		}
		if err := db.Create(&region).Error; err != nil {
			return created, errors.Wrapf(err, "create region %s", entry.Code)
		}
		log.WithFields(logrus.Fields{"region": region.Name, "abbr": region.Abbr}).Info("Region created")
		created++
	}
	return created, nil
}
