// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteSchema mirrors the Postgres tables with SQLite-compatible DDL, because
// the model tags use PostgreSQL-specific defaults like gen_random_uuid().
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS "regions" (
		"id" TEXT PRIMARY KEY,
		"name" TEXT NOT NULL,
		"abbr" TEXT NOT NULL UNIQUE,
		"slug" TEXT NOT NULL UNIQUE,
		"created_at" DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS "cities" (
		"id" TEXT PRIMARY KEY,
		"region_id" TEXT NOT NULL,
		"name" TEXT NOT NULL,
		"slug" TEXT NOT NULL,
		"lat" REAL,
		"lng" REAL,
		"created_at" DATETIME,
		CONSTRAINT fk_cities_region FOREIGN KEY ("region_id") REFERENCES "regions"("id")
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_city_region_slug ON "cities"("region_id","slug")`,
	`CREATE TABLE IF NOT EXISTS "listings" (
		"id" TEXT PRIMARY KEY,
		"slug" TEXT NOT NULL UNIQUE,
		"name" TEXT NOT NULL,
		"description" TEXT,
		"phone" TEXT,
		"website" TEXT,
		"address" TEXT NOT NULL,
		"city_id" TEXT NOT NULL,
		"region_id" TEXT NOT NULL,
		"postcode" TEXT,
		"lat" REAL NOT NULL,
		"lng" REAL NOT NULL,
		"bait_types" TEXT,
		"rating" REAL,
		"reviews_count" INTEGER NOT NULL DEFAULT 0,
		"external_reviews_url" TEXT,
		"is_verified" INTEGER DEFAULT 0,
		"static_map_url" TEXT,
		"created_at" DATETIME,
		"updated_at" DATETIME,
		CONSTRAINT fk_listings_city FOREIGN KEY ("city_id") REFERENCES "cities"("id"),
		CONSTRAINT fk_listings_region FOREIGN KEY ("region_id") REFERENCES "regions"("id")
	)`,
	`CREATE TABLE IF NOT EXISTS "listing_hours" (
		"id" TEXT PRIMARY KEY,
		"listing_id" TEXT NOT NULL,
		"weekday" INTEGER NOT NULL,
		"open_time" TEXT,
		"close_time" TEXT,
		"is_24h" INTEGER DEFAULT 0,
		"is_closed" INTEGER DEFAULT 0,
		CONSTRAINT fk_listing_hours_listing FOREIGN KEY ("listing_id") REFERENCES "listings"("id")
	)`,
	`CREATE TABLE IF NOT EXISTS "listing_tags" (
		"id" TEXT PRIMARY KEY,
		"listing_id" TEXT NOT NULL,
		"tag" TEXT NOT NULL
	)`,
}

// NewSQLiteDB returns a fresh in-memory database with the directory schema.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	// Every pooled connection to :memory: would be a separate empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}
