// Package importer loads bulk source records into the directory store. A
// batch runs sequentially, one row at a time, and never aborts on a bad row:
// every row either becomes a listing or is counted as skipped.
package importer

import (
	"context"
	"fmt"
	"strings"

	"livebait-directory/database"
	"livebait-directory/hours"
	"livebait-directory/metrics"
	"livebait-directory/models"
	"livebait-directory/regions"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownRegion  = errors.New("region not in allow-list")
	ErrRegionMissing  = errors.New("region has no stored row")
	ErrBadCoordinates = errors.New("listing coordinates are not numbers")
)

const descriptionTemplate = "%s is a bait and tackle shop located in %s, %s. " +
	"Find live bait, fishing tackle, and local fishing supplies for your next fishing trip."

// Store is the backing store a batch writes to.
type Store interface {
	CityStore
	RegionByCode(ctx context.Context, code string) (*models.Region, error)
	ListingExists(ctx context.Context, slug string) (bool, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	ListingIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)
	CreateHours(ctx context.Context, hours []models.ListingHours) error
}

type Options struct {
	// DefaultBaitTypes is copied onto every imported listing.
	DefaultBaitTypes []string
	// ProgressEvery logs a progress line after this many imports; 0 disables it.
	ProgressEvery int
	Hours         hours.Options
}

func DefaultOptions() Options {
	return Options{
		DefaultBaitTypes: []string{"live bait", "tackle"},
		ProgressEvery:    10,
		Hours:            hours.DefaultOptions(),
	}
}

// Result holds the counts reported at the end of a batch.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	// Cities is how many distinct cities the batch loaded or created.
	Cities int `json:"cities"`
}

func (r Result) Processed() int {
	return r.Imported + r.Skipped
}

type Importer struct {
	store   Store
	regions *regions.Resolver
	parser  *hours.Parser
	opts    Options
	log     logrus.FieldLogger

	// OnProgress, when set, is called after every row.
	OnProgress func(res Result)
}

func New(store Store, resolver *regions.Resolver, opts Options, log logrus.FieldLogger) *Importer {
	return &Importer{
		store:   store,
		regions: resolver,
		parser:  hours.NewParser(opts.Hours),
		opts:    opts,
		log:     log,
	}
}

// batch carries the state shared across rows of one run.
type batch struct {
	cities  *CityResolver
	regions map[string]*models.Region
}

// RunBatch imports rows in order and reports how many were imported and
// skipped. Row failures are logged and counted; they never stop the batch.
// Re-running a batch is safe because existing slugs are skipped.
func (im *Importer) RunBatch(ctx context.Context, rows []RawRecord) Result {
	return im.RunBatchWithProgress(ctx, rows, im.OnProgress)
}

// RunBatchWithProgress is RunBatch reporting to progress instead of
// OnProgress.
func (im *Importer) RunBatchWithProgress(ctx context.Context, rows []RawRecord, progress func(Result)) Result {
	im.log.Infof("Found %d rows to import", len(rows))

	b := &batch{
		cities:  NewCityResolver(im.store, im.log),
		regions: make(map[string]*models.Region),
	}

	var res Result
	for _, row := range rows {
		outcome := im.importRow(ctx, b, row)
		metrics.ImportRows.WithLabelValues(outcome).Inc()

		if outcome == metrics.OutcomeImported {
			res.Imported++
			if im.opts.ProgressEvery > 0 && res.Imported%im.opts.ProgressEvery == 0 {
				im.log.Infof("Imported %d listings...", res.Imported)
			}
		} else {
			res.Skipped++
		}
		res.Cities = b.cities.Len()

		if progress != nil {
			progress(res)
		}
	}

	im.log.Infof("Loaded/created %d cities", res.Cities)
	im.log.Info("Import complete!")
	im.log.Infof("Imported: %d", res.Imported)
	im.log.Infof("Skipped: %d", res.Skipped)
	return res
}

func (im *Importer) importRow(ctx context.Context, b *batch, row RawRecord) string {
	log := im.log.WithFields(logrus.Fields{
		"business": row.BusinessName,
		"slug":     row.Slug,
	})

	region, err := im.resolveRegion(ctx, b, row.Region)
	if err != nil {
		log.WithError(err).WithField("region", row.Region).Debug("Skipping row: region unresolved")
		return metrics.OutcomeSkippedRegion
	}

	cityID, err := b.cities.Resolve(ctx, region, row.City, row.Latitude, row.Longitude)
	if err != nil {
		log.WithError(err).WithField("city", row.City).Debug("Skipping row: city unresolved")
		return metrics.OutcomeSkippedCity
	}

	exists, err := im.store.ListingExists(ctx, row.Slug)
	if err != nil {
		log.WithError(err).Error("Error checking for existing listing")
		return metrics.OutcomeSkippedPersist
	}
	if exists {
		log.Debug("Skipping row: listing already exists")
		return metrics.OutcomeSkippedDuplicate
	}

	listing, err := im.buildListing(row, region, cityID)
	if err != nil {
		log.WithError(err).Warn("Skipping row: invalid listing data")
		return metrics.OutcomeSkippedInvalid
	}

	if err := im.store.CreateListing(ctx, listing); err != nil {
		log.WithError(err).Errorf("Error importing %s", row.BusinessName)
		return metrics.OutcomeSkippedPersist
	}

	// The schedule is stored against the persisted row, looked up again by
	// slug. A failure here leaves the listing in place without hours.
	listingID, err := im.store.ListingIDBySlug(ctx, row.Slug)
	if err != nil {
		log.WithError(err).Errorf("Error fetching imported listing %s", row.BusinessName)
		metrics.ScheduleFailures.Inc()
		return metrics.OutcomeImported
	}

	days := im.parser.Parse(row.OperatingHours)
	if len(days) > 0 {
		if err := im.store.CreateHours(ctx, hours.ToRecords(listingID, days)); err != nil {
			log.WithError(err).Errorf("Error importing hours for %s", row.BusinessName)
			metrics.ScheduleFailures.Inc()
		}
	}

	return metrics.OutcomeImported
}

// resolveRegion maps the raw name through the allow-list and then to the
// stored row. Both hits and misses are remembered for the batch; store
// errors are not, so a later row may retry.
func (im *Importer) resolveRegion(ctx context.Context, b *batch, rawName string) (*models.Region, error) {
	code, ok := im.regions.Resolve(rawName)
	if !ok {
		return nil, ErrUnknownRegion
	}

	if region, seen := b.regions[code]; seen {
		if region == nil {
			return nil, ErrRegionMissing
		}
		return region, nil
	}

	region, err := im.store.RegionByCode(ctx, code)
	switch {
	case errors.Is(err, database.ErrNotFound):
		b.regions[code] = nil
		return nil, ErrRegionMissing
	case err != nil:
		return nil, err
	}
	b.regions[code] = region
	return region, nil
}

func (im *Importer) buildListing(row RawRecord, region *models.Region, cityID uuid.UUID) (*models.Listing, error) {
	lat := parseNumber(row.Latitude)
	lng := parseNumber(row.Longitude)
	if lat == nil || lng == nil {
		return nil, errors.Wrapf(ErrBadCoordinates, "%q,%q", row.Latitude, row.Longitude)
	}

	description := describe(row.BusinessName, row.City, row.Region)

	var addressParts []string
	for _, part := range []string{row.StreetAddress, row.StreetAddress2} {
		if part != "" {
			addressParts = append(addressParts, part)
		}
	}

	rating := parseNumber(row.AverageRating)
	reviews := 0
	if rating != nil {
		reviews = 1
	}

	baitTypes := make([]string, len(im.opts.DefaultBaitTypes))
	copy(baitTypes, im.opts.DefaultBaitTypes)

	return &models.Listing{
		Slug:               row.Slug,
		Name:               row.BusinessName,
		Description:        &description,
		Phone:              optional(row.PhoneNumber),
		Website:            optional(row.WebsiteURL),
		Address:            strings.Join(addressParts, ", "),
		CityID:             cityID,
		RegionID:           region.ID,
		Postcode:           optional(row.PostalCode),
		Lat:                *lat,
		Lng:                *lng,
		BaitTypes:          baitTypes,
		Rating:             rating,
		ReviewsCount:       reviews,
		ExternalReviewsURL: optional(row.ReviewsLink),
		IsVerified:         false,
	}, nil
}

func describe(name, city, region string) string {
	return fmt.Sprintf(descriptionTemplate, name, city, region)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
