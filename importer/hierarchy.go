package importer

import (
	"context"
	"math"
	"strconv"
	"strings"

	"livebait-directory/database"
	"livebait-directory/metrics"
	"livebait-directory/models"
	"livebait-directory/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrEmptyCity is returned when a city name slugifies to nothing.
var ErrEmptyCity = errors.New("city name is empty")

// CityStore is the part of the backing store the reconciler needs.
type CityStore interface {
	FindCity(ctx context.Context, regionID uuid.UUID, slug string) (*models.City, error)
	CreateCity(ctx context.Context, city *models.City) error
}

type cityKey struct {
	regionID uuid.UUID
	slug     string
}

// CityResolver finds or creates City rows keyed by (region, city slug). Its
// cache lives for one batch so a city introduced earlier in the batch is
// reused without another lookup. It is not safe for concurrent use: two
// batches racing on the same city rely on the unique (region_id, slug)
// index to reject the second insert.
type CityResolver struct {
	store CityStore
	cache map[cityKey]uuid.UUID
	log   logrus.FieldLogger
}

func NewCityResolver(store CityStore, log logrus.FieldLogger) *CityResolver {
	return &CityResolver{
		store: store,
		cache: make(map[cityKey]uuid.UUID),
		log:   log,
	}
}

// Resolve returns the id of the city named rawCity in region. An existing
// city keeps its stored coordinates; a new one takes lat/lng, with
// unparseable values stored as absent.
func (r *CityResolver) Resolve(ctx context.Context, region *models.Region, rawCity, lat, lng string) (uuid.UUID, error) {
	slug := utils.Slugify(rawCity)
	if slug == "" {
		return uuid.Nil, ErrEmptyCity
	}

	key := cityKey{regionID: region.ID, slug: slug}
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	existing, err := r.store.FindCity(ctx, region.ID, slug)
	switch {
	case err == nil:
		r.cache[key] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, database.ErrNotFound):
		return uuid.Nil, err
	}

	city := &models.City{
		RegionID: region.ID,
		Name:     strings.TrimSpace(rawCity),
		Slug:     slug,
		Lat:      parseNumber(lat),
		Lng:      parseNumber(lng),
	}
	if err := r.store.CreateCity(ctx, city); err != nil {
		r.log.WithFields(logrus.Fields{"city": rawCity, "region": region.Abbr}).
			WithError(err).Error("Error creating city")
		return uuid.Nil, err
	}
	metrics.CitiesCreated.Inc()

	r.cache[key] = city.ID
	return city.ID, nil
}

// Len reports how many cities the resolver has seen this batch.
func (r *CityResolver) Len() int {
	return len(r.cache)
}

// parseNumber returns nil for empty, malformed, or non-finite input.
func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
