// Package staticmap renders Google Static Maps URLs for listings and
// backfills a stored copy of each map image.
package staticmap

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"livebait-directory/firebase"
	"livebait-directory/metrics"
	"livebait-directory/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const baseURL = "https://maps.googleapis.com/maps/api/staticmap"

// ErrNoKey is returned when the backfill runs without a Maps key.
var ErrNoKey = errors.New("google maps server key is not set")

type Options struct {
	Width       int
	Height      int
	Zoom        int
	MarkerColor string
}

func DefaultOptions() Options {
	return Options{Width: 600, Height: 400, Zoom: 15, MarkerColor: "red"}
}

// BuildURL returns the static map URL centred on lat,lng with one marker.
// Zero option fields take their defaults.
func BuildURL(lat, lng float64, key string, opts Options) string {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Zoom <= 0 {
		opts.Zoom = def.Zoom
	}
	if opts.MarkerColor == "" {
		opts.MarkerColor = def.MarkerColor
	}

	point := formatCoord(lat) + "," + formatCoord(lng)
	params := [][2]string{
		{"center", point},
		{"zoom", strconv.Itoa(opts.Zoom)},
		{"size", strconv.Itoa(opts.Width) + "x" + strconv.Itoa(opts.Height)},
		{"markers", "color:" + opts.MarkerColor + "|" + point},
		{"key", key},
		{"scale", "2"},
	}

	// url.Values would sort the keys; keep them in this order.
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = url.QueryEscape(p[0]) + "=" + url.QueryEscape(p[1])
	}
	return baseURL + "?" + strings.Join(parts, "&")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Result counts the outcome of one backfill run.
type Result struct {
	Stored int
	Failed int
}

type Backfiller struct {
	db      *gorm.DB
	storage firebase.StorageClient
	key     string
	opts    Options
	log     logrus.FieldLogger
}

func NewBackfiller(db *gorm.DB, storage firebase.StorageClient, key string, log logrus.FieldLogger) *Backfiller {
	return &Backfiller{
		db:      db,
		storage: storage,
		key:     key,
		opts:    DefaultOptions(),
		log:     log,
	}
}

// Run stores a map for up to limit listings that have none, oldest first.
// A listing that fails is logged and left for the next run.
func (b *Backfiller) Run(ctx context.Context, limit int) (Result, error) {
	var res Result
	if b.key == "" {
		return res, ErrNoKey
	}

	var listings []models.Listing
	q := b.db.WithContext(ctx).
		Select("id", "slug", "lat", "lng").
		Where("static_map_url IS NULL").
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&listings).Error; err != nil {
		return res, errors.Wrap(err, "loading listings without a static map")
	}

	b.log.Infof("Found %d listings without a static map", len(listings))

	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		log := b.log.WithField("slug", l.Slug)
		if err := b.store(ctx, l); err != nil {
			log.WithError(err).Warn("Static map backfill failed")
			metrics.StaticMaps.WithLabelValues("failed").Inc()
			res.Failed++
			continue
		}
		metrics.StaticMaps.WithLabelValues("stored").Inc()
		res.Stored++
	}

	b.log.Infof("Static maps stored: %d, failed: %d", res.Stored, res.Failed)
	return res, nil
}

func (b *Backfiller) store(ctx context.Context, l models.Listing) error {
	obj, err := b.storage.UploadStaticMap(ctx, BuildURL(l.Lat, l.Lng, b.key, b.opts), l.Slug)
	if err != nil {
		return err
	}

	err = b.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", l.ID).
		Update("static_map_url", obj.URL).Error
	if err != nil {
		if delErr := b.storage.DeleteFile(ctx, obj.Path); delErr != nil {
			b.log.WithError(delErr).WithField("object", obj.Path).Warn("Failed to remove orphaned static map")
		}
		return errors.Wrap(err, "saving static map url")
	}
	return nil
}
