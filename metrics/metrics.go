// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Row outcomes recorded by the importer.
const (
	OutcomeImported         = "imported"
	OutcomeSkippedRegion    = "skipped_region"
	OutcomeSkippedCity      = "skipped_city"
	OutcomeSkippedDuplicate = "skipped_duplicate"
	OutcomeSkippedInvalid   = "skipped_invalid"
	OutcomeSkippedPersist   = "skipped_persist"
)

var (
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livebait",
		Name:      "import_rows_total",
		Help:      "Rows processed by the import batch, by outcome.",
	}, []string{"outcome"})

	ScheduleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "livebait",
		Name:      "import_schedule_failures_total",
		Help:      "Listings whose schedule could not be stored.",
	})

	CitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "livebait",
		Name:      "import_cities_created_total",
		Help:      "City rows created during import.",
	})

	StaticMaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livebait",
		Name:      "static_maps_total",
		Help:      "Static map backfill attempts, by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livebait",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"method", "route", "status"})
)

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware counts requests by matched route, so path parameters do not
// explode the label set.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
