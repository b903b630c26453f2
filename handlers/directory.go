package handlers

import (
	"math"
	"net/http"
	"sort"

	"livebait-directory/cache"
	"livebait-directory/dtos"
	"livebait-directory/models"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultRadiusMiles = 25.0
	maxNearbyResults   = 50

	// milesPerDegreeLat is used for the bounding box that prefilters
	// nearby candidates before the exact distance check.
	milesPerDegreeLat = 69.0
)

type DirectoryHandler struct {
	DB      *gorm.DB
	Cache   cache.Cache
	SiteURL string
	Log     logrus.FieldLogger
}

type countRow struct {
	ID    uuid.UUID
	Count int64
}

// countListings returns listing counts grouped by column, optionally
// restricted by a where clause.
func (h *DirectoryHandler) countListings(db *gorm.DB, column string, where ...interface{}) (map[uuid.UUID]int64, error) {
	q := db.Model(&models.Listing{}).Select(column + " AS id, COUNT(*) AS count").Group(column)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}

	var rows []countRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.Count
	}
	return counts, nil
}

func (h *DirectoryHandler) GetRegions(c *gin.Context) {
	ctx := c.Request.Context()
	var resp []dtos.RegionResponse
	if cache.GetJSON(ctx, h.Cache, "regions", &resp) {
		c.JSON(http.StatusOK, resp)
		return
	}

	db := h.DB.WithContext(ctx)
	var regions []models.Region
	if err := db.Order("name").Find(&regions).Error; err != nil {
		h.Log.WithError(err).Error("Failed to fetch regions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch regions"})
		return
	}

	counts, err := h.countListings(db, "region_id")
	if err != nil {
		h.Log.WithError(err).Error("Failed to count listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch regions"})
		return
	}

	resp = make([]dtos.RegionResponse, 0, len(regions))
	for _, r := range regions {
		resp = append(resp, dtos.NewRegionResponse(r, counts[r.ID]))
	}

	cache.SetJSON(ctx, h.Cache, "regions", resp, cache.RegionTTL)
	c.JSON(http.StatusOK, resp)
}

// GetRegion returns a region and the cities that have listings in it.
func (h *DirectoryHandler) GetRegion(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("region")
	key := "region:" + slug

	var resp dtos.RegionDetailResponse
	if cache.GetJSON(ctx, h.Cache, key, &resp) {
		c.JSON(http.StatusOK, resp)
		return
	}

	db := h.DB.WithContext(ctx)
	var region models.Region
	if err := db.Where("slug = ?", slug).First(&region).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Region not found"})
		return
	}

	counts, err := h.countListings(db, "city_id", "region_id = ?", region.ID)
	if err != nil {
		h.Log.WithError(err).Error("Failed to count listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch region"})
		return
	}
	if len(counts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Region not found"})
		return
	}

	ids := make([]uuid.UUID, 0, len(counts))
	var total int64
	for id, n := range counts {
		ids = append(ids, id)
		total += n
	}

	var cities []models.City
	if err := db.Where("id IN ?", ids).Order("name").Find(&cities).Error; err != nil {
		h.Log.WithError(err).Error("Failed to fetch cities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch region"})
		return
	}

	resp = dtos.RegionDetailResponse{
		Region: dtos.NewRegionResponse(region, total),
		Cities: make([]dtos.CityResponse, 0, len(cities)),
		SEO:    dtos.RegionSEO(region.Name, total, h.SiteURL+"/state/"+region.Slug),
	}
	for _, city := range cities {
		resp.Cities = append(resp.Cities, dtos.NewCityResponse(city, counts[city.ID]))
	}

	cache.SetJSON(ctx, h.Cache, key, resp, cache.RegionTTL)
	c.JSON(http.StatusOK, resp)
}

// GetCityListings returns the listings of one city ordered by name.
func (h *DirectoryHandler) GetCityListings(c *gin.Context) {
	ctx := c.Request.Context()
	regionSlug, citySlug := c.Param("region"), c.Param("city")
	key := "city:" + regionSlug + ":" + citySlug

	var resp dtos.CityListingsResponse
	if cache.GetJSON(ctx, h.Cache, key, &resp) {
		c.JSON(http.StatusOK, resp)
		return
	}

	db := h.DB.WithContext(ctx)
	var region models.Region
	if err := db.Where("slug = ?", regionSlug).First(&region).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Region not found"})
		return
	}

	var city models.City
	if err := db.Where("region_id = ? AND slug = ?", region.ID, citySlug).First(&city).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
		return
	}

	var listings []models.Listing
	err := db.Preload("City").Preload("Region").
		Where("region_id = ? AND city_id = ?", region.ID, city.ID).
		Order("name").
		Find(&listings).Error
	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	if len(listings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
		return
	}

	resp = dtos.CityListingsResponse{
		Region:   dtos.NewRegionResponse(region, 0),
		City:     dtos.NewCityResponse(city, int64(len(listings))),
		Listings: make([]dtos.ListingSummary, 0, len(listings)),
		SEO: dtos.CitySEO(city.Name, region.Name, len(listings),
			h.SiteURL+"/state/"+region.Slug+"/"+city.Slug),
	}
	for _, l := range listings {
		resp.Listings = append(resp.Listings, dtos.NewListingSummary(l))
	}

	cache.SetJSON(ctx, h.Cache, key, resp, cache.CityTTL)
	c.JSON(http.StatusOK, resp)
}

func (h *DirectoryHandler) GetListing(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	key := "listing:" + slug

	var resp dtos.ListingResponse
	if cache.GetJSON(ctx, h.Cache, key, &resp) {
		c.JSON(http.StatusOK, resp)
		return
	}

	db := h.DB.WithContext(ctx)
	var listing models.Listing
	err := db.Preload("City").Preload("Region").Preload("Hours").
		Where("slug = ?", slug).
		First(&listing).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	var tags []models.ListingTag
	if err := db.Where("listing_id = ?", listing.ID).Order("tag").Find(&tags).Error; err != nil {
		h.Log.WithError(err).WithField("slug", slug).Warn("Failed to fetch listing tags")
	}

	resp = dtos.NewListingResponse(listing, tags, h.SiteURL)
	cache.SetJSON(ctx, h.Cache, key, resp, cache.ListingTTL)
	c.JSON(http.StatusOK, resp)
}

type nearbyQuery struct {
	Lat    *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lng    *float64 `form:"lng" binding:"required,gte=-180,lte=180"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0,lte=200"`
}

// GetNearby returns listings within radius miles of lat,lng, closest first.
func (h *DirectoryHandler) GetNearby(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	radius := q.Radius
	if radius == 0 {
		radius = DefaultRadiusMiles
	}
	lat, lng := *q.Lat, *q.Lng

	dLat := radius / milesPerDegreeLat
	dLng := 180.0
	if cos := math.Cos(lat * math.Pi / 180); cos > 0.01 {
		dLng = math.Min(180, dLat/cos)
	}

	query := h.DB.WithContext(c.Request.Context()).
		Preload("City").Preload("Region").
		Where("lat BETWEEN ? AND ?", lat-dLat, lat+dLat)
	switch ranges := utils.LngRanges(lng, dLng); len(ranges) {
	case 1:
		query = query.Where("lng BETWEEN ? AND ?", ranges[0][0], ranges[0][1])
	case 2:
		query = query.Where(h.DB.
			Where("lng BETWEEN ? AND ?", ranges[0][0], ranges[0][1]).
			Or("lng BETWEEN ? AND ?", ranges[1][0], ranges[1][1]))
	}

	var candidates []models.Listing
	err := query.Find(&candidates).Error
	if err != nil {
		h.Log.WithError(err).Error("Failed to fetch nearby listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	type hit struct {
		listing  models.Listing
		distance float64
	}
	var hits []hit
	for _, l := range candidates {
		if d := utils.Haversine(lat, lng, l.Lat, l.Lng); d <= radius {
			hits = append(hits, hit{l, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > maxNearbyResults {
		hits = hits[:maxNearbyResults]
	}

	results := make([]dtos.ListingSummary, 0, len(hits))
	for _, m := range hits {
		s := dtos.NewListingSummary(m.listing)
		dist := math.Round(m.distance*10) / 10
		s.DistanceMi = &dist
		results = append(results, s)
	}

	c.JSON(http.StatusOK, dtos.NearbyResponse{Lat: lat, Lng: lng, RadiusMiles: radius, Listings: results})
}

// Health reports whether the database answers.
func (h *DirectoryHandler) Health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.Log.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
