package dtos

import (
	"fmt"
	"sort"
	"strings"

	"livebait-directory/hours"
	"livebait-directory/models"

	"github.com/google/uuid"
)

const (
	SiteName          = "Live Bait Directory"
	hoursNotAvailable = "Hours not available"
)

// SEO is the page metadata a client renders for a directory page.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical"`
}

type RegionResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Abbr         string    `json:"abbr"`
	Slug         string    `json:"slug"`
	ListingCount int64     `json:"listing_count"`
}

type CityResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ListingCount int64     `json:"listing_count"`
}

type RegionDetailResponse struct {
	Region RegionResponse `json:"region"`
	Cities []CityResponse `json:"cities"`
	SEO    SEO            `json:"seo"`
}

type HoursResponse struct {
	Weekday   int     `json:"weekday"`
	Day       string  `json:"day"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	Is24h     bool    `json:"is_24h"`
	IsClosed  bool    `json:"is_closed"`
	Text      string  `json:"text"`
}

// ListingSummary is a listing as shown in city pages and nearby search.
type ListingSummary struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Region       string    `json:"region"`
	Phone        *string   `json:"phone"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	BaitTypes    []string  `json:"bait_types"`
	Rating       *float64  `json:"rating,omitempty"`
	ReviewsCount int       `json:"reviews_count"`
	IsVerified   bool      `json:"is_verified"`
	DistanceMi   *float64  `json:"distance_miles,omitempty"`
}

type CityListingsResponse struct {
	Region   RegionResponse   `json:"region"`
	City     CityResponse     `json:"city"`
	Listings []ListingSummary `json:"listings"`
	SEO      SEO              `json:"seo"`
}

type ListingResponse struct {
	ListingSummary
	Description        *string                `json:"description"`
	Website            *string                `json:"website"`
	Postcode           *string                `json:"postcode"`
	ExternalReviewsURL *string                `json:"external_reviews_url"`
	StaticMapURL       *string                `json:"static_map_url"`
	DirectionsURL      string                 `json:"directions_url"`
	Tags               []string               `json:"tags"`
	Hours              []HoursResponse        `json:"hours"`
	SEO                SEO                    `json:"seo"`
	Schema             map[string]interface{} `json:"schema"`
}

type NearbyResponse struct {
	Lat         float64          `json:"lat"`
	Lng         float64          `json:"lng"`
	RadiusMiles float64          `json:"radius_miles"`
	Listings    []ListingSummary `json:"listings"`
}

func NewRegionResponse(r models.Region, count int64) RegionResponse {
	return RegionResponse{ID: r.ID, Name: r.Name, Abbr: r.Abbr, Slug: r.Slug, ListingCount: count}
}

func NewCityResponse(c models.City, count int64) CityResponse {
	return CityResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, ListingCount: count}
}

// NewListingSummary expects City and Region to be loaded. The rating is
// left out unless there is at least one review.
func NewListingSummary(l models.Listing) ListingSummary {
	s := ListingSummary{
		ID:           l.ID,
		Slug:         l.Slug,
		Name:         l.Name,
		Address:      l.Address,
		Phone:        l.Phone,
		Lat:          l.Lat,
		Lng:          l.Lng,
		BaitTypes:    []string(l.BaitTypes),
		ReviewsCount: l.ReviewsCount,
		IsVerified:   l.IsVerified,
	}
	if s.BaitTypes == nil {
		s.BaitTypes = []string{}
	}
	if l.City != nil {
		s.City = l.City.Name
	}
	if l.Region != nil {
		s.Region = l.Region.Name
	}
	if l.ShowsRating() {
		s.Rating = l.Rating
	}
	return s
}

// NewListingResponse builds the detail view. siteURL is used for
// canonical links and the JSON-LD id.
func NewListingResponse(l models.Listing, tags []models.ListingTag, siteURL string) ListingResponse {
	summary := NewListingSummary(l)

	resp := ListingResponse{
		ListingSummary:     summary,
		Description:        l.Description,
		Website:            l.Website,
		Postcode:           l.Postcode,
		ExternalReviewsURL: l.ExternalReviewsURL,
		StaticMapURL:       l.StaticMapURL,
		DirectionsURL:      fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v", l.Lat, l.Lng),
		Tags:               make([]string, 0, len(tags)),
		Hours:              NewHoursResponses(l.Hours),
		SEO: SEO{
			Title:       fmt.Sprintf("%s - Live Bait Shop in %s, %s | %s", l.Name, summary.City, summary.Region, SiteName),
			Description: listingMetaDescription(l.Name, summary.City, summary.Region, summary.BaitTypes),
			Canonical:   siteURL + "/listing/" + l.Slug,
		},
		Schema: LocalBusinessSchema(l, siteURL),
	}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, t.Tag)
	}
	return resp
}

func listingMetaDescription(name, city, region string, baitTypes []string) string {
	bait := ""
	if len(baitTypes) > 0 {
		n := len(baitTypes)
		if n > 3 {
			n = 3
		}
		bait = fmt.Sprintf(" Specializing in %s.", strings.Join(baitTypes[:n], ", "))
	}
	return fmt.Sprintf("Find live bait at %s in %s, %s.%s Hours, directions, and contact information.", name, city, region, bait)
}

func CitySEO(city, region string, count int, canonical string) SEO {
	return SEO{
		Title:       fmt.Sprintf("%d Live Bait Shops in %s, %s | %s", count, city, region, SiteName),
		Description: fmt.Sprintf("Find %d live bait and tackle shops in %s, %s. Complete directory with hours, locations, and contact details.", count, city, region),
		Canonical:   canonical,
	}
}

func RegionSEO(region string, count int64, canonical string) SEO {
	return SEO{
		Title:       fmt.Sprintf("%d Live Bait Shops in %s | %s", count, region, SiteName),
		Description: fmt.Sprintf("Discover %d live bait shops across %s. Browse by city to find fishing bait suppliers near you.", count, region),
		Canonical:   canonical,
	}
}

// NewHoursResponses sorts stored hours by weekday and renders each row.
func NewHoursResponses(recs []models.ListingHours) []HoursResponse {
	sorted := make([]models.ListingHours, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weekday < sorted[j].Weekday })

	out := make([]HoursResponse, 0, len(sorted))
	for _, rec := range sorted {
		text := hoursNotAvailable
		if day, ok := hours.FromRecord(rec); ok {
			text = day.Display()
		}
		out = append(out, HoursResponse{
			Weekday:   rec.Weekday,
			Day:       hours.WeekdayName(rec.Weekday),
			OpenTime:  rec.OpenTime,
			CloseTime: rec.CloseTime,
			Is24h:     rec.Is24h,
			IsClosed:  rec.IsClosed,
			Text:      text,
		})
	}
	return out
}

// LocalBusinessSchema renders schema.org LocalBusiness JSON-LD. The
// aggregate rating appears only when a rating and review count exist.
func LocalBusinessSchema(l models.Listing, siteURL string) map[string]interface{} {
	var city, region string
	if l.City != nil {
		city = l.City.Name
	}
	if l.Region != nil {
		region = l.Region.Name
	}

	address := map[string]interface{}{
		"@type":           "PostalAddress",
		"streetAddress":   l.Address,
		"addressLocality": city,
		"addressRegion":   region,
		"addressCountry":  "US",
	}
	if l.Postcode != nil {
		address["postalCode"] = *l.Postcode
	}

	id := siteURL + "/listing/" + l.Slug
	if l.Website != nil && *l.Website != "" {
		id = *l.Website
	}

	schema := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"@id":      id,
		"name":     l.Name,
		"address":  address,
		"geo": map[string]interface{}{
			"@type":     "GeoCoordinates",
			"latitude":  l.Lat,
			"longitude": l.Lng,
		},
	}

	if l.Description != nil && *l.Description != "" {
		schema["description"] = *l.Description
	}
	if l.Phone != nil && *l.Phone != "" {
		schema["telephone"] = *l.Phone
	}
	if l.Website != nil && *l.Website != "" {
		schema["url"] = *l.Website
	}
	if l.Rating != nil && *l.Rating != 0 && l.ReviewsCount > 0 {
		schema["aggregateRating"] = map[string]interface{}{
			"@type":       "AggregateRating",
			"ratingValue": *l.Rating,
			"reviewCount": l.ReviewsCount,
		}
	}

	return schema
}
