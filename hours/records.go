package hours

import (
	"livebait-directory/models"

	"github.com/google/uuid"
)

// ToRecords maps a parsed schedule onto listing_hours rows for one listing.
func ToRecords(listingID uuid.UUID, days []DayInterval) []models.ListingHours {
	records := make([]models.ListingHours, 0, len(days))
	for _, d := range days {
		rec := models.ListingHours{
			ListingID: listingID,
			Weekday:   d.Weekday,
		}
		switch d.Kind {
		case Closed:
			rec.IsClosed = true
		case Open24h:
			rec.Is24h = true
		case Timed:
			open, closeAt := d.Open.String(), d.Close.String()
			rec.OpenTime = &open
			rec.CloseTime = &closeAt
		}
		records = append(records, rec)
	}
	return records
}

// FromRecord is the inverse of ToRecords. A row with neither flag nor both
// times is reported as not ok.
func FromRecord(rec models.ListingHours) (DayInterval, bool) {
	switch {
	case rec.IsClosed:
		return ClosedDay(rec.Weekday), true
	case rec.Is24h:
		return AllDay(rec.Weekday), true
	case rec.OpenTime != nil && rec.CloseTime != nil:
		open, err := ParseClock(*rec.OpenTime)
		if err != nil {
			return DayInterval{}, false
		}
		closeAt, err := ParseClock(*rec.CloseTime)
		if err != nil {
			return DayInterval{}, false
		}
		return TimedDay(rec.Weekday, open, closeAt), true
	}
	return DayInterval{}, false
}
