// Package hours turns the free-text operating-hours strings found in source
// data into a normalized weekly schedule.
package hours

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Weekday indices follow the storage convention: 0=Sunday ... 6=Saturday.
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// WeekdayName returns the English name for a weekday index, or "" when the
// index is out of range.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday >= DaysPerWeek {
		return ""
	}
	return weekdayNames[weekday]
}

// Kind tags the state of a single weekday.
type Kind int

const (
	Closed Kind = iota
	Open24h
	Timed
)

func (k Kind) String() string {
	switch k {
	case Closed:
		return "closed"
	case Open24h:
		return "open24h"
	case Timed:
		return "timed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ClockTime is a wall-clock time with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// String renders the storage format HH:MM:SS.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute)
}

// Display renders the 12-hour form used on listing pages, e.g. "9:05 AM".
func (t ClockTime) Display() string {
	period := "AM"
	if t.Hour >= 12 {
		period = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, period)
}

// ParseClock reads the HH:MM or HH:MM:SS storage form.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// DayInterval is one weekday's schedule. Open and Close are meaningful only
// when Kind is Timed; the constructors below are the only way to build one.
type DayInterval struct {
	Weekday int
	Kind    Kind
	Open    ClockTime
	Close   ClockTime
}

func ClosedDay(weekday int) DayInterval {
	return DayInterval{Weekday: weekday, Kind: Closed}
}

func AllDay(weekday int) DayInterval {
	return DayInterval{Weekday: weekday, Kind: Open24h}
}

// TimedDay does not require open to precede close.
func TimedDay(weekday int, open, closeAt ClockTime) DayInterval {
	return DayInterval{Weekday: weekday, Kind: Timed, Open: open, Close: closeAt}
}

// Display renders the human-readable hours text for the day.
func (d DayInterval) Display() string {
	switch d.Kind {
	case Closed:
		return "Closed"
	case Open24h:
		return "Open 24 Hours"
	default:
		return d.Open.Display() + " - " + d.Close.Display()
	}
}

// Options configures the phrases the parser recognises.
type Options struct {
	// Unavailable is the sentinel meaning no hours are known.
	Unavailable string
	// AllDayMarker anywhere in the text means open around the clock.
	AllDayMarker string
	// AlwaysOpen is a full-text phrase that also means open around the clock.
	AlwaysOpen string
}

func DefaultOptions() Options {
	return Options{
		Unavailable:  "Hours not available",
		AllDayMarker: "Open 24 hours",
		AlwaysOpen:   "Daily 12:00 AM-12:00 PM",
	}
}

type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

var (
	clausePattern = regexp.MustCompile(`(?i)^([\w-]+)\s+(\d{1,2}:\d{2}\s*[AP]M)\s*-\s*(\d{1,2}:\d{2}\s*[AP]M)$`)
	timePattern   = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([AP]M)$`)
	rangePattern  = regexp.MustCompile(`(\w+)-(\w+)`)

	dayIndex = map[string]int{
		"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
	}
)

// Parse never fails: text it cannot understand yields an empty schedule, and
// clauses it cannot understand are dropped one by one. When several clauses
// name the same weekday the last one wins. The result is ordered by weekday.
func (p *Parser) Parse(text string) []DayInterval {
	if text == "" || text == p.opts.Unavailable {
		return nil
	}

	if (p.opts.AllDayMarker != "" && strings.Contains(text, p.opts.AllDayMarker)) ||
		(p.opts.AlwaysOpen != "" && text == p.opts.AlwaysOpen) {
		result := make([]DayInterval, 0, DaysPerWeek)
		for i := 0; i < DaysPerWeek; i++ {
			result = append(result, AllDay(i))
		}
		return result
	}

	var week [DaysPerWeek]*DayInterval
	for _, clause := range strings.Split(text, ",") {
		clause = strings.TrimSpace(clause)
		m := clausePattern.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		open, ok := to24Hour(m[2])
		if !ok {
			continue
		}
		closeAt, ok := to24Hour(m[3])
		if !ok {
			continue
		}
		for _, day := range expandDays(m[1]) {
			interval := TimedDay(day, open, closeAt)
			week[day] = &interval
		}
	}

	var result []DayInterval
	for _, d := range week {
		if d != nil {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Weekday < result[j].Weekday })
	return result
}

// expandDays turns a day token into weekday indices. Ranges do not wrap:
// "Fri-Mon" is empty.
func expandDays(token string) []int {
	token = strings.ToLower(token)
	if token == "daily" {
		return []int{0, 1, 2, 3, 4, 5, 6}
	}

	if m := rangePattern.FindStringSubmatch(token); m != nil {
		start, ok := lookupDay(m[1])
		if !ok {
			return nil
		}
		end, ok := lookupDay(m[2])
		if !ok {
			return nil
		}
		var days []int
		for i := start; i <= end; i++ {
			days = append(days, i)
		}
		return days
	}

	if day, ok := lookupDay(token); ok {
		return []int{day}
	}
	return nil
}

func lookupDay(token string) (int, bool) {
	if len(token) < 3 {
		return 0, false
	}
	day, ok := dayIndex[token[:3]]
	return day, ok
}

// to24Hour converts "H:MM AM|PM". 12 AM is midnight and 12 PM is noon.
func to24Hour(s string) (ClockTime, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ClockTime{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 12 || minute > 59 {
		return ClockTime{}, false
	}

	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return ClockTime{Hour: hour, Minute: minute}, true
}
