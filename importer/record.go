package importer

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ErrInputMissing is returned when the input file does not exist.
var (
	ErrInputMissing  = errors.New("input file not found")
	ErrUnknownHeader = errors.New("header names no known column")
)

// RawRecord is one source row, exactly as read. It is never mutated.
type RawRecord struct {
	ID             string
	BusinessName   string
	WebsiteURL     string
	PhoneNumber    string
	StreetAddress  string
	StreetAddress2 string
	City           string
	Region         string
	PostalCode     string
	Latitude       string
	Longitude      string
	TimeZone       string
	AverageRating  string
	ReviewsLink    string
	StreetViewURL  string
	OperatingHours string
	Slug           string
	CreatedAt      string
	UpdatedAt      string
}

// columns maps header names to record fields.
var columns = map[string]func(*RawRecord, string){
	"id":               func(r *RawRecord, v string) { r.ID = v },
	"business_name":    func(r *RawRecord, v string) { r.BusinessName = v },
	"website_url":      func(r *RawRecord, v string) { r.WebsiteURL = v },
	"phone_number":     func(r *RawRecord, v string) { r.PhoneNumber = v },
	"street_address":   func(r *RawRecord, v string) { r.StreetAddress = v },
	"street_address_2": func(r *RawRecord, v string) { r.StreetAddress2 = v },
	"city":             func(r *RawRecord, v string) { r.City = v },
	"state":            func(r *RawRecord, v string) { r.Region = v },
	"postal_code":      func(r *RawRecord, v string) { r.PostalCode = v },
	"latitude":         func(r *RawRecord, v string) { r.Latitude = v },
	"longitude":        func(r *RawRecord, v string) { r.Longitude = v },
	"time_zone":        func(r *RawRecord, v string) { r.TimeZone = v },
	"average_rating":   func(r *RawRecord, v string) { r.AverageRating = v },
	"reviews_link":     func(r *RawRecord, v string) { r.ReviewsLink = v },
	"street_view_url":  func(r *RawRecord, v string) { r.StreetViewURL = v },
	"operating_hours":  func(r *RawRecord, v string) { r.OperatingHours = v },
	"slug":             func(r *RawRecord, v string) { r.Slug = v },
	"created_at":       func(r *RawRecord, v string) { r.CreatedAt = v },
	"updated_at":       func(r *RawRecord, v string) { r.UpdatedAt = v },
}

// checkHeader rejects a header none of whose names is a known column,
// which is what a wrong delimiter produces.
func checkHeader(header []string) error {
	for _, name := range header {
		if _, ok := columns[strings.TrimSpace(name)]; ok {
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownHeader, "%q", strings.Join(header, " "))
}

func buildRecord(header, values []string) RawRecord {
	var rec RawRecord
	for i, name := range header {
		set, ok := columns[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		if i < len(values) {
			set(&rec, strings.TrimSpace(values[i]))
		}
	}
	return rec
}

// ReadDelimited reads a header line followed by data lines. Fields are split
// on delim with no quoting support, so a delimiter inside a value shifts the
// remaining columns. Blank lines are ignored; missing trailing columns read
// as empty strings.
func ReadDelimited(r io.Reader, delim string) ([]RawRecord, error) {
	if delim == "" {
		delim = ","
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	lines := strings.Split(strings.TrimPrefix(string(content), "\ufeff"), "\n")
	if strings.TrimSpace(lines[0]) == "" {
		return nil, errors.New("missing header row")
	}
	header := strings.Split(strings.TrimSpace(lines[0]), delim)
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []RawRecord
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, buildRecord(header, strings.Split(line, delim)))
	}
	return records, nil
}

// ReadXLSX reads the first sheet of a workbook; its first row is the header.
func ReadXLSX(path string) ([]RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]RawRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var records []RawRecord
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		records = append(records, buildRecord(rows[0], row))
	}
	return records, nil
}

func isWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// delimiterFor returns the field separator for a text input: .tsv is always
// tab separated, anything else uses delim.
func delimiterFor(name, delim string) string {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return "\t"
	}
	return delim
}

// ReadUpload reads an uploaded file. name picks the reader: .xlsx is a
// workbook, .tsv is tab separated, anything else uses delim.
func ReadUpload(r io.Reader, name, delim string) ([]RawRecord, error) {
	if isWorkbook(name) {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "open workbook %s", name)
		}
		defer f.Close()
		return readWorkbook(f)
	}
	return ReadDelimited(r, delimiterFor(name, delim))
}

// LoadFile reads records from path, choosing the reader by extension.
func LoadFile(path, delim string) ([]RawRecord, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrInputMissing, path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	if isWorkbook(path) {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadDelimited(f, delimiterFor(path, delim))
}
