package core

import (
	"fmt"
	"strings"
	"time"
)

// FilterCriteria holds the active dashboard filters. Empty fields are
// inactive; active fields must all pass.
type FilterCriteria struct {
	Category string `json:"category"`
	Month    string `json:"month"` // "01".."12"
	Year     string `json:"year"`  // "2024"
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// DefaultFilters selects the current month and year, everything else open.
func DefaultFilters(now time.Time) FilterCriteria {
	return FilterCriteria{
		Month: fmt.Sprintf("%02d", int(now.Month())),
		Year:  fmt.Sprintf("%04d", now.Year()),
	}
}

// IsEmpty reports whether no filter is active.
func (f FilterCriteria) IsEmpty() bool {
	return f == FilterCriteria{}
}

// HasMonth reports whether a concrete year and month are selected.
func (f FilterCriteria) HasMonth() bool {
	return f.Year != "" && f.Month != ""
}

// Normalize trims whitespace and zero-pads a one-digit month.
func (f FilterCriteria) Normalize() FilterCriteria {
	f.Category = strings.TrimSpace(f.Category)
	f.Month = strings.TrimSpace(f.Month)
	f.Year = strings.TrimSpace(f.Year)
	f.DateFrom = strings.TrimSpace(f.DateFrom)
	f.DateTo = strings.TrimSpace(f.DateTo)
	if len(f.Month) == 1 && f.Month[0] >= '1' && f.Month[0] <= '9' {
		f.Month = "0" + f.Month
	}
	return f
}

// fallbackLayouts are tried when a date has no hyphen-separated year/month.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// SplitYearMonth extracts the year and month of a record date.
//
// The first two hyphen-separated segments are returned verbatim. Dates
// without a hyphen get a best-effort parse with the month zero-padded;
// anything else yields two empty strings.
func SplitYearMonth(date string) (year, month string) {
	if date == "" {
		return "", ""
	}
	parts := strings.Split(date, "-")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(date)); err == nil {
			return fmt.Sprintf("%d", t.Year()), fmt.Sprintf("%02d", int(t.Month()))
		}
	}
	return "", ""
}

// MonthKey returns the "YYYY-MM" bucket key of a date and whether the date
// had at least two hyphen-separated segments.
func MonthKey(date string) (string, bool) {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return "", false
	}
	return parts[0] + "-" + parts[1], true
}

// DateKey formats a calendar day in local time as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}
