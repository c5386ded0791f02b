package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Tier is the heat-map intensity of a calendar day. Values double as CSS
// class names.
type Tier string

const (
	TierNone    Tier = ""
	TierVeryLow Tier = "very-low-spend"
	TierLow     Tier = "low-spend"
	TierMedium  Tier = "medium-spend"
	TierHigh    Tier = "high-spend"
)

// MonthBucket accumulates the spend of one "YYYY-MM" month.
type MonthBucket struct {
	Total core.Amount            `json:"total"`
	Daily map[string]core.Amount `json:"daily"`
}

// Buckets maps "YYYY-MM" keys to month totals.
type Buckets map[string]*MonthBucket

// DayShare is the part of its month's spend that fell on one day.
type DayShare struct {
	Percent float64     `json:"p"`
	Amount  core.Amount `json:"a"`
}

var hundred = decimal.NewFromInt(100)

// BucketByMonth groups records by month key. Records whose date does not
// have two hyphen-separated segments are skipped here only.
func BucketByMonth(records []core.ExpenseRecord) Buckets {
	out := make(Buckets)
	for _, r := range records {
		key, ok := core.MonthKey(r.Date)
		if !ok {
			continue
		}
		b, exists := out[key]
		if !exists {
			b = &MonthBucket{Daily: make(map[string]core.Amount)}
			out[key] = b
		}
		b.Total = b.Total.Add(r.Amount)
		b.Daily[r.Date] = b.Daily[r.Date].Add(r.Amount)
	}
	return out
}

// DayShare looks up a calendar day. A missing bucket or a zero month total
// gives a zero share, never NaN.
func (b Buckets) DayShare(day time.Time) DayShare {
	bucket, ok := b[day.Format("2006-01")]
	if !ok || bucket.Total.IsZero() {
		return DayShare{}
	}
	amount := bucket.Daily[core.DateKey(day)]
	pct := amount.Decimal().Div(bucket.Total.Decimal()).Mul(hundred)
	return DayShare{Percent: pct.InexactFloat64(), Amount: amount}
}

// TierFor maps a percentage onto a heat-map tier. Each threshold belongs to
// the higher tier.
func TierFor(percent float64) Tier {
	switch {
	case percent >= 20:
		return TierHigh
	case percent >= 10:
		return TierMedium
	case percent >= 5:
		return TierLow
	case percent > 0:
		return TierVeryLow
	default:
		return TierNone
	}
}

// Tile is one day cell of the calendar heat-map.
type Tile struct {
	Date    string   `json:"date"`
	Day     int      `json:"day"`
	InMonth bool     `json:"inMonth"`
	Share   DayShare `json:"share"`
	Tier    Tier     `json:"tier"`
}

// Calendar is a month laid out in Monday-first weeks.
type Calendar struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Weeks [][]Tile `json:"weeks"`
}

// CalendarMonth lays out the given month with every tile's share and tier.
// Leading and trailing days of neighbouring months are included to fill
// the first and last week.
func CalendarMonth(b Buckets, year int, month time.Month) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	day := first.AddDate(0, 0, -offset)
	next := first.AddDate(0, 1, 0)

	cal := Calendar{Year: year, Month: int(month)}
	for day.Before(next) {
		week := make([]Tile, 0, 7)
		for i := 0; i < 7; i++ {
			share := b.DayShare(day)
			week = append(week, Tile{
				Date:    core.DateKey(day),
				Day:     day.Day(),
				InMonth: day.Month() == month,
				Share:   share,
				Tier:    TierFor(share.Percent),
			})
			day = day.AddDate(0, 0, 1)
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal
}

// DisplayMonth picks the month shown by the heat-map: the filtered month
// when both a year and a month are selected, otherwise the one of now.
func DisplayMonth(f core.FilterCriteria, now time.Time) (int, time.Month) {
	if f.HasMonth() {
		if t, err := time.Parse("2006-01", f.Year+"-"+f.Month); err == nil {
			return t.Year(), t.Month()
		}
	}
	return now.Year(), now.Month()
}
