package analytics

import (
	"sort"

	"expensetracker/internal/core"
)

// TrendPoint is the total spend of one date.
type TrendPoint struct {
	Date   string      `json:"date"`
	Amount core.Amount `json:"amount"`
}

// DailyTrend sums the records of the month selected by f per date, in
// ascending date order. Without both a year and a month filter there is
// no series.
func DailyTrend(records []core.ExpenseRecord, f core.FilterCriteria) []TrendPoint {
	if !f.HasMonth() {
		return nil
	}
	sums := make(map[string]core.Amount)
	for _, r := range records {
		year, month := core.SplitYearMonth(r.Date)
		if year != f.Year || month != f.Month {
			continue
		}
		sums[r.Date] = sums[r.Date].Add(r.Amount)
	}
	out := make([]TrendPoint, 0, len(sums))
	for date, amount := range sums {
		out = append(out, TrendPoint{Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
