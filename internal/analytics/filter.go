// Package analytics derives the dashboard views from the record set and the
// active filters. Everything here is pure and recomputed from scratch on
// each change.
package analytics

import "expensetracker/internal/core"

// Matches reports whether a record passes every active filter.
func Matches(r core.ExpenseRecord, f core.FilterCriteria) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}

	year, month := core.SplitYearMonth(r.Date)
	if f.Year != "" && f.Year != year {
		return false
	}
	if f.Month != "" && f.Month != month {
		return false
	}

	// YYYY-MM-DD compares correctly as a string
	if f.DateFrom != "" && r.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && r.Date > f.DateTo {
		return false
	}
	return true
}

// Filter returns the records passing f, preserving input order.
func Filter(records []core.ExpenseRecord, f core.FilterCriteria) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}
